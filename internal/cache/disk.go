package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var cacheTracer = otel.Tracer("github.com/chris-regnier/jinspect/internal/cache")

var _ Manager = (*Disk)(nil)

// Disk stores msgpack-encoded entries under a directory, one file per key.
// Writes go through a temp file and rename, so readers never see a partial
// entry.
type Disk struct {
	dir string
	mu  sync.RWMutex
}

// NewDisk returns a cache rooted at dir. The directory is created lazily.
func NewDisk(dir string) *Disk {
	return &Disk{dir: dir}
}

// Dir returns the cache directory.
func (c *Disk) Dir() string { return c.dir }

func (c *Disk) entryPath(hash string) string {
	return filepath.Join(c.dir, hash[:2], hash+".msgpack")
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Get returns the entry for key or ErrCacheMiss.
func (c *Disk) Get(ctx context.Context, key Key) (*Entry, error) {
	ctx, span := cacheTracer.Start(ctx, "cache lookup")
	defer span.End()

	hash, err := key.Hash()
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("jinspect.cache.key", hash))

	if err := ctx.Err(); err != nil {
		return nil, fail(span, err)
	}

	data, err := c.readBlob(hash)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			span.SetAttributes(attribute.Bool("jinspect.cache.hit", false))
			return nil, ErrCacheMiss
		}
		return nil, fail(span, err)
	}

	var entry Entry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		// Corrupt entries are treated as absent and overwritten on the next Put.
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("jinspect.cache.hit", false))
		return nil, ErrCacheMiss
	}
	if entry.Schema != SchemaVersion {
		span.SetAttributes(attribute.Bool("jinspect.cache.hit", false))
		return nil, ErrCacheMiss
	}

	span.SetAttributes(attribute.Bool("jinspect.cache.hit", true))
	return &entry, nil
}

// Put stores entry, stamping its schema version and timestamp.
func (c *Disk) Put(ctx context.Context, entry *Entry) error {
	_, span := cacheTracer.Start(ctx, "cache store")
	defer span.End()

	hash, err := entry.Key.Hash()
	if err != nil {
		return fail(span, err)
	}
	span.SetAttributes(attribute.String("jinspect.cache.key", hash))

	if err := ctx.Err(); err != nil {
		return fail(span, err)
	}

	entry.Schema = SchemaVersion
	entry.Timestamp = time.Now().Unix()
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return fail(span, err)
	}

	if err := c.writeBlob(hash, data); err != nil {
		return fail(span, err)
	}
	return nil
}

// Delete removes the entry for key. A missing entry is not an error.
func (c *Disk) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hash, err := key.Hash()
	if err != nil {
		return err
	}
	return c.deleteBlob(hash)
}

func (c *Disk) readBlob(hash string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return os.ReadFile(c.entryPath(hash))
}

func (c *Disk) writeBlob(hash string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.entryPath(hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (c *Disk) deleteBlob(hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.Remove(c.entryPath(hash))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DropAll removes every entry.
func (c *Disk) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
