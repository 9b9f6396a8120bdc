package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chris-regnier/jinspect/internal/sarif"
)

var tracer = otel.Tracer("github.com/chris-regnier/jinspect/internal/store")

const (
	sarifFile   = "sarif.json"
	verdictFile = "verdict.json"
)

// FileStore keeps each run under <dir>/<id>/. Ids sort chronologically.
type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

func (s *FileStore) newID() string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%s", s.now().UTC().Format("2006-01-02T15-04-05Z"), hex.EncodeToString(b))
}

func (s *FileStore) runDir(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id), nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// writeJSON writes v to path through a temp file and rename.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) WriteSARIF(ctx context.Context, doc *sarif.Log) (string, error) {
	_, span := tracer.Start(ctx, "store.WriteSARIF")
	defer span.End()

	id := s.newID()
	dir, _ := s.runDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fail(span, fmt.Errorf("creating result directory: %w", err))
	}
	if err := writeJSON(filepath.Join(dir, sarifFile), doc); err != nil {
		return "", fail(span, err)
	}

	results := 0
	if len(doc.Runs) > 0 {
		results = len(doc.Runs[0].Results)
	}
	span.SetAttributes(
		attribute.String("jinspect.store.id", id),
		attribute.Int("jinspect.store.result_count", results),
	)
	return id, nil
}

func (s *FileStore) WriteVerdict(ctx context.Context, id string, verdict *Verdict) error {
	_, span := tracer.Start(ctx, "store.WriteVerdict")
	defer span.End()

	dir, err := s.runDir(id)
	if err != nil {
		return fail(span, err)
	}
	if _, err := os.Stat(dir); err != nil {
		return fail(span, fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if err := writeJSON(filepath.Join(dir, verdictFile), verdict); err != nil {
		return fail(span, err)
	}
	span.SetAttributes(
		attribute.String("jinspect.store.id", id),
		attribute.String("jinspect.decision", verdict.Decision),
	)
	return nil
}

func (s *FileStore) ReadSARIF(ctx context.Context, id string) (*sarif.Log, error) {
	dir, err := s.runDir(id)
	if err != nil {
		return nil, err
	}
	var log sarif.Log
	if err := readJSON(filepath.Join(dir, sarifFile), &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *FileStore) ReadVerdict(ctx context.Context, id string) (*Verdict, error) {
	dir, err := s.runDir(id)
	if err != nil {
		return nil, err
	}
	var v Verdict
	if err := readJSON(filepath.Join(dir, verdictFile), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			ids = append(ids, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Prune removes all but the newest keep runs and returns how many it removed.
func (s *FileStore) Prune(ctx context.Context, keep int) (int, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for _, id := range ids[min(keep, len(ids)):] {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := os.RemoveAll(filepath.Join(s.dir, id)); err != nil {
			return removed, fmt.Errorf("removing %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}
