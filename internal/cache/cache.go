// Package cache stores analysis findings keyed by everything that can change
// them: the analyzed sources, the inspection and its options.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/chris-regnier/jinspect/internal/diag"
)

// SchemaVersion is bumped whenever Finding's encoding changes. Entries
// written under another version read as misses.
const SchemaVersion = 1

// ErrCacheMiss is returned by Get when no usable entry exists.
var ErrCacheMiss = errors.New("cache miss")

// Key identifies one inspection run over one unit. Units lists the digests
// of every unit visible to type resolution, because inherited declarations
// in other files change results.
type Key struct {
	Unit       string                 `json:"unit" msgpack:"unit"`
	Units      []string               `json:"units" msgpack:"units"`
	Inspection string                 `json:"inspection" msgpack:"inspection"`
	Severity   string                 `json:"severity" msgpack:"severity"`
	Options    map[string]interface{} `json:"options" msgpack:"options"`
}

// Hash computes a deterministic hex key. It fails for option values with no
// JSON encoding, such as NaN or maps with non-string keys.
func (k Key) Hash() (string, error) {
	units := append([]string(nil), k.Units...)
	sort.Strings(units)
	k.Units = units
	// encoding/json sorts map keys, so equal options hash equally.
	b, err := json.Marshal(k)
	if err != nil {
		return "", fmt.Errorf("hashing cache key: %w", err)
	}
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:]), nil
}

// Entry is a cached result.
type Entry struct {
	Schema    int            `json:"schema" msgpack:"schema"`
	Key       Key            `json:"key" msgpack:"key"`
	Findings  []diag.Finding `json:"findings" msgpack:"findings"`
	Timestamp int64          `json:"timestamp" msgpack:"timestamp"`
}

// Manager is implemented by every cache tier.
type Manager interface {
	Get(ctx context.Context, key Key) (*Entry, error)
	Put(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, key Key) error
}
