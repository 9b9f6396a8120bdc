// Package input collects the Java source artifacts an analysis runs over.
package input

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/chris-regnier/jinspect/internal/javaparse"
)

// Artifact is one source file read from disk.
type Artifact struct {
	Path    string
	Content []byte
}

// Handler reads artifacts, keeping only files its filter accepts.
type Handler struct {
	filter   func(path string) bool
	skipDirs map[string]bool
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithSkipDirs adds directory names ReadDirectory never descends into.
func WithSkipDirs(names ...string) Option {
	return func(h *Handler) {
		for _, n := range names {
			h.skipDirs[n] = true
		}
	}
}

// NewHandler creates a Handler that accepts Java sources.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		filter:   javaparse.Detect,
		skipDirs: make(map[string]bool),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// read returns the artifact at path, or ok=false when the file is skipped.
func (h *Handler) read(path string) (Artifact, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		h.logger.Warn("skipping file with invalid UTF-8", "path", path)
		return Artifact{}, false, nil
	}
	return Artifact{Path: path, Content: data}, true, nil
}

// ReadFiles reads the named files. Files the filter rejects are skipped.
func (h *Handler) ReadFiles(ctx context.Context, paths []string) ([]Artifact, error) {
	var artifacts []Artifact
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !h.filter(p) {
			h.logger.Debug("skipping non-Java file", "path", p)
			continue
		}
		a, ok, err := h.read(p)
		if err != nil {
			return nil, err
		}
		if ok {
			artifacts = append(artifacts, a)
		}
	}
	return artifacts, nil
}

// ReadDirectory reads every accepted file under dir in lexical order.
// Hidden directories and configured skip directories are not entered.
func (h *Handler) ReadDirectory(ctx context.Context, dir string) ([]Artifact, error) {
	var artifacts []Artifact
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || h.skipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !h.filter(path) {
			return nil
		}
		a, ok, err := h.read(path)
		if err != nil {
			return err
		}
		if ok {
			artifacts = append(artifacts, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// ReadPaths reads files and directories alike.
func (h *Handler) ReadPaths(ctx context.Context, paths []string) ([]Artifact, error) {
	var out []Artifact
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var as []Artifact
		if info.IsDir() {
			as, err = h.ReadDirectory(ctx, p)
		} else {
			as, err = h.ReadFiles(ctx, []string{p})
		}
		if err != nil {
			return nil, err
		}
		out = append(out, as...)
	}
	return out, nil
}
