// Package javaparse builds inspection trees from Java source with tree-sitter.
package javaparse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// DefaultMaxFileSize is the largest source file Parse accepts by default.
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned for sources above the configured limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidContent is returned for sources that are not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")
)

// Detect reports whether path names a Java source file.
func Detect(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}

// Parser turns Java source into tree units. It is safe for concurrent use;
// every call creates its own tree-sitter parser.
type Parser struct {
	maxFileSize int64
	logger      *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(bytes int64) Option {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// WithLogger sets the logger for parse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses one compilation unit. Syntax errors do not fail the parse:
// tree-sitter recovers and the unit is marked HasErrors.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*tree.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%s: %w: size %d exceeds limit %d", path, ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w: content is not valid UTF-8", path, ErrInvalidContent)
	}

	sum := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	st, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse of %s failed: %w", path, err)
	}
	defer st.Close()

	root := st.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned no root node for %s", path)
	}
	if root.HasError() {
		p.logger.Warn("source contains syntax errors", "file", path)
	}

	b := &builder{src: content}
	unit := &tree.Unit{
		Path:      path,
		Root:      b.unit(root, path),
		Digest:    hex.EncodeToString(sum[:]),
		HasErrors: root.HasError(),
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after conversion: %w", err)
	}
	return unit, nil
}
