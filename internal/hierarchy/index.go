// Package hierarchy resolves inheritance relationships between declarations:
// supertype chains, method overrides, inherited members and field references.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// ErrUnresolvedSymbol is returned when a type name has no known declaration.
var ErrUnresolvedSymbol = errors.New("unresolved symbol")

// TypeResolver is the host capability used to turn type names into declarations.
type TypeResolver interface {
	// ResolveType returns the class-like declaration named by name as seen
	// from the node from. It returns an error wrapping ErrUnresolvedSymbol
	// when no declaration is known.
	ResolveType(name string, from *tree.Node) (*tree.Node, error)
	// IsLibrary reports whether class was declared outside the analyzed sources.
	IsLibrary(class *tree.Node) bool
}

// Index is a TypeResolver over a fixed set of units. It is read-only after
// construction and safe for concurrent use.
type Index struct {
	byName  map[string][]*tree.Node
	unitOf  map[*tree.Node]*tree.Unit
	library map[*tree.Node]bool
}

var _ TypeResolver = (*Index)(nil)

// NewIndex indexes every class-like declaration of the given units.
func NewIndex(units ...*tree.Unit) *Index {
	ix := &Index{
		byName:  make(map[string][]*tree.Node),
		unitOf:  make(map[*tree.Node]*tree.Unit),
		library: make(map[*tree.Node]bool),
	}
	for _, u := range units {
		ix.add(u)
	}
	return ix
}

func (ix *Index) add(u *tree.Unit) {
	if u == nil || u.Root == nil {
		return
	}
	tree.Inspect(u.Root, func(n *tree.Node) bool {
		if n.Kind.IsClassLike() && n.Kind != tree.KindAnonymousClass && n.Name != "" {
			ix.byName[n.Name] = append(ix.byName[n.Name], n)
			ix.unitOf[n] = u
			if u.Library {
				ix.library[n] = true
			}
		}
		return true
	})
}

// Len returns the number of indexed declarations.
func (ix *Index) Len() int { return len(ix.unitOf) }

// ResolveType implements TypeResolver. Among several declarations sharing a
// simple name it prefers one nested in from's enclosing classes, then one in
// from's unit, then source over library declarations.
func (ix *Index) ResolveType(name string, from *tree.Node) (*tree.Node, error) {
	simple := SimpleName(name)
	candidates := ix.byName[simple]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("type %q: %w", name, ErrUnresolvedSymbol)
	}
	if len(candidates) == 1 || from == nil {
		return candidates[0], nil
	}

	for outer := from.EnclosingClass(); outer != nil; outer = outer.EnclosingClass() {
		for _, c := range candidates {
			if c.Parent() == outer {
				return c, nil
			}
		}
	}

	root := from
	for root.Parent() != nil {
		root = root.Parent()
	}
	for _, c := range candidates {
		if u := ix.unitOf[c]; u != nil && u.Root == root {
			return c, nil
		}
	}
	for _, c := range candidates {
		if !ix.library[c] {
			return c, nil
		}
	}
	return candidates[0], nil
}

// IsLibrary implements TypeResolver.
func (ix *Index) IsLibrary(class *tree.Node) bool {
	return ix.library[class]
}
