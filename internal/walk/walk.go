// Package walk is the visitor dispatch engine: it drives a Visitor over a
// tree in pre-order and lets the visitor prune subtrees per node.
package walk

import (
	"context"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// Action tells the walker what to do after visiting a node.
type Action uint8

const (
	// Continue visits the node's children in source order.
	Continue Action = iota
	// Prune skips the node's subtree.
	Prune
)

// Visitor is called once per node, before the node's children.
type Visitor interface {
	Visit(n *tree.Node) Action
}

// Leaver is an optional Visitor extension called after the children of a node
// whose Visit returned Continue.
type Leaver interface {
	Leave(n *tree.Node)
}

// Walk drives v over the subtree rooted at root. Visitors may call Walk again
// with a different visitor over a subtree they are visiting.
func Walk(v Visitor, root *tree.Node) {
	_ = walk(nil, v, root)
}

// WalkContext is Walk with a cooperative cancellation check at every class,
// method and constructor boundary. On cancellation it stops and returns the
// context error; whatever the visitor reported so far refers to nodes already
// visited.
func WalkContext(ctx context.Context, v Visitor, root *tree.Node) error {
	return walk(ctx, v, root)
}

func walk(ctx context.Context, v Visitor, n *tree.Node) error {
	if n == nil {
		return nil
	}
	if ctx != nil && (n.Kind.IsClassLike() || n.Kind.IsCallable()) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if v.Visit(n) == Prune {
		return nil
	}
	for _, c := range n.Children() {
		if err := walk(ctx, v, c); err != nil {
			return err
		}
	}
	if l, ok := v.(Leaver); ok {
		l.Leave(n)
	}
	return nil
}

// Funcs is a Visitor that dispatches on node kind. Kinds without an entry
// default to Continue.
type Funcs map[tree.Kind]func(*tree.Node) Action

// Visit implements Visitor.
func (f Funcs) Visit(n *tree.Node) Action {
	if fn, ok := f[n.Kind]; ok && fn != nil {
		return fn(n)
	}
	return Continue
}

// Stack is a Visitor that runs Funcs and also calls per-kind leave handlers,
// for visitors that keep scoped state.
type Stack struct {
	Enter Funcs
	Exit  map[tree.Kind]func(*tree.Node)
}

// Visit implements Visitor.
func (s *Stack) Visit(n *tree.Node) Action {
	return s.Enter.Visit(n)
}

// Leave implements Leaver.
func (s *Stack) Leave(n *tree.Node) {
	if fn, ok := s.Exit[n.Kind]; ok && fn != nil {
		fn(n)
	}
}

// Collect returns every node of the subtree, in pre-order, for which match
// returns true. Matching does not stop descent.
func Collect(root *tree.Node, match func(*tree.Node) bool) []*tree.Node {
	var out []*tree.Node
	tree.Inspect(root, func(n *tree.Node) bool {
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
