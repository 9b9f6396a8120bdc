package tree

import (
	"errors"
	"fmt"
)

// ErrMalformedTree reports a node whose links or kind contradict its position
// in the tree.
var ErrMalformedTree = errors.New("malformed tree")

// Validate checks the parent/child invariant and basic kind placement for the
// subtree rooted at root. It returns the first violation found.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrMalformedTree)
	}
	if root.parent != nil {
		return fmt.Errorf("%w: root %s has a parent", ErrMalformedTree, root)
	}
	seen := make(map[*Node]bool)
	var check func(n *Node) error
	check = func(n *Node) error {
		if seen[n] {
			return fmt.Errorf("%w: %s reached twice", ErrMalformedTree, n)
		}
		seen[n] = true
		for i, c := range n.children {
			if c == nil {
				return fmt.Errorf("%w: nil child %d of %s", ErrMalformedTree, i, n)
			}
			if c.parent != n || c.index != i {
				return fmt.Errorf("%w: %s is not linked back to %s", ErrMalformedTree, c, n)
			}
			if err := checkPlacement(c); err != nil {
				return err
			}
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root)
}

func checkPlacement(n *Node) error {
	switch n.Kind {
	case KindField:
		if n.parent == nil || !n.parent.Kind.IsClassLike() {
			return fmt.Errorf("%w: field %s outside a class body", ErrMalformedTree, n)
		}
	case KindMethod, KindConstructor:
		if n.parent == nil || !n.parent.Kind.IsClassLike() {
			return fmt.Errorf("%w: %s outside a class body", ErrMalformedTree, n)
		}
	case KindAccess, KindClass, KindInterface, KindEnum, KindAnnotationType:
		if n.Name == "" {
			return fmt.Errorf("%w: %s without a name", ErrMalformedTree, n)
		}
	}
	return nil
}
