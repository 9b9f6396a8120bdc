// Package tree defines the language-neutral syntax tree the inspection engine
// runs over. Trees are built once by a host parser and treated as frozen for
// the duration of an analysis.
package tree

import (
	"fmt"
	"strings"
)

// Kind tags a node with its syntactic role.
type Kind uint8

const (
	KindUnit Kind = iota
	KindClass
	KindInterface
	KindEnum
	KindAnnotationType
	KindAnonymousClass
	KindMethod
	KindConstructor
	KindField
	KindVariable
	KindParameter
	KindBlock
	KindSynchronizedBlock
	KindForEach
	KindLambda
	KindStatement
	KindExpression
	KindAccess
)

var kindNames = [...]string{
	KindUnit:              "unit",
	KindClass:             "class",
	KindInterface:         "interface",
	KindEnum:              "enum",
	KindAnnotationType:    "annotation-type",
	KindAnonymousClass:    "anonymous-class",
	KindMethod:            "method",
	KindConstructor:       "constructor",
	KindField:             "field",
	KindVariable:          "variable",
	KindParameter:         "parameter",
	KindBlock:             "block",
	KindSynchronizedBlock: "synchronized-block",
	KindForEach:           "foreach",
	KindLambda:            "lambda",
	KindStatement:         "statement",
	KindExpression:        "expression",
	KindAccess:            "access",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsClassLike reports whether k declares a type with its own member list.
func (k Kind) IsClassLike() bool {
	switch k {
	case KindClass, KindInterface, KindEnum, KindAnnotationType, KindAnonymousClass:
		return true
	}
	return false
}

// IsCallable reports whether k is a method or constructor.
func (k Kind) IsCallable() bool {
	return k == KindMethod || k == KindConstructor
}

// Modifier is a bit set of declared modifiers.
type Modifier uint16

const (
	ModPublic Modifier = 1 << iota
	ModProtected
	ModPrivate
	ModAbstract
	ModStatic
	ModFinal
	ModSynchronized
	ModDefault
	ModNative
	ModTransient
	ModVolatile
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModAbstract, "abstract"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModSynchronized, "synchronized"},
	{ModDefault, "default"},
	{ModNative, "native"},
	{ModTransient, "transient"},
	{ModVolatile, "volatile"},
}

// ParseModifier maps a source keyword to its Modifier. The second result is
// false for keywords that are not modifiers.
func ParseModifier(keyword string) (Modifier, bool) {
	for _, m := range modifierNames {
		if m.name == keyword {
			return m.mod, true
		}
	}
	return 0, false
}

// Has reports whether every bit of m2 is set in m.
func (m Modifier) Has(m2 Modifier) bool { return m&m2 == m2 }

func (m Modifier) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// Position is a point in a source file. Line is 1-based, Column is 0-based.
type Position struct {
	Offset int `json:"offset" msgpack:"offset"`
	Line   int `json:"line" msgpack:"line"`
	Column int `json:"column" msgpack:"column"`
}

// Span is the half-open source range covered by a node.
type Span struct {
	Start Position `json:"start" msgpack:"start"`
	End   Position `json:"end" msgpack:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Node is one element of a syntax tree.
type Node struct {
	Kind      Kind
	Name      string
	Type      string
	Modifiers Modifier
	Span      Span

	// Supertypes lists the extends/implements clauses of class-like nodes,
	// superclass first.
	Supertypes []string
	// TypeParams holds declared type parameters as written, e.g.
	// "T extends Comparable<T>", for generic classes and methods.
	TypeParams []string
	// Params holds the declared parameter types of methods and constructors.
	Params []string
	// Qualifier is the receiver written before an Access ("this", a type or
	// variable name); empty for bare names.
	Qualifier string
	// Text is the source text of statement and expression level nodes.
	Text string

	parent   *Node
	children []*Node
	index    int
}

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes in source order. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// NextSibling returns the node following n under the same parent.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index + 1)
}

// PrevSibling returns the node preceding n under the same parent.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index - 1)
}

// Has reports whether n declares modifier m.
func (n *Node) Has(m Modifier) bool { return n.Modifiers.Has(m) }

// ChildrenOf returns the direct children with kind k.
func (n *Node) ChildrenOf(k Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Body returns the first Block child, or nil for bodiless declarations.
func (n *Node) Body() *Node {
	for _, c := range n.children {
		if c.Kind == KindBlock {
			return c
		}
	}
	return nil
}

// Ancestor returns the nearest proper ancestor whose kind satisfies match.
func (n *Node) Ancestor(match func(Kind) bool) *Node {
	for p := n.parent; p != nil; p = p.parent {
		if match(p.Kind) {
			return p
		}
	}
	return nil
}

// EnclosingClass returns the nearest class-like ancestor.
func (n *Node) EnclosingClass() *Node {
	return n.Ancestor(Kind.IsClassLike)
}

// Contains reports whether other is n or lies in n's subtree.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Path returns the chain of enclosing names from the outermost class, joined
// with dots, e.g. "Outer.Inner.method".
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil; p = p.parent {
		if p.Name != "" && p.Kind != KindUnit {
			parts = append(parts, p.Name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func (n *Node) String() string {
	if n.Name == "" {
		return fmt.Sprintf("%s@%d:%d", n.Kind, n.Span.Start.Line, n.Span.Start.Column)
	}
	return fmt.Sprintf("%s %s@%d:%d", n.Kind, n.Name, n.Span.Start.Line, n.Span.Start.Column)
}
