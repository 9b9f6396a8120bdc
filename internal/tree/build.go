package tree

// New creates a detached node.
func New(kind Kind, name string) *Node {
	return &Node{Kind: kind, Name: name}
}

// Append attaches children to n in order and returns n. A child that already
// has a parent is a programming error.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil {
			panic("tree: node " + c.String() + " already has a parent")
		}
		c.parent = n
		c.index = len(n.children)
		n.children = append(n.children, c)
	}
	return n
}

// WithModifiers adds modifiers to n and returns n.
func (n *Node) WithModifiers(m Modifier) *Node {
	n.Modifiers |= m
	return n
}

// WithType sets the declared type and returns n.
func (n *Node) WithType(t string) *Node {
	n.Type = t
	return n
}

// WithSupertypes sets the extends/implements list and returns n.
func (n *Node) WithSupertypes(names ...string) *Node {
	n.Supertypes = names
	return n
}

// WithTypeParams sets the type parameter list and returns n.
func (n *Node) WithTypeParams(params ...string) *Node {
	n.TypeParams = params
	return n
}

// WithParams sets the parameter type list and returns n.
func (n *Node) WithParams(types ...string) *Node {
	n.Params = types
	return n
}

// WithQualifier sets the access receiver and returns n.
func (n *Node) WithQualifier(q string) *Node {
	n.Qualifier = q
	return n
}

// WithSpan sets the source range and returns n.
func (n *Node) WithSpan(s Span) *Node {
	n.Span = s
	return n
}

// WithText sets the source text and returns n.
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

// Inspect calls fn for every node of the subtree in pre-order. Returning
// false from fn skips that node's children.
func Inspect(root *Node, fn func(*Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	for _, c := range root.children {
		Inspect(c, fn)
	}
}

// Number assigns synthetic, strictly increasing positions to every node in
// pre-order, one line per node. Hand-built trees use it to get a
// deterministic source order.
func Number(root *Node) {
	line := 0
	var visit func(n *Node)
	visit = func(n *Node) {
		line++
		n.Span.Start = Position{Offset: line, Line: line}
		for _, c := range n.children {
			visit(c)
		}
		n.Span.End = Position{Offset: line, Line: line}
	}
	visit(root)
}

// Unit is one analyzed compilation unit.
type Unit struct {
	Path string
	Root *Node
	// Digest identifies the unit's content; hosts use it for cache keys.
	Digest string
	// Library marks units that only provide types for resolution.
	Library bool
	// HasErrors is set when the parser recovered from syntax errors.
	HasErrors bool
}
