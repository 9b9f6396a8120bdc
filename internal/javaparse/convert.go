package javaparse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// builder converts one tree-sitter Java tree. Declarations map to their own
// kinds; statements and expressions keep their source text; names read in
// expression position become Access nodes.
type builder struct {
	src []byte
}

// Node types that never carry anything the inspections look at.
var skipped = map[string]bool{
	"modifiers":              true,
	"marker_annotation":      true,
	"annotation":             true,
	"line_comment":           true,
	"block_comment":          true,
	"type_identifier":        true,
	"scoped_type_identifier": true,
	"generic_type":           true,
	"array_type":             true,
	"integral_type":          true,
	"floating_point_type":    true,
	"boolean_type":           true,
	"void_type":              true,
	"type_arguments":         true,
	"type_parameters":        true,
	"dimensions":             true,
	"package_declaration":    true,
	"import_declaration":     true,
	"module_declaration":     true,
}

// Node types whose children are spliced into the parent.
var transparent = map[string]bool{
	"argument_list":                true,
	"parenthesized_expression":     true,
	"switch_block":                 true,
	"switch_block_statement_group": true,
	"resource_specification":       true,
	"class_body":                   true,
	"interface_body":               true,
	"enum_body":                    true,
	"enum_body_declarations":       true,
	"annotation_type_body":         true,
}

var classKinds = map[string]tree.Kind{
	"class_declaration":           tree.KindClass,
	"record_declaration":          tree.KindClass,
	"interface_declaration":       tree.KindInterface,
	"enum_declaration":            tree.KindEnum,
	"annotation_type_declaration": tree.KindAnnotationType,
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func span(n *sitter.Node) tree.Span {
	sp, ep := n.StartPoint(), n.EndPoint()
	return tree.Span{
		Start: tree.Position{Offset: int(n.StartByte()), Line: int(sp.Row) + 1, Column: int(sp.Column)},
		End:   tree.Position{Offset: int(n.EndByte()), Line: int(ep.Row) + 1, Column: int(ep.Column)},
	}
}

func (b *builder) unit(root *sitter.Node, path string) *tree.Node {
	u := tree.New(tree.KindUnit, path).WithSpan(span(root))
	u.Append(b.children(root, u)...)
	return u
}

// children converts every named child of n.
func (b *builder) children(n *sitter.Node, owner *tree.Node) []*tree.Node {
	var out []*tree.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, b.convert(n.NamedChild(i), owner)...)
	}
	return out
}

// convert maps one tree-sitter node to zero or more tree nodes. owner is the
// nearest class-like node, used for implicit modifiers.
func (b *builder) convert(n *sitter.Node, owner *tree.Node) []*tree.Node {
	if n == nil || skipped[n.Type()] {
		return nil
	}
	if transparent[n.Type()] {
		return b.children(n, owner)
	}
	if k, ok := classKinds[n.Type()]; ok {
		return []*tree.Node{b.class(n, k)}
	}

	switch n.Type() {
	case "method_declaration", "annotation_type_element_declaration":
		return []*tree.Node{b.method(n, owner)}
	case "constructor_declaration", "compact_constructor_declaration":
		return []*tree.Node{b.constructor(n, owner)}
	case "field_declaration", "constant_declaration":
		return b.fields(n, owner)
	case "enum_constant":
		return []*tree.Node{b.enumConstant(n, owner)}
	case "local_variable_declaration":
		return b.variables(n, owner)
	case "block", "constructor_body", "static_initializer":
		return []*tree.Node{b.block(n, owner)}
	case "synchronized_statement":
		return []*tree.Node{b.synchronized(n, owner)}
	case "enhanced_for_statement":
		return []*tree.Node{b.forEach(n, owner)}
	case "lambda_expression":
		return []*tree.Node{b.lambda(n, owner)}
	case "object_creation_expression":
		return []*tree.Node{b.creation(n, owner)}
	case "catch_clause":
		return []*tree.Node{b.catch(n, owner)}
	case "resource":
		return []*tree.Node{b.resource(n, owner)}
	case "identifier":
		return []*tree.Node{b.access(n)}
	case "field_access":
		return []*tree.Node{b.fieldAccess(n, owner)}
	case "method_invocation":
		return []*tree.Node{b.invocation(n, owner)}
	case "method_reference":
		return []*tree.Node{b.expression(n, owner, n.NamedChild(0))}
	case "instanceof_expression":
		return []*tree.Node{b.instanceOf(n, owner)}
	case "break_statement", "continue_statement":
		return []*tree.Node{b.statement(n, owner, nil)}
	case "labeled_statement":
		return []*tree.Node{b.statement(n, owner, b.namedAfter(n, 1))}
	case "this", "super":
		return nil
	}

	if strings.HasSuffix(n.Type(), "_statement") || n.Type() == "switch_label" {
		return []*tree.Node{b.statement(n, owner, b.namedAfter(n, 0))}
	}
	if n.NamedChildCount() == 0 {
		// Literals and keywords.
		return nil
	}
	return []*tree.Node{b.expression(n, owner, b.namedAfter(n, 0)...)}
}

// single converts n to exactly one node, wrapping when needed.
func (b *builder) single(n *sitter.Node, owner *tree.Node) *tree.Node {
	if n == nil {
		return nil
	}
	nodes := b.convert(n, owner)
	if len(nodes) == 1 && nodes[0].Parent() == nil {
		return nodes[0]
	}
	e := tree.New(tree.KindExpression, "").WithSpan(span(n)).WithText(b.text(n))
	return e.Append(nodes...)
}

func (b *builder) namedAfter(n *sitter.Node, from int) []*sitter.Node {
	var out []*sitter.Node
	for i := from; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

func (b *builder) statement(n *sitter.Node, owner *tree.Node, parts []*sitter.Node) *tree.Node {
	s := tree.New(tree.KindStatement, "").WithSpan(span(n)).WithText(b.text(n))
	for _, p := range parts {
		s.Append(b.convert(p, owner)...)
	}
	return s
}

func (b *builder) expression(n *sitter.Node, owner *tree.Node, parts ...*sitter.Node) *tree.Node {
	e := tree.New(tree.KindExpression, "").WithSpan(span(n)).WithText(b.text(n))
	for _, p := range parts {
		e.Append(b.convert(p, owner)...)
	}
	return e
}

func (b *builder) modifiers(n *sitter.Node) tree.Modifier {
	var m tree.Modifier
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(c.ChildCount()); j++ {
			if mod, ok := tree.ParseModifier(c.Child(j).Type()); ok {
				m |= mod
			}
		}
	}
	return m
}

func (b *builder) class(n *sitter.Node, kind tree.Kind) *tree.Node {
	name := b.text(n.ChildByFieldName("name"))
	c := tree.New(kind, name).
		WithModifiers(b.modifiers(n)).
		WithSpan(span(n))
	if kind == tree.KindInterface || kind == tree.KindAnnotationType {
		c.WithModifiers(tree.ModAbstract)
	}
	c.WithSupertypes(b.supertypes(n)...).WithTypeParams(b.typeParams(n)...)
	if body := n.ChildByFieldName("body"); body != nil {
		c.Append(b.children(body, c)...)
	}
	return c
}

func (b *builder) supertypes(n *sitter.Node) []string {
	var out []string
	if sc := n.ChildByFieldName("superclass"); sc != nil {
		out = append(out, b.typeNames(sc)...)
	}
	if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
		out = append(out, b.typeNames(ifs)...)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "extends_interfaces" {
			out = append(out, b.typeNames(c)...)
		}
	}
	return out
}

// typeNames returns the type texts under a superclass, super_interfaces or
// extends_interfaces clause.
func (b *builder) typeNames(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "type_list" {
			out = append(out, b.typeNames(c)...)
			continue
		}
		out = append(out, b.text(c))
	}
	return out
}

// typeParams returns the type parameters declared by a class or method
// declaration, as written.
func (b *builder) typeParams(n *sitter.Node) []string {
	tp := n.ChildByFieldName("type_parameters")
	if tp == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(tp.NamedChildCount()); i++ {
		if c := tp.NamedChild(i); c.Type() == "type_parameter" {
			out = append(out, b.text(c))
		}
	}
	return out
}

func (b *builder) method(n *sitter.Node, owner *tree.Node) *tree.Node {
	m := tree.New(tree.KindMethod, b.text(n.ChildByFieldName("name"))).
		WithModifiers(b.modifiers(n)).
		WithType(b.text(n.ChildByFieldName("type")) + b.text(n.ChildByFieldName("dimensions"))).
		WithTypeParams(b.typeParams(n)...).
		WithSpan(span(n))
	body := n.ChildByFieldName("body")
	if owner != nil && (owner.Kind == tree.KindInterface || owner.Kind == tree.KindAnnotationType) {
		m.WithModifiers(tree.ModPublic)
		if body == nil && !m.Has(tree.ModDefault) && !m.Has(tree.ModStatic) && !m.Has(tree.ModPrivate) {
			m.WithModifiers(tree.ModAbstract)
		}
	}
	params := b.parameters(n.ChildByFieldName("parameters"))
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	m.WithParams(types...).Append(params...)
	if body != nil {
		m.Append(b.block(body, owner))
	}
	return m
}

func (b *builder) constructor(n *sitter.Node, owner *tree.Node) *tree.Node {
	c := tree.New(tree.KindConstructor, b.text(n.ChildByFieldName("name"))).
		WithModifiers(b.modifiers(n)).
		WithSpan(span(n))
	params := b.parameters(n.ChildByFieldName("parameters"))
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	c.WithParams(types...).Append(params...)
	if body := n.ChildByFieldName("body"); body != nil {
		c.Append(b.block(body, owner))
	}
	return c
}

// parameters converts a formal_parameters list. Receiver parameters are
// dropped.
func (b *builder) parameters(n *sitter.Node) []*tree.Node {
	if n == nil {
		return nil
	}
	var out []*tree.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "formal_parameter":
			typ := b.text(c.ChildByFieldName("type")) + b.text(c.ChildByFieldName("dimensions"))
			out = append(out, tree.New(tree.KindParameter, b.text(c.ChildByFieldName("name"))).
				WithType(typ).
				WithModifiers(b.modifiers(c)).
				WithSpan(span(c)))
		case "spread_parameter":
			var typ, name string
			for j := 0; j < int(c.NamedChildCount()); j++ {
				switch g := c.NamedChild(j); g.Type() {
				case "variable_declarator":
					name = b.text(g.ChildByFieldName("name"))
				case "modifiers", "marker_annotation", "annotation":
				default:
					if typ == "" {
						typ = b.text(g)
					}
				}
			}
			out = append(out, tree.New(tree.KindParameter, name).
				WithType(typ+"...").
				WithModifiers(b.modifiers(c)).
				WithSpan(span(c)))
		case "identifier":
			// Inferred lambda parameter.
			out = append(out, tree.New(tree.KindParameter, b.text(c)).WithSpan(span(c)))
		}
	}
	return out
}

func (b *builder) fields(n *sitter.Node, owner *tree.Node) []*tree.Node {
	mods := b.modifiers(n)
	if owner != nil && (owner.Kind == tree.KindInterface || owner.Kind == tree.KindAnnotationType) {
		mods |= tree.ModPublic | tree.ModStatic | tree.ModFinal
	}
	return b.declarators(n, owner, tree.KindField, mods)
}

func (b *builder) variables(n *sitter.Node, owner *tree.Node) []*tree.Node {
	return b.declarators(n, owner, tree.KindVariable, b.modifiers(n))
}

// declarators produces one node per variable_declarator of a field or local
// declaration. The initializer becomes the node's children.
func (b *builder) declarators(n *sitter.Node, owner *tree.Node, kind tree.Kind, mods tree.Modifier) []*tree.Node {
	typ := b.text(n.ChildByFieldName("type"))
	var out []*tree.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		v := tree.New(kind, b.text(d.ChildByFieldName("name"))).
			WithType(typ + b.text(d.ChildByFieldName("dimensions"))).
			WithModifiers(mods).
			WithSpan(span(d))
		if kind == tree.KindVariable {
			v.WithText(b.text(n))
		}
		if val := d.ChildByFieldName("value"); val != nil {
			v.Append(b.convert(val, owner)...)
		}
		out = append(out, v)
	}
	return out
}

func (b *builder) enumConstant(n *sitter.Node, owner *tree.Node) *tree.Node {
	f := tree.New(tree.KindField, b.text(n.ChildByFieldName("name"))).
		WithModifiers(tree.ModPublic | tree.ModStatic | tree.ModFinal).
		WithSpan(span(n))
	if owner != nil {
		f.WithType(owner.Name)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		f.Append(b.children(args, owner)...)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		anon := tree.New(tree.KindAnonymousClass, "").WithSpan(span(body))
		if owner != nil {
			anon.WithType(owner.Name).WithSupertypes(owner.Name)
		}
		anon.Append(b.children(body, anon)...)
		f.Append(anon)
	}
	return f
}

func (b *builder) block(n *sitter.Node, owner *tree.Node) *tree.Node {
	blk := tree.New(tree.KindBlock, "").WithSpan(span(n)).WithText(b.text(n))
	if n.Type() == "static_initializer" {
		blk.WithModifiers(tree.ModStatic)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() == "block" {
				blk.Append(b.children(c, owner)...)
			}
		}
		return blk
	}
	return blk.Append(b.children(n, owner)...)
}

func (b *builder) synchronized(n *sitter.Node, owner *tree.Node) *tree.Node {
	s := tree.New(tree.KindSynchronizedBlock, "").WithSpan(span(n)).WithText(b.text(n))
	var body *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "block" {
			body = c
			continue
		}
		s.Append(b.single(c, owner))
	}
	if body == nil {
		body = n.ChildByFieldName("body")
	}
	if body != nil {
		s.Append(b.block(body, owner))
	}
	return s
}

func (b *builder) forEach(n *sitter.Node, owner *tree.Node) *tree.Node {
	name := b.text(n.ChildByFieldName("name"))
	typ := b.text(n.ChildByFieldName("type")) + b.text(n.ChildByFieldName("dimensions"))
	loop := tree.New(tree.KindForEach, name).
		WithType(typ).
		WithSpan(span(n)).
		WithText(b.text(n))
	loop.Append(tree.New(tree.KindParameter, name).
		WithType(typ).
		WithModifiers(b.modifiers(n)).
		WithSpan(span(n.ChildByFieldName("name"))))
	if v := b.single(n.ChildByFieldName("value"), owner); v != nil {
		loop.Append(v)
	}
	if body := b.single(n.ChildByFieldName("body"), owner); body != nil {
		loop.Append(body)
	}
	return loop
}

func (b *builder) lambda(n *sitter.Node, owner *tree.Node) *tree.Node {
	l := tree.New(tree.KindLambda, "").WithSpan(span(n)).WithText(b.text(n))
	if ps := n.ChildByFieldName("parameters"); ps != nil {
		if ps.Type() == "identifier" {
			l.Append(tree.New(tree.KindParameter, b.text(ps)).WithSpan(span(ps)))
		} else {
			l.Append(b.parameters(ps)...)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		l.Append(b.single(body, owner))
	}
	return l
}

// creation converts "new T(...)" and, when a class body follows, the
// anonymous class it declares.
func (b *builder) creation(n *sitter.Node, owner *tree.Node) *tree.Node {
	e := tree.New(tree.KindExpression, "").WithSpan(span(n)).WithText(b.text(n))
	typ := b.text(n.ChildByFieldName("type"))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "argument_list":
			e.Append(b.children(c, owner)...)
		case "class_body":
			anon := tree.New(tree.KindAnonymousClass, "").
				WithType(typ).
				WithSupertypes(typ).
				WithSpan(span(c))
			anon.Append(b.children(c, anon)...)
			e.Append(anon)
		case "type_identifier", "generic_type", "scoped_type_identifier", "type_arguments":
		default:
			// Qualified creation: outer.new Inner().
			e.Append(b.convert(c, owner)...)
		}
	}
	return e
}

func (b *builder) catch(n *sitter.Node, owner *tree.Node) *tree.Node {
	s := tree.New(tree.KindStatement, "").WithSpan(span(n)).WithText(b.text(n))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "catch_formal_parameter":
			var typ string
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if g := c.NamedChild(j); g.Type() == "catch_type" {
					typ = b.text(g)
				}
			}
			s.Append(tree.New(tree.KindParameter, b.text(c.ChildByFieldName("name"))).
				WithType(typ).
				WithModifiers(b.modifiers(c)).
				WithSpan(span(c)))
		default:
			s.Append(b.convert(c, owner)...)
		}
	}
	return s
}

func (b *builder) resource(n *sitter.Node, owner *tree.Node) *tree.Node {
	name := n.ChildByFieldName("name")
	if name == nil {
		return b.single(n.NamedChild(0), owner)
	}
	v := tree.New(tree.KindVariable, b.text(name)).
		WithType(b.text(n.ChildByFieldName("type"))).
		WithModifiers(b.modifiers(n)).
		WithSpan(span(n)).
		WithText(b.text(n))
	if val := n.ChildByFieldName("value"); val != nil {
		v.Append(b.convert(val, owner)...)
	}
	return v
}

func (b *builder) access(n *sitter.Node) *tree.Node {
	return tree.New(tree.KindAccess, b.text(n)).
		WithSpan(span(n)).
		WithText(b.text(n))
}

// fieldAccess converts "obj.f". The receiver is converted too when it may
// itself read a field.
func (b *builder) fieldAccess(n *sitter.Node, owner *tree.Node) *tree.Node {
	obj := n.ChildByFieldName("object")
	field := n.ChildByFieldName("field")
	if field != nil && field.Type() == "this" {
		// "Outer.this" names an instance, not a field.
		return tree.New(tree.KindExpression, "").WithSpan(span(n)).WithText(b.text(n))
	}
	q := strings.Join(strings.Fields(b.text(obj)), "")
	a := tree.New(tree.KindAccess, b.text(field)).
		WithQualifier(q).
		WithSpan(span(n)).
		WithText(b.text(n))
	if obj != nil && obj.Type() != "this" && obj.Type() != "super" && !strings.HasSuffix(q, ".this") {
		a.Append(b.convert(obj, owner)...)
	}
	return a
}

// invocation converts a method call. The method name is not a field read;
// the receiver and arguments may be.
func (b *builder) invocation(n *sitter.Node, owner *tree.Node) *tree.Node {
	e := tree.New(tree.KindExpression, "").WithSpan(span(n)).WithText(b.text(n))
	if obj := n.ChildByFieldName("object"); obj != nil {
		e.Append(b.convert(obj, owner)...)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		e.Append(b.children(args, owner)...)
	}
	return e
}

func (b *builder) instanceOf(n *sitter.Node, owner *tree.Node) *tree.Node {
	e := tree.New(tree.KindExpression, "").WithSpan(span(n)).WithText(b.text(n))
	e.Append(b.convert(n.ChildByFieldName("left"), owner)...)
	if name := n.ChildByFieldName("name"); name != nil {
		e.Append(tree.New(tree.KindVariable, b.text(name)).
			WithType(b.text(n.ChildByFieldName("right"))).
			WithSpan(span(name)))
	}
	return e
}
