package hierarchy

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// Resolver answers inheritance queries on top of a TypeResolver. Unresolved
// supertypes contribute nothing: queries return partial results rather than
// failing.
type Resolver struct {
	types  TypeResolver
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report unresolved symbols.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a Resolver backed by types.
func NewResolver(types TypeResolver, opts ...Option) *Resolver {
	r := &Resolver{types: types, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// supertypeRef is a resolved supertype and the clause text that named it,
// e.g. "Comparable<Money>".
type supertypeRef struct {
	class *tree.Node
	named string
}

func (r *Resolver) directSupertypes(class *tree.Node) []supertypeRef {
	if class == nil {
		return nil
	}
	var out []supertypeRef
	for _, name := range class.Supertypes {
		st, err := r.types.ResolveType(name, class)
		if err != nil {
			if errors.Is(err, ErrUnresolvedSymbol) {
				r.logger.Debug("supertype not resolved", "class", class.Path(), "supertype", name)
			} else {
				r.logger.Warn("supertype lookup failed", "class", class.Path(), "supertype", name, "err", err)
			}
			continue
		}
		if st == class {
			continue
		}
		out = append(out, supertypeRef{class: st, named: name})
	}
	return out
}

// Supertypes returns the resolved direct supertypes of class, superclass first.
func (r *Resolver) Supertypes(class *tree.Node) []*tree.Node {
	refs := r.directSupertypes(class)
	if len(refs) == 0 {
		return nil
	}
	out := make([]*tree.Node, len(refs))
	for i, ref := range refs {
		out[i] = ref.class
	}
	return out
}

// boundSupertype is a transitive supertype together with the types its type
// variables take as seen from the class the walk started at.
type boundSupertype struct {
	class *tree.Node
	subst map[string]string
}

// boundSupertypes walks supertypes breadth-first, each once, carrying type
// argument bindings down the chain. Inheritance cycles are cut.
func (r *Resolver) boundSupertypes(class *tree.Node) []boundSupertype {
	next := func(from boundSupertype) []boundSupertype {
		var out []boundSupertype
		for _, ref := range r.directSupertypes(from.class) {
			out = append(out, boundSupertype{class: ref.class, subst: bindTypeArgs(ref, from.subst)})
		}
		return out
	}
	seen := map[*tree.Node]bool{class: true}
	var out []boundSupertype
	queue := next(boundSupertype{class: class})
	for len(queue) > 0 {
		bs := queue[0]
		queue = queue[1:]
		if seen[bs.class] {
			continue
		}
		seen[bs.class] = true
		out = append(out, bs)
		queue = append(queue, next(bs)...)
	}
	return out
}

// bindTypeArgs maps the type variables of ref.class to the erased type
// arguments of the clause naming it, themselves rewritten through outer.
// Raw references and wildcards bind a variable to its bound.
func bindTypeArgs(ref supertypeRef, outer map[string]string) map[string]string {
	if len(ref.class.TypeParams) == 0 {
		return nil
	}
	args := TypeArgs(ref.named)
	subst := make(map[string]string, len(ref.class.TypeParams))
	for i, p := range ref.class.TypeParams {
		name, bound := splitTypeParam(p)
		if i >= len(args) || strings.HasPrefix(args[i], "?") {
			subst[name] = bound
			continue
		}
		subst[name] = substitute(Erase(args[i]), outer)
	}
	return subst
}

// AllSupertypes returns every transitively reachable supertype of class in
// breadth-first order, each once. Inheritance cycles are cut.
func (r *Resolver) AllSupertypes(class *tree.Node) []*tree.Node {
	bound := r.boundSupertypes(class)
	out := make([]*tree.Node, len(bound))
	for i, bs := range bound {
		out[i] = bs.class
	}
	return out
}

// DeclaredMethods returns the methods declared directly in class. Constructors
// are not methods.
func DeclaredMethods(class *tree.Node) []*tree.Node {
	if class == nil {
		return nil
	}
	return class.ChildrenOf(tree.KindMethod)
}

// OverriddenMethods returns every supertype method that method overrides:
// same name and erased parameter types once the supertype's type variables
// are replaced by the arguments the class supplies, neither side static, the
// super method not private.
func (r *Resolver) OverriddenMethods(method *tree.Node) []*tree.Node {
	if method == nil || method.Kind != tree.KindMethod {
		return nil
	}
	if method.Has(tree.ModStatic) || method.Has(tree.ModPrivate) {
		return nil
	}
	class := method.Parent()
	if class == nil || !class.Kind.IsClassLike() {
		return nil
	}
	key := SignatureOf(method).Key()
	var out []*tree.Node
	for _, bs := range r.boundSupertypes(class) {
		for _, sm := range DeclaredMethods(bs.class) {
			if sm.Has(tree.ModStatic) || sm.Has(tree.ModPrivate) {
				continue
			}
			if signatureIn(sm, bs.subst).Key() == key {
				out = append(out, sm)
			}
		}
	}
	return out
}

// AllMethods returns the declared methods of class followed by inherited ones
// that no earlier entry shadows. No two entries share a signature.
func (r *Resolver) AllMethods(class *tree.Node) []*tree.Node {
	seen := make(map[string]bool)
	var out []*tree.Node
	add := func(m *tree.Node, subst map[string]string) {
		key := signatureIn(m, subst).Key()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, m)
	}
	for _, m := range DeclaredMethods(class) {
		add(m, nil)
	}
	for _, bs := range r.boundSupertypes(class) {
		for _, m := range DeclaredMethods(bs.class) {
			if m.Has(tree.ModPrivate) {
				continue
			}
			if bs.class.Kind == tree.KindInterface && m.Has(tree.ModStatic) {
				continue
			}
			add(m, bs.subst)
		}
	}
	return out
}

// IsLibraryType reports whether class comes from outside the analyzed sources.
func (r *Resolver) IsLibraryType(class *tree.Node) bool {
	if class == nil {
		return false
	}
	return r.types.IsLibrary(class)
}

// OverridesLibraryMethod reports whether method overrides a method declared
// in a library type.
func (r *Resolver) OverridesLibraryMethod(method *tree.Node) bool {
	for _, sm := range r.OverriddenMethods(method) {
		if r.IsLibraryType(sm.Parent()) {
			return true
		}
	}
	return false
}

// FindField looks up a field by name in class and then in its supertypes.
func (r *Resolver) FindField(class *tree.Node, name string) *tree.Node {
	if class == nil {
		return nil
	}
	for _, f := range class.ChildrenOf(tree.KindField) {
		if f.Name == name {
			return f
		}
	}
	for _, st := range r.AllSupertypes(class) {
		for _, f := range st.ChildrenOf(tree.KindField) {
			if f.Name == name && !f.Has(tree.ModPrivate) {
				return f
			}
		}
	}
	return nil
}

// ResolveField resolves an access site to the field it reads or writes. The
// second result is false when the access names a local variable, a type, or
// nothing known.
func (r *Resolver) ResolveField(access *tree.Node) (*tree.Node, bool) {
	if access == nil || access.Kind != tree.KindAccess || access.Name == "" {
		return nil, false
	}
	var f *tree.Node
	switch q := access.Qualifier; {
	case q == "":
		if lookupLocal(access, access.Name) != nil {
			return nil, false
		}
		for class := access.EnclosingClass(); class != nil && f == nil; class = class.EnclosingClass() {
			f = r.FindField(class, access.Name)
		}
	case q == "this":
		f = r.FindField(access.EnclosingClass(), access.Name)
	case q == "super":
		for _, st := range r.Supertypes(access.EnclosingClass()) {
			if f = r.FindField(st, access.Name); f != nil {
				break
			}
		}
	case strings.HasSuffix(q, ".this"):
		if class, err := r.types.ResolveType(strings.TrimSuffix(q, ".this"), access); err == nil {
			f = r.FindField(class, access.Name)
		}
	default:
		f = r.resolveQualified(access, q)
	}
	return f, f != nil
}

// resolveQualified handles "v.x" where v is a variable with a declared type,
// and "Type.x" static references.
func (r *Resolver) resolveQualified(access *tree.Node, q string) *tree.Node {
	if !strings.Contains(q, ".") {
		if v := r.lookupVariable(access, q); v != nil {
			if v.Type == "" {
				return nil
			}
			class, err := r.types.ResolveType(v.Type, access)
			if err != nil {
				return nil
			}
			return r.FindField(class, access.Name)
		}
	}
	class, err := r.types.ResolveType(q, access)
	if err != nil {
		return nil
	}
	return r.FindField(class, access.Name)
}

// ResolveVariable resolves an unqualified access to the local variable,
// parameter or field it names, or nil.
func (r *Resolver) ResolveVariable(access *tree.Node) *tree.Node {
	if access == nil || access.Kind != tree.KindAccess {
		return nil
	}
	switch access.Qualifier {
	case "":
		return r.lookupVariable(access, access.Name)
	case "this":
		return r.FindField(access.EnclosingClass(), access.Name)
	}
	f, _ := r.ResolveField(access)
	return f
}

func (r *Resolver) lookupVariable(from *tree.Node, name string) *tree.Node {
	if v := lookupLocal(from, name); v != nil {
		return v
	}
	for class := from.EnclosingClass(); class != nil; class = class.EnclosingClass() {
		if f := r.FindField(class, name); f != nil {
			return f
		}
	}
	return nil
}

// lookupLocal finds a local variable or parameter named name that is in scope
// at from, stopping at the enclosing class boundary.
func lookupLocal(from *tree.Node, name string) *tree.Node {
	for n := from; n.Parent() != nil; n = n.Parent() {
		p := n.Parent()
		if p.Kind.IsClassLike() {
			return nil
		}
		for _, c := range p.Children() {
			if c == n {
				break
			}
			if (c.Kind == tree.KindVariable || c.Kind == tree.KindParameter) && c.Name == name {
				return c
			}
			if c.Kind == tree.KindExpression || c.Kind == tree.KindStatement {
				if v := patternBinding(c, name); v != nil {
					return v
				}
			}
		}
		for _, c := range p.ChildrenOf(tree.KindParameter) {
			if c.Name == name {
				return c
			}
		}
	}
	return nil
}

// patternBinding finds a pattern variable named name bound inside n, such as
// the "s" of "o instanceof String s" in an if condition. Blocks, lambdas and
// nested classes open their own scopes and are not searched.
func patternBinding(n *tree.Node, name string) *tree.Node {
	var found *tree.Node
	tree.Inspect(n, func(c *tree.Node) bool {
		if found != nil {
			return false
		}
		switch {
		case c.Kind == tree.KindBlock || c.Kind == tree.KindLambda || c.Kind.IsClassLike():
			return false
		case c.Kind == tree.KindVariable && c.Name == name && c.Parent() != nil && c.Parent().Kind == tree.KindExpression:
			found = c
			return false
		}
		return true
	})
	return found
}
