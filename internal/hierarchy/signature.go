package hierarchy

import (
	"strings"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// Signature identifies a method for override purposes: its name and erased
// parameter types. Return types do not participate.
type Signature struct {
	Name   string
	Params []string
}

// SignatureOf returns the signature of a method or constructor node. The
// method's own type variables erase to their bounds; type variables of the
// declaring class are kept by name.
func SignatureOf(m *tree.Node) Signature {
	return signatureIn(m, nil)
}

// signatureIn is SignatureOf with the declaring class's type variables
// replaced according to subst.
func signatureIn(m *tree.Node, subst map[string]string) Signature {
	own := typeVarBounds(m.TypeParams)
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = substitute(Erase(p), own, subst)
	}
	return Signature{Name: m.Name, Params: params}
}

// substitute rewrites an erased type whose base is a type variable found in
// one of the maps, keeping array dimensions.
func substitute(erased string, maps ...map[string]string) string {
	base, dims := erased, ""
	if i := strings.IndexByte(erased, '['); i >= 0 {
		base, dims = erased[:i], erased[i:]
	}
	for _, m := range maps {
		if t, ok := m[base]; ok {
			return t + dims
		}
	}
	return erased
}

// typeVarBounds maps each declared type parameter to the erasure of its
// first bound, or Object when unbounded.
func typeVarBounds(params []string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for _, p := range params {
		name, bound := splitTypeParam(p)
		out[name] = bound
	}
	return out
}

// splitTypeParam splits "T extends A<T> & B" into "T" and "A".
func splitTypeParam(p string) (name, bound string) {
	fields := strings.Fields(p)
	// Leading annotations.
	for len(fields) > 0 && strings.HasPrefix(fields[0], "@") {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return "", "Object"
	}
	name = fields[0]
	if len(fields) >= 3 && fields[1] == "extends" {
		first := strings.Join(fields[2:], " ")
		if i := topLevelIndex(first, '&'); i >= 0 {
			first = first[:i]
		}
		return name, Erase(first)
	}
	return name, "Object"
}

// TypeArgs returns the top-level type arguments of a generic type name:
// "Map<K, List<V>>" yields ["K", "List<V>"]. Raw and non-generic names
// yield nil.
func TypeArgs(t string) []string {
	open := strings.IndexByte(t, '<')
	if open < 0 {
		return nil
	}
	var args []string
	depth, start := 0, open+1
	for i := open; i < len(t); i++ {
		switch t[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				if a := strings.TrimSpace(t[start:i]); a != "" {
					args = append(args, a)
				}
				return args
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(t[start:i]))
				start = i + 1
			}
		}
	}
	return args
}

func topLevelIndex(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Key returns a comparable rendering such as "put(Object,Object)".
func (s Signature) Key() string {
	return s.Name + "(" + strings.Join(s.Params, ",") + ")"
}

func (s Signature) String() string { return s.Key() }

// Erase strips generic arguments and package qualifiers from a type name and
// rewrites varargs as arrays: "java.util.Map<K, List<V>>..." becomes "Map[]".
func Erase(t string) string {
	t = strings.TrimSpace(t)
	var b strings.Builder
	depth := 0
	for _, r := range t {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0 && r != ' ' && r != '\t' && r != '\n':
			b.WriteRune(r)
		}
	}
	erased := b.String()
	if strings.HasSuffix(erased, "...") {
		erased = strings.TrimSuffix(erased, "...") + "[]"
	}
	dims := ""
	if i := strings.Index(erased, "["); i >= 0 {
		dims = erased[i:]
		erased = erased[:i]
	}
	return SimpleName(erased) + dims
}

// SimpleName returns the last dotted segment of a possibly qualified,
// possibly generic type name.
func SimpleName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
