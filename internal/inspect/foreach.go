package inspect

import (
	"fmt"
	"strings"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/hierarchy"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// ForEachName is the registry key of the enhanced-for check.
const ForEachName = "foreach-statement"

// ForEach reports enhanced for statements, for code that must stay source
// compatible with pre-1.5 compilers, and offers the indexed or iterator
// rewrite.
func ForEach() *Inspection {
	return &Inspection{
		Name:        ForEachName,
		DisplayName: "Extended 'for' statement",
		Group:       GroupLanguageLevel,
		Description: "Reports enhanced for statements and suggests an equivalent old-style loop.",
		Severity:    diag.SevNote,
		Scope:       ScopeUnit,
		NewVisitor: func(env Env, _ Options, report *diag.Collector) (walk.Visitor, error) {
			return walk.Funcs{
				tree.KindForEach: func(n *tree.Node) walk.Action {
					b := report.Report(n, "Extended 'for' statement #loc")
					if fix := oldStyleLoop(env.Hierarchy, n); fix != "" {
						b.WithFix(&diag.Fix{
							Name:        "Replace with old-style 'for' statement",
							Kind:        diag.FixReplace,
							Target:      n,
							Replacement: fix,
						})
					}
					b.Emit()
					return walk.Continue
				},
			}, nil
		},
	}
}

// oldStyleLoop renders the replacement loop, or "" when the statement lacks
// the parts needed to build one.
func oldStyleLoop(r *hierarchy.Resolver, loop *tree.Node) string {
	var value, body *tree.Node
	for _, c := range loop.Children() {
		if c.Kind == tree.KindParameter {
			continue
		}
		if value == nil {
			value = c
			continue
		}
		body = c
	}
	if value == nil || body == nil || loop.Name == "" {
		return ""
	}
	elemType := loop.Type
	if elemType == "" {
		elemType = "Object"
	}
	iterated := sourceOf(value)
	inner := blockContents(body)

	var sb strings.Builder
	if isArray(r, value) {
		fmt.Fprintf(&sb, "for (int i = 0; i < %s.length; i++) {\n", iterated)
		fmt.Fprintf(&sb, "    %s %s = %s[i];\n", elemType, loop.Name, iterated)
	} else {
		fmt.Fprintf(&sb, "for (java.util.Iterator<%s> it = %s.iterator(); it.hasNext(); ) {\n", boxed(elemType), iterated)
		fmt.Fprintf(&sb, "    %s %s = it.next();\n", elemType, loop.Name)
	}
	if inner != "" {
		for _, line := range strings.Split(inner, "\n") {
			sb.WriteString("    " + strings.TrimSpace(line) + "\n")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

func isArray(r *hierarchy.Resolver, value *tree.Node) bool {
	if value.Kind != tree.KindAccess {
		return false
	}
	v := r.ResolveVariable(value)
	return v != nil && strings.HasSuffix(hierarchy.Erase(v.Type), "[]")
}

func sourceOf(n *tree.Node) string {
	if n.Text != "" {
		return n.Text
	}
	return n.Name
}

func blockContents(body *tree.Node) string {
	text := strings.TrimSpace(sourceOf(body))
	if body.Kind == tree.KindBlock {
		text = strings.TrimPrefix(text, "{")
		text = strings.TrimSuffix(text, "}")
	}
	return strings.TrimSpace(text)
}

var primitives = map[string]string{
	"boolean": "Boolean",
	"byte":    "Byte",
	"char":    "Character",
	"short":   "Short",
	"int":     "Integer",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
}

// boxed returns the type usable as a type argument.
func boxed(t string) string {
	if b, ok := primitives[t]; ok {
		return b
	}
	return t
}
