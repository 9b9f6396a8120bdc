package inspect

import (
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// EmptyClassName is the registry key of the empty-class check.
const EmptyClassName = "empty-class"

// EmptyClass reports named classes that declare no constructors, methods or
// fields. Interfaces, enums, annotation types and anonymous classes are not
// considered.
func EmptyClass() *Inspection {
	return &Inspection{
		Name:        EmptyClassName,
		DisplayName: "Empty class",
		Group:       GroupClassLayout,
		Description: "Reports classes without constructors, methods or fields.",
		Severity:    diag.SevWarning,
		Scope:       ScopeUnit,
		NewVisitor: func(_ Env, _ Options, report *diag.Collector) (walk.Visitor, error) {
			return walk.Funcs{
				tree.KindClass: func(n *tree.Node) walk.Action {
					if isEmptyClass(n) {
						report.Report(n, "Class '#ref' is empty #loc").Emit()
					}
					return walk.Continue
				},
			}, nil
		},
	}
}

func isEmptyClass(n *tree.Node) bool {
	for _, c := range n.Children() {
		switch c.Kind {
		case tree.KindConstructor, tree.KindMethod, tree.KindField:
			return false
		}
	}
	return true
}
