package inspect

import (
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// AbstractClassName is the registry key of the abstract-class check.
const AbstractClassName = "abstract-class-without-abstract-methods"

// AbstractClass reports classes declared abstract that neither declare nor
// inherit an unimplemented abstract method.
func AbstractClass() *Inspection {
	return &Inspection{
		Name:        AbstractClassName,
		DisplayName: "Abstract class without abstract methods",
		Group:       GroupClassLayout,
		Description: "Reports abstract classes with no abstract methods left to implement.",
		Severity:    diag.SevWarning,
		Scope:       ScopeClass,
		NewVisitor: func(env Env, _ Options, report *diag.Collector) (walk.Visitor, error) {
			return walk.Funcs{
				tree.KindClass: func(n *tree.Node) walk.Action {
					if n.Has(tree.ModAbstract) && !hasAbstractMethods(env, n) {
						report.Report(n, "Class '#ref' is declared 'abstract', and has no 'abstract' methods #loc").Emit()
					}
					return walk.Prune
				},
				tree.KindInterface:      prune,
				tree.KindEnum:           prune,
				tree.KindAnnotationType: prune,
				tree.KindAnonymousClass: prune,
			}, nil
		},
	}
}

func prune(*tree.Node) walk.Action { return walk.Prune }

// hasAbstractMethods reports whether any method visible in class is abstract
// and not overridden by a method class declares itself.
func hasAbstractMethods(env Env, class *tree.Node) bool {
	overridden := make(map[*tree.Node]bool)
	for _, m := range class.ChildrenOf(tree.KindMethod) {
		for _, sm := range env.Hierarchy.OverriddenMethods(m) {
			overridden[sm] = true
		}
	}
	for _, m := range env.Hierarchy.AllMethods(class) {
		if m.Has(tree.ModAbstract) && !overridden[m] {
			return true
		}
	}
	return false
}
