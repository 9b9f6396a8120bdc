package inspect

import (
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// SyncAccessName is the registry key of the mixed-synchronization check.
const SyncAccessName = "field-accessed-synchronized-and-unsynchronized"

// SyncAccess reports fields of a class that its own code reads or writes both
// with and without holding a monitor. Final fields are exempt.
func SyncAccess() *Inspection {
	return &Inspection{
		Name:        SyncAccessName,
		DisplayName: "Field accessed in both synchronized and unsynchronized contexts",
		Group:       GroupThreading,
		Description: "Reports non-final fields accessed both inside and outside synchronized code of their declaring class.",
		Severity:    diag.SevWarning,
		Scope:       ScopeClass,
		NewVisitor: func(env Env, _ Options, report *diag.Collector) (walk.Visitor, error) {
			return &syncAccessVisitor{env: env, report: report}, nil
		},
	}
}

type syncAccessVisitor struct {
	env    Env
	report *diag.Collector
}

func (v *syncAccessVisitor) Visit(class *tree.Node) walk.Action {
	if !class.Kind.IsClassLike() {
		return walk.Continue
	}
	rec := newAccessRecorder(v.env.Hierarchy, class)
	walk.Walk(rec, class)

	for _, field := range class.ChildrenOf(tree.KindField) {
		if field.Has(tree.ModFinal) {
			continue
		}
		u, ok := rec.usage[field]
		if !ok || !u.mixed() {
			continue
		}
		v.report.Report(field, "Field '#ref' is accessed in both synchronized and unsynchronized contexts #loc").
			WithSecondary(u.firstUnsynced, u.firstSynced).
			Emit()
	}
	return walk.Prune
}
