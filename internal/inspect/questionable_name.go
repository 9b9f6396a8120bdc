package inspect

import (
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// QuestionableNameName is the registry key of the questionable-name check.
const QuestionableNameName = "questionable-name"

var defaultQuestionableNames = []string{"foo", "bar", "baz"}

// QuestionableName reports classes, methods, fields, variables and parameters
// whose names appear on a configurable list of placeholder names.
func QuestionableName() *Inspection {
	return &Inspection{
		Name:        QuestionableNameName,
		DisplayName: "Questionable name",
		Group:       GroupNaming,
		Description: "Reports declarations named with placeholder names such as foo or bar.",
		Severity:    diag.SevWarning,
		Scope:       ScopeClass,
		Defaults:    Options{"names": defaultQuestionableNames},
		NewVisitor: func(_ Env, opts Options, report *diag.Collector) (walk.Visitor, error) {
			names, err := opts.Strings("names", defaultQuestionableNames)
			if err != nil {
				return nil, err
			}
			v := &questionableNameVisitor{report: report, names: make(map[string]bool, len(names))}
			for _, n := range names {
				v.names[n] = true
			}
			return v, nil
		},
	}
}

type questionableNameVisitor struct {
	report *diag.Collector
	names  map[string]bool
	root   *tree.Node
}

// Visit treats the first class-like node of a walk as the class under
// inspection and prunes any other; nested classes get their own walk.
func (v *questionableNameVisitor) Visit(n *tree.Node) walk.Action {
	if n.Kind.IsClassLike() {
		if v.root != nil {
			return walk.Prune
		}
		v.root = n
	}
	switch n.Kind {
	case tree.KindClass, tree.KindInterface, tree.KindEnum, tree.KindAnnotationType,
		tree.KindMethod, tree.KindField, tree.KindVariable, tree.KindParameter:
		if v.names[n.Name] {
			v.report.Report(n, "Questionable name '#ref' #loc").
				WithFix(&diag.Fix{Name: "Rename", Kind: diag.FixRename, Target: n}).
				Emit()
		}
	}
	return walk.Continue
}

func (v *questionableNameVisitor) Leave(n *tree.Node) {
	if n == v.root {
		v.root = nil
	}
}
