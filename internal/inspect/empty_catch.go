package inspect

import (
	"strings"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// EmptyCatchName is the registry key of the empty catch block check.
const EmptyCatchName = "empty-catch-block"

// EmptyCatch reports catch clauses whose block holds neither statements nor
// comments. Clauses whose parameter is named in ignore_names are exempt.
func EmptyCatch() *Inspection {
	return &Inspection{
		Name:        EmptyCatchName,
		DisplayName: "Empty 'catch' block",
		Group:       GroupErrorHandling,
		Description: "Reports catch blocks that silently swallow the exception.",
		Severity:    diag.SevWarning,
		Scope:       ScopeUnit,
		Defaults:    Options{"ignore_names": []string{"ignored", "expected"}},
		NewVisitor: func(_ Env, opts Options, report *diag.Collector) (walk.Visitor, error) {
			names, err := opts.Strings("ignore_names", []string{"ignored", "expected"})
			if err != nil {
				return nil, err
			}
			ignored := make(map[string]bool, len(names))
			for _, n := range names {
				ignored[n] = true
			}
			return walk.Funcs{
				tree.KindStatement: func(n *tree.Node) walk.Action {
					if leadingKeyword(n.Text) != "catch" {
						return walk.Continue
					}
					if params := n.ChildrenOf(tree.KindParameter); len(params) > 0 && ignored[params[0].Name] {
						return walk.Continue
					}
					if body := n.Body(); body != nil && isEmptyBlock(body) {
						report.Report(n, "Empty 'catch' block #loc").Emit()
					}
					return walk.Continue
				},
			}, nil
		},
	}
}

func isEmptyBlock(b *tree.Node) bool {
	if len(b.Children()) > 0 {
		return false
	}
	return strings.Trim(b.Text, "{} \t\r\n") == ""
}
