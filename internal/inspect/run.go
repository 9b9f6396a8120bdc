package inspect

import (
	"context"
	"errors"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// Prepare builds a visitor for insp without running it. Hosts call it to
// validate configuration before any traversal starts.
func Prepare(insp *Inspection, env Env, s Settings) (walk.Visitor, *diag.Collector, error) {
	c := diag.NewCollector(insp.Name, insp.severity(s))
	v, err := insp.NewVisitor(env.withDefaults(), insp.Defaults.With(s.Options), c)
	if err != nil {
		var ce *ConfigError
		if !errors.As(err, &ce) {
			err = &ConfigError{Inspection: insp.Name, Err: err}
		}
		return nil, nil, err
	}
	return v, c, nil
}

// Run runs insp over root and returns its diagnostics ordered by position.
// On cancellation the diagnostics gathered so far are returned with the
// context error.
func Run(ctx context.Context, insp *Inspection, env Env, s Settings, root *tree.Node) ([]diag.Diagnostic, error) {
	v, c, err := Prepare(insp, env, s)
	if err != nil {
		return nil, err
	}
	err = Walk(ctx, insp.Scope, v, root)
	return c.Sorted(), err
}

// Walk drives v over root according to scope.
func Walk(ctx context.Context, scope Scope, v walk.Visitor, root *tree.Node) error {
	if scope != ScopeClass {
		return walk.WalkContext(ctx, v, root)
	}
	classes := walk.Collect(root, func(n *tree.Node) bool { return n.Kind.IsClassLike() })
	for _, class := range classes {
		if err := walk.WalkContext(ctx, v, class); err != nil {
			return err
		}
	}
	return nil
}
