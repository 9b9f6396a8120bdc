package inspect

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// Registry keys of the size and complexity checks.
const (
	ParameterCountName = "parameter-count"
	MethodLengthName   = "method-length"
	NestingDepthName   = "nesting-depth"
)

const (
	defaultMaxParams = 5
	defaultMaxLines  = 50
	defaultMaxDepth  = 4
)

// ParameterCount reports methods and constructors that declare more than
// max_params parameters. A varargs parameter counts once. Overrides of
// library methods are skipped since their arity is inherited.
func ParameterCount() *Inspection {
	return &Inspection{
		Name:        ParameterCountName,
		DisplayName: "Too many parameters",
		Group:       GroupComplexity,
		Description: "Reports methods and constructors with more parameters than allowed.",
		Severity:    diag.SevWarning,
		Scope:       ScopeUnit,
		Defaults:    Options{"max_params": defaultMaxParams},
		NewVisitor: func(env Env, opts Options, report *diag.Collector) (walk.Visitor, error) {
			limit, err := positiveInt(opts, "max_params", defaultMaxParams)
			if err != nil {
				return nil, err
			}
			check := func(n *tree.Node) walk.Action {
				count := len(n.Params)
				if count <= limit {
					return walk.Continue
				}
				if n.Kind == tree.KindMethod && env.Hierarchy.OverridesLibraryMethod(n) {
					return walk.Continue
				}
				report.Report(n, fmt.Sprintf("'#ref' has %d parameters (max %d) #loc", count, limit)).Emit()
				return walk.Continue
			}
			return walk.Funcs{tree.KindMethod: check, tree.KindConstructor: check}, nil
		},
	}
}

// MethodLength reports methods and constructors whose declaration spans more
// than max_lines source lines. Bodiless declarations are skipped.
func MethodLength() *Inspection {
	return &Inspection{
		Name:        MethodLengthName,
		DisplayName: "Method too long",
		Group:       GroupComplexity,
		Description: "Reports methods and constructors longer than the configured number of lines.",
		Severity:    diag.SevWarning,
		Scope:       ScopeUnit,
		Defaults:    Options{"max_lines": defaultMaxLines},
		NewVisitor: func(_ Env, opts Options, report *diag.Collector) (walk.Visitor, error) {
			limit, err := positiveInt(opts, "max_lines", defaultMaxLines)
			if err != nil {
				return nil, err
			}
			check := func(n *tree.Node) walk.Action {
				if n.Body() == nil {
					return walk.Continue
				}
				if lines := n.Span.End.Line - n.Span.Start.Line + 1; lines > limit {
					report.Report(n, fmt.Sprintf("'#ref' is %d lines long (max %d) #loc", lines, limit)).Emit()
				}
				return walk.Continue
			}
			return walk.Funcs{tree.KindMethod: check, tree.KindConstructor: check}, nil
		},
	}
}

// NestingDepth reports control-flow statements nested deeper than max_depth
// inside a method, constructor or initializer. An else-if continues its
// chain rather than opening a level. The report is made at the first
// statement past the limit and its subtree is not examined further.
func NestingDepth() *Inspection {
	return &Inspection{
		Name:        NestingDepthName,
		DisplayName: "Deeply nested control flow",
		Group:       GroupComplexity,
		Description: "Reports control-flow statements nested deeper than allowed.",
		Severity:    diag.SevWarning,
		Scope:       ScopeUnit,
		Defaults:    Options{"max_depth": defaultMaxDepth},
		NewVisitor: func(_ Env, opts Options, report *diag.Collector) (walk.Visitor, error) {
			limit, err := positiveInt(opts, "max_depth", defaultMaxDepth)
			if err != nil {
				return nil, err
			}
			return &nestingVisitor{report: report, max: limit}, nil
		},
	}
}

type nestingVisitor struct {
	report *diag.Collector
	max    int
	// depths has one entry per enclosing class or callable.
	depths []int
}

func (v *nestingVisitor) Visit(n *tree.Node) walk.Action {
	if n.Kind.IsClassLike() || n.Kind.IsCallable() {
		v.depths = append(v.depths, 0)
		return walk.Continue
	}
	if !opensLevel(n) || len(v.depths) == 0 {
		return walk.Continue
	}
	top := len(v.depths) - 1
	depth := v.depths[top] + 1
	if depth > v.max {
		v.report.Report(n, fmt.Sprintf("Nesting depth %d exceeds maximum %d #loc", depth, v.max)).Emit()
		return walk.Prune
	}
	v.depths[top] = depth
	return walk.Continue
}

func (v *nestingVisitor) Leave(n *tree.Node) {
	switch {
	case n.Kind.IsClassLike() || n.Kind.IsCallable():
		v.depths = v.depths[:len(v.depths)-1]
	case opensLevel(n) && len(v.depths) > 0:
		v.depths[len(v.depths)-1]--
	}
}

// opensLevel reports whether n is a loop, conditional or switch that counts
// toward nesting depth.
func opensLevel(n *tree.Node) bool {
	if n.Kind == tree.KindForEach {
		return true
	}
	if n.Kind != tree.KindStatement && n.Kind != tree.KindExpression {
		return false
	}
	switch kw := leadingKeyword(n.Text); kw {
	case "for", "while", "do":
		return n.Kind == tree.KindStatement
	case "switch":
		return !continues(n, kw)
	case "if":
		return n.Kind == tree.KindStatement && !continues(n, kw)
	}
	return false
}

// continues reports whether n sits directly under a statement led by the same
// keyword: the else-if of a chain, or a switch wrapped as a statement.
func continues(n *tree.Node, kw string) bool {
	p := n.Parent()
	return p != nil && p.Kind == tree.KindStatement && leadingKeyword(p.Text) == kw
}

func leadingKeyword(text string) string {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	end := strings.IndexFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$'
	})
	if end < 0 {
		return text
	}
	return text[:end]
}

func positiveInt(opts Options, key string, fallback int) (int, error) {
	n, err := opts.Int(key, fallback)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("option %q must be at least 1, got %d", key, n)
	}
	return n, nil
}
