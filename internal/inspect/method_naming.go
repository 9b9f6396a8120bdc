package inspect

import (
	"fmt"
	"regexp"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// MethodNamingName is the registry key of the instance method naming check.
const MethodNamingName = "instance-method-naming-convention"

const (
	defaultMethodPattern   = "[a-z][A-Za-z]*"
	defaultMethodMinLength = 4
	defaultMethodMaxLength = 32
)

// MethodNaming reports instance methods whose names are too short, too long,
// or do not match a configured pattern. Methods that override a library
// method are left alone: their names are not the author's to choose.
func MethodNaming() *Inspection {
	return &Inspection{
		Name:        MethodNamingName,
		DisplayName: "Instance method naming convention",
		Group:       GroupNaming,
		Description: "Reports instance methods whose names violate length bounds or the naming pattern.",
		Severity:    diag.SevWarning,
		Scope:       ScopeUnit,
		Defaults: Options{
			"pattern":    defaultMethodPattern,
			"min_length": defaultMethodMinLength,
			"max_length": defaultMethodMaxLength,
		},
		NewVisitor: newMethodNamingVisitor,
	}
}

type methodNamingVisitor struct {
	env      Env
	report   *diag.Collector
	source   string
	pattern  *regexp.Regexp
	min, max int
}

func newMethodNamingVisitor(env Env, opts Options, report *diag.Collector) (walk.Visitor, error) {
	src, err := opts.String("pattern", defaultMethodPattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile("^(?:" + src + ")$")
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", src, err)
	}
	minLen, err := opts.Int("min_length", defaultMethodMinLength)
	if err != nil {
		return nil, err
	}
	maxLen, err := opts.Int("max_length", defaultMethodMaxLength)
	if err != nil {
		return nil, err
	}
	if minLen < 0 || maxLen < 0 {
		return nil, fmt.Errorf("length bounds must not be negative (min %d, max %d)", minLen, maxLen)
	}
	if minLen > maxLen {
		return nil, fmt.Errorf("min_length %d exceeds max_length %d", minLen, maxLen)
	}
	return &methodNamingVisitor{
		env:     env,
		report:  report,
		source:  src,
		pattern: re,
		min:     minLen,
		max:     maxLen,
	}, nil
}

func (v *methodNamingVisitor) Visit(n *tree.Node) walk.Action {
	if n.Kind != tree.KindMethod || n.Has(tree.ModStatic) || n.Name == "" {
		return walk.Continue
	}
	template := v.problem(n.Name)
	if template == "" {
		return walk.Continue
	}
	if v.env.Hierarchy.OverridesLibraryMethod(n) {
		return walk.Continue
	}
	v.report.Report(n, template).
		WithFix(&diag.Fix{Name: "Rename method", Kind: diag.FixRename, Target: n}).
		Emit()
	return walk.Continue
}

// problem returns the message template for the first rule name breaks, or "".
func (v *methodNamingVisitor) problem(name string) string {
	length := len([]rune(name))
	switch {
	case length < v.min:
		return "Instance method name '#ref' is too short #loc"
	case length > v.max:
		return "Instance method name '#ref' is too long #loc"
	case !v.pattern.MatchString(name):
		return fmt.Sprintf("Instance method name '#ref' doesn't match regex '%s' #loc", v.source)
	}
	return ""
}
