package inspect

import (
	"errors"
	"testing"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/tree"
)

func TestMethodNaming(t *testing.T) {
	tests := []struct {
		name    string
		method  *tree.Node
		opts    Options
		message string
	}{
		{name: "too short", method: method("a", 0, stmt()), message: "Instance method name 'a' is too short"},
		{name: "too long", method: method("thisMethodNameIsDefinitelyLongerThanAllowed", 0, stmt()), message: "Instance method name 'thisMethodNameIsDefinitelyLongerThanAllowed' is too long"},
		{name: "pattern", method: method("Compute", 0, stmt()), message: "Instance method name 'Compute' doesn't match regex '[a-z][A-Za-z]*'"},
		{name: "digits", method: method("compute2", 0, stmt()), message: "Instance method name 'compute2' doesn't match regex '[a-z][A-Za-z]*'"},
		{name: "valid", method: method("compute", 0, stmt())},
		{name: "static skipped", method: method("a", tree.ModStatic, stmt())},
		{name: "custom bounds", method: method("go", 0, stmt()), opts: Options{"min_length": 2}},
		{name: "custom pattern", method: method("get_x", 0, stmt()), opts: Options{"pattern": "[a-z_]+"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := unit("A.java", class("A", 0, nil, tc.method))
			ds := run(t, MethodNaming(), tc.opts, u)
			if tc.message == "" {
				if len(ds) != 0 {
					t.Fatalf("expected no diagnostics, got %q", ds[0].Message())
				}
				return
			}
			if len(ds) != 1 {
				t.Fatalf("expected 1 diagnostic, got %d", len(ds))
			}
			if got := ds[0].Message(); got != tc.message {
				t.Errorf("message = %q, want %q", got, tc.message)
			}
			if ds[0].Fix == nil || ds[0].Fix.Kind != diag.FixRename {
				t.Error("expected a rename fix")
			}
		})
	}
}

func TestMethodNamingSkipsConstructors(t *testing.T) {
	ctor := tree.New(tree.KindConstructor, "A").Append(block())
	if ds := run(t, MethodNaming(), nil, unit("A.java", class("A", 0, nil, ctor))); len(ds) != 0 {
		t.Fatalf("constructors are not instance methods, got %v", names(ds))
	}
}

func TestMethodNamingLibraryOverride(t *testing.T) {
	lib := library("Base.java", class("Base", 0, nil, method("a", 0, stmt())))
	src := unit("Impl.java",
		class("Impl", 0, []string{"Base"}, method("a", 0, stmt())),
		class("Own", 0, nil, method("a", 0, stmt())),
	)
	ds := run(t, MethodNaming(), nil, src, lib)
	if len(ds) != 1 {
		t.Fatalf("expected only the non-overriding method to be reported, got %d", len(ds))
	}
	if ds[0].Primary.Parent().Name != "Own" {
		t.Errorf("reported method in %s, want Own", ds[0].Primary.Parent().Name)
	}
}

func TestMethodNamingSourceOverrideStillReported(t *testing.T) {
	u := unit("A.java",
		class("Base", 0, nil, method("a", 0, stmt())),
		class("Impl", 0, []string{"Base"}, method("a", 0, stmt())),
	)
	if ds := run(t, MethodNaming(), nil, u); len(ds) != 2 {
		t.Fatalf("overriding a source method does not exempt the name, got %d diagnostics", len(ds))
	}
}

func TestMethodNamingInvalidConfiguration(t *testing.T) {
	for name, opts := range map[string]Options{
		"bad regex":      {"pattern": "[a-z"},
		"negative":       {"min_length": -1},
		"inverted":       {"min_length": 10, "max_length": 5},
		"non-int length": {"max_length": "long"},
	} {
		t.Run(name, func(t *testing.T) {
			u := unit("A.java", class("A", 0, nil))
			_, _, err := Prepare(MethodNaming(), envFor(u), Settings{Options: opts})
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestMethodNamingGenericLibraryOverride(t *testing.T) {
	ap := tree.New(tree.KindMethod, "ap").WithModifiers(tree.ModAbstract).WithParams("T")
	fn := tree.New(tree.KindInterface, "Fn").WithModifiers(tree.ModAbstract).WithTypeParams("T").Append(ap)
	lib := library("Fn.java", fn)

	impl := tree.New(tree.KindMethod, "ap").WithParams("String").Append(block())
	other := tree.New(tree.KindMethod, "ap").WithParams("Integer").Append(block())
	src := unit("Impl.java",
		class("Impl", 0, []string{"Fn<String>"}, impl),
		class("Wrong", 0, []string{"Fn<String>"}, other),
	)
	ds := run(t, MethodNaming(), nil, src, lib)
	if len(ds) != 1 || ds[0].Primary.Parent().Name != "Wrong" {
		t.Fatalf("expected only Wrong.ap(Integer) reported, got %v", names(ds))
	}
}
