package inspect

import (
	"errors"
	"testing"

	"github.com/chris-regnier/jinspect/internal/tree"
)

func params(name string, types ...string) *tree.Node {
	return method(name, 0, stmt()).WithParams(types...)
}

// ctl builds a control-flow statement led by keyword.
func ctl(keyword string, children ...*tree.Node) *tree.Node {
	return stmt(children...).WithText(keyword + " (x) {}")
}

func TestParameterCount(t *testing.T) {
	six := []string{"int", "int", "int", "int", "int", "int"}
	ctor := tree.New(tree.KindConstructor, "Wide").WithParams(six...).Append(block())
	u := unit("Wide.java", class("Wide", 0, nil,
		ctor,
		params("narrow", "int", "int"),
		params("exact", six[:5]...),
		params("wide", six...),
	))

	ds := run(t, ParameterCount(), nil, u)
	assertNames(t, ds, "Wide", "wide")
	if got := ds[1].Message(); got != "'wide' has 6 parameters (max 5)" {
		t.Errorf("unexpected message %q", got)
	}

	ds = run(t, ParameterCount(), Options{"max_params": 2}, u)
	assertNames(t, ds, "Wide", "exact", "wide")
}

func TestParameterCountSkipsLibraryOverrides(t *testing.T) {
	six := []string{"int", "int", "int", "int", "int", "int"}
	lib := library("Sink.java", tree.New(tree.KindInterface, "Sink").WithModifiers(tree.ModAbstract).Append(
		tree.New(tree.KindMethod, "accept").WithModifiers(tree.ModAbstract).WithParams(six...),
	))
	u := unit("Impl.java", class("Impl", 0, []string{"Sink"}, params("accept", six...)))
	if ds := run(t, ParameterCount(), nil, u, lib); len(ds) != 0 {
		t.Fatalf("library override should be skipped, got %v", names(ds))
	}
}

func TestMethodLength(t *testing.T) {
	u := unit("Long.java", class("Long", 0, nil,
		method("short", 0, stmt()),
		method("limit", 0, stmt()),
		method("long", 0, stmt()),
		abstractMethod("bodiless"),
	))
	// Source lines of each declaration, replacing the numbering unit assigns.
	for i, r := range [][2]int{{1, 10}, {11, 60}, {61, 111}, {112, 200}} {
		m := u.Root.Child(0).Child(i)
		m.Span = tree.Span{
			Start: tree.Position{Offset: r[0], Line: r[0]},
			End:   tree.Position{Offset: r[1], Line: r[1]},
		}
	}

	ds := run(t, MethodLength(), nil, u)
	assertNames(t, ds, "long")
	if got := ds[0].Message(); got != "'long' is 51 lines long (max 50)" {
		t.Errorf("unexpected message %q", got)
	}
	assertNames(t, run(t, MethodLength(), Options{"max_lines": 10}, u), "limit", "long")
}

func TestNestingDepth(t *testing.T) {
	deep := ctl("for", block(ctl("while", block(ctl("if", block(ctl("switch", block(ctl("if", block(stmt()))))))))))
	u := unit("Deep.java", class("Deep", 0, nil, method("run", 0, deep)))

	ds := run(t, NestingDepth(), nil, u)
	if len(ds) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(ds))
	}
	if got := ds[0].Message(); got != "Nesting depth 5 exceeds maximum 4" {
		t.Errorf("unexpected message %q", got)
	}

	ds = run(t, NestingDepth(), Options{"max_depth": 2}, u)
	if len(ds) != 1 || ds[0].Message() != "Nesting depth 3 exceeds maximum 2" {
		t.Fatalf("expected the report at depth 3 only, got %d", len(ds))
	}
}

func TestNestingDepthElseIfChain(t *testing.T) {
	chain := ctl("if", block(), ctl("if", block(), ctl("if", block(), ctl("if", block(stmt())))))
	siblings := tree.New(tree.KindForEach, "v").Append(block(ctl("if", block()), ctl("if", block())))
	named := stmt().WithText("format(x);")
	u := unit("Chain.java", class("Chain", 0, nil, method("run", 0, chain, siblings, named)))
	if ds := run(t, NestingDepth(), Options{"max_depth": 2}, u); len(ds) != 0 {
		t.Fatalf("else-if chains and siblings stay shallow, got %d", len(ds))
	}
}

func TestNestingDepthRestartsInNestedClass(t *testing.T) {
	inner := class("Inner", 0, nil, method("go", 0, ctl("if", block(ctl("if", block())))))
	outer := method("run", 0, ctl("if", block(ctl("if", block(stmt(inner))))))
	u := unit("Outer.java", class("Outer", 0, nil, outer))
	if ds := run(t, NestingDepth(), Options{"max_depth": 2}, u); len(ds) != 0 {
		t.Fatalf("nested class methods count from zero, got %d", len(ds))
	}
}

func TestComplexityRejectsNonPositiveLimits(t *testing.T) {
	for _, insp := range []*Inspection{ParameterCount(), MethodLength(), NestingDepth()} {
		key := ""
		for k := range insp.Defaults {
			key = k
		}
		_, _, err := Prepare(insp, Env{}, Settings{Options: Options{key: 0}})
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%s: expected invalid configuration for %s=0, got %v", insp.Name, key, err)
		}
	}
}
