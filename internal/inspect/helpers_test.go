package inspect

import (
	"context"
	"testing"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/hierarchy"
	"github.com/chris-regnier/jinspect/internal/tree"
)

// ---------------------------------------------------------------------------
// Tree builders
// ---------------------------------------------------------------------------

func class(name string, mods tree.Modifier, supers []string, members ...*tree.Node) *tree.Node {
	return tree.New(tree.KindClass, name).WithModifiers(mods).WithSupertypes(supers...).Append(members...)
}

func method(name string, mods tree.Modifier, body ...*tree.Node) *tree.Node {
	m := tree.New(tree.KindMethod, name).WithModifiers(mods)
	if body != nil {
		m.Append(block(body...))
	}
	return m
}

func abstractMethod(name string) *tree.Node {
	return tree.New(tree.KindMethod, name).WithModifiers(tree.ModAbstract)
}

func block(stmts ...*tree.Node) *tree.Node {
	return tree.New(tree.KindBlock, "").Append(stmts...)
}

func field(name, typ string, mods tree.Modifier) *tree.Node {
	return tree.New(tree.KindField, name).WithType(typ).WithModifiers(mods)
}

func access(name string) *tree.Node {
	return tree.New(tree.KindAccess, name).WithText(name)
}

func stmt(children ...*tree.Node) *tree.Node {
	return tree.New(tree.KindStatement, "").Append(children...)
}

func unit(path string, decls ...*tree.Node) *tree.Unit {
	root := tree.New(tree.KindUnit, path).Append(decls...)
	tree.Number(root)
	return &tree.Unit{Path: path, Root: root}
}

func library(path string, decls ...*tree.Node) *tree.Unit {
	u := unit(path, decls...)
	u.Library = true
	return u
}

func envFor(units ...*tree.Unit) Env {
	return Env{Hierarchy: hierarchy.NewResolver(hierarchy.NewIndex(units...))}
}

// run runs insp with default settings over the first unit, resolving types
// against all of them.
func run(t *testing.T, insp *Inspection, opts Options, units ...*tree.Unit) []diag.Diagnostic {
	t.Helper()
	ds, err := Run(context.Background(), insp, envFor(units...), Settings{Options: opts}, units[0].Root)
	if err != nil {
		t.Fatalf("Run(%s): %v", insp.Name, err)
	}
	return ds
}

func names(ds []diag.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Primary.Name
	}
	return out
}

func assertNames(t *testing.T, ds []diag.Diagnostic, want ...string) {
	t.Helper()
	got := names(ds)
	if len(got) != len(want) {
		t.Fatalf("expected diagnostics on %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected diagnostics on %v, got %v", want, got)
		}
	}
}
