package inspect

import (
	"testing"

	"github.com/chris-regnier/jinspect/internal/tree"
)

func TestAbstractClassWithoutAbstractMethods(t *testing.T) {
	abstract1 := class("Abstract1", tree.ModAbstract, nil, abstractMethod("m"))
	abstract2 := class("Abstract2", tree.ModAbstract, []string{"Abstract1"}, method("m", 0, stmt()))
	ds := run(t, AbstractClass(), nil, unit("Abstract.java", abstract1, abstract2))
	assertNames(t, ds, "Abstract2")
	if got := ds[0].Message(); got != "Class 'Abstract2' is declared 'abstract', and has no 'abstract' methods" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestAbstractClassInheritsUnimplemented(t *testing.T) {
	iface := tree.New(tree.KindInterface, "Shape").WithModifiers(tree.ModAbstract).Append(abstractMethod("area"))
	base := class("BaseShape", tree.ModAbstract, []string{"Shape"}, method("name", 0, stmt()))
	if ds := run(t, AbstractClass(), nil, unit("Shape.java", iface, base)); len(ds) != 0 {
		t.Fatalf("inherited abstract method keeps the class abstract, got %v", names(ds))
	}
}

func TestAbstractClassIgnoresConcreteAndInterfaces(t *testing.T) {
	u := unit("X.java",
		class("Concrete", 0, nil, method("run", 0, stmt())),
		tree.New(tree.KindInterface, "Marker").WithModifiers(tree.ModAbstract),
	)
	if ds := run(t, AbstractClass(), nil, u); len(ds) != 0 {
		t.Fatalf("expected no diagnostics, got %v", names(ds))
	}
}

func TestAbstractClassNestedReportedOnce(t *testing.T) {
	inner := class("Inner", tree.ModAbstract|tree.ModStatic, nil)
	outer := class("Outer", 0, nil, inner)
	ds := run(t, AbstractClass(), nil, unit("Outer.java", outer))
	assertNames(t, ds, "Inner")
}

func TestEmptyClass(t *testing.T) {
	u := unit("E.java",
		class("Empty", 0, nil),
		class("WithField", 0, nil, field("x", "int", 0)),
		class("WithMethod", 0, nil, method("run", 0, stmt())),
		class("WithCtor", 0, nil, tree.New(tree.KindConstructor, "WithCtor").Append(block())),
		tree.New(tree.KindInterface, "Marker"),
		tree.New(tree.KindEnum, "Nothing"),
		class("Holder", 0, nil, class("NestedEmpty", tree.ModStatic, nil)),
	)
	ds := run(t, EmptyClass(), nil, u)
	assertNames(t, ds, "Empty", "Holder", "NestedEmpty")
	if got := ds[0].Message(); got != "Class 'Empty' is empty" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestEmptyClassIgnoresAnonymous(t *testing.T) {
	anon := tree.New(tree.KindAnonymousClass, "").WithSupertypes("TypeToken")
	c := class("Uses", 0, nil, method("token", 0, stmt(anon)))
	if ds := run(t, EmptyClass(), nil, unit("Uses.java", c)); len(ds) != 0 {
		t.Fatalf("expected no diagnostics, got %v", names(ds))
	}
}

func TestAbstractClassImplementsGenericMethod(t *testing.T) {
	ap := tree.New(tree.KindMethod, "ap").WithModifiers(tree.ModAbstract).WithParams("T")
	fn := tree.New(tree.KindInterface, "Fn").WithModifiers(tree.ModAbstract).WithTypeParams("T").Append(ap)
	done := class("Done", tree.ModAbstract, []string{"Fn<String>"},
		tree.New(tree.KindMethod, "ap").WithParams("String").Append(block()))
	open := class("Open", tree.ModAbstract, []string{"Fn<String>"},
		tree.New(tree.KindMethod, "ap").WithParams("Object").Append(block()))
	ds := run(t, AbstractClass(), nil, unit("Fn.java", fn, done, open))
	assertNames(t, ds, "Done")
}
