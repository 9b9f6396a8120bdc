package inspect

import (
	"errors"
	"testing"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/walk"
)

func stubInspection(name, display string) *Inspection {
	return &Inspection{
		Name:        name,
		DisplayName: display,
		NewVisitor: func(Env, Options, *diag.Collector) (walk.Visitor, error) {
			return walk.Funcs{}, nil
		},
	}
}

func TestRegistryBasics(t *testing.T) {
	r := NewRegistry()
	if len(r.Names()) != 0 {
		t.Fatal("new registry should be empty")
	}
	if err := r.Register(stubInspection("b-check", "B")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(stubInspection("a-check", "A")); err != nil {
		t.Fatal(err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "a-check" || names[1] != "b-check" {
		t.Fatalf("unexpected names: %v", names)
	}
	if _, ok := r.Get("nonexistent"); ok {
		t.Fatal("should not find nonexistent inspection")
	}
	all := r.All()
	if len(all) != 2 || all[0].Name != "a-check" {
		t.Fatalf("All() not sorted by name: %v", all)
	}
}

func TestRegistryDuplicateKeepsFirst(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubInspection("dup", "first")); err != nil {
		t.Fatal(err)
	}
	err := r.Register(stubInspection("dup", "second"))
	if !errors.Is(err, ErrDuplicateInspection) {
		t.Fatalf("expected ErrDuplicateInspection, got %v", err)
	}
	got, _ := r.Get("dup")
	if got.DisplayName != "first" {
		t.Fatalf("expected first registration to stay, got %q", got.DisplayName)
	}
}

func TestRegistryRejectsIncomplete(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Inspection{}); err == nil {
		t.Fatal("expected error for nameless inspection")
	}
	if err := r.Register(&Inspection{Name: "x"}); err == nil {
		t.Fatal("expected error for inspection without factory")
	}
}

func TestDefaultRegistry(t *testing.T) {
	names := DefaultRegistry().Names()
	expected := []string{
		AbstractClassName,
		EmptyClassName,
		ForEachName,
		SyncAccessName,
		MethodNamingName,
		QuestionableNameName,
		ParameterCountName,
		MethodLengthName,
		NestingDepthName,
		EmptyCatchName,
	}
	if len(names) != len(expected) {
		t.Fatalf("expected %d inspections, got %v", len(expected), names)
	}
	for _, want := range expected {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %s in %v", want, names)
		}
	}
}

func TestOptions(t *testing.T) {
	opts := Options{"n": float64(3), "s": "x", "l": []interface{}{"a", "b"}, "csv": "a, b ,,c", "bad": 1.5}

	if n, err := opts.Int("n", 0); err != nil || n != 3 {
		t.Errorf("Int(n) = %d, %v", n, err)
	}
	if n, err := opts.Int("missing", 7); err != nil || n != 7 {
		t.Errorf("Int(missing) = %d, %v", n, err)
	}
	if _, err := opts.Int("bad", 0); err == nil {
		t.Error("expected error for fractional integer")
	}
	if _, err := opts.Int("s", 0); err == nil {
		t.Error("expected error for string as integer")
	}
	if l, err := opts.Strings("l", nil); err != nil || len(l) != 2 {
		t.Errorf("Strings(l) = %v, %v", l, err)
	}
	if l, err := opts.Strings("csv", nil); err != nil || len(l) != 3 || l[2] != "c" {
		t.Errorf("Strings(csv) = %v, %v", l, err)
	}

	merged := Options{"a": 1, "b": 2}.With(Options{"b": 3})
	if merged["a"] != 1 || merged["b"] != 3 {
		t.Errorf("With() = %v", merged)
	}
}
