package sarif

import (
	"testing"
	"time"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/inspect"
	"github.com/chris-regnier/jinspect/internal/tree"
)

func span(line, col, offset, length int) tree.Span {
	return tree.Span{
		Start: tree.Position{Offset: offset, Line: line, Column: col},
		End:   tree.Position{Offset: offset + length, Line: line, Column: col + length},
	}
}

func result(rule, uri string, line, col int, msg string) Result {
	return Result{
		RuleID:  rule,
		Level:   "warning",
		Message: Message{Text: msg},
		Locations: []Location{{PhysicalLocation: PhysicalLocation{
			ArtifactLocation: ArtifactLocation{URI: uri},
			Region:           Region{StartLine: line, StartColumn: col},
		}}},
	}
}

func TestAssembler_Build(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	log := NewAssembler("1.2.3").
		AddRules(Rule(inspect.MethodNaming(), true), Rule(inspect.SyncAccess(), true)).
		AddResults([]Result{result("b", "A.java", 1, 1, "x")}).
		WithInvocation(start, start.Add(time.Second), true).
		WithProperty("jinspect/inputScope", "files").
		Build()

	if log.Version != Version || log.Schema != SchemaURI {
		t.Errorf("unexpected header: %s %s", log.Version, log.Schema)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != ToolName || run.Tool.Driver.Version != "1.2.3" {
		t.Errorf("unexpected driver: %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(run.Tool.Driver.Rules))
	}
	if run.Tool.Driver.Rules[0].ID != inspect.SyncAccessName {
		t.Errorf("rules should be sorted by id, got %q first", run.Tool.Driver.Rules[0].ID)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].StartTimeUTC != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected invocations: %+v", run.Invocations)
	}
	if run.Properties["jinspect/inputScope"] != "files" {
		t.Errorf("expected inputScope property, got %v", run.Properties)
	}
}

func TestAssembler_DedupAndSort(t *testing.T) {
	log := NewAssembler("dev").AddResults([]Result{
		result("rule-b", "B.java", 3, 1, "m"),
		result("rule-a", "A.java", 10, 5, "m"),
		result("rule-a", "A.java", 2, 5, "m"),
		result("rule-a", "A.java", 2, 5, "m"),
		result("rule-a", "A.java", 2, 5, "other message"),
	}).Build()

	got := log.Runs[0].Results
	if len(got) != 4 {
		t.Fatalf("expected 4 results after dedup, got %d", len(got))
	}
	want := []struct {
		uri  string
		line int
	}{{"A.java", 2}, {"A.java", 2}, {"A.java", 10}, {"B.java", 3}}
	for i, w := range want {
		pl := got[i].Locations[0].PhysicalLocation
		if pl.ArtifactLocation.URI != w.uri || pl.Region.StartLine != w.line {
			t.Errorf("result %d at %s:%d, want %s:%d", i, pl.ArtifactLocation.URI, pl.Region.StartLine, w.uri, w.line)
		}
	}
}

func TestFromFinding(t *testing.T) {
	f := diag.Finding{
		Inspection: inspect.SyncAccessName,
		Severity:   diag.SevWarning,
		Message:    "Field 'count' is accessed in both synchronized and unsynchronized contexts",
		Location:   diag.Location{Path: "Counter.java", Span: span(2, 16, 30, 5), Label: "count"},
		Related: []diag.Location{
			{Path: "Counter.java", Span: span(4, 8, 60, 5), Label: "count"},
			{Path: "Counter.java", Span: span(7, 8, 90, 5)},
		},
	}
	r := FromFinding(f)
	if r.RuleID != inspect.SyncAccessName || r.Level != "warning" {
		t.Errorf("unexpected rule/level: %s %s", r.RuleID, r.Level)
	}
	region := r.Locations[0].PhysicalLocation.Region
	if region.StartLine != 2 || region.StartColumn != 17 || region.CharOffset != 30 || region.CharLength != 5 {
		t.Errorf("unexpected region: %+v", region)
	}
	if len(r.RelatedLocations) != 2 {
		t.Fatalf("expected 2 related locations, got %d", len(r.RelatedLocations))
	}
	if r.RelatedLocations[0].ID != 1 || r.RelatedLocations[1].ID != 2 {
		t.Errorf("related locations should be numbered from 1")
	}
	if r.RelatedLocations[0].Message == nil || r.RelatedLocations[0].Message.Text != "count" {
		t.Errorf("expected label message on first related location")
	}
	if r.RelatedLocations[1].Message != nil {
		t.Errorf("expected no message for unlabeled location")
	}
	if r.Fixes != nil || r.Properties != nil {
		t.Errorf("expected no fix data")
	}
}

func TestFromFinding_Fix(t *testing.T) {
	target := diag.Location{Path: "Loop.java", Span: span(3, 4, 40, 20)}
	withText := diag.Finding{
		Inspection: inspect.ForEachName,
		Severity:   diag.SevNote,
		Location:   target,
		Fix:        &diag.FixInfo{Name: "Replace with old-style 'for' statement", Kind: diag.FixReplace, Target: target, Replacement: "for (;;) {}"},
	}
	r := FromFinding(withText)
	if len(r.Fixes) != 1 {
		t.Fatalf("expected one fix, got %d", len(r.Fixes))
	}
	rep := r.Fixes[0].ArtifactChanges[0].Replacements[0]
	if rep.InsertedContent.Text != "for (;;) {}" || rep.DeletedRegion.CharLength != 20 {
		t.Errorf("unexpected replacement: %+v", rep)
	}
	if r.Properties[PropFixKind] != "replace" {
		t.Errorf("expected fix kind property, got %v", r.Properties)
	}

	rename := withText
	rename.Fix = &diag.FixInfo{Name: "Rename method", Kind: diag.FixRename, Target: target}
	r = FromFinding(rename)
	if len(r.Fixes) != 0 {
		t.Errorf("rename without a new name should not produce an artifact change")
	}
	if r.Properties[PropFixName] != "Rename method" {
		t.Errorf("expected fix name property, got %v", r.Properties)
	}
}

func TestRule(t *testing.T) {
	rd := Rule(inspect.EmptyClass(), false)
	if rd.ID != "empty-class" {
		t.Errorf("unexpected id %q", rd.ID)
	}
	if rd.DefaultConfig.Enabled == nil || *rd.DefaultConfig.Enabled {
		t.Error("expected disabled default configuration")
	}
	if rd.Properties[PropGroup] != inspect.GroupClassLayout {
		t.Errorf("unexpected group %v", rd.Properties[PropGroup])
	}
	if rd.FullDescription == nil {
		t.Error("expected full description")
	}
}
