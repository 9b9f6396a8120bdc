package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chris-regnier/jinspect/internal/sarif"
	"github.com/chris-regnier/jinspect/internal/store"
)

// ----- Test helpers -----

func location(uri string, line, col int) sarif.Location {
	return sarif.Location{PhysicalLocation: sarif.PhysicalLocation{
		ArtifactLocation: sarif.ArtifactLocation{URI: uri},
		Region:           sarif.Region{StartLine: line, StartColumn: col, EndLine: line, EndColumn: col + 5},
	}}
}

// testLog builds a log with findings across two files and all levels.
func testLog() *sarif.Log {
	log := sarif.NewLog(sarif.ToolName, "dev")
	related := location("src/Counter.java", 9, 9)
	related.ID = 1
	related.Message = &sarif.Message{Text: "count"}
	log.Runs[0].Results = []sarif.Result{
		{
			RuleID:           "field-accessed-synchronized-and-unsynchronized",
			Level:            "warning",
			Message:          sarif.Message{Text: "Field 'count' is accessed in both synchronized and unsynchronized contexts"},
			Locations:        []sarif.Location{location("src/Counter.java", 3, 17)},
			RelatedLocations: []sarif.Location{related},
		},
		{
			RuleID:    "instance-method-naming-convention",
			Level:     "error",
			Message:   sarif.Message{Text: "Instance method name 'a' is too short"},
			Locations: []sarif.Location{location("src/Counter.java", 12, 17)},
			Properties: map[string]interface{}{
				sarif.PropFixName: "Rename method",
				sarif.PropFixKind: "rename",
			},
		},
		{
			RuleID:    "foreach-statement",
			Level:     "note",
			Message:   sarif.Message{Text: "Extended 'for' statement"},
			Locations: []sarif.Location{location("src/Loop.java", 5, 9)},
			Properties: map[string]interface{}{
				sarif.PropFixName: "Replace with old-style 'for' statement",
				sarif.PropFixKind: "replace",
			},
			Fixes: []sarif.Fix{{
				Description: sarif.Message{Text: "Replace with old-style 'for' statement"},
				ArtifactChanges: []sarif.ArtifactChange{{
					ArtifactLocation: sarif.ArtifactLocation{URI: "src/Loop.java"},
					Replacements: []sarif.Replacement{{
						DeletedRegion:   sarif.Region{StartLine: 5},
						InsertedContent: &sarif.ArtifactContentSnippet{Text: "for (int i = 0; i < xs.length; i++) {}"},
					}},
				}},
			}},
		},
	}
	return log
}

func testOutput(decision string) *AnalysisOutput {
	return &AnalysisOutput{
		Verdict:  &store.Verdict{Decision: decision, Reason: "Decision: " + decision + " based on 3 findings"},
		SARIFLog: testLog(),
	}
}

func emptyOutput() *AnalysisOutput {
	return &AnalysisOutput{
		Verdict:  &store.Verdict{Decision: store.DecisionMerge},
		SARIFLog: sarif.NewLog(sarif.ToolName, "dev"),
	}
}

// ----- Tests -----

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag string
		tty  bool
		want string
	}{
		{flag: "sarif", tty: true, want: "sarif"},
		{flag: "markdown", tty: false, want: "markdown"},
		{tty: true, want: "pretty"},
		{tty: false, want: "json"},
	}
	for _, tt := range tests {
		if got := ResolveFormat(tt.flag, tt.tty); got != tt.want {
			t.Errorf("ResolveFormat(%q, %v) = %q, want %q", tt.flag, tt.tty, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range Formats {
		f, err := NewFormatter(name)
		if err != nil {
			t.Errorf("NewFormatter(%q) error: %v", name, err)
		}
		if f == nil {
			t.Errorf("NewFormatter(%q) returned nil", name)
		}
	}
	if _, err := NewFormatter("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
}

func TestFormatters_RequireVerdict(t *testing.T) {
	for _, name := range []string{"json", "markdown", "pretty"} {
		f, _ := NewFormatter(name)
		if _, err := f.Format(nil); err == nil {
			t.Errorf("%s: expected error for nil result", name)
		}
		if _, err := f.Format(&AnalysisOutput{SARIFLog: testLog()}); err == nil {
			t.Errorf("%s: expected error for nil verdict", name)
		}
	}
	f, _ := NewFormatter("sarif")
	if _, err := f.Format(&AnalysisOutput{Verdict: &store.Verdict{}}); err == nil {
		t.Error("sarif: expected error for nil log")
	}
}
