package output

import (
	"encoding/json"
	"testing"

	"github.com/chris-regnier/jinspect/internal/sarif"
)

func formatSARIF(t *testing.T) *sarif.Log {
	t.Helper()
	data, err := (&SARIFFormatter{}).Format(testOutput("review"))
	if err != nil {
		t.Fatal(err)
	}
	var log sarif.Log
	if err := json.Unmarshal(data, &log); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return &log
}

func TestSARIFFormatter_Enrichment(t *testing.T) {
	log := formatSARIF(t)
	run := log.Runs[0]
	if run.Tool.Driver.InformationURI != sarif.ToolInformationURI {
		t.Errorf("unexpected informationUri %q", run.Tool.Driver.InformationURI)
	}
	if len(run.Invocations) != 1 || !run.Invocations[0].ExecutionSuccessful {
		t.Errorf("expected one successful invocation, got %+v", run.Invocations)
	}

	want := map[string]string{"error": "8.0", "warning": "5.0", "note": "2.0"}
	seen := make(map[string]bool)
	for _, r := range run.Results {
		fp := r.PartialFingerprints["primaryLocationLineHash"]
		if len(fp) != 32 {
			t.Errorf("%s: expected 32 hex char fingerprint, got %q", r.RuleID, fp)
		}
		if seen[fp] {
			t.Errorf("duplicate fingerprint %s", fp)
		}
		seen[fp] = true
		if got := r.Properties["security-severity"]; got != want[r.Level] {
			t.Errorf("%s: security-severity = %v, want %s", r.RuleID, got, want[r.Level])
		}
		if r.Properties["precision"] != "high" {
			t.Errorf("%s: expected precision high", r.RuleID)
		}
	}
}

func TestSARIFFormatter_Deterministic(t *testing.T) {
	a := formatSARIF(t)
	b := formatSARIF(t)
	for i := range a.Runs[0].Results {
		fa := a.Runs[0].Results[i].PartialFingerprints["primaryLocationLineHash"]
		fb := b.Runs[0].Results[i].PartialFingerprints["primaryLocationLineHash"]
		if fa != fb {
			t.Errorf("fingerprint %d differs between runs", i)
		}
	}
}
