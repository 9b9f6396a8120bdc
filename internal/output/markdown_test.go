package output

import (
	"strings"
	"testing"
)

func formatMarkdown(t *testing.T, out *AnalysisOutput) string {
	t.Helper()
	data, err := (&MarkdownFormatter{}).Format(out)
	if err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	return string(data)
}

func TestMarkdownFormatter_Summary(t *testing.T) {
	md := formatMarkdown(t, testOutput("review"))
	for _, want := range []string{
		"## jinspect Analysis Summary",
		":warning: Review Required",
		"**Findings:** 3 | **Files:** 2",
		"| error | 1 |",
		"| warning | 1 |",
		"| note | 1 |",
		"*Generated by [jinspect]",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestMarkdownFormatter_FindingDetails(t *testing.T) {
	md := formatMarkdown(t, testOutput("reject"))
	if strings.Count(md, "<details>") != 3 {
		t.Errorf("expected 3 collapsible sections")
	}
	for _, want := range []string{
		"<code>src/Counter.java:3:17</code>",
		"- `src/Counter.java:9:9` count",
		"**Quick fix:** Rename method",
		"```java\nfor (int i = 0; i < xs.length; i++) {}\n```",
		":red_circle:",
		":information_source:",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestMarkdownFormatter_SortsBySeverity(t *testing.T) {
	md := formatMarkdown(t, testOutput("reject"))
	e := strings.Index(md, "instance-method-naming-convention:")
	w := strings.Index(md, "field-accessed-synchronized-and-unsynchronized:")
	n := strings.Index(md, "foreach-statement:")
	if !(e < w && w < n) {
		t.Errorf("expected error < warning < note ordering, got %d %d %d", e, w, n)
	}
}

func TestMarkdownFormatter_NoFindings(t *testing.T) {
	md := formatMarkdown(t, emptyOutput())
	if !strings.Contains(md, "No findings detected.") {
		t.Error("expected no-findings message")
	}
	if strings.Contains(md, "### Findings by Severity") {
		t.Error("did not expect severity table")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate long = %q", got)
	}
}
