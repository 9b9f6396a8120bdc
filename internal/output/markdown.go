package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chris-regnier/jinspect/internal/sarif"
	"github.com/chris-regnier/jinspect/internal/store"
)

// MarkdownFormatter renders GitHub-Flavored Markdown for PR comments, one
// collapsible section per finding.
type MarkdownFormatter struct{}

func severityEmoji(level string) string {
	switch level {
	case "error":
		return ":red_circle:"
	case "warning":
		return ":warning:"
	case "note":
		return ":information_source:"
	default:
		return ":grey_question:"
	}
}

func decisionBanner(decision string) string {
	switch decision {
	case store.DecisionMerge:
		return ":white_check_mark: Merge"
	case store.DecisionReject:
		return ":x: Reject"
	case store.DecisionReview:
		return ":warning: Review Required"
	default:
		return decision
	}
}

func lineCol(r sarif.Region) string {
	if r.StartLine == 0 {
		return ""
	}
	if r.StartColumn == 0 {
		return fmt.Sprintf("%d", r.StartLine)
	}
	return fmt.Sprintf("%d:%d", r.StartLine, r.StartColumn)
}

// sortForReport orders by severity, then file, then line.
func sortForReport(results []sarif.Result) []sarif.Result {
	sorted := make([]sarif.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := severityPriority(sorted[i].Level), severityPriority(sorted[j].Level)
		if pi != pj {
			return pi < pj
		}
		fi, fj := resultFilePath(sorted[i]), resultFilePath(sorted[j])
		if fi != fj {
			return fi < fj
		}
		return resultRegion(sorted[i]).StartLine < resultRegion(sorted[j]).StartLine
	})
	return sorted
}

// Format produces the Markdown report.
func (f *MarkdownFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("markdown formatter: result is required")
	}
	if result.Verdict == nil {
		return nil, fmt.Errorf("markdown formatter: verdict is required")
	}

	results := runResults(result.SARIFLog)
	files := make(map[string]struct{})
	counts := make(map[string]int)
	for _, r := range results {
		if fp := resultFilePath(r); fp != "" {
			files[fp] = struct{}{}
		}
		counts[r.Level]++
	}

	var b strings.Builder
	b.WriteString("## jinspect Analysis Summary\n\n")
	fmt.Fprintf(&b, "**Decision:** %s | **Findings:** %d | **Files:** %d\n",
		decisionBanner(result.Verdict.Decision), len(results), len(files))

	if len(results) == 0 {
		b.WriteString("\nNo findings detected.\n")
	} else {
		b.WriteString("\n### Findings by Severity\n")
		b.WriteString("| Severity | Count |\n")
		b.WriteString("|----------|-------|\n")
		for _, level := range []string{"error", "warning", "note"} {
			if n := counts[level]; n > 0 {
				fmt.Fprintf(&b, "| %s | %d |\n", level, n)
			}
		}

		b.WriteString("\n### Findings\n\n")
		for _, r := range sortForReport(results) {
			writeMarkdownFinding(&b, r)
		}
	}

	b.WriteString("---\n")
	b.WriteString("*Generated by [jinspect](" + sarif.ToolInformationURI + ")*\n")
	return []byte(b.String()), nil
}

func writeMarkdownFinding(b *strings.Builder, r sarif.Result) {
	fp := resultFilePath(r)
	pos := lineCol(resultRegion(r))

	where := ""
	switch {
	case fp != "" && pos != "":
		where = fmt.Sprintf(" in <code>%s:%s</code>", fp, pos)
	case fp != "":
		where = fmt.Sprintf(" in <code>%s</code>", fp)
	}

	b.WriteString("<details>\n")
	fmt.Fprintf(b, "<summary>%s <strong>%s</strong> %s: %s%s</summary>\n\n",
		severityEmoji(r.Level), r.Level, r.RuleID, truncate(r.Message.Text, 80), where)
	fmt.Fprintf(b, "**Inspection:** %s\n", r.RuleID)
	fmt.Fprintf(b, "\n> %s\n", r.Message.Text)

	if len(r.RelatedLocations) > 0 {
		b.WriteString("\n**Related:**\n")
		for _, rel := range r.RelatedLocations {
			label := ""
			if rel.Message != nil {
				label = " " + rel.Message.Text
			}
			fmt.Fprintf(b, "- `%s:%s`%s\n", rel.PhysicalLocation.ArtifactLocation.URI, lineCol(rel.PhysicalLocation.Region), label)
		}
	}
	if fix := resultFix(r); fix != "" {
		fmt.Fprintf(b, "\n**Quick fix:** %s\n", fix)
		if len(r.Fixes) > 0 {
			for _, c := range r.Fixes[0].ArtifactChanges {
				for _, rep := range c.Replacements {
					if rep.InsertedContent != nil {
						fmt.Fprintf(b, "\n```java\n%s\n```\n", rep.InsertedContent.Text)
					}
				}
			}
		}
	}
	b.WriteString("\n</details>\n\n")
}

// truncate shortens s to maxLen runes, ending in "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
