package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chris-regnier/jinspect/internal/sarif"
	"github.com/chris-regnier/jinspect/internal/store"
)

var (
	prettyFileStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	prettyErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	prettyWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	prettyNoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	prettyRuleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	prettyMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	prettyFixStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	prettyBanner       = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
)

// PrettyFormatter renders colored terminal output grouped by file.
type PrettyFormatter struct {
	// Highlight syntax-colors fix replacement snippets.
	Highlight bool
}

func levelStyle(level string) lipgloss.Style {
	switch level {
	case "error":
		return prettyErrorStyle
	case "warning":
		return prettyWarningStyle
	default:
		return prettyNoteStyle
	}
}

func decisionStyle(decision string) lipgloss.Style {
	switch decision {
	case store.DecisionMerge:
		return prettyBanner.BorderForeground(lipgloss.Color("42"))
	case store.DecisionReject:
		return prettyBanner.BorderForeground(lipgloss.Color("196"))
	default:
		return prettyBanner.BorderForeground(lipgloss.Color("214"))
	}
}

// Format produces the terminal report.
func (f *PrettyFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil || result.Verdict == nil {
		return nil, fmt.Errorf("pretty formatter: verdict is required")
	}

	results := runResults(result.SARIFLog)
	byFile := make(map[string][]sarif.Result)
	counts := make(map[string]int)
	for _, r := range results {
		fp := resultFilePath(r)
		byFile[fp] = append(byFile[fp], r)
		counts[r.Level]++
	}
	files := make([]string, 0, len(byFile))
	for fp := range byFile {
		files = append(files, fp)
	}
	sort.Strings(files)

	var b strings.Builder
	for _, fp := range files {
		b.WriteString(prettyFileStyle.Render(fp))
		b.WriteString("\n")
		rs := byFile[fp]
		sort.SliceStable(rs, func(i, j int) bool {
			ri, rj := resultRegion(rs[i]), resultRegion(rs[j])
			if ri.StartLine != rj.StartLine {
				return ri.StartLine < rj.StartLine
			}
			return ri.StartColumn < rj.StartColumn
		})
		for _, r := range rs {
			f.writeFinding(&b, r)
		}
		b.WriteString("\n")
	}

	if len(results) == 0 {
		b.WriteString(prettyMutedStyle.Render("No findings."))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "%d findings (%d errors, %d warnings, %d notes) in %d files\n",
		len(results), counts["error"], counts["warning"], counts["note"], len(files))
	if s := result.Stats; s != nil {
		b.WriteString(prettyMutedStyle.Render(fmt.Sprintf("%d units, %d runs, %d cached, %s",
			s.Units, s.Runs, s.CacheHits, s.Duration.Round(1e6))))
		b.WriteString("\n")
	}
	b.WriteString(decisionStyle(result.Verdict.Decision).Render("Decision: " + result.Verdict.Decision))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

func (f *PrettyFormatter) writeFinding(b *strings.Builder, r sarif.Result) {
	region := resultRegion(r)
	pos := fmt.Sprintf("%d:%d", region.StartLine, region.StartColumn)
	fmt.Fprintf(b, "  %-8s %s  %s %s\n",
		pos,
		levelStyle(r.Level).Render(fmt.Sprintf("%-7s", r.Level)),
		r.Message.Text,
		prettyRuleStyle.Render("["+r.RuleID+"]"))
	for _, rel := range r.RelatedLocations {
		rr := rel.PhysicalLocation.Region
		label := ""
		if rel.Message != nil {
			label = rel.Message.Text
		}
		b.WriteString(prettyMutedStyle.Render(fmt.Sprintf("           related %d:%d %s", rr.StartLine, rr.StartColumn, label)))
		b.WriteString("\n")
	}
	if fix := resultFix(r); fix != "" {
		b.WriteString(prettyFixStyle.Render("           fix: " + fix))
		b.WriteString("\n")
	}
	if text := resultReplacement(r); text != "" {
		if f.Highlight {
			text = highlightJava(text)
		}
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			b.WriteString("             " + line + "\n")
		}
	}
}
