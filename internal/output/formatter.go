// Package output renders jinspect analysis results as JSON, SARIF, Markdown
// or colored terminal text.
package output

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/chris-regnier/jinspect/internal/sarif"
	"github.com/chris-regnier/jinspect/internal/store"
)

// Formatter renders an AnalysisOutput into a byte slice in a specific format.
type Formatter interface {
	Format(result *AnalysisOutput) ([]byte, error)
}

// Stats summarizes how an analysis ran.
type Stats struct {
	Units     int           `json:"units"`
	Runs      int           `json:"runs"`
	CacheHits int           `json:"cache_hits"`
	Duration  time.Duration `json:"duration_ns"`
}

// AnalysisOutput holds the complete results of one analysis.
type AnalysisOutput struct {
	ID       string
	Verdict  *store.Verdict
	SARIFLog *sarif.Log
	Stats    *Stats // optional
}

// Formats lists the supported format names.
var Formats = []string{"json", "sarif", "markdown", "pretty"}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ResolveFormat returns flagValue when set, otherwise "pretty" for terminals
// and "json" for pipes.
func ResolveFormat(flagValue string, stdoutIsTTY bool) string {
	if flagValue != "" {
		return flagValue
	}
	if stdoutIsTTY {
		return "pretty"
	}
	return "json"
}

// NewFormatter returns a Formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	case "pretty":
		return &PrettyFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (supported: json, sarif, markdown, pretty)", format)
	}
}

func runResults(log *sarif.Log) []sarif.Result {
	if log == nil || len(log.Runs) == 0 {
		return nil
	}
	return log.Runs[0].Results
}

// resultFilePath extracts the file URI from the first location of a result.
func resultFilePath(r sarif.Result) string {
	if len(r.Locations) > 0 {
		return r.Locations[0].PhysicalLocation.ArtifactLocation.URI
	}
	return ""
}

func resultRegion(r sarif.Result) sarif.Region {
	if len(r.Locations) > 0 {
		return r.Locations[0].PhysicalLocation.Region
	}
	return sarif.Region{}
}

func resultFix(r sarif.Result) string {
	if s, ok := r.Properties[sarif.PropFixName].(string); ok {
		return s
	}
	return ""
}

// resultReplacement returns the inserted text of the first fix replacement.
func resultReplacement(r sarif.Result) string {
	if len(r.Fixes) == 0 || len(r.Fixes[0].ArtifactChanges) == 0 {
		return ""
	}
	if reps := r.Fixes[0].ArtifactChanges[0].Replacements; len(reps) > 0 && reps[0].InsertedContent != nil {
		return reps[0].InsertedContent.Text
	}
	return ""
}

// severityPriority orders levels error, warning, note.
func severityPriority(level string) int {
	switch level {
	case "error":
		return 0
	case "warning":
		return 1
	case "note":
		return 2
	default:
		return 3
	}
}
