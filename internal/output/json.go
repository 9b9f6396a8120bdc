package output

import (
	"encoding/json"
	"fmt"

	"github.com/chris-regnier/jinspect/internal/sarif"
)

// JSONFormatter renders the verdict and a flat list of findings.
type JSONFormatter struct{}

type jsonReport struct {
	ID       string        `json:"id,omitempty"`
	Decision string        `json:"decision"`
	Reason   string        `json:"reason"`
	Findings []jsonFinding `json:"findings"`
	Stats    *Stats        `json:"stats,omitempty"`
}

type jsonRegion struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

type jsonLocation struct {
	Path   string     `json:"path"`
	Region jsonRegion `json:"region"`
	Label  string     `json:"label,omitempty"`
}

type jsonFix struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Replacement string `json:"replacement,omitempty"`
}

type jsonFinding struct {
	Inspection string         `json:"inspection"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Path       string         `json:"path"`
	Region     jsonRegion     `json:"region"`
	Related    []jsonLocation `json:"related,omitempty"`
	Fix        *jsonFix       `json:"fix,omitempty"`
}

func toRegion(r sarif.Region) jsonRegion {
	return jsonRegion{StartLine: r.StartLine, StartColumn: r.StartColumn, EndLine: r.EndLine, EndColumn: r.EndColumn}
}

func toJSONFinding(r sarif.Result) jsonFinding {
	f := jsonFinding{
		Inspection: r.RuleID,
		Level:      r.Level,
		Message:    r.Message.Text,
		Path:       resultFilePath(r),
		Region:     toRegion(resultRegion(r)),
	}
	for _, rel := range r.RelatedLocations {
		loc := jsonLocation{
			Path:   rel.PhysicalLocation.ArtifactLocation.URI,
			Region: toRegion(rel.PhysicalLocation.Region),
		}
		if rel.Message != nil {
			loc.Label = rel.Message.Text
		}
		f.Related = append(f.Related, loc)
	}
	if name := resultFix(r); name != "" {
		kind, _ := r.Properties[sarif.PropFixKind].(string)
		f.Fix = &jsonFix{
			Name:        name,
			Description: fmt.Sprintf("%s (%s)", name, kind),
			Replacement: resultReplacement(r),
		}
	}
	return f
}

// Format serializes the report as indented JSON with a trailing newline.
func (f *JSONFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil || result.Verdict == nil {
		return nil, fmt.Errorf("json formatter: verdict is required")
	}
	report := jsonReport{
		ID:       result.ID,
		Decision: result.Verdict.Decision,
		Reason:   result.Verdict.Reason,
		Findings: []jsonFinding{},
		Stats:    result.Stats,
	}
	for _, r := range runResults(result.SARIFLog) {
		report.Findings = append(report.Findings, toJSONFinding(r))
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json formatter: %w", err)
	}
	return append(data, '\n'), nil
}
