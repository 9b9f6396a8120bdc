package output

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chris-regnier/jinspect/internal/sarif"
)

// SARIFFormatter renders the SARIF log enriched for GitHub Code Scanning:
// partial fingerprints, security-severity and the working directory.
type SARIFFormatter struct{}

// Format enriches the log in place and serializes it with a trailing newline.
func (f *SARIFFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil || result.SARIFLog == nil {
		return nil, fmt.Errorf("sarif formatter: SARIF log is required")
	}

	log := result.SARIFLog
	for i := range log.Runs {
		enrichRun(&log.Runs[i])
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sarif formatter: %w", err)
	}
	return append(data, '\n'), nil
}

func enrichRun(run *sarif.Run) {
	if run.Tool.Driver.InformationURI == "" {
		run.Tool.Driver.InformationURI = sarif.ToolInformationURI
	}
	wd, _ := os.Getwd()
	if len(run.Invocations) == 0 {
		run.Invocations = []sarif.Invocation{{ExecutionSuccessful: true}}
	}
	if wd != "" {
		run.Invocations[0].WorkingDirectory = &sarif.ArtifactLocation{URI: wd}
	}
	for j := range run.Results {
		enrichResult(&run.Results[j])
	}
}

// enrichResult adds the primary location fingerprint, security-severity and
// precision.
func enrichResult(r *sarif.Result) {
	if r.PartialFingerprints == nil {
		r.PartialFingerprints = make(map[string]string)
	}
	if r.Properties == nil {
		r.Properties = make(map[string]interface{})
	}

	region := resultRegion(*r)
	input := fmt.Sprintf("%s|%s|%d|%d|%s", r.RuleID, resultFilePath(*r), region.StartLine, region.StartColumn, r.Message.Text)
	hash := sha256.Sum256([]byte(input))
	r.PartialFingerprints["primaryLocationLineHash"] = fmt.Sprintf("%x", hash[:16])

	r.Properties["security-severity"] = securitySeverity(r.Level)
	r.Properties["precision"] = "high"
}

// securitySeverity maps SARIF levels to code-scanning scores.
func securitySeverity(level string) string {
	switch level {
	case "error":
		return "8.0"
	case "warning":
		return "5.0"
	default:
		return "2.0"
	}
}
