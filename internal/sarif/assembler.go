package sarif

import (
	"sort"
	"time"
)

// Assembler builds a single-run SARIF log.
type Assembler struct {
	version    string
	results    []Result
	rules      []ReportingDescriptor
	invocation *Invocation
	properties map[string]interface{}
}

// NewAssembler creates an Assembler for the given tool version.
func NewAssembler(version string) *Assembler {
	return &Assembler{version: version}
}

// AddResults adds SARIF results to the assembler.
func (a *Assembler) AddResults(results []Result) *Assembler {
	a.results = append(a.results, results...)
	return a
}

// AddRules adds reporting descriptors to the assembler.
func (a *Assembler) AddRules(rules ...ReportingDescriptor) *Assembler {
	a.rules = append(a.rules, rules...)
	return a
}

// WithInvocation records the run window and outcome.
func (a *Assembler) WithInvocation(start, end time.Time, successful bool) *Assembler {
	a.invocation = &Invocation{
		ExecutionSuccessful: successful,
		StartTimeUTC:        start.UTC().Format(time.RFC3339),
		EndTimeUTC:          end.UTC().Format(time.RFC3339),
	}
	return a
}

// WithProperty sets a run-level property.
func (a *Assembler) WithProperty(key string, value interface{}) *Assembler {
	if a.properties == nil {
		a.properties = make(map[string]interface{})
	}
	a.properties[key] = value
	return a
}

// Build constructs the log. Results are deduplicated and sorted by file,
// position and rule; rules are sorted by id.
func (a *Assembler) Build() *Log {
	log := NewLog(ToolName, a.version)
	run := &log.Runs[0]

	rules := append([]ReportingDescriptor(nil), a.rules...)
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	run.Tool.Driver.Rules = rules

	run.Results = dedup(a.results)
	if a.invocation != nil {
		run.Invocations = []Invocation{*a.invocation}
	}
	run.Properties = a.properties
	return log
}

type resultKey struct {
	rule, uri, message string
	line, column       int
}

func keyOf(r Result) resultKey {
	k := resultKey{rule: r.RuleID, message: r.Message.Text}
	if len(r.Locations) > 0 {
		pl := r.Locations[0].PhysicalLocation
		k.uri = pl.ArtifactLocation.URI
		k.line = pl.Region.StartLine
		k.column = pl.Region.StartColumn
	}
	return k
}

// dedup drops results reported twice at the same place with the same message
// and sorts the rest.
func dedup(results []Result) []Result {
	seen := make(map[resultKey]bool, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		k := keyOf(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := keyOf(out[i]), keyOf(out[j])
		if a.uri != b.uri {
			return a.uri < b.uri
		}
		if a.line != b.line {
			return a.line < b.line
		}
		if a.column != b.column {
			return a.column < b.column
		}
		return a.rule < b.rule
	})
	return out
}
