// Package evaluator turns a SARIF log into a gate verdict with a Rego policy.
package evaluator

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/chris-regnier/jinspect/internal/sarif"
	"github.com/chris-regnier/jinspect/internal/store"
)

// Query is the rule every gate policy must define.
const Query = "data.jinspect.gate.decision"

//go:embed default.rego
var defaultPolicy string

type Evaluator struct {
	query rego.PreparedEvalQuery
}

// NewEvaluator prepares the gate policy. With an empty policyPath the
// embedded default is used. A directory loads every .rego file in it and a
// file loads that file; either replaces the default entirely.
func NewEvaluator(ctx context.Context, policyPath string) (*Evaluator, error) {
	modules, err := loadModules(policyPath)
	if err != nil {
		return nil, err
	}
	opts := []func(*rego.Rego){rego.Query(Query)}
	for _, name := range sortedKeys(modules) {
		opts = append(opts, rego.Module(name, modules[name]))
	}

	query, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing rego query: %w", err)
	}
	return &Evaluator{query: query}, nil
}

func loadModules(policyPath string) (map[string]string, error) {
	def := map[string]string{"default.rego": defaultPolicy}
	if policyPath == "" {
		return def, nil
	}
	info, err := os.Stat(policyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return nil, fmt.Errorf("reading policy path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(policyPath)
		if err != nil {
			return nil, fmt.Errorf("reading policy dir: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".rego") {
				files = append(files, filepath.Join(policyPath, e.Name()))
			}
		}
	} else {
		files = []string{policyPath}
	}
	if len(files) == 0 {
		return def, nil
	}

	modules := make(map[string]string, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading policy %s: %w", f, err)
		}
		modules[filepath.Base(f)] = string(data)
	}
	return modules, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Evaluate runs the policy over log. An undefined decision is treated as
// review.
func (e *Evaluator) Evaluate(ctx context.Context, log *sarif.Log) (*store.Verdict, error) {
	data, err := json.Marshal(log)
	if err != nil {
		return nil, err
	}
	var input interface{}
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating rego: %w", err)
	}

	decision := store.DecisionReview
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if d, ok := rs[0].Expressions[0].Value.(string); ok {
			decision = d
		}
	}

	var results []sarif.Result
	if len(log.Runs) > 0 {
		results = log.Runs[0].Results
	}
	counts := make(map[string]int)
	var relevant []sarif.Result
	for _, r := range results {
		counts[r.Level]++
		switch {
		case decision == store.DecisionReject && r.Level == "error":
			relevant = append(relevant, r)
		case decision == store.DecisionReview && (r.Level == "warning" || r.Level == "error"):
			relevant = append(relevant, r)
		}
	}

	return &store.Verdict{
		Decision:         decision,
		Reason:           fmt.Sprintf("Decision: %s based on %d findings", decision, len(results)),
		RelevantFindings: relevant,
		Metadata: map[string]interface{}{
			"errors":   counts["error"],
			"warnings": counts["warning"],
			"notes":    counts["note"],
		},
	}, nil
}
