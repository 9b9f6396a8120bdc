package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/chris-regnier/jinspect/internal/config"
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/engine"
	"github.com/chris-regnier/jinspect/internal/inspect"
	"github.com/chris-regnier/jinspect/internal/output"
)

// loadConfig loads the tiered configuration. An explicit path replaces the
// project tier.
func loadConfig(explicit string) (*config.Config, error) {
	project := explicit
	if project == "" {
		project = config.ProjectPath(".")
	}
	cfg, err := config.LoadTiered(config.MachinePath(), project)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// selections builds the engine plan from the enabled inspections, in name
// order. When only is non-empty it replaces the enabled set. Unknown names
// are kept so the engine reports them.
func selections(cfg *config.Config, only []string) []engine.Selection {
	names := only
	if len(names) == 0 {
		names = cfg.Enabled()
	}
	sort.Strings(names)

	out := make([]engine.Selection, 0, len(names))
	for _, name := range names {
		ic := cfg.Inspections[name]
		sev, _ := diag.ParseSeverity(ic.Severity)
		out = append(out, engine.Selection{
			Name: name,
			Settings: inspect.Settings{
				Severity: sev,
				Options:  inspect.Options(ic.Options),
			},
		})
	}
	return out
}

// render formats out for stdout. On a terminal, pretty output gets
// highlighted fix snippets and markdown is rendered rather than printed raw.
func render(format string, out *output.AnalysisOutput) ([]byte, error) {
	tty := output.IsTerminal(os.Stdout)
	format = output.ResolveFormat(format, tty)
	formatter, err := output.NewFormatter(format)
	if err != nil {
		return nil, err
	}
	if pf, ok := formatter.(*output.PrettyFormatter); ok {
		pf.Highlight = tty
	}
	data, err := formatter.Format(out)
	if err != nil {
		return nil, fmt.Errorf("formatting output: %w", err)
	}
	if format == "markdown" && tty {
		return output.RenderMarkdown(data, 100)
	}
	return data, nil
}
