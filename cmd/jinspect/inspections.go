package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/chris-regnier/jinspect/internal/inspect"
)

var flagInspectionsJSON bool

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	enabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type inspectionInfo struct {
	Name        string                 `json:"name"`
	DisplayName string                 `json:"display_name"`
	Group       string                 `json:"group"`
	Severity    string                 `json:"severity"`
	Scope       string                 `json:"scope"`
	Enabled     bool                   `json:"enabled"`
	Description string                 `json:"description"`
	Options     map[string]interface{} `json:"options,omitempty"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "inspections",
		Short: "List available inspections and whether they are enabled",
		RunE:  runInspections,
	}
	cmd.Flags().BoolVar(&flagInspectionsJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(cmd)
}

func runInspections(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	var infos []inspectionInfo
	for _, insp := range inspect.DefaultRegistry().All() {
		ic := cfg.Inspections[insp.Name]
		sev := ic.Severity
		if sev == "" {
			sev = string(insp.Severity)
		}
		infos = append(infos, inspectionInfo{
			Name:        insp.Name,
			DisplayName: insp.DisplayName,
			Group:       insp.Group,
			Severity:    sev,
			Scope:       insp.Scope.String(),
			Enabled:     ic.IsEnabled(),
			Description: insp.Description,
			Options:     insp.Defaults.With(ic.Options),
		})
	}

	out := cmd.OutOrStdout()
	if flagInspectionsJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	for _, info := range infos {
		state := mutedStyle.Render("off")
		if info.Enabled {
			state = enabledStyle.Render("on ")
		}
		fmt.Fprintf(out, "%s %s %s\n", state, headerStyle.Render(info.Name),
			mutedStyle.Render(fmt.Sprintf("[%s, %s, %s scope]", info.Group, info.Severity, info.Scope)))
		fmt.Fprintf(out, "    %s\n", info.Description)
		if len(info.Options) > 0 {
			var kv []string
			for _, k := range sortedOptionKeys(info.Options) {
				kv = append(kv, fmt.Sprintf("%s=%v", k, info.Options[k]))
			}
			fmt.Fprintf(out, "    %s\n", mutedStyle.Render(strings.Join(kv, " ")))
		}
	}
	return nil
}

func sortedOptionKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
