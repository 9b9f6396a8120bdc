// Package diag holds the diagnostics inspections emit and the collector a
// single inspection run accumulates them in.
package diag

import (
	"strings"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// Severity is the SARIF-compatible level of a diagnostic.
type Severity string

const (
	SevNote    Severity = "note"
	SevWarning Severity = "warning"
	SevError   Severity = "error"
)

// ParseSeverity validates a level name.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SevNote, SevWarning, SevError:
		return Severity(s), true
	}
	return "", false
}

// FixKind classifies the edit a Fix describes.
type FixKind string

const (
	FixRename  FixKind = "rename"
	FixReplace FixKind = "replace"
	FixRemove  FixKind = "remove"
)

// Fix describes an edit that would resolve a diagnostic. Applying it is left
// to a text-editing collaborator.
type Fix struct {
	Name   string
	Kind   FixKind
	Target *tree.Node
	// Replacement is the suggested new text for FixReplace, or the new name
	// for FixRename when one is known.
	Replacement string
}

// Diagnostic is one finding bound to a node. It is never mutated after it is
// added to a Collector.
type Diagnostic struct {
	Inspection string
	Severity   Severity
	// Template may contain "#ref", replaced by the primary node's name, and
	// "#loc", replaced by nothing (hosts show the location separately).
	Template  string
	Primary   *tree.Node
	Secondary []*tree.Node
	Fix       *Fix
}

// Message renders the template.
func (d Diagnostic) Message() string {
	ref := ""
	if d.Primary != nil {
		ref = d.Primary.Name
		if ref == "" {
			ref = d.Primary.Text
		}
	}
	msg := strings.ReplaceAll(d.Template, "#ref", ref)
	msg = strings.ReplaceAll(msg, "#loc", "")
	return strings.TrimSpace(msg)
}
