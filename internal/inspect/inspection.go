// Package inspect defines inspections, the registry that catalogs them, and
// the built-in inspections.
package inspect

import (
	"log/slog"

	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/hierarchy"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// Inspection groups.
const (
	GroupThreading     = "threading"
	GroupNaming        = "naming"
	GroupClassLayout   = "class-layout"
	GroupLanguageLevel = "language-level"
	GroupComplexity    = "complexity"
	GroupErrorHandling = "error-handling"
)

// Scope selects what a single visitor is walked over.
type Scope uint8

const (
	// ScopeUnit walks the visitor once over the unit root.
	ScopeUnit Scope = iota
	// ScopeClass walks the visitor once over every class-like node, outermost
	// first. Visitors prune nested classes to avoid reporting them twice.
	ScopeClass
)

func (s Scope) String() string {
	if s == ScopeClass {
		return "class"
	}
	return "unit"
}

// Env carries the read-only collaborators a visitor may use.
type Env struct {
	Hierarchy *hierarchy.Resolver
	Logger    *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Hierarchy == nil {
		e.Hierarchy = hierarchy.NewResolver(hierarchy.NewIndex(), hierarchy.WithLogger(e.Logger))
	}
	return e
}

// Factory builds a visitor for one run. All configuration is read from opts
// here; the returned visitor must not consult shared mutable state. An
// invalid option returns an error wrapping ErrInvalidConfiguration.
type Factory func(env Env, opts Options, report *diag.Collector) (walk.Visitor, error)

// Inspection is an immutable registry entry.
type Inspection struct {
	Name        string
	DisplayName string
	Group       string
	Description string
	Severity    diag.Severity
	Scope       Scope
	// Defaults are the options used when the host supplies none.
	Defaults   Options
	NewVisitor Factory
}

// Settings is the per-run configuration of an inspection.
type Settings struct {
	Severity diag.Severity
	Options  Options
}

func (i *Inspection) severity(s Settings) diag.Severity {
	if s.Severity != "" {
		return s.Severity
	}
	if i.Severity != "" {
		return i.Severity
	}
	return diag.SevWarning
}
