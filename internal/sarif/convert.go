package sarif

import (
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/inspect"
	"github.com/chris-regnier/jinspect/internal/tree"
)

// Result property keys.
const (
	PropGroup   = "jinspect/group"
	PropScope   = "jinspect/scope"
	PropFixName = "jinspect/fix"
	PropFixKind = "jinspect/fixKind"
)

// RegionOf converts a tree span to a 1-based SARIF region.
func RegionOf(s tree.Span) Region {
	r := Region{
		StartLine:   s.Start.Line,
		StartColumn: s.Start.Column + 1,
		EndLine:     s.End.Line,
		EndColumn:   s.End.Column + 1,
		CharOffset:  s.Start.Offset,
	}
	if n := s.End.Offset - s.Start.Offset; n > 0 {
		r.CharLength = n
	}
	return r
}

func locationOf(l diag.Location) Location {
	return Location{
		PhysicalLocation: PhysicalLocation{
			ArtifactLocation: ArtifactLocation{URI: l.Path},
			Region:           RegionOf(l.Span),
		},
	}
}

// FromFinding converts one finding. Related locations carry their label as
// message and are numbered from 1.
func FromFinding(f diag.Finding) Result {
	r := Result{
		RuleID:    f.Inspection,
		Level:     string(f.Severity),
		Message:   Message{Text: f.Message},
		Locations: []Location{locationOf(f.Location)},
	}
	for i, rel := range f.Related {
		loc := locationOf(rel)
		loc.ID = i + 1
		if rel.Label != "" {
			loc.Message = &Message{Text: rel.Label}
		}
		r.RelatedLocations = append(r.RelatedLocations, loc)
	}
	if f.Fix != nil {
		r.Properties = map[string]interface{}{
			PropFixName: f.Fix.Name,
			PropFixKind: string(f.Fix.Kind),
		}
		if f.Fix.Replacement != "" {
			r.Fixes = []Fix{{
				Description: Message{Text: f.Fix.Name},
				ArtifactChanges: []ArtifactChange{{
					ArtifactLocation: ArtifactLocation{URI: f.Fix.Target.Path},
					Replacements: []Replacement{{
						DeletedRegion:   RegionOf(f.Fix.Target.Span),
						InsertedContent: &ArtifactContentSnippet{Text: f.Fix.Replacement},
					}},
				}},
			}}
		}
	}
	return r
}

// FromFindings converts findings in order.
func FromFindings(fs []diag.Finding) []Result {
	out := make([]Result, 0, len(fs))
	for _, f := range fs {
		out = append(out, FromFinding(f))
	}
	return out
}

// Rule describes an inspection as a reporting descriptor.
func Rule(insp *inspect.Inspection, enabled bool) ReportingDescriptor {
	rd := ReportingDescriptor{
		ID:               insp.Name,
		Name:             insp.DisplayName,
		ShortDescription: Message{Text: insp.DisplayName},
		DefaultConfig: &ReportingConfiguration{
			Enabled: &enabled,
			Level:   string(insp.Severity),
		},
		Properties: map[string]interface{}{
			PropGroup: insp.Group,
			PropScope: insp.Scope.String(),
		},
	}
	if insp.Description != "" {
		rd.FullDescription = &Message{Text: insp.Description}
	}
	return rd
}
