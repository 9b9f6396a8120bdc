package diag

import (
	"sort"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// Location is a serializable source location.
type Location struct {
	Path  string    `json:"path" msgpack:"path"`
	Span  tree.Span `json:"span" msgpack:"span"`
	Label string    `json:"label,omitempty" msgpack:"label,omitempty"`
}

// FixInfo is the serializable part of a Fix.
type FixInfo struct {
	Name        string   `json:"name" msgpack:"name"`
	Kind        FixKind  `json:"kind" msgpack:"kind"`
	Target      Location `json:"target" msgpack:"target"`
	Replacement string   `json:"replacement,omitempty" msgpack:"replacement,omitempty"`
}

// Finding is a Diagnostic detached from its tree, suitable for caching and
// reporting.
type Finding struct {
	Inspection string     `json:"inspection" msgpack:"inspection"`
	Severity   Severity   `json:"severity" msgpack:"severity"`
	Message    string     `json:"message" msgpack:"message"`
	Location   Location   `json:"location" msgpack:"location"`
	Related    []Location `json:"related,omitempty" msgpack:"related,omitempty"`
	Fix        *FixInfo   `json:"fix,omitempty" msgpack:"fix,omitempty"`
}

// Flatten detaches d from its tree, resolving locations against path.
func (d Diagnostic) Flatten(path string) Finding {
	f := Finding{
		Inspection: d.Inspection,
		Severity:   d.Severity,
		Message:    d.Message(),
		Location:   Location{Path: path, Span: d.Primary.Span, Label: d.Primary.Name},
	}
	for _, s := range d.Secondary {
		f.Related = append(f.Related, Location{Path: path, Span: s.Span, Label: label(s)})
	}
	if d.Fix != nil {
		target := d.Fix.Target
		if target == nil {
			target = d.Primary
		}
		f.Fix = &FixInfo{
			Name:        d.Fix.Name,
			Kind:        d.Fix.Kind,
			Target:      Location{Path: path, Span: target.Span, Label: target.Name},
			Replacement: d.Fix.Replacement,
		}
	}
	return f
}

func label(n *tree.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.Kind.String()
}

// SortFindings orders findings by path, start offset, then inspection name.
func SortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Location.Path != b.Location.Path {
			return a.Location.Path < b.Location.Path
		}
		if a.Location.Span.Start.Offset != b.Location.Span.Start.Offset {
			return a.Location.Span.Start.Offset < b.Location.Span.Start.Offset
		}
		return a.Inspection < b.Inspection
	})
}
