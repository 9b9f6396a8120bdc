package diag

import (
	"sort"

	"github.com/chris-regnier/jinspect/internal/tree"
)

// Collector accumulates the diagnostics of one inspection run. It is not safe
// for concurrent use; every run owns its own collector.
type Collector struct {
	inspection string
	severity   Severity
	items      []Diagnostic
}

// NewCollector returns an empty collector that stamps every diagnostic with
// the inspection name and default severity.
func NewCollector(inspection string, severity Severity) *Collector {
	if severity == "" {
		severity = SevWarning
	}
	return &Collector{inspection: inspection, severity: severity}
}

// Report starts a diagnostic at primary. Nothing is recorded until Emit.
func (c *Collector) Report(primary *tree.Node, template string) *Builder {
	return &Builder{
		c: c,
		d: Diagnostic{
			Inspection: c.inspection,
			Severity:   c.severity,
			Template:   template,
			Primary:    primary,
		},
	}
}

// Add records a finished diagnostic. Diagnostics without a primary node are
// dropped.
func (c *Collector) Add(d Diagnostic) {
	if d.Primary == nil {
		return
	}
	if d.Inspection == "" {
		d.Inspection = c.inspection
	}
	if d.Severity == "" {
		d.Severity = c.severity
	}
	c.items = append(c.items, d)
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int { return len(c.items) }

// Diagnostics returns a copy of the recorded diagnostics in emission order.
func (c *Collector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Sorted returns a copy ordered by ascending primary source position. Ties
// keep emission order.
func (c *Collector) Sorted() []Diagnostic {
	out := c.Diagnostics()
	SortByPosition(out)
	return out
}

// Merge appends other's diagnostics.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.items = append(c.items, other.items...)
}

// SortByPosition orders diagnostics by primary start offset, then end offset.
func SortByPosition(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i].Primary.Span, ds[j].Primary.Span
		if a.Start.Offset != b.Start.Offset {
			return a.Start.Offset < b.Start.Offset
		}
		return a.End.Offset < b.End.Offset
	})
}

// Builder accumulates the optional parts of a diagnostic before emitting it.
type Builder struct {
	c       *Collector
	d       Diagnostic
	emitted bool
}

// WithSecondary adds nodes referenced by the message.
func (b *Builder) WithSecondary(nodes ...*tree.Node) *Builder {
	for _, n := range nodes {
		if n != nil {
			b.d.Secondary = append(b.d.Secondary, n)
		}
	}
	return b
}

// WithFix attaches a fix descriptor.
func (b *Builder) WithFix(f *Fix) *Builder {
	b.d.Fix = f
	return b
}

// WithSeverity overrides the collector's default severity.
func (b *Builder) WithSeverity(s Severity) *Builder {
	b.d.Severity = s
	return b
}

// Emit records the diagnostic exactly once.
func (b *Builder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	b.c.Add(b.d)
}
