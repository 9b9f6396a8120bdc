package inspect

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry holds the set of known inspections keyed by name. Registration
// normally happens at startup; lookups are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	inspections map[string]*Inspection
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{inspections: make(map[string]*Inspection)}
}

// Register adds an inspection keyed by its Name. A second registration under
// the same name fails with ErrDuplicateInspection and the first entry stays.
func (r *Registry) Register(i *Inspection) error {
	if i == nil || i.Name == "" {
		return errors.New("inspection must have a name")
	}
	if i.NewVisitor == nil {
		return fmt.Errorf("inspection %s: no visitor factory", i.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inspections[i.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateInspection, i.Name)
	}
	r.inspections[i.Name] = i
	return nil
}

// MustRegister is Register for static setup code. It panics on error.
func (r *Registry) MustRegister(insp ...*Inspection) {
	for _, i := range insp {
		if err := r.Register(i); err != nil {
			panic(err)
		}
	}
}

// Get retrieves an inspection by name.
func (r *Registry) Get(name string) (*Inspection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.inspections[name]
	return i, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.inspections))
	for name := range r.inspections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every inspection sorted by name.
func (r *Registry) All() []*Inspection {
	names := r.Names()
	out := make([]*Inspection, 0, len(names))
	for _, n := range names {
		i, _ := r.Get(n)
		out = append(out, i)
	}
	return out
}
