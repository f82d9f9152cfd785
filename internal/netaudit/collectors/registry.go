package collectors

import (
	"fmt"

	apperrors "github.com/ehsaniara/netaudit/pkg/errors"
)

// Registry holds the known layer collectors and their canonical order:
// cheap health checks first, expensive routing state later.
type Registry struct {
	byName map[string]Collector
	order  []string
}

// NewRegistry builds a registry with every built-in layer registered
func NewRegistry(deps Deps) *Registry {
	r := &Registry{byName: make(map[string]Collector)}

	for _, c := range []Collector{
		NewHealthCollector(deps),
		NewInterfacesCollector(deps),
		NewIGPCollector(deps),
		NewBGPCollector(deps),
		NewMPLSCollector(deps),
		NewVPNCollector(deps),
		NewStaticCollector(deps),
		NewConsoleCollector(deps),
	} {
		r.byName[c.Name()] = c
		r.order = append(r.order, c.Name())
	}

	return r
}

// Get returns the collector for a layer name
func (r *Registry) Get(name string) (Collector, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("layer %q: %w", name, apperrors.ErrUnknownLayer)
	}
	return c, nil
}

// Resolve maps layer names to collectors, preserving request order. An
// empty request means every layer in canonical order.
func (r *Registry) Resolve(names []string) ([]Collector, error) {
	if len(names) == 0 {
		names = r.order
	}

	out := make([]Collector, 0, len(names))
	for _, name := range names {
		c, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Names returns the canonical layer order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
