package moduledb

import "github.com/google/uuid"

// connectionRef locates a descriptor inside the registry.
type connectionRef struct {
	module string
	index  int
}

// Registry indexes the connection points of every module.
type Registry struct {
	byModule map[string][]ConnectionDescriptor
	byID     map[uuid.UUID]connectionRef
}

func newRegistry() *Registry {
	return &Registry{
		byModule: make(map[string][]ConnectionDescriptor),
		byID:     make(map[uuid.UUID]connectionRef),
	}
}

// add registers a module's connections. It reports the first id already
// owned by another connection.
func (r *Registry) add(module string, conns []ConnectionDescriptor) (uuid.UUID, bool) {
	for i, c := range conns {
		if _, dup := r.byID[c.ID]; dup {
			return c.ID, false
		}
		r.byID[c.ID] = connectionRef{module: module, index: i}
	}
	r.byModule[module] = conns
	return uuid.Nil, true
}

// Connections returns the ordered connection list for a module.
func (r *Registry) Connections(module string) []ConnectionDescriptor {
	return r.byModule[module]
}

// Lookup finds a connection by id and returns it with its owning module name.
func (r *Registry) Lookup(id uuid.UUID) (ConnectionDescriptor, string, bool) {
	ref, ok := r.byID[id]
	if !ok {
		return ConnectionDescriptor{}, "", false
	}
	return r.byModule[ref.module][ref.index], ref.module, true
}

// Len returns the number of registered connections.
func (r *Registry) Len() int { return len(r.byID) }
