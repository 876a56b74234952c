package streaming

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

// ProximityPolicy keeps the chunks around streaming sources loaded and
// visible and unloads the rest.
type ProximityPolicy struct {
	// Depth is how many neighbour hops around a source chunk stay active.
	Depth int
}

// Active returns the chunks that should be loaded for sources. A source
// outside every chunk is ignored; with no usable source the spawn room is
// the seed of the active set.
func (p ProximityPolicy) Active(m *Model, sources []mgl64.Vec3) mapset.Set[uuid.UUID] {
	active := mapset.New[uuid.UUID]()
	var frontier []uuid.UUID
	for _, src := range sources {
		for _, id := range m.order {
			if m.chunks[id].Bounds.ContainsPoint(src) && !active.Has(id) {
				active.Put(id)
				frontier = append(frontier, id)
			}
		}
	}
	if len(frontier) == 0 && m.spawn != uuid.Nil {
		active.Put(m.spawn)
		frontier = append(frontier, m.spawn)
	}
	for hop := 0; hop < p.Depth; hop++ {
		var next []uuid.UUID
		for _, id := range frontier {
			m.chunks[id].Neighbors.Each(func(n uuid.UUID) {
				if !active.Has(n) {
					active.Put(n)
					next = append(next, n)
				}
			})
		}
		frontier = next
	}
	return active
}

// Apply sets the desired state of every chunk from sources.
func (p ProximityPolicy) Apply(m *Model, sources []mgl64.Vec3) error {
	active := p.Active(m, sources)
	for _, id := range m.order {
		on := active.Has(id)
		if err := m.SetStreamingLevelState(id, on, on); err != nil {
			return err
		}
	}
	return nil
}
