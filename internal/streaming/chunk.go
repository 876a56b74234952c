package streaming

import (
	"fmt"
	"snapmap/internal/geom"
	"snapmap/internal/world"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

// LoadState is the actual load state reported by the host.
type LoadState uint8

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return fmt.Sprintf("LoadState(%d)", uint8(s))
}

// VisState is the actual visibility reported by the host.
type VisState uint8

const (
	Hidden VisState = iota
	Visible
)

func (s VisState) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Chunk is the streaming unit for one placed module. Load and Vis track what
// the host has reported; WantLoaded and WantVisible are the desired state.
type Chunk struct {
	ID        uuid.UUID
	Bounds    geom.AABB
	Neighbors mapset.Set[uuid.UUID]
	Load      LoadState
	Vis       VisState
	SpawnRoom bool

	WantLoaded  bool
	WantVisible bool

	Level   world.LevelID
	Package string

	requested bool
	managed   []world.ActorID
}

// Visible reports whether the host has shown the chunk.
func (c *Chunk) Visible() bool { return c.Vis == Visible }

// NeighborIDs returns the neighbour set as a slice in no particular order.
func (c *Chunk) NeighborIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, c.Neighbors.Size())
	c.Neighbors.Each(func(id uuid.UUID) { out = append(out, id) })
	return out
}
