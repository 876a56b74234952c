// Package dungeon holds the flat, serializable result of a dungeon build:
// placed module instances and the directional connection records between
// them. It is the hand-off point between the grower and the streaming model.
package dungeon

import (
	"encoding/json"
	"fmt"
	"os"
	"snapmap/internal/geom"

	"github.com/google/uuid"
)

// ActorSetID is a handle into the door actor arena. Two connection records
// that hold the same non-zero handle share one set of spawned door actors.
type ActorSetID uint32

// NoActorSet is the zero handle.
const NoActorSet ActorSetID = 0

// ModuleInstance is one placed module. Its ID is also the streaming chunk id.
type ModuleInstance struct {
	ID        uuid.UUID      `json:"id"`
	Module    string         `json:"module"`
	LevelRef  string         `json:"level"`
	Category  string         `json:"category"`
	Transform geom.Transform `json:"transform"`
	Bounds    geom.AABB      `json:"bounds"`
	Parent    uuid.UUID      `json:"parent"`
	Depth     int            `json:"depth"`
	FlowNode  string         `json:"flow_node"`
	SpawnRoom bool           `json:"spawn_room,omitempty"`
}

// ConnectionInstance is the A→B view of one door slot. A matched door has a
// reciprocal B→A record; an unmatched one has ModuleB == uuid.Nil and is
// realized as a wall.
type ConnectionInstance struct {
	ModuleA   uuid.UUID      `json:"module_a"`
	DoorA     uuid.UUID      `json:"door_a"`
	ModuleB   uuid.UUID      `json:"module_b"`
	DoorB     uuid.UUID      `json:"door_b"`
	Category  string         `json:"category"`
	Transform geom.Transform `json:"transform"`

	HasSpawnedDoorActor bool       `json:"has_spawned_door_actor"`
	SpawnedBy           uuid.UUID  `json:"spawned_by"`
	DoorActors          ActorSetID `json:"door_actors"`
}

// Matched reports whether the record points at another module.
func (c *ConnectionInstance) Matched() bool { return c.ModuleB != uuid.Nil }

// Reciprocates reports whether o is the B→A record for c.
func (c *ConnectionInstance) Reciprocates(o *ConnectionInstance) bool {
	return c.Matched() && o.Matched() &&
		c.ModuleA == o.ModuleB && c.DoorA == o.DoorB &&
		c.ModuleB == o.ModuleA && c.DoorB == o.DoorA
}

// Layout is a complete dungeon build.
type Layout struct {
	Seed        int64                `json:"seed"`
	Modules     []ModuleInstance     `json:"modules"`
	Connections []ConnectionInstance `json:"connections"`
}

// Module returns the instance with the given id.
func (l *Layout) Module(id uuid.UUID) (*ModuleInstance, bool) {
	for i := range l.Modules {
		if l.Modules[i].ID == id {
			return &l.Modules[i], true
		}
	}
	return nil, false
}

// DoorPairs returns the number of physical doors (reciprocal pairs).
func (l *Layout) DoorPairs() int {
	n := 0
	for i := range l.Connections {
		if l.Connections[i].Matched() {
			n++
		}
	}
	return n / 2
}

// Walls returns the number of unmatched connection records.
func (l *Layout) Walls() int {
	n := 0
	for i := range l.Connections {
		if !l.Connections[i].Matched() {
			n++
		}
	}
	return n
}

// Encode renders the layout as indented JSON. Equal layouts encode to equal
// bytes.
func (l *Layout) Encode() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Save writes the layout to path.
func (l *Layout) Save(path string) error {
	data, err := l.Encode()
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// LoadLayout reads a layout written by Save.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &l, nil
}
