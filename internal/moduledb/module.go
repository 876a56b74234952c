// Package moduledb is the catalog of pre-authored dungeon modules and the
// connection points (doors) each module exposes.
package moduledb

import (
	"fmt"
	"snapmap/internal/geom"
	"strings"

	"github.com/google/uuid"
)

// ConstraintKind controls how a connection is aligned against the door it
// attaches to.
type ConstraintKind uint8

const (
	// Magnet connections snap position and facing: the module is rotated so
	// the two doors face each other.
	Magnet ConstraintKind = iota
	// Free connections snap position only; the module keeps its authored
	// orientation.
	Free
)

func (k ConstraintKind) String() string {
	switch k {
	case Magnet:
		return "magnet"
	case Free:
		return "free"
	}
	return fmt.Sprintf("ConstraintKind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ConstraintKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ConstraintKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "magnet":
		*k = Magnet
	case "free":
		*k = Free
	default:
		return fmt.Errorf("unknown connection constraint %q", b)
	}
	return nil
}

// ConnectionDescriptor is one door slot on a module.
// Local is relative to the module origin; the door faces along local +X,
// out of the module.
type ConnectionDescriptor struct {
	ID         uuid.UUID
	Name       string
	Local      geom.Transform
	Category   string
	Constraint ConstraintKind
}

// ModuleRecord is one pre-authored module.
type ModuleRecord struct {
	Name        string
	LevelRef    string
	Category    string
	Bounds      geom.AABB
	Connections []ConnectionDescriptor
	// Weight scales how often the module is picked among equal candidates.
	// Zero is treated as 1.
	Weight float64
}

// DoorCount returns the number of connection points.
func (m *ModuleRecord) DoorCount() int { return len(m.Connections) }

// Connection returns the descriptor with the given id.
func (m *ModuleRecord) Connection(id uuid.UUID) (ConnectionDescriptor, bool) {
	for _, c := range m.Connections {
		if c.ID == id {
			return c, true
		}
	}
	return ConnectionDescriptor{}, false
}

// SelectionWeight returns Weight with the zero value mapped to 1.
func (m *ModuleRecord) SelectionWeight() float64 {
	if m.Weight <= 0 {
		return 1
	}
	return m.Weight
}

// ConnectionTheme names the actor templates spawned for a door category.
type ConnectionTheme struct {
	Category   string
	DoorActors []string
	WallActors []string
}

// Compatible reports whether two connections may be joined.
// Categories must match; Magnet connections only join other Magnet
// connections, Free joins either.
func Compatible(a, b ConnectionDescriptor) bool {
	if a.Category != b.Category {
		return false
	}
	if a.Constraint == Magnet && b.Constraint == Magnet {
		return true
	}
	return a.Constraint == Free || b.Constraint == Free
}

// MinDoorCount returns the smallest door count among records, or 0.
func MinDoorCount(records []*ModuleRecord) int {
	minDoors := 0
	for i, r := range records {
		if i == 0 || r.DoorCount() < minDoors {
			minDoors = r.DoorCount()
		}
	}
	return minDoors
}
