package connection

import (
	"snapmap/internal/dungeon"
	"snapmap/internal/world"

	"github.com/google/uuid"
)

type doorKey struct {
	module uuid.UUID
	door   uuid.UUID
}

// Table indexes the connection records of a layout and owns the arena of
// spawned door actor sets. Records are mutated in place.
type Table struct {
	conns    []dungeon.ConnectionInstance
	byDoor   map[doorKey]int
	byModule map[uuid.UUID][]int

	sets    map[dungeon.ActorSetID][]world.ActorID
	nextSet dungeon.ActorSetID
}

// NewTable indexes conns. The slice is shared, not copied, so resolver
// updates are visible in the layout it came from.
func NewTable(conns []dungeon.ConnectionInstance) *Table {
	t := &Table{
		conns:    conns,
		byDoor:   make(map[doorKey]int, len(conns)),
		byModule: make(map[uuid.UUID][]int),
		sets:     make(map[dungeon.ActorSetID][]world.ActorID),
		nextSet:  1,
	}
	for i := range conns {
		c := &conns[i]
		t.byDoor[doorKey{c.ModuleA, c.DoorA}] = i
		t.byModule[c.ModuleA] = append(t.byModule[c.ModuleA], i)
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.conns) }

// At returns record i.
func (t *Table) At(i int) *dungeon.ConnectionInstance { return &t.conns[i] }

// Lookup returns the record for a module's door.
func (t *Table) Lookup(module, door uuid.UUID) (int, bool) {
	i, ok := t.byDoor[doorKey{module, door}]
	return i, ok
}

// ForModule returns the record indices owned by a module in layout order.
func (t *Table) ForModule(module uuid.UUID) []int {
	return t.byModule[module]
}

// Reciprocal returns the B→A record for record i, if one exists and points
// back at i.
func (t *Table) Reciprocal(i int) (int, bool) {
	c := &t.conns[i]
	if !c.Matched() {
		return -1, false
	}
	j, ok := t.byDoor[doorKey{c.ModuleB, c.DoorB}]
	if !ok || !c.Reciprocates(&t.conns[j]) {
		return -1, false
	}
	return j, true
}

// newSet stores actors under a fresh handle.
func (t *Table) newSet(actors []world.ActorID) dungeon.ActorSetID {
	id := t.nextSet
	t.nextSet++
	t.sets[id] = actors
	return id
}

// Actors returns the actors behind a handle.
func (t *Table) Actors(set dungeon.ActorSetID) []world.ActorID {
	return t.sets[set]
}

// Sets returns the number of live actor sets.
func (t *Table) Sets() int { return len(t.sets) }
