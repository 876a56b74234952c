package dungeon

import (
	"testing"

	"github.com/google/uuid"
)

func TestReciprocates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	da, db := uuid.New(), uuid.New()
	ab := ConnectionInstance{ModuleA: a, DoorA: da, ModuleB: b, DoorB: db}
	ba := ConnectionInstance{ModuleA: b, DoorA: db, ModuleB: a, DoorB: da}
	if !ab.Reciprocates(&ba) || !ba.Reciprocates(&ab) {
		t.Fatal("A→B and B→A should reciprocate")
	}
	wrongDoor := ConnectionInstance{ModuleA: b, DoorA: uuid.New(), ModuleB: a, DoorB: da}
	if ab.Reciprocates(&wrongDoor) {
		t.Fatal("a different door on B must not reciprocate")
	}
	wall := ConnectionInstance{ModuleA: a, DoorA: da}
	if wall.Matched() || wall.Reciprocates(&ba) {
		t.Fatal("unmatched record is a wall and reciprocates nothing")
	}
}

func TestDoorPairsAndWalls(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	da, db, dw := uuid.New(), uuid.New(), uuid.New()
	l := Layout{Connections: []ConnectionInstance{
		{ModuleA: a, DoorA: da, ModuleB: b, DoorB: db},
		{ModuleA: b, DoorA: db, ModuleB: a, DoorB: da},
		{ModuleA: a, DoorA: dw},
	}}
	if l.DoorPairs() != 1 || l.Walls() != 1 {
		t.Fatalf("got %d pairs, %d walls; want 1, 1", l.DoorPairs(), l.Walls())
	}
}
