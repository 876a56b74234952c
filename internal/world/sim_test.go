package world

import (
	"snapmap/internal/geom"
	"testing"

	"github.com/google/uuid"
)

type eventLog struct{ events []Event }

func (l *eventLog) record(e Event) { l.events = append(l.events, e) }

func newTestSim() (*Sim, *eventLog, LevelID) {
	lvl := ChunkLevel(uuid.New())
	sim := NewSim(map[LevelID][]Marker{
		lvl: {{Door: uuid.New(), Transform: geom.At(1, 0, 0)}, {Door: uuid.New(), Transform: geom.At(-1, 0, 0)}},
	})
	log := &eventLog{}
	sim.Subscribe(log.record)
	return sim, log, lvl
}

func TestLoadThenShowTakesTwoSteps(t *testing.T) {
	sim, log, lvl := newTestSim()
	sim.RequestLevelState(LevelRequest{Level: lvl, Loaded: true, Visible: true})

	sim.Step()
	if loaded, visible := sim.LevelState(lvl); !loaded || visible {
		t.Fatalf("after one step expected loaded+hidden, got loaded=%v visible=%v", loaded, visible)
	}
	if got := len(sim.ConnectionActors(lvl)); got != 2 {
		t.Fatalf("expected 2 connection markers after load, got %d", got)
	}
	sim.Step()
	if _, visible := sim.LevelState(lvl); !visible {
		t.Fatal("expected visible after second step")
	}
	if len(sim.Pending()) != 0 {
		t.Fatal("request should be finished")
	}
	want := []EventKind{LevelLoaded, LevelShown}
	if len(log.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(log.events), len(want))
	}
	for i, k := range want {
		if log.events[i].Kind != k || log.events[i].Level != lvl {
			t.Errorf("event %d = %+v, want %v", i, log.events[i], k)
		}
	}
}

func TestUnloadHidesFirstAndDestroysContent(t *testing.T) {
	sim, log, lvl := newTestSim()
	sim.RequestLevelState(LevelRequest{Level: lvl, Loaded: true, Visible: true})
	sim.Drain()
	markers := sim.ConnectionActors(lvl)

	sim.RequestLevelState(LevelRequest{Level: lvl})
	sim.Drain()
	if loaded, _ := sim.LevelState(lvl); loaded {
		t.Fatal("level should be unloaded")
	}
	for _, m := range markers {
		if sim.Alive(m.Actor) {
			t.Errorf("marker %d should be destroyed on unload", m.Actor)
		}
	}
	kinds := []EventKind{}
	for _, e := range log.events {
		kinds = append(kinds, e.Kind)
	}
	want := []EventKind{LevelLoaded, LevelShown, LevelHidden, LevelUnloaded}
	for i := range want {
		if i >= len(kinds) || kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
}

func TestCompleteChoosesOrder(t *testing.T) {
	sim, log, a := newTestSim()
	b := ChunkLevel(uuid.New())
	sim.RequestLevelState(LevelRequest{Level: a, Loaded: true})
	sim.RequestLevelState(LevelRequest{Level: b, Loaded: true})

	sim.Complete(b)
	sim.Complete(a)
	if log.events[0].Level != b || log.events[1].Level != a {
		t.Fatalf("expected b then a, got %+v", log.events)
	}
}

func TestDestroyAndCollect(t *testing.T) {
	sim := NewSim(nil)
	id, _ := sim.Spawn(PersistentLevel, "door", geom.Identity())
	if !sim.Alive(id) {
		t.Fatal("spawned actor should be alive")
	}
	if err := sim.Destroy(id); err != nil {
		t.Fatal(err)
	}
	if err := sim.Destroy(id); err == nil {
		t.Fatal("destroying twice should fail")
	}
	if err := sim.SetHidden(id, true); err == nil {
		t.Fatal("hiding a destroyed actor should fail")
	}
	sim.CollectGarbage()
	if sim.GCRuns() != 1 || sim.ActorCount() != 0 {
		t.Fatalf("gc runs=%d actors=%d", sim.GCRuns(), sim.ActorCount())
	}
}

func TestRemoveUnknownLevel(t *testing.T) {
	sim := NewSim(nil)
	if err := sim.RemoveLevel("nowhere"); err == nil {
		t.Fatal("expected ErrNoLevel")
	}
}
