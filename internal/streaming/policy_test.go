package streaming

import (
	"snapmap/internal/dungeon"
	"snapmap/internal/geom"
	"snapmap/internal/world"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

// rowLayout places n 10x10 modules along +X joined by doors.
func rowLayout(n int) *dungeon.Layout {
	l := &dungeon.Layout{}
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i)})
		x := float64(i * 10)
		l.Modules = append(l.Modules, dungeon.ModuleInstance{
			ID:        ids[i],
			Bounds:    geom.Box(mgl64.Vec3{x, 0, 0}, mgl64.Vec3{x + 10, 10, 4}),
			SpawnRoom: i == 0,
		})
	}
	for i := 0; i+1 < n; i++ {
		out := uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i), 'o'})
		in := uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i + 1), 'i'})
		l.Connections = append(l.Connections,
			dungeon.ConnectionInstance{ModuleA: ids[i], DoorA: out, ModuleB: ids[i+1], DoorB: in, Category: "A"},
			dungeon.ConnectionInstance{ModuleA: ids[i+1], DoorA: in, ModuleB: ids[i], DoorB: out, Category: "A"},
		)
	}
	return l
}

func indices(m *Model, set mapset.Set[uuid.UUID]) []int {
	var out []int
	for i, id := range m.order {
		if set.Has(id) {
			out = append(out, i)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProximityActiveSet(t *testing.T) {
	l := rowLayout(5)
	m := NewModel(world.NewSim(nil), l, Options{})

	cases := []struct {
		name    string
		depth   int
		sources []mgl64.Vec3
		want    []int
	}{
		{"no sources uses spawn room", 1, nil, []int{0, 1}},
		{"source in middle", 1, []mgl64.Vec3{{25, 5, 1}}, []int{1, 2, 3}},
		{"depth zero", 0, []mgl64.Vec3{{25, 5, 1}}, []int{2}},
		{"two sources", 1, []mgl64.Vec3{{5, 5, 1}, {45, 5, 1}}, []int{0, 1, 3, 4}},
		{"outside every chunk", 1, []mgl64.Vec3{{500, 5, 1}}, []int{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := indices(m, ProximityPolicy{Depth: tc.depth}.Active(m, tc.sources))
			if !equalInts(got, tc.want) {
				t.Errorf("active = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProximityApplyUnloadsTheRest(t *testing.T) {
	l := rowLayout(4)
	sim := world.NewSim(world.ContentFromLayout(l))
	m := NewModel(sim, l, Options{})
	p := ProximityPolicy{Depth: 1}

	if err := p.Apply(m, nil); err != nil {
		t.Fatal(err)
	}
	sim.Drain()
	m.Tick()
	if err := p.Apply(m, []mgl64.Vec3{{35, 5, 1}}); err != nil {
		t.Fatal(err)
	}
	sim.Drain()
	m.Tick()

	for i, c := range m.Chunks() {
		wantLoaded := i >= 2
		if (c.Load == Loaded) != wantLoaded {
			t.Errorf("chunk %d load = %v, want loaded=%v", i, c.Load, wantLoaded)
		}
	}
	// loaded by the spawn room pass, then unloaded
	if n := sim.Requests(m.Chunks()[1].Level); n != 2 {
		t.Errorf("chunk 1 requests = %d, want 2", n)
	}
}
