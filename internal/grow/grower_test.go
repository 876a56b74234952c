package grow

import (
	"bytes"
	"errors"
	"snapmap/internal/flow"
	"snapmap/internal/geom"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ─── end-to-end scenario A ────────────────────────────────────────────────────

func TestScenarioTwoModules(t *testing.T) {
	db := scenarioCatalog(t, "A")
	for seed := int64(0); seed < 10; seed++ {
		res, err := New(db, nil).Grow(flow.Chain("start", "room"), testConfig(seed))
		if err != nil {
			t.Fatalf("seed=%d: Grow: %v", seed, err)
		}
		l := res.Layout
		if len(l.Modules) != 2 {
			t.Fatalf("seed=%d: expected 2 modules, got %d", seed, len(l.Modules))
		}
		if l.DoorPairs() != 1 {
			t.Errorf("seed=%d: expected 1 door pair, got %d", seed, l.DoorPairs())
		}
		if l.Walls() != 1 {
			t.Errorf("seed=%d: expected 1 unmatched door, got %d", seed, l.Walls())
		}
		if l.Modules[0].Module != "start" || !l.Modules[0].SpawnRoom {
			t.Errorf("seed=%d: root should be the start module and spawn room", seed)
		}
		if l.Modules[1].Parent != l.Modules[0].ID || l.Modules[1].Depth != 1 {
			t.Errorf("seed=%d: room should hang off the start module at depth 1", seed)
		}
	}
}

func TestMagnetAlignmentFacesDoors(t *testing.T) {
	db := scenarioCatalog(t, "A")
	res, err := New(db, nil).Grow(flow.Chain("start", "room"), testConfig(3))
	if err != nil {
		t.Fatal(err)
	}
	var a, b *geom.Transform
	for i := range res.Layout.Connections {
		c := &res.Layout.Connections[i]
		if !c.Matched() {
			continue
		}
		if a == nil {
			a = &c.Transform
		} else {
			b = &c.Transform
		}
	}
	if a == nil || b == nil {
		t.Fatal("expected a matched pair")
	}
	if !a.Location.ApproxEqualThreshold(b.Location, 1e-6) {
		t.Errorf("paired doors should coincide: %v vs %v", a.Location, b.Location)
	}
	if d := a.Forward().Dot(b.Forward()); d > -0.999 {
		t.Errorf("paired doors should face each other, dot=%v", d)
	}
}

// ─── determinism ──────────────────────────────────────────────────────────────

func TestGrowIsDeterministic(t *testing.T) {
	db := hubCatalog(t)
	g := hubFlow()
	for seed := int64(0); seed < 10; seed++ {
		r1, err := New(db, nil).Grow(g, testConfig(seed))
		if err != nil {
			t.Fatalf("seed=%d: %v", seed, err)
		}
		r2, err := New(db, nil).Grow(g, testConfig(seed))
		if err != nil {
			t.Fatalf("seed=%d: %v", seed, err)
		}
		b1, _ := r1.Layout.Encode()
		b2, _ := r2.Layout.Encode()
		if !bytes.Equal(b1, b2) {
			t.Fatalf("seed=%d: layouts differ between runs", seed)
		}
	}
}

func hubFlow() *flow.Graph {
	return &flow.Graph{Nodes: []flow.Node{
		{ID: "hub", Category: "hub", Children: []string{"c1", "c2", "c3"}},
		{ID: "c1", Category: "corridor", Children: []string{"r1"}},
		{ID: "c2", Category: "corridor", Children: []string{"r2"}},
		{ID: "c3", Category: "corridor", Children: []string{"c4"}},
		{ID: "c4", Category: "corridor", Children: []string{"r3"}},
		{ID: "r1", Category: "room"},
		{ID: "r2", Category: "room"},
		{ID: "r3", Category: "room"},
	}}
}

// ─── layout properties ───────────────────────────────────────────────────────────────

func TestGrownModulesDoNotOverlap(t *testing.T) {
	db := hubCatalog(t)
	for seed := int64(0); seed < 10; seed++ {
		cfg := testConfig(seed)
		res, err := New(db, nil).Grow(hubFlow(), cfg)
		if err != nil {
			t.Fatalf("seed=%d: %v", seed, err)
		}
		mods := res.Layout.Modules
		if len(mods) != 8 {
			t.Fatalf("seed=%d: expected 8 modules, got %d", seed, len(mods))
		}
		for i := 0; i < len(mods); i++ {
			for j := i + 1; j < len(mods); j++ {
				a := mods[i].Bounds.Contract(cfg.BoundsContraction)
				b := mods[j].Bounds.Contract(cfg.BoundsContraction)
				if a.Intersects(b) {
					t.Errorf("seed=%d: module %d %v overlaps module %d %v", seed, i, mods[i].Bounds, j, mods[j].Bounds)
				}
			}
		}
	}
}

func TestEveryMatchedConnectionHasReciprocal(t *testing.T) {
	db := hubCatalog(t)
	res, err := New(db, nil).Grow(hubFlow(), testConfig(7))
	if err != nil {
		t.Fatal(err)
	}
	conns := res.Layout.Connections
	for i := range conns {
		if !conns[i].Matched() {
			continue
		}
		found := 0
		for j := range conns {
			if conns[i].Reciprocates(&conns[j]) {
				found++
			}
		}
		if found != 1 {
			t.Errorf("connection %d has %d reciprocal records, want 1", i, found)
		}
	}
	if res.Layout.DoorPairs() != 7 {
		t.Errorf("expected 7 door pairs for 8 modules, got %d", res.Layout.DoorPairs())
	}
}

func TestNonRepeatDepth(t *testing.T) {
	db := hubCatalog(t)
	g := flow.Chain("hub", "corridor", "corridor", "corridor", "corridor", "room")
	cfg := testConfig(2)
	cfg.NonRepeatDepth = 1
	res, err := New(db, nil).Grow(g, cfg)
	if err != nil {
		t.Fatal(err)
	}
	mods := res.Layout.Modules
	for i := 1; i < len(mods); i++ {
		parent, _ := res.Layout.Module(mods[i].Parent)
		if parent.Module == mods[i].Module {
			t.Errorf("module %d (%s) repeats its parent", i, mods[i].Module)
		}
	}
}

func TestNegationVolumeBlocksPlacement(t *testing.T) {
	db := scenarioCatalog(t, "A")
	cfg := testConfig(0)
	cfg.NegationVolumes = []NegationVolume{
		{Bounds: geom.Box(mgl64.Vec3{10, -50, -50}, mgl64.Vec3{100, 50, 50})},
	}
	res, err := New(db, nil).Grow(flow.Chain("start", "room"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	room := res.Layout.Modules[1]
	if room.Bounds.Max[0] > 0 {
		t.Fatalf("room should be forced west of the start module, got %v", room.Bounds)
	}
}

func TestInverseVolumeRequiresContainment(t *testing.T) {
	db := scenarioCatalog(t, "A")
	cfg := testConfig(0)
	cfg.NegationVolumes = []NegationVolume{
		{Bounds: geom.Box(mgl64.Vec3{-1, -50, -50}, mgl64.Vec3{100, 50, 50}), Inverse: true},
	}
	res, err := New(db, nil).Grow(flow.Chain("start", "room"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	room := res.Layout.Modules[1]
	if room.Bounds.Min[0] < 9 {
		t.Fatalf("room should be forced east into the required volume, got %v", room.Bounds)
	}

	cfg.NegationVolumes = append(cfg.NegationVolumes, NegationVolume{
		Bounds: geom.Box(mgl64.Vec3{10, -50, -50}, mgl64.Vec3{100, 50, 50}),
	})
	cfg.MaxBuildRetries = 3
	if _, err := New(db, nil).Grow(flow.Chain("start", "room"), cfg); !errors.Is(err, ErrGrowthExhausted) {
		t.Fatalf("both sides blocked: expected ErrGrowthExhausted, got %v", err)
	}
}

// ─── failure policy ───────────────────────────────────────────────────────────

func TestRetryBoundRespected(t *testing.T) {
	db := scenarioCatalog(t, "B") // room can never attach to an A door
	for _, retries := range []int{0, 1, 5} {
		cfg := testConfig(11)
		cfg.MaxBuildRetries = retries
		_, err := New(db, nil).Grow(flow.Chain("start", "room"), cfg)
		var ex *ExhaustedError
		if !errors.As(err, &ex) {
			t.Fatalf("retries=%d: expected *ExhaustedError, got %v", retries, err)
		}
		if !errors.Is(err, ErrGrowthExhausted) {
			t.Errorf("retries=%d: error should unwrap to ErrGrowthExhausted", retries)
		}
		if ex.Attempts != retries+1 {
			t.Errorf("retries=%d: got %d attempts, want %d", retries, ex.Attempts, retries+1)
		}
		seen := map[int64]bool{}
		for _, s := range ex.Seeds {
			if seen[s] {
				t.Errorf("retries=%d: seed %d tried twice", retries, s)
			}
			seen[s] = true
		}
		if ex.Seeds[0] != 11 {
			t.Errorf("first attempt should use the configured seed, got %d", ex.Seeds[0])
		}
		if !errors.Is(ex.Last, errNoPlacement) {
			t.Errorf("last failure should be errNoPlacement, got %v", ex.Last)
		}
	}
}

func TestAttemptDeadline(t *testing.T) {
	db := scenarioCatalog(t, "A")
	gr := New(db, nil)
	clock := time.Unix(0, 0)
	gr.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	cfg := testConfig(0)
	cfg.AttemptTimeout = 500 * time.Millisecond
	cfg.MaxBuildRetries = 2
	_, err := gr.Grow(flow.Chain("start", "room"), cfg)
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected *ExhaustedError, got %v", err)
	}
	if ex.Attempts != 3 || !errors.Is(ex.Last, errDeadline) {
		t.Fatalf("expected 3 deadline failures, got %d attempts, last %v", ex.Attempts, ex.Last)
	}
}

func TestResolveFrameBudget(t *testing.T) {
	db := scenarioCatalog(t, "A")
	cfg := testConfig(0)
	cfg.MaxResolveFrames = 1
	cfg.MaxBuildRetries = 0
	_, err := New(db, nil).Grow(flow.Chain("start", "room"), cfg)
	var ex *ExhaustedError
	if !errors.As(err, &ex) || !errors.Is(ex.Last, errFrameBudget) {
		t.Fatalf("expected frame budget failure, got %v", err)
	}
}

func TestConfigurationErrorsStopBeforeGrowth(t *testing.T) {
	if _, err := New(nil, nil).Grow(flow.Chain("start"), testConfig(0)); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("expected ErrNoDatabase, got %v", err)
	}
	db := scenarioCatalog(t, "A")
	cfg := testConfig(0)
	cfg.PreferMinimumDoors = 1.5
	if _, err := New(db, nil).Grow(flow.Chain("start"), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := New(db, nil).Grow(&flow.Graph{}, testConfig(0)); !errors.Is(err, flow.ErrInvalidGraph) {
		t.Fatalf("expected flow.ErrInvalidGraph, got %v", err)
	}
}
