package grow

import (
	"snapmap/internal/geom"
	"snapmap/internal/moduledb"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// ─── catalog helpers ──────────────────────────────────────────────────────────

func door(module, name string, x, y, yaw float64, category string) moduledb.ConnectionDescriptor {
	return moduledb.ConnectionDescriptor{
		ID:       moduledb.ConnectionID(module, name),
		Name:     name,
		Local:    geom.At(x, y, 0).Yaw(yaw).Snapped(),
		Category: category,
	}
}

func box(x1, y1, x2, y2 float64) geom.AABB {
	return geom.Box(mgl64.Vec3{x1, y1, 0}, mgl64.Vec3{x2, y2, 4})
}

// scenarioCatalog is the two-module catalog: a start module with two A doors
// and a room with a single A door.
func scenarioCatalog(t *testing.T, roomDoorCategory string) *moduledb.Database {
	t.Helper()
	db, err := moduledb.New([]moduledb.ModuleRecord{
		{
			Name: "start", LevelRef: "/Levels/Start", Category: "start",
			Bounds: box(0, -5, 10, 5),
			Connections: []moduledb.ConnectionDescriptor{
				door("start", "east", 10, 0, 0, "A"),
				door("start", "west", 0, 0, 180, "A"),
			},
		},
		{
			Name: "room", LevelRef: "/Levels/Room", Category: "room",
			Bounds: box(0, -4, 8, 4),
			Connections: []moduledb.ConnectionDescriptor{
				door("room", "door", 0, 0, 180, roomDoorCategory),
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return db
}

// hubCatalog has a four-door hub, straight and bent corridors and two rooms.
func hubCatalog(t *testing.T) *moduledb.Database {
	t.Helper()
	db, err := moduledb.New([]moduledb.ModuleRecord{
		{
			Name: "hub", Category: "hub", Bounds: box(-6, -6, 6, 6),
			Connections: []moduledb.ConnectionDescriptor{
				door("hub", "e", 6, 0, 0, "A"),
				door("hub", "w", -6, 0, 180, "A"),
				door("hub", "n", 0, 6, 90, "A"),
				door("hub", "s", 0, -6, -90, "A"),
			},
		},
		{
			Name: "straight", Category: "corridor", Bounds: box(0, -2, 6, 2),
			Connections: []moduledb.ConnectionDescriptor{
				door("straight", "in", 0, 0, 180, "A"),
				door("straight", "out", 6, 0, 0, "A"),
			},
		},
		{
			Name: "bend", Category: "corridor", Bounds: box(0, -2, 4, 4),
			Connections: []moduledb.ConnectionDescriptor{
				door("bend", "in", 0, 0, 180, "A"),
				door("bend", "out", 2, 4, 90, "A"),
			},
		},
		{
			Name: "small", Category: "room", Bounds: box(0, -4, 8, 4),
			Connections: []moduledb.ConnectionDescriptor{
				door("small", "door", 0, 0, 180, "A"),
			},
		},
		{
			Name: "large", Category: "room", Bounds: box(0, -6, 12, 6),
			Connections: []moduledb.ConnectionDescriptor{
				door("large", "door", 0, 0, 180, "A"),
				door("large", "back", 12, 0, 0, "A"),
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return db
}

func testConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	cfg.AttemptTimeout = 0
	return cfg
}
