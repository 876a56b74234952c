// Package assets holds the built-in sample dungeon: a module catalog, the
// flow graph grown from it, and the previewer's glyphs.
package assets

import (
	"snapmap/internal/flow"
	"snapmap/internal/geom"
	"snapmap/internal/moduledb"

	"github.com/go-gl/mathgl/mgl64"
)

// Door category shared by every sample module.
const Stone = "stone"

func door(module, name string, x, y, yaw float64) moduledb.ConnectionDescriptor {
	return moduledb.ConnectionDescriptor{
		ID:       moduledb.ConnectionID(module, name),
		Name:     name,
		Local:    geom.At(x, y, 0).Yaw(yaw).Snapped(),
		Category: Stone,
	}
}

func floor(x1, y1, x2, y2 float64) geom.AABB {
	return geom.Box(mgl64.Vec3{x1, y1, 0}, mgl64.Vec3{x2, y2, 4})
}

// Modules is the sample catalog, in selection order.
var Modules = []moduledb.ModuleRecord{
	{
		Name: "entrance", LevelRef: "/Game/Dungeon/Entrance", Category: "start",
		Bounds: floor(0, -6, 12, 6),
		Connections: []moduledb.ConnectionDescriptor{
			door("entrance", "east", 12, 0, 0),
			door("entrance", "north", 6, 6, 90),
			door("entrance", "south", 6, -6, -90),
		},
	},
	{
		Name: "corridor", LevelRef: "/Game/Dungeon/Corridor", Category: "corridor",
		Bounds: floor(0, -2, 8, 2),
		Connections: []moduledb.ConnectionDescriptor{
			door("corridor", "in", 0, 0, 180),
			door("corridor", "out", 8, 0, 0),
		},
	},
	{
		Name: "corner", LevelRef: "/Game/Dungeon/Corner", Category: "corridor",
		Bounds: floor(0, -2, 4, 4),
		Connections: []moduledb.ConnectionDescriptor{
			door("corner", "in", 0, 0, 180),
			door("corner", "out", 2, 4, 90),
		},
	},
	{
		Name: "gallery", LevelRef: "/Game/Dungeon/Gallery", Category: "hall",
		Bounds: floor(0, -4, 16, 4), Weight: 2,
		Connections: []moduledb.ConnectionDescriptor{
			door("gallery", "in", 0, 0, 180),
			door("gallery", "out", 16, 0, 0),
			door("gallery", "side", 8, 4, 90),
		},
	},
	{
		Name: "crossing", LevelRef: "/Game/Dungeon/Crossing", Category: "hall",
		Bounds: floor(0, -6, 12, 6),
		Connections: []moduledb.ConnectionDescriptor{
			door("crossing", "west", 0, 0, 180),
			door("crossing", "east", 12, 0, 0),
			door("crossing", "north", 6, 6, 90),
			door("crossing", "south", 6, -6, -90),
		},
	},
	{
		Name: "shrine", LevelRef: "/Game/Dungeon/Shrine", Category: "room",
		Bounds: floor(0, -3, 6, 3),
		Connections: []moduledb.ConnectionDescriptor{
			door("shrine", "door", 0, 0, 180),
		},
	},
	{
		Name: "vault", LevelRef: "/Game/Dungeon/Vault", Category: "room",
		Bounds: floor(0, -5, 10, 5), Weight: 0.5,
		Connections: []moduledb.ConnectionDescriptor{
			door("vault", "door", 0, 0, 180),
		},
	},
	{
		Name: "throne", LevelRef: "/Game/Dungeon/Throne", Category: "boss",
		Bounds: floor(0, -8, 16, 8),
		Connections: []moduledb.ConnectionDescriptor{
			door("throne", "door", 0, 0, 180),
		},
	},
}

// Themes lists the actor templates spawned at stone connections.
var Themes = []moduledb.ConnectionTheme{
	{Category: Stone, DoorActors: []string{"door_stone"}, WallActors: []string{"wall_stone"}},
}

// Catalog builds the sample module database.
func Catalog() (*moduledb.Database, error) {
	return moduledb.New(Modules, Themes)
}

// Flow is the sample mission: an entrance with two branches, one ending in
// a side room, the other running through a hall to the boss.
func Flow() *flow.Graph {
	return &flow.Graph{Nodes: []flow.Node{
		{ID: "entrance", Category: "start", Children: []string{"west_corridor", "main_corridor"}},
		{ID: "west_corridor", Category: "corridor", Children: []string{"side_room"}},
		{ID: "side_room", Category: "room"},
		{ID: "main_corridor", Category: "corridor", Children: []string{"hall"}},
		{ID: "hall", Category: "hall", Children: []string{"treasure", "boss_corridor"}},
		{ID: "treasure", Category: "room"},
		{ID: "boss_corridor", Category: "corridor", Children: []string{"boss"}},
		{ID: "boss", Category: "boss"},
	}}
}
