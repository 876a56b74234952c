package grow

import (
	"snapmap/internal/dungeon"
	"snapmap/internal/geom"
	"snapmap/internal/moduledb"

	"github.com/google/uuid"
)

// DoorRef is one connection slot of a placed module.
// Owner indexes Graph.Nodes; Connected is nil until a child is attached.
type DoorRef struct {
	Owner      int
	Connection moduledb.ConnectionDescriptor
	Connected  *DoorRef
}

// Open reports whether nothing is attached to the door yet.
func (d *DoorRef) Open() bool { return d.Connected == nil }

// ModuleNode is a module placed in the grown graph.
type ModuleNode struct {
	ID       uuid.UUID
	Module   *moduledb.ModuleRecord
	World    geom.Transform
	Bounds   geom.AABB
	Doors    []*DoorRef
	Parent   int // -1 for the root
	Depth    int
	FlowNode string
}

// DoorWorld returns the world transform of one of the node's doors.
func (n *ModuleNode) DoorWorld(d *DoorRef) geom.Transform {
	return n.World.Mul(d.Connection.Local).Snapped()
}

// Graph is the arena of placed nodes; Nodes[0] is the root.
type Graph struct {
	Nodes []*ModuleNode
}

func (g *Graph) add(n *ModuleNode) int {
	idx := len(g.Nodes)
	for i := range n.Module.Connections {
		n.Doors = append(n.Doors, &DoorRef{Owner: idx, Connection: n.Module.Connections[i]})
	}
	g.Nodes = append(g.Nodes, n)
	return idx
}

// link connects two doors in both directions.
func link(a, b *DoorRef) {
	a.Connected = b
	b.Connected = a
}

// repeatsAncestor reports whether module equals the module of parent or
// any of its ancestors within depth steps.
func (g *Graph) repeatsAncestor(parent int, module *moduledb.ModuleRecord, depth int) bool {
	for i := 0; i < depth && parent >= 0; i++ {
		if g.Nodes[parent].Module == module {
			return true
		}
		parent = g.Nodes[parent].Parent
	}
	return false
}

// Serialize flattens the graph into module and connection records.
// Records are emitted in node order, then door order, so equal graphs
// produce equal layouts.
func (g *Graph) Serialize(seed int64) *dungeon.Layout {
	l := &dungeon.Layout{Seed: seed}
	for i, n := range g.Nodes {
		inst := dungeon.ModuleInstance{
			ID:        n.ID,
			Module:    n.Module.Name,
			LevelRef:  n.Module.LevelRef,
			Category:  n.Module.Category,
			Transform: n.World,
			Bounds:    n.Bounds,
			Depth:     n.Depth,
			FlowNode:  n.FlowNode,
			SpawnRoom: i == 0,
		}
		if n.Parent >= 0 {
			inst.Parent = g.Nodes[n.Parent].ID
		}
		l.Modules = append(l.Modules, inst)
	}
	for _, n := range g.Nodes {
		for _, d := range n.Doors {
			ci := dungeon.ConnectionInstance{
				ModuleA:   n.ID,
				DoorA:     d.Connection.ID,
				Category:  d.Connection.Category,
				Transform: n.DoorWorld(d),
			}
			if d.Connected != nil {
				ci.ModuleB = g.Nodes[d.Connected.Owner].ID
				ci.DoorB = d.Connected.Connection.ID
			}
			l.Connections = append(l.Connections, ci)
		}
	}
	return l
}
