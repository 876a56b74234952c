// Package flow describes the mission graph a dungeon is grown from: which
// module category each node needs and which nodes hang off it.
package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidGraph is returned by Validate and the loaders.
var ErrInvalidGraph = errors.New("flow: invalid graph")

// Node is one mission step.
type Node struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Children []string `json:"children,omitempty"`
}

// Requirement is what the grower must place for one node.
type Requirement struct {
	Node     string
	Category string
	// Doors is the minimum connection count: one per child, plus one for
	// the door leading back to the parent.
	Doors int
}

// Graph is a rooted tree of nodes; Nodes[0] is the root.
type Graph struct {
	Nodes []Node `json:"nodes"`

	index  map[string]int
	parent map[string]string
}

// Chain builds a linear graph visiting the categories in order.
func Chain(categories ...string) *Graph {
	g := &Graph{}
	for i, c := range categories {
		n := Node{ID: fmt.Sprintf("n%d", i), Category: c}
		if i+1 < len(categories) {
			n.Children = []string{fmt.Sprintf("n%d", i+1)}
		}
		g.Nodes = append(g.Nodes, n)
	}
	return g
}

// Load reads a JSON graph from path and validates it.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow graph: %w", err)
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode flow graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks that the graph is a tree rooted at Nodes[0] with unique
// ids and no dangling children.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidGraph)
	}
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrInvalidGraph, i)
		}
		if n.Category == "" {
			return fmt.Errorf("%w: node %q has no category", ErrInvalidGraph, n.ID)
		}
		if _, dup := index[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidGraph, n.ID)
		}
		index[n.ID] = i
	}
	parent := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		for _, c := range n.Children {
			if _, ok := index[c]; !ok {
				return fmt.Errorf("%w: node %q has unknown child %q", ErrInvalidGraph, n.ID, c)
			}
			if c == g.Nodes[0].ID {
				return fmt.Errorf("%w: root %q used as a child", ErrInvalidGraph, c)
			}
			if p, taken := parent[c]; taken {
				return fmt.Errorf("%w: node %q has two parents (%q, %q)", ErrInvalidGraph, c, p, n.ID)
			}
			parent[c] = n.ID
		}
	}
	if n := reachable(g.Nodes, index); n != len(g.Nodes) {
		return fmt.Errorf("%w: %d nodes unreachable from root", ErrInvalidGraph, len(g.Nodes)-n)
	}
	g.index, g.parent = index, parent
	return nil
}

// Root returns the root node id.
func (g *Graph) Root() string { return g.Nodes[0].ID }

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	g.ensureIndex()
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Children returns the child ids of a node in authored order.
func (g *Graph) Children(id string) []string {
	n, _ := g.Node(id)
	return n.Children
}

// Requirement returns the placement requirement for a node. Like Node and
// Children it panics if the graph fails Validate.
func (g *Graph) Requirement(id string) Requirement {
	g.ensureIndex()
	n, _ := g.Node(id)
	doors := len(n.Children)
	if _, hasParent := g.parent[id]; hasParent {
		doors++
	}
	return Requirement{Node: id, Category: n.Category, Doors: doors}
}

// reachable counts the nodes visited by a depth-first walk from the root.
func reachable(nodes []Node, index map[string]int) int {
	seen := make([]bool, len(nodes))
	stack := []int{0}
	seen[0] = true
	n := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		for _, c := range nodes[i].Children {
			if j := index[c]; !seen[j] {
				seen[j] = true
				stack = append(stack, j)
			}
		}
	}
	return n
}

// ensureIndex validates on first use. Lookups on an invalid graph are a
// programming error: callers are expected to run Validate first.
func (g *Graph) ensureIndex() {
	if g.index != nil {
		return
	}
	if err := g.Validate(); err != nil {
		panic(fmt.Sprintf("flow: lookup on unvalidated graph: %v", err))
	}
}
