// Package grow builds a dungeon by stitching catalog modules together door
// to door, following a flow graph, under overlap and volume constraints.
//
// A build is a sequence of seeded attempts. Each attempt places the root
// module at the origin, then attaches one module per flow node breadth
// first. An attempt that cannot place a node, runs out of placement frames
// or passes its deadline is abandoned and the next derived seed is tried.
// Either a complete layout is returned or an *ExhaustedError.
package grow

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"snapmap/internal/dungeon"
	"snapmap/internal/flow"
	"snapmap/internal/geom"
	"snapmap/internal/moduledb"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

var (
	// ErrGrowthExhausted is returned when every attempt failed.
	ErrGrowthExhausted = errors.New("grow: no valid layout within retry budget")
	// ErrNoDatabase is returned when the grower has no module catalog.
	ErrNoDatabase = errors.New("grow: no module database")

	errNoPlacement = errors.New("no valid placement")
	errFrameBudget = errors.New("resolve frame budget exceeded")
	errDeadline    = errors.New("attempt deadline exceeded")
)

// ExhaustedError reports a build that failed on every seed it tried.
type ExhaustedError struct {
	Attempts int
	Seeds    []int64
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("grow: no valid layout after %d attempts (last: %v)", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return ErrGrowthExhausted }

// Stats counts placement work across a whole build.
type Stats struct {
	Attempts         int
	Placements       int
	RejectedOverlap  int
	RejectedNegation int
	RejectedRepeat   int
}

// Result is a successful build.
type Result struct {
	Layout   *dungeon.Layout
	Graph    *Graph
	Seed     int64
	Stats    Stats
	Duration time.Duration
}

// Grower runs builds against one module catalog.
type Grower struct {
	db     *moduledb.Database
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Grower. A nil logger uses slog.Default().
func New(db *moduledb.Database, logger *slog.Logger) *Grower {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grower{db: db, logger: logger, now: time.Now}
}

// Grow builds a layout for g. It validates its inputs first and reports
// configuration problems without attempting any growth.
func (gr *Grower) Grow(g *flow.Graph, cfg Config) (*Result, error) {
	if gr.db == nil {
		return nil, ErrNoDatabase
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	start := gr.now()
	stats := Stats{}
	tried := mapset.New[int64]()
	var seeds []int64
	var last error
	seed := cfg.Seed
	for i := 0; i <= cfg.MaxBuildRetries; i++ {
		if i > 0 {
			seed = NextSeed(seed, tried)
		}
		tried.Put(seed)
		seeds = append(seeds, seed)
		stats.Attempts++

		a := &attempt{
			db:    gr.db,
			flow:  g,
			cfg:   &cfg,
			rng:   rand.New(rand.NewSource(seed)),
			graph: &Graph{},
			stats: &stats,
			now:   gr.now,
		}
		if cfg.AttemptTimeout > 0 {
			a.deadline = gr.now().Add(cfg.AttemptTimeout)
		}
		err := a.run()
		if err == nil {
			gr.logger.Debug("grow: layout built",
				"seed", seed, "attempts", stats.Attempts, "modules", len(a.graph.Nodes))
			return &Result{
				Layout:   a.graph.Serialize(seed),
				Graph:    a.graph,
				Seed:     seed,
				Stats:    stats,
				Duration: gr.now().Sub(start),
			}, nil
		}
		last = err
		gr.logger.Debug("grow: attempt failed", "seed", seed, "attempt", i+1, "error", err)
	}
	gr.logger.Warn("grow: build failed", "attempts", stats.Attempts, "error", last)
	return nil, &ExhaustedError{Attempts: stats.Attempts, Seeds: seeds, Last: last}
}

// attempt is the state of one seeded growth pass.
type attempt struct {
	db       *moduledb.Database
	flow     *flow.Graph
	cfg      *Config
	rng      *rand.Rand
	graph    *Graph
	stats    *Stats
	now      func() time.Time
	deadline time.Time
	frames   int
}

type pendingNode struct {
	parent   int
	flowNode string
}

func (a *attempt) run() error {
	if err := a.placeRoot(); err != nil {
		return err
	}
	var queue []pendingNode
	for _, c := range a.flow.Children(a.flow.Root()) {
		queue = append(queue, pendingNode{parent: 0, flowNode: c})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		idx, err := a.placeChild(p)
		if err != nil {
			return fmt.Errorf("flow node %q: %w", p.flowNode, err)
		}
		for _, c := range a.flow.Children(p.flowNode) {
			queue = append(queue, pendingNode{parent: idx, flowNode: c})
		}
	}
	return nil
}

// frame charges one placement attempt against the budgets.
func (a *attempt) frame() error {
	a.frames++
	if a.frames > a.cfg.MaxResolveFrames {
		return errFrameBudget
	}
	if !a.deadline.IsZero() && a.now().After(a.deadline) {
		return errDeadline
	}
	a.stats.Placements++
	return nil
}

func (a *attempt) newID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(a.rng)
	if err != nil {
		// math/rand never fails to read.
		panic(err)
	}
	return id
}

func (a *attempt) placeRoot() error {
	root := a.flow.Root()
	req := a.flow.Requirement(root)
	cands := orderCandidates(a.rng, a.db.Candidates(req.Category, nil, req.Doors), a.cfg.PreferMinimumDoors)
	for _, m := range cands {
		if err := a.frame(); err != nil {
			return err
		}
		world := geom.Identity()
		bounds := m.Bounds.Transform(world)
		if r := a.fits(bounds); r != accepted {
			a.reject(r)
			continue
		}
		a.graph.add(&ModuleNode{
			ID:       a.newID(),
			Module:   m,
			World:    world,
			Bounds:   bounds,
			Parent:   -1,
			FlowNode: root,
		})
		return nil
	}
	return fmt.Errorf("root %q: %w", root, errNoPlacement)
}

func (a *attempt) placeChild(p pendingNode) (int, error) {
	req := a.flow.Requirement(p.flowNode)
	parent := a.graph.Nodes[p.parent]
	for _, di := range shuffledDoors(a.rng, len(parent.Doors)) {
		door := parent.Doors[di]
		if !door.Open() {
			continue
		}
		doorWorld := parent.DoorWorld(door)
		cands := a.db.Candidates(req.Category, &door.Connection, req.Doors)
		for _, m := range orderCandidates(a.rng, cands, a.cfg.PreferMinimumDoors) {
			if a.graph.repeatsAncestor(p.parent, m, a.cfg.NonRepeatDepth) {
				a.stats.RejectedRepeat++
				continue
			}
			for _, ci := range shuffledDoors(a.rng, len(m.Connections)) {
				conn := m.Connections[ci]
				if !moduledb.Compatible(door.Connection, conn) {
					continue
				}
				if err := a.frame(); err != nil {
					return -1, err
				}
				world := alignTo(doorWorld, door.Connection, conn)
				bounds := m.Bounds.Transform(world)
				if r := a.fits(bounds); r != accepted {
					a.reject(r)
					continue
				}
				idx := a.graph.add(&ModuleNode{
					ID:       a.newID(),
					Module:   m,
					World:    world,
					Bounds:   bounds,
					Parent:   p.parent,
					Depth:    parent.Depth + 1,
					FlowNode: p.flowNode,
				})
				link(door, a.graph.Nodes[idx].Doors[ci])
				return idx, nil
			}
		}
	}
	return -1, errNoPlacement
}

func (a *attempt) reject(r rejection) {
	switch r {
	case rejectOverlap:
		a.stats.RejectedOverlap++
	case rejectNegation:
		a.stats.RejectedNegation++
	}
}
