package world

import (
	"snapmap/internal/geom"
	"sort"

	"github.com/google/uuid"
)

// Actor is the Sim's record of one spawned actor.
type Actor struct {
	ID        ActorID
	Template  string
	Level     LevelID
	Transform geom.Transform
	Hidden    bool
	// Door is set for connection markers placed by level content.
	Door uuid.UUID
}

// actorRegistry mints ids and stores actor records.
type actorRegistry struct {
	nextID  ActorID
	alive   map[ActorID]bool
	records map[ActorID]*Actor
	byLevel map[LevelID]map[ActorID]struct{}
}

func newActorRegistry() *actorRegistry {
	return &actorRegistry{
		nextID:  1,
		alive:   make(map[ActorID]bool),
		records: make(map[ActorID]*Actor),
		byLevel: make(map[LevelID]map[ActorID]struct{}),
	}
}

func (r *actorRegistry) create(a Actor) ActorID {
	id := r.nextID
	r.nextID++
	a.ID = id
	r.alive[id] = true
	r.records[id] = &a
	if r.byLevel[a.Level] == nil {
		r.byLevel[a.Level] = make(map[ActorID]struct{})
	}
	r.byLevel[a.Level][id] = struct{}{}
	return id
}

// destroy marks the actor dead. The record stays until collect so that a
// destroyed-but-uncollected actor can still be inspected.
func (r *actorRegistry) destroy(id ActorID) bool {
	if !r.alive[id] {
		return false
	}
	r.alive[id] = false
	if rec := r.records[id]; rec != nil {
		delete(r.byLevel[rec.Level], id)
	}
	return true
}

// collect drops records of dead actors and returns how many were freed.
func (r *actorRegistry) collect() int {
	n := 0
	for id, ok := range r.alive {
		if ok {
			continue
		}
		delete(r.alive, id)
		delete(r.records, id)
		n++
	}
	return n
}

func (r *actorRegistry) get(id ActorID) (*Actor, bool) {
	if !r.alive[id] {
		return nil, false
	}
	return r.records[id], true
}

// inLevel returns the live actors of a level in id order.
func (r *actorRegistry) inLevel(level LevelID) []ActorID {
	set := r.byLevel[level]
	out := make([]ActorID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *actorRegistry) count() int {
	n := 0
	for _, ok := range r.alive {
		if ok {
			n++
		}
	}
	return n
}
