package world

import (
	"fmt"
	"snapmap/internal/dungeon"
	"snapmap/internal/geom"

	"github.com/google/uuid"
)

// Marker is a connection point authored into a level's content.
type Marker struct {
	Door      uuid.UUID
	Transform geom.Transform
}

// ContentFromLayout derives the door markers each chunk level would contain:
// one per connection record owned by the chunk's module.
func ContentFromLayout(l *dungeon.Layout) map[LevelID][]Marker {
	out := make(map[LevelID][]Marker, len(l.Modules))
	for _, c := range l.Connections {
		lvl := ChunkLevel(c.ModuleA)
		out[lvl] = append(out[lvl], Marker{Door: c.DoorA, Transform: c.Transform})
	}
	return out
}

type simLevel struct {
	pkg                   string
	loaded, visible       bool
	wantLoaded, wantShown bool
	requests              int
	markers               []ActorID
}

// Sim is an in-memory Host. Streaming requests are queued and only advance
// when Step, Complete or Drain is called, so tests choose the completion
// order of overlapping requests.
type Sim struct {
	actors  *actorRegistry
	content map[LevelID][]Marker
	levels  map[LevelID]*simLevel
	pending []LevelID
	sink    func(Event)

	nav        map[LevelID]geom.AABB
	unloadPkgs []LevelID
	removed    []LevelID
	gcRuns     int

	// RemoveErr, when set, is returned by every RemoveLevel call.
	RemoveErr error
	// SpawnErr, when set, is returned by every Spawn call.
	SpawnErr error
}

// NewSim returns a Sim whose levels contain the given markers when loaded.
func NewSim(content map[LevelID][]Marker) *Sim {
	if content == nil {
		content = make(map[LevelID][]Marker)
	}
	return &Sim{
		actors:  newActorRegistry(),
		content: content,
		levels:  make(map[LevelID]*simLevel),
		nav:     make(map[LevelID]geom.AABB),
	}
}

// Subscribe implements Host.
func (s *Sim) Subscribe(fn func(Event)) { s.sink = fn }

func (s *Sim) emit(kind EventKind, level LevelID) {
	if s.sink != nil {
		s.sink(Event{Kind: kind, Level: level})
	}
}

// Spawn implements Host.
func (s *Sim) Spawn(level LevelID, template string, t geom.Transform) (ActorID, error) {
	if s.SpawnErr != nil {
		return 0, s.SpawnErr
	}
	return s.actors.create(Actor{Template: template, Level: level, Transform: t}), nil
}

// Destroy implements Host.
func (s *Sim) Destroy(id ActorID) error {
	if !s.actors.destroy(id) {
		return fmt.Errorf("%w: %d", ErrNoActor, id)
	}
	return nil
}

// SetHidden implements Host.
func (s *Sim) SetHidden(id ActorID, hidden bool) error {
	a, ok := s.actors.get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoActor, id)
	}
	a.Hidden = hidden
	return nil
}

// RequestLevelState implements Host.
func (s *Sim) RequestLevelState(req LevelRequest) {
	lvl := s.levels[req.Level]
	if lvl == nil {
		lvl = &simLevel{}
		s.levels[req.Level] = lvl
	}
	lvl.pkg = req.Package
	lvl.wantLoaded = req.Loaded
	lvl.wantShown = req.Visible && req.Loaded
	lvl.requests++
	s.enqueue(req.Level)
}

func (s *Sim) enqueue(level LevelID) {
	for _, p := range s.pending {
		if p == level {
			return
		}
	}
	s.pending = append(s.pending, level)
}

// Requests returns how many streaming requests a level received.
func (s *Sim) Requests(level LevelID) int {
	if lvl := s.levels[level]; lvl != nil {
		return lvl.requests
	}
	return 0
}

// Pending returns the levels with unfinished requests, oldest first.
func (s *Sim) Pending() []LevelID {
	out := make([]LevelID, len(s.pending))
	copy(out, s.pending)
	return out
}

// Step advances every pending level by one streaming stage.
func (s *Sim) Step() {
	levels := s.Pending()
	for _, l := range levels {
		s.Complete(l)
	}
}

// Drain steps until no request is pending.
func (s *Sim) Drain() {
	for len(s.pending) > 0 {
		s.Step()
	}
}

// Complete advances one level by a single stage: load, show, hide or unload.
// It reports whether anything happened.
func (s *Sim) Complete(level LevelID) bool {
	lvl := s.levels[level]
	if lvl == nil {
		s.dequeue(level)
		return false
	}
	switch {
	case lvl.wantLoaded && !lvl.loaded:
		lvl.loaded = true
		for _, m := range s.content[level] {
			id := s.actors.create(Actor{Template: "connection", Level: level, Transform: m.Transform, Door: m.Door})
			lvl.markers = append(lvl.markers, id)
		}
		s.emit(LevelLoaded, level)
	case lvl.loaded && lvl.wantShown && !lvl.visible:
		lvl.visible = true
		s.emit(LevelShown, level)
	case lvl.visible && !lvl.wantShown:
		lvl.visible = false
		s.emit(LevelHidden, level)
	case lvl.loaded && !lvl.wantLoaded:
		lvl.loaded = false
		for _, id := range s.actors.inLevel(level) {
			s.actors.destroy(id)
		}
		lvl.markers = nil
		s.emit(LevelUnloaded, level)
	default:
		s.dequeue(level)
		return false
	}
	if lvl.loaded == lvl.wantLoaded && lvl.visible == lvl.wantShown {
		s.dequeue(level)
	}
	return true
}

func (s *Sim) dequeue(level LevelID) {
	for i, p := range s.pending {
		if p == level {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// ConnectionActors implements Host.
func (s *Sim) ConnectionActors(level LevelID) []ConnectionActor {
	lvl := s.levels[level]
	if lvl == nil || !lvl.loaded {
		return nil
	}
	out := make([]ConnectionActor, 0, len(lvl.markers))
	for _, id := range lvl.markers {
		if a, ok := s.actors.get(id); ok {
			out = append(out, ConnectionActor{Actor: id, Door: a.Door, Transform: a.Transform})
		}
	}
	return out
}

// RemoveLevel implements Host.
func (s *Sim) RemoveLevel(level LevelID) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	if _, ok := s.levels[level]; !ok {
		return fmt.Errorf("%w: %s", ErrNoLevel, level)
	}
	for _, id := range s.actors.inLevel(level) {
		s.actors.destroy(id)
	}
	delete(s.levels, level)
	s.dequeue(level)
	s.removed = append(s.removed, level)
	return nil
}

// QueuePackageUnload implements Host.
func (s *Sim) QueuePackageUnload(level LevelID) error {
	s.unloadPkgs = append(s.unloadPkgs, level)
	return nil
}

// FlushStreaming implements Host by finishing every pending request.
func (s *Sim) FlushStreaming() { s.Drain() }

// CollectGarbage implements Host.
func (s *Sim) CollectGarbage() {
	s.actors.collect()
	s.gcRuns++
}

// AddNavigationBounds implements Host.
func (s *Sim) AddNavigationBounds(level LevelID, b geom.AABB) { s.nav[level] = b }

// RemoveNavigationBounds implements Host.
func (s *Sim) RemoveNavigationBounds(level LevelID) { delete(s.nav, level) }

// ─── inspection ───────────────────────────────────────────────────────────────

// Actor returns a live actor record.
func (s *Sim) Actor(id ActorID) (Actor, bool) {
	a, ok := s.actors.get(id)
	if !ok {
		return Actor{}, false
	}
	return *a, true
}

// Alive reports whether an actor exists and has not been destroyed.
func (s *Sim) Alive(id ActorID) bool { return s.actors.alive[id] }

// ActorsIn returns the live actors of a level in spawn order.
func (s *Sim) ActorsIn(level LevelID) []ActorID { return s.actors.inLevel(level) }

// ActorCount returns the number of live actors.
func (s *Sim) ActorCount() int { return s.actors.count() }

// LevelState returns the actual streaming state of a level.
func (s *Sim) LevelState(level LevelID) (loaded, visible bool) {
	if lvl := s.levels[level]; lvl != nil {
		return lvl.loaded, lvl.visible
	}
	return false, false
}

// NavigationBounds returns the registered nav bounds of a level.
func (s *Sim) NavigationBounds(level LevelID) (geom.AABB, bool) {
	b, ok := s.nav[level]
	return b, ok
}

// QueuedPackages returns every package queued for unload so far.
func (s *Sim) QueuedPackages() []LevelID { return s.unloadPkgs }

// RemovedLevels returns every level removed so far.
func (s *Sim) RemovedLevels() []LevelID { return s.removed }

// GCRuns returns how many times CollectGarbage ran.
func (s *Sim) GCRuns() int { return s.gcRuns }
