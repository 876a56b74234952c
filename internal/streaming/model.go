// Package streaming maps placed modules to streaming chunks and drives their
// load and visibility through a world host.
//
// Desired state is set with SetStreamingLevelState. The host reports actual
// state through events that are queued by Post and handled by Tick, which is
// where the connection resolver, navigation and listeners are driven.
package streaming

import (
	"errors"
	"fmt"
	"log/slog"
	"snapmap/internal/connection"
	"snapmap/internal/dungeon"
	"snapmap/internal/world"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

var (
	ErrUnknownChunk = errors.New("streaming: unknown chunk")
	ErrReleased     = errors.New("streaming: model released")
)

// Options configures a Model.
type Options struct {
	// DoorLevel receives shared door actors. Defaults to world.PersistentLevel.
	DoorLevel world.LevelID
	// WallLevel receives walls. Empty means the chunk's own level.
	WallLevel world.LevelID
	Themes    connection.Themes
	Logger    *slog.Logger
}

// Model owns the chunks of one layout.
type Model struct {
	host      world.Host
	layout    *dungeon.Layout
	resolver  *connection.Resolver
	logger    *slog.Logger
	opts      Options
	chunks    map[uuid.UUID]*Chunk
	order     []uuid.UUID
	byLevel   map[world.LevelID]uuid.UUID
	spawn     uuid.UUID
	listeners []Listener
	events    []world.Event
	released  bool
}

// NewModel builds one chunk per module instance of layout and subscribes to
// host events. The layout's connection records are shared with the resolver
// and updated in place.
func NewModel(host world.Host, layout *dungeon.Layout, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DoorLevel == "" {
		opts.DoorLevel = world.PersistentLevel
	}
	m := &Model{
		host:    host,
		layout:  layout,
		logger:  opts.Logger,
		opts:    opts,
		chunks:  make(map[uuid.UUID]*Chunk, len(layout.Modules)),
		byLevel: make(map[world.LevelID]uuid.UUID, len(layout.Modules)),
	}
	m.resolver = connection.NewResolver(host, connection.NewTable(layout.Connections), opts.Themes, opts.Logger)

	for i, mi := range layout.Modules {
		c := &Chunk{
			ID:        mi.ID,
			Bounds:    mi.Bounds,
			Neighbors: mapset.New[uuid.UUID](),
			SpawnRoom: mi.SpawnRoom,
			Level:     world.ChunkLevel(mi.ID),
			Package:   mi.LevelRef,
		}
		m.chunks[c.ID] = c
		m.order = append(m.order, c.ID)
		m.byLevel[c.Level] = c.ID
		if c.SpawnRoom || (i == 0 && m.spawn == uuid.Nil) {
			m.spawn = c.ID
		}
	}
	tbl := m.resolver.Table()
	for i := 0; i < tbl.Len(); i++ {
		if _, ok := tbl.Reciprocal(i); !ok {
			continue
		}
		rec := tbl.At(i)
		a, b := m.chunks[rec.ModuleA], m.chunks[rec.ModuleB]
		if a == nil || b == nil {
			continue
		}
		a.Neighbors.Put(b.ID)
		b.Neighbors.Put(a.ID)
	}
	host.Subscribe(m.Post)
	return m
}

// Resolver returns the connection resolver driven by the model.
func (m *Model) Resolver() *connection.Resolver { return m.resolver }

// Layout returns the layout the model was built from.
func (m *Model) Layout() *dungeon.Layout { return m.layout }

// AddListener registers l for chunk notifications.
func (m *Model) AddListener(l Listener) { m.listeners = append(m.listeners, l) }

// Chunk returns the chunk with the given id.
func (m *Model) Chunk(id uuid.UUID) (*Chunk, bool) {
	c, ok := m.chunks[id]
	return c, ok
}

// Chunks returns every chunk in layout order.
func (m *Model) Chunks() []*Chunk {
	out := make([]*Chunk, len(m.order))
	for i, id := range m.order {
		out[i] = m.chunks[id]
	}
	return out
}

// SpawnRoom returns the chunk used when there are no streaming sources.
func (m *Model) SpawnRoom() uuid.UUID { return m.spawn }

// SetStreamingLevelState sets the desired state of a chunk. A chunk cannot
// be visible without being loaded. Repeating the current desired state does
// not reach the host. Unloading destroys the chunk's managed actors before
// the request is issued.
func (m *Model) SetStreamingLevelState(id uuid.UUID, visible, loaded bool) error {
	if m.released {
		return ErrReleased
	}
	c, ok := m.chunks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChunk, id)
	}
	visible = visible && loaded
	if c.WantLoaded == loaded && c.WantVisible == visible {
		return nil
	}
	if !loaded && c.WantLoaded {
		m.destroyManaged(c)
	}
	c.WantLoaded, c.WantVisible = loaded, visible
	switch {
	case loaded && c.Load == Unloaded:
		c.Load = Loading
	case !loaded && c.Load == Loading:
		c.Load = Unloaded
	}
	c.requested = true
	m.host.RequestLevelState(world.LevelRequest{
		Level:   c.Level,
		Package: c.Package,
		Loaded:  loaded,
		Visible: visible,
	})
	return nil
}

// RegisterManagedActor ties a non-streaming actor to a chunk. It is
// destroyed when the chunk is unloaded or the model released.
func (m *Model) RegisterManagedActor(id uuid.UUID, actor world.ActorID) error {
	c, ok := m.chunks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChunk, id)
	}
	c.managed = append(c.managed, actor)
	return nil
}

func (m *Model) destroyManaged(c *Chunk) {
	for _, a := range c.managed {
		if err := m.host.Destroy(a); err != nil {
			m.logger.Error("streaming: managed actor destroy failed", "chunk", c.ID, "actor", a, "error", err)
		}
	}
	c.managed = nil
}

// GetLoadedLevel returns the level of a loaded chunk, or "" if the chunk is
// unknown, not loaded, or the model has been released.
func (m *Model) GetLoadedLevel(id uuid.UUID) world.LevelID {
	c, ok := m.chunks[id]
	if !ok || m.released || c.Load != Loaded {
		return ""
	}
	return c.Level
}

// Post queues a host event. It is the function the model subscribes with.
func (m *Model) Post(ev world.Event) {
	if m.released {
		return
	}
	m.events = append(m.events, ev)
}

// Tick handles every queued event in arrival order and returns how many
// were handled.
func (m *Model) Tick() int {
	n := 0
	for len(m.events) > 0 {
		ev := m.events[0]
		m.events = m.events[1:]
		m.handle(ev)
		n++
	}
	return n
}

func (m *Model) handle(ev world.Event) {
	id, ok := m.byLevel[ev.Level]
	if !ok {
		m.logger.Warn("streaming: event for unknown level", "level", ev.Level, "kind", ev.Kind)
		return
	}
	c := m.chunks[id]
	switch ev.Kind {
	case world.LevelLoaded:
		c.Load = Loaded
		wall := m.opts.WallLevel
		if wall == "" {
			wall = c.Level
		}
		rep := m.resolver.ResolveChunkConnections(c.ID, m.host.ConnectionActors(c.Level), m.opts.DoorLevel, wall)
		m.logger.Debug("streaming: chunk loaded", "chunk", c.ID,
			"doors", rep.DoorsSpawned, "adopted", rep.DoorsAdopted, "walls", rep.Walls)
		for _, l := range m.listeners {
			l.ChunkLoaded(c)
		}
	case world.LevelShown:
		c.Vis = Visible
		m.resolver.ChunkShown(c.ID)
		m.host.AddNavigationBounds(c.Level, c.Bounds)
		for _, l := range m.listeners {
			l.ChunkShown(c)
		}
	case world.LevelHidden:
		m.hide(c)
	case world.LevelUnloaded:
		// Hosts may drop a visible level without a Hidden event first.
		if c.Visible() {
			m.hide(c)
		}
		c.Load = Unloaded
		m.resolver.ChunkUnloaded(c.ID)
		for _, l := range m.listeners {
			l.ChunkUnloaded(c)
		}
	}
}

func (m *Model) hide(c *Chunk) {
	c.Vis = Hidden
	m.resolver.ChunkHidden(c.ID, m.visible)
	m.host.RemoveNavigationBounds(c.Level)
	for _, l := range m.listeners {
		l.ChunkHidden(c)
	}
}

func (m *Model) visible(id uuid.UUID) bool {
	c, ok := m.chunks[id]
	return ok && c.Visible()
}

// Release tears the model down: managed actors, doors and walls are
// destroyed, streaming levels removed and their packages queued for unload,
// then streaming is flushed and garbage collected. Host failures are logged
// and do not stop the teardown. Release is safe to call twice.
func (m *Model) Release() {
	if m.released {
		return
	}
	m.released = true
	m.events = nil

	for _, id := range m.order {
		m.destroyManaged(m.chunks[id])
	}
	m.resolver.Release()
	for _, id := range m.order {
		c := m.chunks[id]
		if !c.requested {
			continue
		}
		if c.Visible() {
			m.host.RemoveNavigationBounds(c.Level)
		}
		if err := m.host.RemoveLevel(c.Level); err != nil {
			m.logger.Error("streaming: remove level failed", "chunk", c.ID, "level", c.Level, "error", err)
		}
		if err := m.host.QueuePackageUnload(c.Level); err != nil {
			m.logger.Error("streaming: package unload failed", "chunk", c.ID, "level", c.Level, "error", err)
		}
		c.Load, c.Vis = Unloaded, Hidden
		c.WantLoaded, c.WantVisible = false, false
		c.requested = false
	}
	m.host.FlushStreaming()
	m.host.CollectGarbage()
	m.logger.Debug("streaming: released", "chunks", len(m.order))
}
