// Package connection decides, for every connection point of a loaded chunk,
// whether a shared door or a chunk-local wall is realized there.
//
// A door is shared by the two chunks it joins. Whichever chunk resolves it
// first spawns the door actors; the other adopts the same actor set by
// handle. Doors are only hidden when both sides are hidden and are only
// destroyed by Release. Walls belong to one chunk and are destroyed as soon
// as that chunk is hidden.
package connection

import (
	"log/slog"
	"snapmap/internal/dungeon"
	"snapmap/internal/moduledb"
	"snapmap/internal/world"

	"github.com/google/uuid"
)

// Themes supplies actor templates per door category.
// *moduledb.Database satisfies it.
type Themes interface {
	Theme(category string) (moduledb.ConnectionTheme, bool)
}

// Observer is told when a door's actors are spawned.
type Observer interface {
	DoorCreated(chunk uuid.UUID, conn *dungeon.ConnectionInstance)
}

// Report summarizes one ResolveChunkConnections call.
type Report struct {
	DoorsSpawned int
	DoorsAdopted int
	Walls        int
	Mismatched   int
}

type chunkState struct {
	doors     []int
	wallSlots []int
	walls     map[int][]world.ActorID
	wallLevel world.LevelID
}

// Resolver realizes doors and walls through a world host.
type Resolver struct {
	host      world.Host
	themes    Themes
	table     *Table
	logger    *slog.Logger
	chunks    map[uuid.UUID]*chunkState
	shown     map[uuid.UUID]bool
	observers []Observer
}

// NewResolver returns a resolver over table. themes may be nil, in which
// case every category uses the fallback templates "door:<cat>" and
// "wall:<cat>".
func NewResolver(host world.Host, table *Table, themes Themes, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		host:   host,
		themes: themes,
		table:  table,
		logger: logger,
		chunks: make(map[uuid.UUID]*chunkState),
		shown:  make(map[uuid.UUID]bool),
	}
}

// AddObserver registers o for door-created notifications.
func (r *Resolver) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Table returns the underlying connection table.
func (r *Resolver) Table() *Table { return r.table }

func (r *Resolver) templates(category string) (door, wall []string) {
	if r.themes != nil {
		if th, ok := r.themes.Theme(category); ok {
			door, wall = th.DoorActors, th.WallActors
		}
	}
	if len(door) == 0 {
		door = []string{"door:" + category}
	}
	if len(wall) == 0 {
		wall = []string{"wall:" + category}
	}
	return door, wall
}

func (r *Resolver) state(chunk uuid.UUID) *chunkState {
	st := r.chunks[chunk]
	if st == nil {
		st = &chunkState{walls: make(map[int][]world.ActorID)}
		r.chunks[chunk] = st
	}
	return st
}

// ResolveChunkConnections realizes a door or wall for every connection
// actor found in a freshly loaded chunk.
func (r *Resolver) ResolveChunkConnections(chunk uuid.UUID, actors []world.ConnectionActor, doorLevel, wallLevel world.LevelID) Report {
	var rep Report
	own := make(map[uuid.UUID]int)
	for _, i := range r.table.ForModule(chunk) {
		own[r.table.At(i).DoorA] = i
	}
	st := r.state(chunk)
	st.doors, st.wallSlots = st.doors[:0], st.wallSlots[:0]
	st.wallLevel = wallLevel

	for _, a := range actors {
		i, ok := own[a.Door]
		if !ok {
			r.logger.Error("connection: no record for connection actor",
				"chunk", chunk, "door", a.Door, "actor", a.Actor)
			rep.Mismatched++
			continue
		}
		j, isDoor := r.table.Reciprocal(i)
		if !isDoor {
			st.wallSlots = append(st.wallSlots, i)
			r.spawnWall(st, i)
			rep.Walls++
			continue
		}
		st.doors = append(st.doors, i)
		inst, other := r.table.At(i), r.table.At(j)
		switch {
		case inst.DoorActors != dungeon.NoActorSet:
			if inst.SpawnedBy != chunk {
				rep.DoorsAdopted++
			}
		case other.DoorActors != dungeon.NoActorSet:
			inst.DoorActors = other.DoorActors
			inst.HasSpawnedDoorActor = true
			inst.SpawnedBy = other.SpawnedBy
			rep.DoorsAdopted++
		default:
			if !r.spawnDoor(chunk, inst, other, doorLevel) {
				continue
			}
			rep.DoorsSpawned++
		}
		// A chunk is resolved before it is shown; the door stays hidden
		// unless the other side is already on screen.
		r.setDoorHidden(inst, !r.shown[chunk] && !r.shown[inst.ModuleB])
	}
	return rep
}

// spawnDoor reports false when no door actor could be spawned; the records
// stay unspawned so a later load retries.
func (r *Resolver) spawnDoor(chunk uuid.UUID, inst, other *dungeon.ConnectionInstance, level world.LevelID) bool {
	templates, _ := r.templates(inst.Category)
	ids := make([]world.ActorID, 0, len(templates))
	for _, tpl := range templates {
		id, err := r.host.Spawn(level, tpl, inst.Transform)
		if err != nil {
			r.logger.Error("connection: door spawn failed", "chunk", chunk, "template", tpl, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		r.logger.Error("connection: door left unspawned", "chunk", chunk, "door", inst.DoorA)
		return false
	}
	set := r.table.newSet(ids)
	for _, c := range []*dungeon.ConnectionInstance{inst, other} {
		c.DoorActors = set
		c.HasSpawnedDoorActor = true
		c.SpawnedBy = chunk
	}
	for _, o := range r.observers {
		o.DoorCreated(chunk, inst)
	}
	return true
}

func (r *Resolver) spawnWall(st *chunkState, i int) {
	r.destroyWall(st, i)
	inst := r.table.At(i)
	_, templates := r.templates(inst.Category)
	var ids []world.ActorID
	for _, tpl := range templates {
		id, err := r.host.Spawn(st.wallLevel, tpl, inst.Transform)
		if err != nil {
			r.logger.Error("connection: wall spawn failed", "chunk", inst.ModuleA, "template", tpl, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	st.walls[i] = ids
}

func (r *Resolver) destroyWall(st *chunkState, i int) {
	for _, id := range st.walls[i] {
		// The wall may already be gone with its level.
		if err := r.host.Destroy(id); err != nil {
			r.logger.Debug("connection: wall already destroyed", "actor", id, "error", err)
		}
	}
	delete(st.walls, i)
}

func (r *Resolver) setDoorHidden(inst *dungeon.ConnectionInstance, hidden bool) {
	for _, id := range r.table.Actors(inst.DoorActors) {
		if err := r.host.SetHidden(id, hidden); err != nil {
			r.logger.Warn("connection: door actor missing", "actor", id, "error", err)
		}
	}
}

// ChunkShown reveals the chunk's doors and re-spawns walls destroyed when
// it was last hidden.
func (r *Resolver) ChunkShown(chunk uuid.UUID) {
	r.shown[chunk] = true
	st := r.chunks[chunk]
	if st == nil {
		return
	}
	for _, i := range st.doors {
		r.setDoorHidden(r.table.At(i), false)
	}
	for _, i := range st.wallSlots {
		if _, ok := st.walls[i]; !ok {
			r.spawnWall(st, i)
		}
	}
}

// ChunkHidden destroys the chunk's walls and hides every door whose other
// side is not visible either. A nil visible falls back to the chunks this
// resolver has seen shown.
func (r *Resolver) ChunkHidden(chunk uuid.UUID, visible func(uuid.UUID) bool) {
	delete(r.shown, chunk)
	if visible == nil {
		visible = func(id uuid.UUID) bool { return r.shown[id] }
	}
	st := r.chunks[chunk]
	if st == nil {
		return
	}
	for _, i := range st.wallSlots {
		r.destroyWall(st, i)
	}
	for _, i := range st.doors {
		inst := r.table.At(i)
		if visible(inst.ModuleB) {
			continue
		}
		r.setDoorHidden(inst, true)
	}
}

// ChunkUnloaded forgets the chunk's resolution; shared doors stay alive.
func (r *Resolver) ChunkUnloaded(chunk uuid.UUID) {
	delete(r.shown, chunk)
	st := r.chunks[chunk]
	if st == nil {
		return
	}
	for _, i := range st.wallSlots {
		r.destroyWall(st, i)
	}
	delete(r.chunks, chunk)
}

// Walls returns the live wall actors of a chunk.
func (r *Resolver) Walls(chunk uuid.UUID) []world.ActorID {
	st := r.chunks[chunk]
	if st == nil {
		return nil
	}
	var out []world.ActorID
	for _, i := range st.wallSlots {
		out = append(out, st.walls[i]...)
	}
	return out
}

// Release destroys every door and wall actor and clears spawn state.
// Failures are logged; release always runs to completion.
func (r *Resolver) Release() {
	for chunk := range r.chunks {
		r.ChunkUnloaded(chunk)
	}
	for set, ids := range r.table.sets {
		for _, id := range ids {
			if err := r.host.Destroy(id); err != nil {
				r.logger.Error("connection: door destroy failed", "actor", id, "error", err)
			}
		}
		delete(r.table.sets, set)
	}
	for i := 0; i < r.table.Len(); i++ {
		c := r.table.At(i)
		c.DoorActors = dungeon.NoActorSet
		c.HasSpawnedDoorActor = false
		c.SpawnedBy = uuid.Nil
	}
	clear(r.shown)
}
