// Package world defines the narrow capability interface the dungeon runtime
// needs from a host engine (spawn, destroy, stream levels, collect garbage)
// and an in-memory Sim implementation used by the previewer and tests.
package world

import (
	"errors"
	"fmt"
	"snapmap/internal/geom"

	"github.com/google/uuid"
)

// ActorID identifies a spawned actor. Zero is never a valid actor.
type ActorID uint64

// NoActor is the zero value.
const NoActor ActorID = 0

// LevelID names a streamable or persistent level.
type LevelID string

// PersistentLevel always exists and is never streamed.
const PersistentLevel LevelID = "persistent"

// ChunkLevel returns the streaming level id for a chunk.
func ChunkLevel(chunk uuid.UUID) LevelID {
	return LevelID("chunk_" + chunk.String())
}

var (
	// ErrNoActor is returned for ids that are not alive.
	ErrNoActor = errors.New("world: no such actor")
	// ErrNoLevel is returned for unknown streaming levels.
	ErrNoLevel = errors.New("world: no such level")
)

// EventKind is the kind of a streaming notification.
type EventKind uint8

const (
	LevelLoaded EventKind = iota
	LevelShown
	LevelHidden
	LevelUnloaded
)

func (k EventKind) String() string {
	switch k {
	case LevelLoaded:
		return "loaded"
	case LevelShown:
		return "shown"
	case LevelHidden:
		return "hidden"
	case LevelUnloaded:
		return "unloaded"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is delivered by the host when a level finishes a streaming step.
type Event struct {
	Kind  EventKind
	Level LevelID
}

// LevelRequest is the desired state of one streaming level.
type LevelRequest struct {
	Level   LevelID
	Package string
	Loaded  bool
	Visible bool
}

// ConnectionActor is a door marker found inside loaded level content.
type ConnectionActor struct {
	Actor     ActorID
	Door      uuid.UUID
	Transform geom.Transform
}

// Host is everything the streaming model and connection resolver call on
// the engine side. Calls are made from a single goroutine; events are
// delivered to the subscribed function, never concurrently with a call.
type Host interface {
	Spawn(level LevelID, template string, t geom.Transform) (ActorID, error)
	Destroy(id ActorID) error
	SetHidden(id ActorID, hidden bool) error

	// RequestLevelState asks the host to move a level towards the desired
	// state. Completion is reported later through events.
	RequestLevelState(req LevelRequest)
	ConnectionActors(level LevelID) []ConnectionActor
	RemoveLevel(level LevelID) error
	QueuePackageUnload(level LevelID) error
	FlushStreaming()
	CollectGarbage()

	AddNavigationBounds(level LevelID, b geom.AABB)
	RemoveNavigationBounds(level LevelID)

	Subscribe(fn func(Event))
}
