package streaming

import "github.com/google/uuid"

// Listener is notified after the model has processed a host event for a
// chunk.
type Listener interface {
	ChunkLoaded(c *Chunk)
	ChunkUnloaded(c *Chunk)
	ChunkShown(c *Chunk)
	ChunkHidden(c *Chunk)
}

// ListenerFuncs adapts optional functions to Listener.
type ListenerFuncs struct {
	Loaded, Unloaded, Shown, Hidden func(id uuid.UUID)
}

func (f ListenerFuncs) ChunkLoaded(c *Chunk) { call(f.Loaded, c) }
func (f ListenerFuncs) ChunkUnloaded(c *Chunk) { call(f.Unloaded, c) }
func (f ListenerFuncs) ChunkShown(c *Chunk) { call(f.Shown, c) }
func (f ListenerFuncs) ChunkHidden(c *Chunk) { call(f.Hidden, c) }

func call(fn func(uuid.UUID), c *Chunk) {
	if fn != nil {
		fn(c.ID)
	}
}
