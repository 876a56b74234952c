// Package render draws a streamed dungeon top-down onto a tcell screen.
package render

import (
	"snapmap/assets"
	"snapmap/internal/dungeon"
	"snapmap/internal/streaming"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mattn/go-runewidth"
)

// hudRows is the number of rows reserved at the bottom for the HUD.
const hudRows = 4

// Renderer draws chunks, doors, walls and streaming sources. World +Y is
// drawn upwards.
type Renderer struct {
	screen tcell.Screen
	camera *Camera
}

// NewRenderer creates a Renderer where one tile covers scale world units.
func NewRenderer(screen tcell.Screen, scale float64) *Renderer {
	w, h := screen.Size()
	return &Renderer{
		screen: screen,
		camera: NewCamera(scale, w, h-hudRows),
	}
}

// Resize adapts the viewport to the current screen size.
func (r *Renderer) Resize() {
	w, h := r.screen.Size()
	r.camera.Resize(w, h-hudRows)
}

// Camera returns the renderer's camera.
func (r *Renderer) Camera() *Camera { return r.camera }

// CenterOn recenters the camera on world point p.
func (r *Renderer) CenterOn(p mgl64.Vec3) { r.camera.CenterOn(p) }

// ScreenPos returns where world point p lands on screen.
func (r *Renderer) ScreenPos(p mgl64.Vec3) (sx, sy int, visible bool) {
	return r.camera.WorldToScreen(p)
}

// DrawFrame renders every chunk of m, its doors and walls, then sources.
func (r *Renderer) DrawFrame(m *streaming.Model, sources []mgl64.Vec3) {
	r.screen.Clear()
	layout := m.Layout()
	for _, c := range m.Chunks() {
		category := ""
		if mi, ok := layout.Module(c.ID); ok {
			category = mi.Category
		}
		r.drawChunk(c, assets.Tiles(category))
	}
	r.drawConnections(m, layout)
	for _, c := range m.Chunks() {
		if c.SpawnRoom {
			r.putWorld(c.Bounds.Center(), assets.GlyphSpawn, tcell.StyleDefault)
		}
	}
	for _, s := range sources {
		r.putWorld(s, assets.GlyphSource, tcell.StyleDefault)
	}
}

func chunkGlyph(c *streaming.Chunk, tiles assets.ChunkTiles) string {
	switch {
	case c.Load == streaming.Loading:
		return tiles.Loading
	case c.Load != streaming.Loaded:
		return tiles.Unloaded
	case c.Visible():
		return tiles.Visible
	}
	return tiles.Hidden
}

func (r *Renderer) drawChunk(c *streaming.Chunk, tiles assets.ChunkTiles) {
	glyph := chunkGlyph(c, tiles)
	style := tcell.StyleDefault.Background(tcell.ColorBlack)
	x0, y0, x1, y1 := r.camera.TileRect(c.Bounds)
	for ty := y0; ty <= y1; ty++ {
		for tx := x0; tx <= x1; tx++ {
			sx, sy, ok := r.camera.TileToScreen(tx, ty)
			if ok {
				r.putGlyph(sx, sy, glyph, style)
			}
		}
	}
}

// drawConnections draws shared doors that are spawned and not hidden, and
// walls of visible chunks.
func (r *Renderer) drawConnections(m *streaming.Model, layout *dungeon.Layout) {
	for i := range layout.Connections {
		conn := &layout.Connections[i]
		owner, ok := m.Chunk(conn.ModuleA)
		if !ok {
			continue
		}
		if !conn.Matched() {
			if owner.Visible() {
				r.putWorld(conn.Transform.Location, assets.GlyphWall, tcell.StyleDefault)
			}
			continue
		}
		if !conn.HasSpawnedDoorActor {
			continue
		}
		other, ok := m.Chunk(conn.ModuleB)
		if owner.Visible() || (ok && other.Visible()) {
			r.putWorld(conn.Transform.Location, assets.GlyphDoor, tcell.StyleDefault)
		}
	}
}

func (r *Renderer) putWorld(p mgl64.Vec3, glyph string, style tcell.Style) {
	if sx, sy, ok := r.ScreenPos(p); ok {
		r.putGlyph(sx, sy, glyph, style)
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen position (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	mainc := runes[0]
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, mainc, combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}
