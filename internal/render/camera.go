package render

import (
	"math"
	"snapmap/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera projects world positions onto screen cells. One tile covers Scale
// world units; world +Y runs up the screen. Tile X is doubled on screen
// because glyphs occupy 2 terminal columns.
type Camera struct {
	Scale      float64
	OffsetX    int
	OffsetY    int
	ViewWidth  int // in terminal columns
	ViewHeight int // in terminal rows
}

// NewCamera creates a camera centered on the world origin.
func NewCamera(scale float64, viewW, viewH int) *Camera {
	if scale <= 0 {
		scale = 1
	}
	c := &Camera{Scale: scale, ViewWidth: viewW, ViewHeight: viewH}
	c.Center(0, 0)
	return c
}

// Tile returns the tile containing world point p.
func (c *Camera) Tile(p mgl64.Vec3) (int, int) {
	return int(math.Floor(p.X() / c.Scale)), int(math.Floor(-p.Y() / c.Scale))
}

// TileRect returns the inclusive tile range covered by b.
func (c *Camera) TileRect(b geom.AABB) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(b.Min.X() / c.Scale))
	x1 = int(math.Ceil(b.Max.X()/c.Scale)) - 1
	y0 = int(math.Floor(-b.Max.Y() / c.Scale))
	y1 = int(math.Ceil(-b.Min.Y()/c.Scale)) - 1
	return
}

// Center repositions the camera so that tile (cx, cy) is in the middle.
func (c *Camera) Center(cx, cy int) {
	c.OffsetX = cx - (c.ViewWidth/2)/2
	c.OffsetY = cy - c.ViewHeight/2
}

// CenterOn centers the tile containing world point p.
func (c *Camera) CenterOn(p mgl64.Vec3) { c.Center(c.Tile(p)) }

// Resize changes the viewport and keeps the same tile centered.
func (c *Camera) Resize(viewW, viewH int) {
	cx := c.OffsetX + (c.ViewWidth/2)/2
	cy := c.OffsetY + c.ViewHeight/2
	c.ViewWidth, c.ViewHeight = viewW, viewH
	c.Center(cx, cy)
}

// TileToScreen converts tile (tx, ty) to screen (sx, sy).
// visible is false when the result falls outside the viewport.
func (c *Camera) TileToScreen(tx, ty int) (sx, sy int, visible bool) {
	sx = (tx - c.OffsetX) * 2
	sy = ty - c.OffsetY
	visible = sx >= 0 && sx < c.ViewWidth && sy >= 0 && sy < c.ViewHeight
	return
}

// WorldToScreen projects world point p onto the screen.
func (c *Camera) WorldToScreen(p mgl64.Vec3) (sx, sy int, visible bool) {
	return c.TileToScreen(c.Tile(p))
}

// ScreenToTile converts screen (sx, sy) to tile coordinates.
func (c *Camera) ScreenToTile(sx, sy int) (int, int) {
	return sx/2 + c.OffsetX, sy + c.OffsetY
}
