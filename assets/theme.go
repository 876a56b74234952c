package assets

// Glyphs used by the previewer. Each occupies two terminal columns.
const (
	GlyphSource = "🧙"
	GlyphSpawn  = "⭐"
	GlyphDoor   = "🚪"
	GlyphWall   = "🧱"
	GlyphEmpty  = "  "
)

// ChunkTiles is the floor glyph set for one chunk streaming state. Emoji
// carry their own colours, so each state gets a distinct glyph instead of a
// tinted one.
type ChunkTiles struct {
	Unloaded string
	Loading  string
	Hidden   string // loaded, not visible
	Visible  string
}

// CategoryTiles maps a module category to its floor glyphs. Categories not
// listed use DefaultTiles.
var CategoryTiles = map[string]ChunkTiles{
	"start":    {Unloaded: "🔲", Loading: "⏳", Hidden: "🌑", Visible: "🟨"},
	"corridor": {Unloaded: "🔲", Loading: "⏳", Hidden: "🌑", Visible: "🟫"},
	"hall":     {Unloaded: "🔲", Loading: "⏳", Hidden: "🌑", Visible: "🟦"},
	"room":     {Unloaded: "🔲", Loading: "⏳", Hidden: "🌑", Visible: "🟩"},
	"boss":     {Unloaded: "🔲", Loading: "⏳", Hidden: "🌑", Visible: "🟥"},
}

// DefaultTiles is used for unknown categories.
var DefaultTiles = ChunkTiles{Unloaded: "🔲", Loading: "⏳", Hidden: "🌑", Visible: "⬜"}

// Tiles returns the glyph set for category.
func Tiles(category string) ChunkTiles {
	if t, ok := CategoryTiles[category]; ok {
		return t
	}
	return DefaultTiles
}
