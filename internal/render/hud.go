package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Status is the summary line shown in the HUD.
type Status struct {
	Seed    int64
	Modules int
	Loaded  int
	Visible int
	Doors   int
	Walls   int
}

func (s Status) String() string {
	return fmt.Sprintf("seed %d  modules %d  loaded %d  visible %d  doors %d  walls %d",
		s.Seed, s.Modules, s.Loaded, s.Visible, s.Doors, s.Walls)
}

// DrawHUD renders the status line and the last messages at the bottom of
// the screen, then shows the frame.
func (r *Renderer) DrawHUD(st Status, messages []string) {
	_, screenH := r.screen.Size()
	hudY := screenH - hudRows

	r.drawHLine(hudY, tcell.ColorGray)
	r.drawText(0, hudY+1, st.String(), tcell.StyleDefault.Foreground(tcell.ColorWhite))

	start := len(messages) - (hudRows - 2)
	if start < 0 {
		start = 0
	}
	for i, msg := range messages[start:] {
		r.drawText(0, hudY+2+i, msg, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
	}

	r.screen.Show()
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col++
	}
}
