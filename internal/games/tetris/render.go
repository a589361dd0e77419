package tetris

import (
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/core"
	tcore "github.com/vovakirdan/tui-tetris/internal/games/tetris/core"
)

// Visual characters for rendering
const (
	BlockChar = '█'
	EmptyChar = '·'
)

// kindColors assigns each shape its usual color.
var kindColors = map[tcore.Kind]core.Color{
	tcore.KindI: core.ColorCyan,
	tcore.KindO: core.ColorYellow,
	tcore.KindT: core.ColorMagenta,
	tcore.KindS: core.ColorGreen,
	tcore.KindZ: core.ColorRed,
	tcore.KindJ: core.ColorBlue,
	tcore.KindL: core.ColorOrange,
}

// KindColor returns the color a shape is drawn with.
func KindColor(k tcore.Kind) core.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return core.ColorWhite
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	g.renderHUD(dst)

	if g.board == nil {
		msg := "Board unavailable"
		if g.boardErr != nil {
			msg = g.boardErr.Error()
		}
		g.renderOverlay(dst, "Cannot start", msg)
		return
	}

	if g.tooSmall || !g.fits(dst.Width(), dst.Height()) {
		w, h := g.requiredSize()
		g.renderOverlay(dst, "Window too small", fmt.Sprintf("Need %dx%d", w, h))
		return
	}

	frame := g.boardFrame(dst)
	dst.DrawBox(frame, core.ColorGray)
	g.renderCells(dst, frame.X+1, frame.Y+1)

	switch {
	case g.board.IsLost():
		g.renderOverlay(dst, "Game Over", fmt.Sprintf("Lines: %d  R to restart", g.board.LinesCleared()))
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// boardFrame returns the box around the board, centered below the HUD.
func (g *Game) boardFrame(dst *core.Screen) core.Rect {
	w, h := g.requiredSize()
	area := core.NewRect(0, hudHeight, dst.Width(), dst.Height()-hudHeight)
	frame := area.Centered(w, h-hudHeight)
	frame.Y = core.Clamp(frame.Y, hudHeight, dst.Height()-frame.H)
	return frame
}

// renderCells draws every grid cell with its top-left at (ox, oy).
func (g *Game) renderCells(dst *core.Screen, ox, oy int) {
	for pos := range g.board.Positions() {
		sx := ox + pos.X*cellWidth
		sy := oy + pos.Y
		if kind, ok := g.board.Get(pos); ok {
			c := KindColor(kind)
			dst.SetCell(sx, sy, BlockChar, c)
			dst.SetCell(sx+1, sy, BlockChar, c)
			continue
		}
		dst.SetCell(sx, sy, ' ', core.ColorDefault)
		dst.SetCell(sx+1, sy, EmptyChar, core.ColorGray)
	}
}

// renderHUD draws the top status bar.
func (g *Game) renderHUD(dst *core.Screen) {
	st := g.State()
	hud := fmt.Sprintf(" %s | Lines: %d  Pieces: %d  Level: %d", g.Title(), st.Lines, st.Pieces, st.Level)
	dst.DrawText(0, 0, hud)

	for x := range dst.Width() {
		dst.Set(x, 1, '─')
	}
}

// renderOverlay draws a centered two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	boxW := max(len([]rune(line1)), len([]rune(line2))) + 4
	box := dst.Bounds().Centered(boxW, 5)

	dst.FillRect(box, ' ')
	dst.DrawBox(box, core.ColorWhite)
	dst.DrawTextCentered(box.Y+1, line1)
	dst.DrawTextCentered(box.Y+3, line2)
}
