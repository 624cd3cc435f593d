package t2048

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

const (
	cellWidth  = 7 // Width of each cell (including borders)
	cellHeight = 2 // Height of each cell (including borders)

	hudHeight    = 4
	footerHeight = 1
	minHUDWidth  = 36
)

// boardDims returns the drawn board size for an n×n grid.
func boardDims(n int) (w, h int) {
	return n*cellWidth + 1, n*cellHeight + 1
}

// tileColors maps tile values to colors; larger tiles use ColorMagenta.
var tileColors = map[int]core.Color{
	2:    core.ColorWhite,
	4:    core.ColorBrightWhite,
	8:    core.ColorYellow,
	16:   core.ColorOrange,
	32:   core.ColorBrightRed,
	64:   core.ColorRed,
	128:  core.ColorBrightYellow,
	256:  core.ColorBrightGreen,
	512:  core.ColorGreen,
	1024: core.ColorBrightCyan,
	2048: core.ColorBrightMagenta,
}

func tileColor(v int) core.Color {
	if c, ok := tileColors[v]; ok {
		return c
	}
	return core.ColorMagenta
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	size := g.board.Size()
	boardW, boardH := boardDims(size)
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight

	g.renderHUD(dst, boardX, boardW)
	g.renderGrid(dst, boardX, boardY, size)
	g.renderTiles(dst, boardX, boardY)
	g.renderFooter(dst, boardX, boardY+boardH)
	g.renderOverlays(dst, boardX, boardY, boardW, boardH)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// renderHUD draws score, solver settings and the current hint.
func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	hudX := min(boardX, (g.screenW-minHUDWidth)/2)
	hudW := max(boardW, minHUDWidth)

	dst.DrawTextCentered(0, g.Title())

	scoreStr := fmt.Sprintf("Score: %d", g.board.Score())
	if g.gain > 0 {
		scoreStr += fmt.Sprintf(" (+%d)", g.gain)
	}
	dst.DrawTextColored(hudX, 1, scoreStr, core.ColorBrightYellow)
	maxStr := fmt.Sprintf("Max: %d", g.board.MaxTile())
	dst.DrawText(hudX+hudW-len(maxStr), 1, maxStr)

	aiStr, aiColor := "AI: off", core.ColorGray
	if g.aiRunning {
		aiStr, aiColor = "AI: on", core.ColorBrightGreen
	}
	dst.DrawTextColored(hudX, 2, aiStr, aiColor)
	settings := fmt.Sprintf("IQ %d  Delay %.1fs  Runs %d",
		g.solver.Intelligence(), g.delay, g.solver.NumRuns(g.board.Score()))
	dst.DrawText(hudX+hudW-len(settings), 2, settings)

	if g.hint != nil {
		dst.DrawTextColored(hudX, 3, hintText(g.hint), core.ColorCyan)
	}
}

// hintText formats a hint with its per-direction averages.
func hintText(h *Hint) string {
	if h.Stats.Random {
		return fmt.Sprintf("Hint: %s (random)", h.Dir)
	}
	a := h.Stats.Averages
	return fmt.Sprintf("Hint: %s  U%d D%d L%d R%d", h.Dir, a[0], a[1], a[2], a[3])
}

// renderGrid draws the cell borders.
func (g *Game) renderGrid(dst *core.Screen, boardX, boardY, size int) {
	for y := range size + 1 {
		for x := range size + 1 {
			px := boardX + x*cellWidth
			py := boardY + y*cellHeight

			var corner rune
			switch {
			case y == 0 && x == 0:
				corner = '┌'
			case y == 0 && x == size:
				corner = '┐'
			case y == size && x == 0:
				corner = '└'
			case y == size && x == size:
				corner = '┘'
			case y == 0:
				corner = '┬'
			case y == size:
				corner = '┴'
			case x == 0:
				corner = '├'
			case x == size:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.SetColored(px, py, corner, core.ColorGray)

			if x < size {
				for i := 1; i < cellWidth; i++ {
					dst.SetColored(px+i, py, '─', core.ColorGray)
				}
			}
			if y < size {
				for i := 1; i < cellHeight; i++ {
					dst.SetColored(px, py+i, '│', core.ColorGray)
				}
			}
		}
	}
}

// renderTiles draws the tiles. While sliding, tiles that have not moved come
// from the pre-move board and moving tiles are drawn at their eased position.
func (g *Game) renderTiles(dst *core.Screen, boardX, boardY int) {
	if g.animating && g.animationPhase == PhaseSlide {
		moving := make(map[engine.Coord]bool, len(g.animations))
		for _, a := range g.animations {
			moving[engine.Coord{Row: a.FromY, Col: a.FromX}] = true
		}
		for row := range g.prevBoard.Size {
			for col := range g.prevBoard.Size {
				if moving[engine.Coord{Row: row, Col: col}] {
					continue
				}
				v := g.prevBoard.At(row, col)
				g.drawTile(dst, boardX+col*cellWidth, boardY+row*cellHeight, v, tileColor(v))
			}
		}
		for i := range g.animations {
			a := &g.animations[i]
			fx, fy := a.interpolatePosition()
			px := boardX + int(math.Round(fx*cellWidth))
			py := boardY + int(math.Round(fy*cellHeight))
			g.drawTile(dst, px, py, a.Value, tileColor(a.Value))
		}
		return
	}

	var popping *TileAnimation
	if g.animating && g.animationPhase == PhasePop && len(g.animations) > 0 {
		popping = &g.animations[0]
	}

	size := g.board.Size()
	for row := range size {
		for col := range size {
			v := g.board.Value(engine.Coord{Row: row, Col: col})
			color := tileColor(v)
			if popping != nil && popping.ToX == col && popping.ToY == row && popping.Progress < 1 {
				color = core.ColorBrightWhite
			}
			g.drawTile(dst, boardX+col*cellWidth, boardY+row*cellHeight, v, color)
		}
	}
}

// drawTile draws a value centered in the cell whose top-left corner is (px, py).
func (g *Game) drawTile(dst *core.Screen, px, py, value int, color core.Color) {
	if value == 0 {
		return
	}
	valStr := strconv.Itoa(value)
	padLeft := max((cellWidth-1-len(valStr))/2, 0)
	dst.DrawTextColored(px+1+padLeft, py+1, valStr, color)
}

// renderFooter draws the move counter under the board.
func (g *Game) renderFooter(dst *core.Screen, boardX, y int) {
	status := fmt.Sprintf("Moves: %d", g.moves)
	if g.hasMoved {
		status += fmt.Sprintf("  Last: %s", g.lastDir)
	}
	dst.DrawText(boardX, y, status)
}

// renderOverlays draws game state overlays.
func (g *Game) renderOverlays(dst *core.Screen, boardX, boardY, boardW, boardH int) {
	centerX := boardX + boardW/2
	centerY := boardY + boardH/2

	if g.paused {
		g.drawOverlay(dst, centerX, centerY, "PAUSED", "Press P to resume")
		return
	}

	if g.gameOver {
		g.drawOverlay(dst, centerX, centerY,
			"GAME OVER",
			fmt.Sprintf("Score: %d", g.board.Score()),
			fmt.Sprintf("Max tile: %d", g.board.MaxTile()),
			"Press R to restart",
		)
	}
}

// drawOverlay draws a centered text overlay.
func (g *Game) drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, len(line))
	}

	boxW := maxLen + 4
	boxH := len(lines) + 2
	boxX := centerX - boxW/2
	boxY := centerY - boxH/2

	// Clear area behind overlay
	for y := boxY; y < boxY+boxH; y++ {
		for x := boxX; x < boxX+boxW; x++ {
			dst.Set(x, y, ' ')
		}
	}

	dst.DrawBox(core.Rect{X: boxX, Y: boxY, W: boxW, H: boxH})

	for i, line := range lines {
		x := centerX - len(line)/2
		dst.DrawText(x, boxY+1+i, line)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows/WASD: Move | Space: AI | H: Hint | +/-: IQ | [/]: Delay | P: Pause | R: Restart | Q: Quit"
}
