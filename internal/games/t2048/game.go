// Package t2048 implements the 2048 puzzle as a registry game: a manual
// mode and an autoplay mode driven by the Monte-Carlo solver.
package t2048

import (
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
	"github.com/vovakirdan/tui-2048/internal/registry"
	"github.com/vovakirdan/tui-2048/internal/solver"
)

// Mode represents the game mode.
type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

const (
	intelligenceStep = 5
	delayStep        = 0.1
)

// Game implements the 2048 puzzle game.
type Game struct {
	mode   Mode
	cfg    config.T2048Config
	rng    *rand.Rand
	tick   uint64
	board  *engine.Engine
	solver *solver.Solver
	logger *log.Logger

	moves       int
	gain        int // points scored by the last move
	scoreBefore int
	lastDir     engine.Direction
	hasMoved    bool
	hint        *Hint

	// AI pacing
	aiRunning bool
	delay     float64 // seconds between AI moves
	cooldown  int     // ticks left before the next AI move
	tickRate  int

	// Screen dimensions
	screenW int
	screenH int

	// Game state flags
	gameOver bool
	paused   bool
	tooSmall bool

	// Animation, fed by engine notifications
	inMove         bool
	prevBoard      engine.Snapshot
	pendingMoves   []TileMove
	pendingNewTile *PendingTile
	animations     []TileAnimation
	animating      bool
	animationPhase AnimationPhase
	animationTicks int
}

// Hint is a solver suggestion shown without moving.
type Hint struct {
	Dir   engine.Direction
	Stats solver.Stats
}

// Package-level configuration, set by the platform before games are created.
var (
	selectedConfig = config.DefaultT2048Config()
	gameLogger     *log.Logger
)

// SetConfig sets the configuration used by newly reset games.
func SetConfig(cfg config.T2048Config) {
	selectedConfig = cfg
}

// SetLogger sets the logger handed to the solver of newly reset games.
func SetLogger(l *log.Logger) {
	gameLogger = l
}

// New creates a manual 2048 game. The AI can be toggled on at any time.
func New() *Game {
	return &Game{mode: ModeManual}
}

// NewAuto creates a 2048 game whose AI starts playing immediately.
func NewAuto() *Game {
	return &Game{mode: ModeAuto}
}

func init() {
	registry.Register("2048", func() registry.Game {
		return New()
	})
	registry.Register("2048_ai", func() registry.Game {
		return NewAuto()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeAuto {
		return "2048_ai"
	}
	return "2048"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeAuto {
		return "2048 (AI)"
	}
	return "2048"
}

// Reset initializes/restarts the game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.cfg = selectedConfig
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.tick = 0
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.tickRate = cfg.TickRate
	g.paused = false
	g.delay = g.cfg.Solver.Delay

	g.logger = gameLogger
	if g.logger == nil {
		g.logger = log.Default()
	}

	g.board = engine.NewEngine(g.cfg.Board.Size, g.rng, g)

	// A fixed solver seed replays the same searches; otherwise derive one
	// from the game seed so --seed still reproduces the whole session.
	solverSeed := g.cfg.Solver.Seed
	if solverSeed == 0 {
		solverSeed = g.rng.Int63()
	}
	g.solver = solver.New(g.board, solver.Config{
		Intelligence: g.cfg.Solver.Intelligence,
		Workers:      g.cfg.Solver.Workers,
		Seed:         solverSeed,
		Logger:       g.logger,
	})

	g.newGame()
	g.aiRunning = g.mode == ModeAuto
	g.checkScreenSize()
}

// newGame clears the board and spawns the opening tiles. Solver settings
// survive, like the sliders of a running app.
func (g *Game) newGame() {
	g.board.Reset()
	g.moves = 0
	g.gain = 0
	g.hasMoved = false
	g.hint = nil
	g.gameOver = false
	g.cooldown = 0
	g.clearAnimation()

	for range g.cfg.Board.InitialTiles {
		g.board.SpawnRandomTile()
	}
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	boardW, boardH := boardDims(g.cfg.Board.Size)
	minW := max(boardW+2, minHUDWidth)
	minH := hudHeight + boardH + footerHeight
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionRestart) {
		g.newGame()
		g.aiRunning = g.mode == ModeAuto
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.applySettings(in)
	g.updateAnimation()

	if g.gameOver {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionToggleAI) {
		g.aiRunning = !g.aiRunning
		g.cooldown = 0
	}

	if in.Has(core.ActionHint) {
		dir := g.solver.FindBestMove()
		g.hint = &Hint{Dir: dir, Stats: g.solver.Stats()}
	}

	if dir, ok := directionFromInput(in); ok {
		g.finishAnimationNow()
		return core.StepResult{State: g.State(), Moved: g.applyMove(dir)}
	}

	if g.aiRunning && !g.animating {
		if g.cooldown > 0 {
			g.cooldown--
			return core.StepResult{State: g.State()}
		}
		dir := g.solver.FindBestMove()
		// Ties among all-zero averages can land on a blocked direction.
		if !g.board.CanMove(dir) {
			if fallback, ok := g.board.FirstMovable(); ok {
				dir = fallback
			}
		}
		moved := g.applyMove(dir)
		g.cooldown = core.RuntimeConfig{TickRate: g.tickRate}.TicksFor(g.delay)
		return core.StepResult{State: g.State(), Moved: moved}
	}

	return core.StepResult{State: g.State()}
}

// applySettings handles the intelligence and delay adjustments.
func (g *Game) applySettings(in core.InputFrame) {
	if in.Has(core.ActionSmarter) {
		g.SetIntelligence(g.solver.Intelligence() + intelligenceStep)
	}
	if in.Has(core.ActionDumber) {
		g.SetIntelligence(g.solver.Intelligence() - intelligenceStep)
	}
	if in.Has(core.ActionSlower) {
		g.delay = core.ClampF(g.delay+delayStep, 0, config.MaxDelay)
	}
	if in.Has(core.ActionFaster) {
		g.delay = core.ClampF(g.delay-delayStep, 0, config.MaxDelay)
	}
}

// SetIntelligence changes solver effort, clamped to [0, 100].
func (g *Game) SetIntelligence(v int) {
	g.solver.SetIntelligence(core.Clamp(v, 0, config.MaxIntelligence))
}

// directionFromInput maps movement actions to a direction.
func directionFromInput(in core.InputFrame) (engine.Direction, bool) {
	switch {
	case in.Has(core.ActionUp):
		return engine.DirUp, true
	case in.Has(core.ActionDown):
		return engine.DirDown, true
	case in.Has(core.ActionLeft):
		return engine.DirLeft, true
	case in.Has(core.ActionRight):
		return engine.DirRight, true
	}
	return engine.DirUp, false
}

// applyMove runs one engine move and starts its animation.
func (g *Game) applyMove(dir engine.Direction) bool {
	g.prevBoard = g.board.Snapshot()
	g.pendingMoves = g.pendingMoves[:0]
	g.pendingNewTile = nil
	g.gain = 0
	g.scoreBefore = g.board.Score()

	g.inMove = true
	moved := g.board.Move(dir)
	g.inMove = false

	if moved {
		g.moves++
		g.lastDir = dir
		g.hasMoved = true
		g.hint = nil
		g.startSlideAnimation(g.pendingMoves)
	}

	if g.board.IsGameOver() {
		g.gameOver = true
		g.aiRunning = false
		g.logger.Debug("game over", "score", g.board.Score(), "max", g.board.MaxTile(), "moves", g.moves)
	}
	return moved
}

// ScoreChanged receives engine score notifications. A move may merge
// several pairs, so gain is measured against the score before the move.
func (g *Game) ScoreChanged(score int) {
	g.gain = score - g.scoreBefore
}

// TileMoved receives engine slide/merge notifications.
func (g *Game) TileMoved(from, to engine.Coord, value int) {
	g.pendingMoves = append(g.pendingMoves, TileMove{
		FromX:  from.Col,
		FromY:  from.Row,
		ToX:    to.Col,
		ToY:    to.Row,
		Value:  value,
		Merged: g.prevBoard.Values != nil && value != g.prevBoard.At(from.Row, from.Col),
	})
}

// TileAdded receives engine spawn notifications.
func (g *Game) TileAdded(at engine.Coord, value int) {
	tile := &PendingTile{X: at.Col, Y: at.Row, Value: value}
	if g.inMove {
		g.pendingNewTile = tile
		return
	}
	g.startPopAnimation(tile.X, tile.Y, tile.Value)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.board.Score(),
		GameOver: g.gameOver,
		Paused:   g.paused || g.tooSmall,
	}
}

// Engine exposes the live board for read-only inspection.
func (g *Game) Engine() *engine.Engine {
	return g.board
}

// AIRunning reports whether the solver is playing.
func (g *Game) AIRunning() bool {
	return g.aiRunning
}

// MaxTile returns the largest tile on the board.
func (g *Game) MaxTile() int {
	return g.board.MaxTile()
}

// Resize adapts the layout to a new screen size without restarting.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}
