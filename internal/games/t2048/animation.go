package t2048

// Animation lengths in ticks.
const (
	slideAnimationDuration = 8 // ~133ms at 60fps
	popAnimationDuration   = 6 // ~100ms at 60fps
)

// TileAnimation is one tile in flight. Positions are in board cells.
type TileAnimation struct {
	Value    int
	FromX    int
	FromY    int
	ToX      int
	ToY      int
	Progress float64 // 0.0 → 1.0
	Merged   bool
	IsNew    bool // spawned tile, drawn with the pop effect
}

// TileMove is a slide or merge reported by the engine.
type TileMove struct {
	FromX  int
	FromY  int
	ToX    int
	ToY    int
	Value  int  // value arriving at the target
	Merged bool // target value doubled
}

// PendingTile is a spawn waiting for the slide phase to end.
type PendingTile struct {
	X, Y  int
	Value int
}

// AnimationPhase represents the current phase of animation.
type AnimationPhase int

const (
	PhaseNone AnimationPhase = iota
	PhaseSlide
	PhasePop
)

// startSlideAnimation starts the slide phase for the moves of one turn.
func (g *Game) startSlideAnimation(moves []TileMove) {
	g.animations = g.animations[:0]
	for _, m := range moves {
		g.animations = append(g.animations, TileAnimation{
			Value:  m.Value,
			FromX:  m.FromX,
			FromY:  m.FromY,
			ToX:    m.ToX,
			ToY:    m.ToY,
			Merged: m.Merged,
		})
	}
	g.animating = true
	g.animationPhase = PhaseSlide
	g.animationTicks = 0
}

// startPopAnimation starts the pop phase for a freshly spawned tile.
func (g *Game) startPopAnimation(x, y, value int) {
	g.animations = append(g.animations[:0], TileAnimation{
		Value: value,
		FromX: x,
		FromY: y,
		ToX:   x,
		ToY:   y,
		IsNew: true,
	})
	g.animating = true
	g.animationPhase = PhasePop
	g.animationTicks = 0
}

// updateAnimation advances the animation by one tick.
// Returns true if animation is still in progress.
func (g *Game) updateAnimation() bool {
	if !g.animating {
		return false
	}

	g.animationTicks++

	var duration int
	switch g.animationPhase {
	case PhaseSlide:
		duration = slideAnimationDuration
	case PhasePop:
		duration = popAnimationDuration
	default:
		g.clearAnimation()
		return false
	}

	progress := min(float64(g.animationTicks)/float64(duration), 1.0)
	for i := range g.animations {
		g.animations[i].Progress = progress
	}

	if g.animationTicks >= duration {
		g.finishAnimation()
		return g.animating
	}
	return true
}

// finishAnimation ends the current phase, chaining slide into pop.
func (g *Game) finishAnimation() {
	if g.animationPhase == PhaseSlide && g.pendingNewTile != nil {
		tile := g.pendingNewTile
		g.pendingNewTile = nil
		g.startPopAnimation(tile.X, tile.Y, tile.Value)
		return
	}
	g.clearAnimation()
}

// finishAnimationNow drops any running animation so a new move can start.
func (g *Game) finishAnimationNow() {
	g.pendingNewTile = nil
	g.clearAnimation()
}

func (g *Game) clearAnimation() {
	g.animating = false
	g.animationPhase = PhaseNone
	g.animationTicks = 0
	g.animations = g.animations[:0]
}

// Animating reports whether tiles are still in flight.
func (g *Game) Animating() bool {
	return g.animating
}

// easeOutQuad provides smooth deceleration for animation.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// interpolatePosition calculates the current position during animation.
func (a *TileAnimation) interpolatePosition() (x, y float64) {
	t := easeOutQuad(a.Progress)
	x = float64(a.FromX) + (float64(a.ToX)-float64(a.FromX))*t
	y = float64(a.FromY) + (float64(a.ToY)-float64(a.FromY))*t
	return x, y
}
