package editor

import (
	stdmath "math"
	"time"

	"mesh-editor/math"
	"mesh-editor/scene"
)

// PointerTarget receives the picks and marquee selections a Gestures
// recognizer resolves.
type PointerTarget interface {
	EditMode() scene.EditMode
	// Transforming reports whether the gizmo owns the pointer.
	Transforming() bool
	PickAt(x, y float64, mods Modifiers)
	// SelectRect selects inside an NDC rectangle and returns the match count.
	SelectRect(rect math.Rect, mods Modifiers) int
}

// Gestures tells clicks from marquee drags on one viewport.
type Gestures struct {
	params Params
	target PointerTarget
	now    func() time.Time

	width, height float64

	down         bool
	downX, downY float64
	curX, curY   float64
	downAt       time.Time
	marquee      bool
}

func NewGestures(target PointerTarget, params Params) *Gestures {
	return &Gestures{
		params: params,
		target: target,
		now:    time.Now,
		width:  1,
		height: 1,
	}
}

// SetClock replaces the time source.
func (g *Gestures) SetClock(now func() time.Time) { g.now = now }

// SetViewport sets the viewport size in pixels.
func (g *Gestures) SetViewport(width, height float64) {
	if width > 0 && height > 0 {
		g.width, g.height = width, height
	}
}

// PointerDown starts a possible click or drag at pixel (x, y).
func (g *Gestures) PointerDown(x, y float64) {
	g.down = true
	g.marquee = false
	g.downX, g.downY = x, y
	g.curX, g.curY = x, y
	g.downAt = g.now()
}

// PointerMove tracks the pointer and starts a marquee once it has moved
// past the drag threshold in an edit mode while no transform is running.
func (g *Gestures) PointerMove(x, y float64) {
	g.curX, g.curY = x, y
	if !g.down || g.marquee {
		return
	}
	if g.moved(x, y) >= g.params.DragThresholdPx &&
		g.target.EditMode() != scene.ModeObject && !g.target.Transforming() {
		g.marquee = true
	}
}

// PointerUp resolves the gesture. mods are sampled here, at release.
func (g *Gestures) PointerUp(x, y float64, mods Modifiers) {
	if !g.down {
		return
	}
	g.down = false
	g.curX, g.curY = x, y

	if g.marquee {
		g.marquee = false
		rect := math.RectFromPoints(
			PixelToNDC(g.downX, g.downY, g.width, g.height),
			PixelToNDC(x, y, g.width, g.height),
		)
		if g.target.SelectRect(rect, mods) == 0 {
			g.target.PickAt(x, y, mods)
		}
		return
	}

	if g.now().Sub(g.downAt) < g.params.ClickMaxDuration && g.moved(x, y) < g.params.DragThresholdPx {
		g.target.PickAt(x, y, mods)
	}
}

// Cancel abandons the current gesture, e.g. on focus loss.
func (g *Gestures) Cancel() {
	g.down = false
	g.marquee = false
}

// Marquee returns the live marquee rectangle in pixels.
func (g *Gestures) Marquee() (rect math.Rect, active bool) {
	if !g.marquee {
		return math.Rect{}, false
	}
	return math.RectFromPoints(
		math.Vec2{X: float32(g.downX), Y: float32(g.downY)},
		math.Vec2{X: float32(g.curX), Y: float32(g.curY)},
	), true
}

func (g *Gestures) moved(x, y float64) float64 {
	return stdmath.Hypot(x-g.downX, y-g.downY)
}
