package easel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 values of a Shape simultaneously. Create one
// with the constructors (TweenPosition, TweenScale, TweenFill, ...) and call
// Update(dt) each tick. Values are written through the shape's setters, so
// the next synchronization point picks them up like any other mutation. If
// the target shape is disposed, the group stops immediately.
//
// There is no global animation manager; callers own their groups.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	apply  func(v [4]float64)
	target *Shape
	Done   bool
}

func newTweenGroup(s *Shape, from, to []float64, duration float32, fn ease.TweenFunc, apply func([4]float64)) *TweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	g := &TweenGroup{count: len(from), target: s, apply: apply}
	for i := range from {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
	}
	return g
}

// Update advances all tweens by dt seconds and applies the values to the
// target. Done is set once every tween finished.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target == nil || g.target.IsDisposed() {
		g.Done = true
		return
	}

	var v [4]float64
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		v[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.apply(v)
	g.Done = allDone
}

// TweenPosition animates the shape's position to (toX, toY).
func TweenPosition(s *Shape, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	x, y := s.t.Position()
	return newTweenGroup(s, []float64{x, y}, []float64{toX, toY}, duration, fn,
		func(v [4]float64) { s.SetPosition(v[0], v[1]) })
}

// TweenScale animates the shape's scale factors.
func TweenScale(s *Shape, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	sx, sy := s.t.Scale()
	return newTweenGroup(s, []float64{sx, sy}, []float64{toSX, toSY}, duration, fn,
		func(v [4]float64) { s.SetScale(v[0], v[1]) })
}

// TweenRotation animates the shape's rotation, in radians.
func TweenRotation(s *Shape, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(s, []float64{s.t.Rotation()}, []float64{to}, duration, fn,
		func(v [4]float64) { s.SetRotation(v[0]) })
}

// TweenOpacity animates the shape's local opacity.
func TweenOpacity(s *Shape, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(s, []float64{s.t.Opacity()}, []float64{to}, duration, fn,
		func(v [4]float64) { s.SetOpacity(v[0]) })
}

// TweenFill animates all four components of the fill color.
func TweenFill(s *Shape, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := s.fill
	return newTweenGroup(s, []float64{from.R, from.G, from.B, from.A}, []float64{to.R, to.G, to.B, to.A}, duration, fn,
		func(v [4]float64) { s.SetFill(Color{v[0], v[1], v[2], v[3]}) })
}

// TweenStroke animates all four components of the stroke color.
func TweenStroke(s *Shape, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := s.stroke
	return newTweenGroup(s, []float64{from.R, from.G, from.B, from.A}, []float64{to.R, to.G, to.B, to.A}, duration, fn,
		func(v [4]float64) { s.SetStroke(Color{v[0], v[1], v[2], v[3]}) })
}

// TweenStrokeWidth animates the stroke width.
func TweenStrokeWidth(s *Shape, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(s, []float64{s.strokeWidth}, []float64{to}, duration, fn,
		func(v [4]float64) { s.SetStrokeWidth(v[0]) })
}
