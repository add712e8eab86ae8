package easel

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	s := NewRect(NewIDAllocator(), "pos", 0, 0, 10, 10)
	s.SetPosition(10, 20)

	g := TweenPosition(s, 100, 200, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	x, y := s.Transform().Position()
	if math.Abs(x-100) > 0.5 {
		t.Errorf("x = %f, want ~100", x)
	}
	if math.Abs(y-200) > 0.5 {
		t.Errorf("y = %f, want ~200", y)
	}
}

func TestTweenScaleHalfway(t *testing.T) {
	s := NewCircle(NewIDAllocator(), "scale", 0, 0, 5)

	g := TweenScale(s, 3, 5, 1.0, ease.Linear)
	g.Update(0.5)

	if g.Done {
		t.Fatal("should not be done at halfway")
	}
	sx, sy := s.Transform().Scale()
	if math.Abs(sx-2) > 0.05 || math.Abs(sy-3) > 0.05 {
		t.Errorf("scale = (%f, %f), want ~(2, 3)", sx, sy)
	}
}

func TestTweenOpacity(t *testing.T) {
	s := NewCircle(NewIDAllocator(), "fade", 0, 0, 5)

	tw := TweenOpacity(s, 0, 1.0, ease.Linear)

	tw.Update(0.5)
	if tw.Done {
		t.Fatal("should not be done at halfway")
	}
	if a := s.Transform().Opacity(); math.Abs(a-0.5) > 0.05 {
		t.Errorf("opacity = %f, want ~0.5 at halfway", a)
	}

	tw.Update(0.5)
	if !tw.Done {
		t.Fatal("should be done after full duration")
	}
	if a := s.Transform().Opacity(); math.Abs(a) > 0.01 {
		t.Errorf("opacity = %f, want ~0", a)
	}
}

func TestTweenRotationReachesTarget(t *testing.T) {
	s := NewGroup(NewIDAllocator(), "rot")

	tw := TweenRotation(s, math.Pi, 1.0, ease.Linear)
	tw.Update(0.5)
	tw.Update(0.5)

	if !tw.Done {
		t.Fatal("expected done after full duration")
	}
	if r := s.Transform().Rotation(); math.Abs(r-math.Pi) > 0.05 {
		t.Errorf("rotation = %f, want ~%f", r, math.Pi)
	}
}

func TestTweenFillAndStroke(t *testing.T) {
	s := NewRect(NewIDAllocator(), "paint", 0, 0, 10, 10)
	s.SetFill(Color{R: 1, A: 1})
	s.SetStroke(Color{B: 1, A: 1})

	fill := TweenFill(s, Color{G: 1, A: 1}, 1.0, ease.Linear)
	stroke := TweenStroke(s, Color{R: 1, B: 1, A: 0}, 1.0, ease.Linear)
	width := TweenStrokeWidth(s, 5, 1.0, ease.Linear)
	for _, g := range []*TweenGroup{fill, stroke, width} {
		g.Update(0.5)
	}

	f := s.Fill()
	if math.Abs(f.R-0.5) > 0.05 || math.Abs(f.G-0.5) > 0.05 || math.Abs(f.A-1) > 0.01 {
		t.Errorf("fill = %+v, want ~{0.5 0.5 0 1}", f)
	}
	st := s.Stroke()
	if math.Abs(st.R-0.5) > 0.05 || math.Abs(st.B-1) > 0.01 || math.Abs(st.A-0.5) > 0.05 {
		t.Errorf("stroke = %+v, want ~{0.5 0 1 0.5}", st)
	}
	if w := s.StrokeWidth(); math.Abs(w-3) > 0.05 {
		t.Errorf("stroke width = %f, want ~3", w)
	}
}

func TestTweenNilEaseDefaultsToLinear(t *testing.T) {
	s := NewGroup(NewIDAllocator(), "linear")
	g := TweenPosition(s, 100, 0, 1.0, nil)
	g.Update(0.25)
	if x, _ := s.Transform().Position(); math.Abs(x-25) > 0.5 {
		t.Errorf("x = %f, want ~25", x)
	}
}

func TestTweenGroupDoneFlagTransition(t *testing.T) {
	s := NewGroup(NewIDAllocator(), "done")
	g := TweenPosition(s, 50, 50, 0.5, ease.Linear)

	if g.Done {
		t.Fatal("should not be Done at start")
	}

	g.Update(0.25)
	if g.Done {
		t.Fatal("should not be Done partway through")
	}

	g.Update(0.25)
	if !g.Done {
		t.Fatal("should be Done after full duration")
	}

	// Update after done is a no-op.
	g.Update(0.1)
	if !g.Done {
		t.Fatal("should remain Done")
	}
}

func TestTweenGroupQueuesTransform(t *testing.T) {
	c, _ := newTestCanvas(t, DefaultConfig())
	s := NewRect(c.IDs(), "moving", 0, 0, 10, 10)
	c.Root().AddChild(s)
	c.Sync()
	before := s.Transform().LocalVersion()

	g := TweenPosition(s, 100, 100, 1.0, ease.Linear)
	g.Update(0.1)

	if s.Transform().LocalVersion() == before {
		t.Fatal("expected local version to advance after TweenGroup update")
	}
}

func TestTweenGroupDisposedShape(t *testing.T) {
	s := NewGroup(NewIDAllocator(), "disposed")
	s.SetPosition(10, 20)

	g := TweenPosition(s, 100, 200, 1.0, ease.Linear)
	s.Dispose()
	g.Update(0.1)

	if !g.Done {
		t.Fatal("expected Done after disposed shape detected")
	}
	if x, y := s.Transform().Position(); x != 10 || y != 20 {
		t.Errorf("position changed to (%f, %f) on disposed shape", x, y)
	}
}

func TestTweenGroupDisposedMidAnimation(t *testing.T) {
	s := NewGroup(NewIDAllocator(), "mid-dispose")

	g := TweenPosition(s, 100, 100, 1.0, ease.Linear)
	g.Update(0.1)
	g.Update(0.1)
	if g.Done {
		t.Fatal("should not be Done yet")
	}

	s.Dispose()
	savedX, savedY := s.Transform().Position()

	g.Update(0.1)
	if !g.Done {
		t.Fatal("expected Done after mid-animation dispose")
	}
	if x, y := s.Transform().Position(); x != savedX || y != savedY {
		t.Error("position changed after dispose")
	}
}
