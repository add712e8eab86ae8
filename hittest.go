package easel

import "math"

// HitShape is a custom hit region in local coordinates. It replaces the
// shape kind's own test when set with Shape.SetHitArea.
type HitShape interface {
	Contains(x, y float64) bool
	// Bounds returns the local extent, used for spatial indexing.
	Bounds() Rect
}

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Bounds returns the rectangle itself.
func (r HitRect) Bounds() Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Bounds returns the circle's bounding square.
func (c HitCircle) Bounds() Rect {
	return Rect{X: c.CenterX - c.Radius, Y: c.CenterY - c.Radius, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	var positive, negative bool
	for i := 0; i < n; i++ {
		x1 := p.Points[i].X
		y1 := p.Points[i].Y
		j := (i + 1) % n
		x2 := p.Points[j].X
		y2 := p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// Bounds returns the bounding rectangle of the points.
func (p HitPolygon) Bounds() Rect {
	return rectFromPoints(p.Points)
}

// --- Region gating ---

// hitRegions reports which regions a pick may test under the shape's
// PointerEvents mode, its paint and its effective visibility.
func (s *Shape) hitRegions() (fill, stroke bool) {
	visible := s.t.worldVisible
	fillPaint := s.fill.Paintable()
	strokePaint := s.stroke.Paintable() && s.strokeWidth > 0
	switch s.PointerEvents {
	case PointerEventsNone:
		return false, false
	case PointerEventsFillOnly:
		return true, false
	case PointerEventsStrokeOnly:
		return false, true
	case PointerEventsVisibleFill:
		return visible && fillPaint, false
	case PointerEventsVisibleStroke:
		return false, visible && strokePaint
	case PointerEventsAll:
		return true, true
	case PointerEventsVisible:
		return visible, visible
	default:
		return visible && fillPaint, visible && strokePaint
	}
}

// containsLocal runs the exact test for a local-space point. tolerance
// widens open-path strokes so thin lines stay clickable.
func (s *Shape) containsLocal(lx, ly, tolerance float64) bool {
	if s.PointerEvents == PointerEventsNone {
		return false
	}
	if s.hitArea != nil {
		if !s.t.worldVisible && s.PointerEvents != PointerEventsAll &&
			s.PointerEvents != PointerEventsFillOnly && s.PointerEvents != PointerEventsStrokeOnly {
			return false
		}
		return s.hitArea.Contains(lx, ly)
	}
	testFill, testStroke := s.hitRegions()
	if testFill && s.fillContains(lx, ly) {
		return true
	}
	return testStroke && s.strokeContains(lx, ly, tolerance)
}

// fillContains tests the fill region. Edges are inside.
func (s *Shape) fillContains(x, y float64) bool {
	g := &s.geom
	switch s.kind {
	case ShapeCircle:
		return math.Hypot(x-g.cx, y-g.cy) <= g.rx
	case ShapeEllipse:
		return ellipseValue(x, y, g.cx, g.cy, g.rx, g.ry) <= 1
	case ShapeRect:
		return sdRoundRect(x, y, g.x, g.y, g.w, g.h, g.radius) <= 0
	case ShapePath:
		if g.path == nil {
			return false
		}
		winding := 0
		for _, sp := range g.path.flatten(s.curveSegments()) {
			if sp.closed {
				winding += windingNumber(sp.pts, x, y)
			}
		}
		return winding != 0
	}
	return false
}

// strokeContains tests the stroke band.
func (s *Shape) strokeContains(x, y, tolerance float64) bool {
	w := s.strokeWidth
	if w <= 0 {
		return false
	}
	g := &s.geom
	switch s.kind {
	case ShapeCircle:
		return strokeBandContains(math.Hypot(x-g.cx, y-g.cy)-g.rx, s.strokeAlign, w)
	case ShapeEllipse:
		return ellipseStrokeContains(x, y, g.cx, g.cy, g.rx, g.ry, s.strokeAlign, w)
	case ShapeRect:
		return strokeBandContains(sdRoundRect(x, y, g.x, g.y, g.w, g.h, g.radius), s.strokeAlign, w)
	case ShapePolyline:
		return polylineDistance(g.points, false, x, y) <= w/2+tolerance
	case ShapePath:
		if g.path == nil {
			return false
		}
		for _, sp := range g.path.flatten(s.curveSegments()) {
			if polylineDistance(sp.pts, sp.closed, x, y) <= w/2+tolerance {
				return true
			}
		}
	}
	return false
}

// strokeBandContains tests a signed distance sd (negative inside the
// outline) against the stroke band [offset-w/2, offset+w/2]. An outer
// stroke never covers the outline itself: the outline belongs to the fill.
func strokeBandContains(sd float64, align StrokeAlignment, w float64) bool {
	off := strokeOffset(align, w)
	lo, hi := off-w/2, off+w/2
	if align == StrokeOuter {
		return sd > 0 && sd <= hi
	}
	return sd >= lo && sd <= hi
}

// ellipseValue returns ((x-cx)/rx)^2 + ((y-cy)/ry)^2, or +Inf for a degenerate ellipse.
func ellipseValue(x, y, cx, cy, rx, ry float64) float64 {
	if rx <= 0 || ry <= 0 {
		return math.Inf(1)
	}
	nx := (x - cx) / rx
	ny := (y - cy) / ry
	return nx*nx + ny*ny
}

// ellipseStrokeContains tests the band between the outer-offset and
// inner-offset ellipses.
func ellipseStrokeContains(x, y, cx, cy, rx, ry float64, align StrokeAlignment, w float64) bool {
	off := strokeOffset(align, w)
	lo, hi := off-w/2, off+w/2
	if ellipseValue(x, y, cx, cy, rx+hi, ry+hi) > 1 {
		return false
	}
	irx, iry := rx+lo, ry+lo
	if irx <= 0 || iry <= 0 {
		return true
	}
	inner := ellipseValue(x, y, cx, cy, irx, iry)
	if align == StrokeOuter {
		return inner > 1
	}
	return inner >= 1
}

// sdRoundRect is the signed distance from (px, py) to a rectangle with
// rounded corners; negative inside. The radius is clamped to half the
// shorter side. Its level sets are the exact offset curves of the outline:
// rounded with radius r+d for d >= -r, sharp for deeper inner offsets.
func sdRoundRect(px, py, x, y, w, h, r float64) float64 {
	hx, hy := w/2, h/2
	r = clamp(r, 0, math.Min(hx, hy))
	qx := math.Abs(px-(x+hx)) - (hx - r)
	qy := math.Abs(py-(y+hy)) - (hy - r)
	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside - r
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(px, py float64, a, b Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-a.X, py-a.Y)
	}
	t := clamp(((px-a.X)*dx+(py-a.Y)*dy)/l2, 0, 1)
	return math.Hypot(px-(a.X+t*dx), py-(a.Y+t*dy))
}

// polylineDistance returns the distance from (x, y) to the nearest segment.
func polylineDistance(pts []Vec2, closed bool, x, y float64) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return math.Hypot(x-pts[0].X, y-pts[0].Y)
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		best = math.Min(best, segmentDistance(x, y, pts[i], pts[i+1]))
	}
	if closed {
		best = math.Min(best, segmentDistance(x, y, pts[len(pts)-1], pts[0]))
	}
	return best
}

// windingNumber returns the nonzero winding number of the closed polygon pts around (x, y).
func windingNumber(pts []Vec2, x, y float64) int {
	n := len(pts)
	if n < 3 {
		return 0
	}
	wn := 0
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		isLeft := (b.X-a.X)*(y-a.Y) - (x-a.X)*(b.Y-a.Y)
		if a.Y <= y {
			if b.Y > y && isLeft > 0 {
				wn++
			}
		} else if b.Y <= y && isLeft < 0 {
			wn--
		}
	}
	return wn
}
