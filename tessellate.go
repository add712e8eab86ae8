package easel

import "math"

// Mesh is a CPU-side indexed triangle list in the shape vertex layout:
// x, y, then premultiplied r, g, b, a.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// Reset empties the mesh, keeping capacity.
func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / vertexStride
}

func (m *Mesh) vertex(mat [6]float64, x, y float64, c [4]float32) uint32 {
	i := uint32(m.VertexCount())
	wx, wy := transformPoint(mat, x, y)
	m.Vertices = append(m.Vertices, float32(wx), float32(wy), c[0], c[1], c[2], c[3])
	return i
}

func (m *Mesh) triangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// MeshParts selects which paint regions a tessellator emits.
type MeshParts uint8

const (
	PartFill   MeshParts = 1 << iota // fill triangles
	PartStroke                       // stroke triangles
	PartAll    = PartFill | PartStroke
)

// TessellateOptions carries the per-shape state a Tessellator needs.
type TessellateOptions struct {
	Matrix   [6]float64 // local to world
	Alpha    float64    // world alpha
	Segments int        // segments for a full circle or one curve
	Parts    MeshParts
}

// Tessellator appends the triangles of s to dst in world space. Fill
// triangles are emitted before stroke triangles.
type Tessellator func(s *Shape, dst *Mesh, opts TessellateOptions)

// defaultTessellators is the kind dispatch table. Groups have no entry.
func defaultTessellators() [numShapeKinds]Tessellator {
	return [numShapeKinds]Tessellator{
		ShapeCircle:   tessellateCircle,
		ShapeEllipse:  tessellateEllipse,
		ShapeRect:     tessellateRect,
		ShapePolyline: tessellatePolyline,
		ShapePath:     tessellatePath,
	}
}

func premul(c Color, alpha float64) [4]float32 {
	r, g, b, a := c.premultiplied(alpha)
	return [4]float32{r, g, b, a}
}

func wantFill(s *Shape, o TessellateOptions) bool {
	return o.Parts&PartFill != 0 && s.fill.Paintable()
}

func wantStroke(s *Shape, o TessellateOptions) bool {
	return o.Parts&PartStroke != 0 && s.stroke.Paintable() && s.strokeWidth > 0
}

// strokeBand returns the signed offsets of the inner and outer stroke edges
// from the outline.
func strokeBand(s *Shape) (lo, hi float64) {
	off := strokeOffset(s.strokeAlign, s.strokeWidth)
	return off - s.strokeWidth/2, off + s.strokeWidth/2
}

func tessellateCircle(s *Shape, dst *Mesh, o TessellateOptions) {
	g := &s.geom
	ellipseLike(s, dst, o, g.cx, g.cy, g.rx, g.rx)
}

func tessellateEllipse(s *Shape, dst *Mesh, o TessellateOptions) {
	g := &s.geom
	ellipseLike(s, dst, o, g.cx, g.cy, g.rx, g.ry)
}

func ellipseLike(s *Shape, dst *Mesh, o TessellateOptions, cx, cy, rx, ry float64) {
	n := max(o.Segments, 8)
	if wantFill(s, o) && rx > 0 && ry > 0 {
		emitFan(dst, o.Matrix, Vec2{cx, cy}, ellipsePoints(cx, cy, rx, ry, n), premul(s.fill, o.Alpha))
	}
	if wantStroke(s, o) {
		lo, hi := strokeBand(s)
		outer := ellipsePoints(cx, cy, rx+hi, ry+hi, n)
		inner := ellipsePoints(cx, cy, max(rx+lo, 0), max(ry+lo, 0), n)
		emitRing(dst, o.Matrix, outer, inner, premul(s.stroke, o.Alpha))
	}
}

func tessellateRect(s *Shape, dst *Mesh, o TessellateOptions) {
	g := &s.geom
	if g.w <= 0 || g.h <= 0 {
		return
	}
	perCorner := max(o.Segments/4, 2)
	center := Vec2{g.x + g.w/2, g.y + g.h/2}
	if wantFill(s, o) {
		emitFan(dst, o.Matrix, center, roundRectOutline(g.x, g.y, g.w, g.h, g.radius, 0, perCorner), premul(s.fill, o.Alpha))
	}
	if wantStroke(s, o) {
		lo, hi := strokeBand(s)
		lo = max(lo, -math.Min(g.w, g.h)/2)
		outer := roundRectOutline(g.x, g.y, g.w, g.h, g.radius, hi, perCorner)
		inner := roundRectOutline(g.x, g.y, g.w, g.h, g.radius, lo, perCorner)
		emitRing(dst, o.Matrix, outer, inner, premul(s.stroke, o.Alpha))
	}
}

func tessellatePolyline(s *Shape, dst *Mesh, o TessellateOptions) {
	if wantStroke(s, o) {
		emitStrokeLine(dst, o.Matrix, s.geom.points, false, s.strokeWidth, premul(s.stroke, o.Alpha))
	}
}

func tessellatePath(s *Shape, dst *Mesh, o TessellateOptions) {
	if s.geom.path == nil {
		return
	}
	flat := s.geom.path.flatten(max(o.Segments/4, 4))
	if wantFill(s, o) {
		c := premul(s.fill, o.Alpha)
		for _, sp := range flat {
			if sp.closed {
				emitPolygon(dst, o.Matrix, sp.pts, c)
			}
		}
	}
	if wantStroke(s, o) {
		c := premul(s.stroke, o.Alpha)
		for _, sp := range flat {
			emitStrokeLine(dst, o.Matrix, sp.pts, sp.closed, s.strokeWidth, c)
		}
	}
}

// ellipsePoints returns n points around an ellipse, clockwise in screen space.
func ellipsePoints(cx, cy, rx, ry float64, n int) []Vec2 {
	pts := make([]Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		sin, cos := math.Sincos(a)
		pts[i] = Vec2{cx + rx*cos, cy + ry*sin}
	}
	return pts
}

// roundRectOutline returns the outline of a rounded rectangle offset by d:
// half extents grow by d and the corner radius becomes max(r+d, 0). This is
// the level set sdRoundRect == d, so fill, stroke and picking agree. Every
// call with the same perCorner returns the same number of points.
func roundRectOutline(x, y, w, h, r, d float64, perCorner int) []Vec2 {
	hx, hy := max(w/2+d, 0), max(h/2+d, 0)
	r = clamp(r, 0, math.Min(w, h)/2)
	rr := clamp(r+d, 0, math.Min(hx, hy))
	cx, cy := x+w/2, y+h/2
	corners := [4]struct {
		x, y, start float64
	}{
		{cx + hx - rr, cy + hy - rr, 0},
		{cx - hx + rr, cy + hy - rr, math.Pi / 2},
		{cx - hx + rr, cy - hy + rr, math.Pi},
		{cx + hx - rr, cy - hy + rr, 3 * math.Pi / 2},
	}
	pts := make([]Vec2, 0, 4*(perCorner+1))
	for _, c := range corners {
		for i := 0; i <= perCorner; i++ {
			a := c.start + (math.Pi/2)*float64(i)/float64(perCorner)
			sin, cos := math.Sincos(a)
			pts = append(pts, Vec2{c.x + rr*cos, c.y + rr*sin})
		}
	}
	return pts
}

// emitFan fills a convex outline from its center.
func emitFan(dst *Mesh, m [6]float64, center Vec2, outline []Vec2, c [4]float32) {
	if len(outline) < 3 {
		return
	}
	hub := dst.vertex(m, center.X, center.Y, c)
	first := uint32(dst.VertexCount())
	for _, p := range outline {
		dst.vertex(m, p.X, p.Y, c)
	}
	n := uint32(len(outline))
	for i := uint32(0); i < n; i++ {
		dst.triangle(hub, first+i, first+(i+1)%n)
	}
}

// emitRing fills the band between two closed outlines with matching point counts.
func emitRing(dst *Mesh, m [6]float64, outer, inner []Vec2, c [4]float32) {
	n := len(outer)
	if n < 3 || len(inner) != n {
		return
	}
	base := uint32(dst.VertexCount())
	for i := 0; i < n; i++ {
		dst.vertex(m, outer[i].X, outer[i].Y, c)
		dst.vertex(m, inner[i].X, inner[i].Y, c)
	}
	un := uint32(n)
	for i := uint32(0); i < un; i++ {
		j := (i + 1) % un
		o0, i0 := base+2*i, base+2*i+1
		o1, i1 := base+2*j, base+2*j+1
		dst.triangle(o0, o1, i0)
		dst.triangle(i0, o1, i1)
	}
}

// emitStrokeLine strokes a polyline with butt caps and round joins.
func emitStrokeLine(dst *Mesh, m [6]float64, pts []Vec2, closed bool, width float64, c [4]float32) {
	n := len(pts)
	if n < 2 || width <= 0 {
		return
	}
	hw := width / 2
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		v0 := dst.vertex(m, a.X+nx, a.Y+ny, c)
		v1 := dst.vertex(m, b.X+nx, b.Y+ny, c)
		v2 := dst.vertex(m, b.X-nx, b.Y-ny, c)
		v3 := dst.vertex(m, a.X-nx, a.Y-ny, c)
		dst.triangle(v0, v1, v2)
		dst.triangle(v0, v2, v3)
	}
	first, last := 1, n-1
	if closed {
		first, last = 0, n
	}
	for i := first; i < last; i++ {
		p := pts[i]
		emitFan(dst, m, p, ellipsePoints(p.X, p.Y, hw, hw, 8), c)
	}
}

// emitPolygon fills a simple polygon by ear clipping. Self-intersecting
// input falls back to a fan once no ear can be found.
func emitPolygon(dst *Mesh, m [6]float64, pts []Vec2, c [4]float32) {
	n := len(pts)
	if n < 3 {
		return
	}
	base := uint32(dst.VertexCount())
	for _, p := range pts {
		dst.vertex(m, p.X, p.Y, c)
	}

	var area float64
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		area += a.X*b.Y - b.X*a.Y
	}
	sign := 1.0
	if area < 0 {
		sign = -1
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	for len(remaining) > 3 {
		clipped := false
		k := len(remaining)
		for i := 0; i < k; i++ {
			ip, ic, in := remaining[(i+k-1)%k], remaining[i], remaining[(i+1)%k]
			a, b, cc := pts[ip], pts[ic], pts[in]
			if cross(a, b, cc)*sign <= 0 {
				continue
			}
			ear := true
			for _, j := range remaining {
				if j == ip || j == ic || j == in {
					continue
				}
				if pointInTriangle(pts[j], a, b, cc) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			dst.triangle(base+uint32(ip), base+uint32(ic), base+uint32(in))
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			for i := 1; i+1 < len(remaining); i++ {
				dst.triangle(base+uint32(remaining[0]), base+uint32(remaining[i]), base+uint32(remaining[i+1]))
			}
			return
		}
	}
	dst.triangle(base+uint32(remaining[0]), base+uint32(remaining[1]), base+uint32(remaining[2]))
}

func cross(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
