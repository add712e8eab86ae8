package easel

import "math"

// curveSegments returns how finely curves are flattened for this shape.
func (s *Shape) curveSegments() int {
	if s.canvas != nil {
		return s.canvas.cfg.CurveSegments
	}
	return DefaultConfig().CurveSegments
}

// GeometryBounds returns the local-space extent of the geometry, ignoring
// stroke. Groups report the zero Rect.
func (s *Shape) GeometryBounds() Rect {
	if s.kind == ShapePath && s.geom.path != nil && s.geom.path.version != s.geom.pathSeen {
		s.geomDirty = true
		s.renderDirty = true
	}
	if !s.geomDirty {
		return s.geomBounds
	}
	g := &s.geom
	switch s.kind {
	case ShapeCircle:
		s.geomBounds = Rect{X: g.cx - g.rx, Y: g.cy - g.rx, Width: 2 * g.rx, Height: 2 * g.rx}
	case ShapeEllipse:
		s.geomBounds = Rect{X: g.cx - g.rx, Y: g.cy - g.ry, Width: 2 * g.rx, Height: 2 * g.ry}
	case ShapeRect:
		s.geomBounds = Rect{X: g.x, Y: g.y, Width: g.w, Height: g.h}
	case ShapePolyline:
		s.geomBounds = rectFromPoints(g.points)
	case ShapePath:
		if g.path != nil {
			s.geomBounds = pathBounds(g.path, s.curveSegments())
			g.pathSeen = g.path.version
		} else {
			s.geomBounds = Rect{}
		}
	default:
		s.geomBounds = Rect{}
	}
	s.geomDirty = false
	return s.geomBounds
}

// strokeExtent returns how far the stroke reaches beyond the outline.
// Open geometry always strokes centered.
func (s *Shape) strokeExtent() float64 {
	if s.strokeWidth <= 0 {
		return 0
	}
	switch s.kind {
	case ShapePolyline, ShapePath:
		return s.strokeWidth / 2
	}
	return math.Max(0, strokeOffset(s.strokeAlign, s.strokeWidth)+s.strokeWidth/2)
}

// RenderBounds returns the geometry bounds grown by the stroke's outer
// extent and the effect padding, in local space. The stroke contributes even
// when unpainted so stroke-only picking finds the shape.
func (s *Shape) RenderBounds() Rect {
	geom := s.GeometryBounds()
	if !s.renderDirty {
		return s.renderBnds
	}
	if s.kind == ShapeGroup {
		s.renderBnds = Rect{}
	} else {
		s.renderBnds = geom.Inset(s.strokeExtent() + s.effectPadding)
	}
	s.renderDirty = false
	return s.renderBnds
}

// hasExtent reports whether the shape takes part in indexing and picking.
func (s *Shape) hasExtent() bool {
	return s.kind != ShapeGroup || s.hitArea != nil
}

// indexBounds returns the local rectangle the spatial index tracks: the
// render bounds united with the hit area's bounds.
func (s *Shape) indexBounds() Rect {
	if s.kind == ShapeGroup {
		if s.hitArea == nil {
			return Rect{}
		}
		return s.hitArea.Bounds()
	}
	r := s.RenderBounds()
	if s.hitArea != nil {
		r = r.Union(s.hitArea.Bounds())
	}
	return r
}

// WorldRenderBounds returns the axis-aligned world-space bounds of the
// render bounds under the current world matrix.
func (s *Shape) WorldRenderBounds() Rect {
	return transformRect(s.WorldMatrix(), s.RenderBounds())
}
