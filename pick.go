package easel

import (
	"math"
	"slices"
)

// PickWorld returns the topmost shape whose exact hit test passes at the
// world point (x, y), or nil. The spatial index narrows the candidates;
// they are then tested front to back in paint order and the first hit wins.
func (c *Canvas) PickWorld(x, y float64) *Shape {
	if c.destroyed {
		return nil
	}
	c.Sync()
	r := c.cfg.PickRadius
	c.candidates = c.index.Query(Rect{X: x - r, Y: y - r, Width: 2 * r, Height: 2 * r}, c.candidates[:0])
	if len(c.candidates) == 0 {
		return nil
	}
	slices.SortFunc(c.candidates, func(a, b uint32) int {
		return paintOrderOf(c.Shape, b) - paintOrderOf(c.Shape, a)
	})
	for _, id := range c.candidates {
		s := c.shapes[id]
		if s == nil || s.PointerEvents == PointerEventsNone {
			continue
		}
		lx, ly := s.WorldToLocal(x, y)
		if s.containsLocal(lx, ly, c.localTolerance(s)) {
			return s
		}
	}
	return nil
}

// Pick returns the topmost shape under the viewport pixel (px, py), or nil.
func (c *Canvas) Pick(px, py float64) *Shape {
	wx, wy := c.camera.ViewportToWorld(px, py)
	return c.PickWorld(wx, wy)
}

// PickID is PickWorld reporting the shape id.
func (c *Canvas) PickID(x, y float64) (uint32, bool) {
	if s := c.PickWorld(x, y); s != nil {
		return s.ID, true
	}
	return 0, false
}

// PickAll appends every shape hit at the world point to dst, front to back.
func (c *Canvas) PickAll(x, y float64, dst []*Shape) []*Shape {
	if c.destroyed {
		return dst
	}
	c.Sync()
	r := c.cfg.PickRadius
	ids := c.index.Query(Rect{X: x - r, Y: y - r, Width: 2 * r, Height: 2 * r}, nil)
	slices.SortFunc(ids, func(a, b uint32) int {
		return paintOrderOf(c.Shape, b) - paintOrderOf(c.Shape, a)
	})
	for _, id := range ids {
		s := c.shapes[id]
		if s == nil || s.PointerEvents == PointerEventsNone {
			continue
		}
		lx, ly := s.WorldToLocal(x, y)
		if s.containsLocal(lx, ly, c.localTolerance(s)) {
			dst = append(dst, s)
		}
	}
	return dst
}

// localTolerance converts PickRadius to the shape's local units using the
// larger axis scale of its world matrix.
func (c *Canvas) localTolerance(s *Shape) float64 {
	r := c.cfg.PickRadius
	if r == 0 {
		return 0
	}
	m := s.t.world
	sx := m[0]*m[0] + m[1]*m[1]
	sy := m[2]*m[2] + m[3]*m[3]
	scale := max(sx, sy)
	if scale <= 0 {
		return r
	}
	return r / math.Sqrt(scale)
}
