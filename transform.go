package easel

import (
	"math"

	"golang.org/x/exp/constraints"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// Transform is the local placement of a shape plus its cached world state.
//
// Invalidation uses generation counters instead of dirty flags: every local
// mutation bumps localVersion, every recomposition bumps worldVersion, and
// the world matrix is recomposed only when the local version or the parent's
// world version differs from the pair recorded at the last compose.
type Transform struct {
	x, y           float64
	scaleX, scaleY float64
	rotation       float64
	skewX, skewY   float64
	pivotX, pivotY float64
	opacity        float64
	visible        bool

	localVersion   uint64
	worldVersion   uint64
	composedLocal  uint64
	composedParent uint64
	linked         bool // false until composed against the current parent

	local        [6]float64
	localAt      uint64
	world        [6]float64
	worldAlpha   float64
	worldVisible bool
}

func newTransform() Transform {
	return Transform{
		scaleX:       1,
		scaleY:       1,
		opacity:      1,
		visible:      true,
		localVersion: 1,
		local:        identityTransform,
		world:        identityTransform,
		worldAlpha:   1,
		worldVisible: true,
	}
}

// Position returns the local translation.
func (t *Transform) Position() (x, y float64) { return t.x, t.y }

// Scale returns the local scale factors.
func (t *Transform) Scale() (sx, sy float64) { return t.scaleX, t.scaleY }

// Rotation returns the local rotation in radians.
func (t *Transform) Rotation() float64 { return t.rotation }

// Skew returns the local skew angles in radians.
func (t *Transform) Skew() (sx, sy float64) { return t.skewX, t.skewY }

// Pivot returns the local pivot point.
func (t *Transform) Pivot() (px, py float64) { return t.pivotX, t.pivotY }

// Opacity returns the local opacity in [0, 1].
func (t *Transform) Opacity() float64 { return t.opacity }

// Visible returns the local visibility flag.
func (t *Transform) Visible() bool { return t.visible }

// LocalVersion is bumped on every local mutation.
func (t *Transform) LocalVersion() uint64 { return t.localVersion }

// WorldVersion is bumped every time the world matrix is recomposed.
func (t *Transform) WorldVersion() uint64 { return t.worldVersion }

// LocalMatrix returns the local affine matrix [a, b, c, d, tx, ty].
func (t *Transform) LocalMatrix() [6]float64 {
	if t.localAt != t.localVersion {
		t.local = t.computeLocal()
		t.localAt = t.localVersion
	}
	return t.local
}

func (t *Transform) touch() { t.localVersion++ }

// unlink forces the next compose to run, whatever versions the new parent has.
func (t *Transform) unlink() { t.linked = false }

// stale reports whether compose would recompute.
func (t *Transform) stale(parent *Transform) bool {
	var pv uint64
	if parent != nil {
		pv = parent.worldVersion
	}
	return !t.linked || t.composedLocal != t.localVersion || t.composedParent != pv
}

// compose recomputes the world state if the local version or the parent's
// world version changed since the last compose. Reports whether it did.
func (t *Transform) compose(parent *Transform) bool {
	if !t.stale(parent) {
		return false
	}
	local := t.LocalMatrix()
	if parent == nil {
		t.world = local
		t.worldAlpha = t.opacity
		t.worldVisible = t.visible
		t.composedParent = 0
	} else {
		t.world = multiplyAffine(parent.world, local)
		t.worldAlpha = parent.worldAlpha * t.opacity
		t.worldVisible = parent.worldVisible && t.visible
		t.composedParent = parent.worldVersion
	}
	t.composedLocal = t.localVersion
	t.linked = true
	t.worldVersion++
	return true
}

// computeLocal computes the local affine matrix. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-pivot) -> Scale -> Skew -> Rotate -> Translate(x, y)
func (t *Transform) computeLocal() [6]float64 {
	sx := t.scaleX
	sy := t.scaleY

	sin, cos := math.Sincos(t.rotation)

	var tanSkewX, tanSkewY float64
	if t.skewX != 0 {
		tanSkewX = math.Tan(t.skewX)
	}
	if t.skewY != 0 {
		tanSkewY = math.Tan(t.skewY)
	}

	// After Scale * Translate(-pivot) and Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := t.pivotX
	py := t.pivotY
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return [6]float64{ra, rb, rc, rd, rtx + t.x, rty + t.y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect returns the axis-aligned bounds of r's four corners under m.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X, r.Y+r.Height)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// clamp limits v to [lo, hi].
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nextMultipleOf rounds x up to a multiple of y.
func nextMultipleOf[T constraints.Integer](x, y T) T {
	if x%y == 0 {
		return x
	}
	return x + y - x%y
}

// --- Transform property setters ---

// SetPosition sets the local translation.
func (s *Shape) SetPosition(x, y float64) {
	if s.t.x == x && s.t.y == y {
		return
	}
	s.t.x, s.t.y = x, y
	s.transformChanged()
}

// SetScale sets the local scale factors.
func (s *Shape) SetScale(sx, sy float64) {
	if s.t.scaleX == sx && s.t.scaleY == sy {
		return
	}
	s.t.scaleX, s.t.scaleY = sx, sy
	s.transformChanged()
}

// SetRotation sets the local rotation in radians.
func (s *Shape) SetRotation(r float64) {
	if s.t.rotation == r {
		return
	}
	s.t.rotation = r
	s.transformChanged()
}

// SetSkew sets the local skew angles in radians.
func (s *Shape) SetSkew(sx, sy float64) {
	if s.t.skewX == sx && s.t.skewY == sy {
		return
	}
	s.t.skewX, s.t.skewY = sx, sy
	s.transformChanged()
}

// SetPivot sets the point, in local coordinates, that scale and rotation act around.
func (s *Shape) SetPivot(px, py float64) {
	if s.t.pivotX == px && s.t.pivotY == py {
		return
	}
	s.t.pivotX, s.t.pivotY = px, py
	s.transformChanged()
}

// SetOpacity sets the local opacity. Values are clamped to [0, 1].
// Opacity multiplies down the tree.
func (s *Shape) SetOpacity(a float64) {
	a = clamp(a, 0, 1)
	if s.t.opacity == a {
		return
	}
	s.t.opacity = a
	s.transformChanged()
}

// SetVisible shows or hides the shape and its subtree. Hidden shapes are not
// rendered but remain indexed, so PointerEventsAll and friends can still hit them.
func (s *Shape) SetVisible(v bool) {
	if s.t.visible == v {
		return
	}
	s.t.visible = v
	s.transformChanged()
}

// Position returns the local translation.
func (s *Shape) Position() (x, y float64) { return s.t.x, s.t.y }

// Transform returns the shape's transform for reading.
func (s *Shape) Transform() *Transform { return &s.t }

// Visible reports the local visibility flag.
func (s *Shape) Visible() bool { return s.t.visible }

// WorldVisible reports whether the shape and all of its ancestors are visible.
func (s *Shape) WorldVisible() bool {
	s.refreshWorld()
	return s.t.worldVisible
}

// WorldAlpha returns the product of the opacities along the ancestor chain.
func (s *Shape) WorldAlpha() float64 {
	s.refreshWorld()
	return s.t.worldAlpha
}

// WorldMatrix returns the local-to-world matrix, recomposing any stale
// ancestor first. Between a synchronization point and the next transform
// mutation on the canvas this is a constant-time read.
func (s *Shape) WorldMatrix() [6]float64 {
	s.refreshWorld()
	return s.t.world
}

// settled reports whether s was composed at its canvas's last
// synchronization point and no transform has been queued since.
func (s *Shape) settled() bool {
	c := s.canvas
	return c != nil && len(c.transformQueue) == 0 && s.t.linked && s.syncedWorld == s.t.worldVersion
}

// refreshWorld brings the world state of s and its ancestors up to date.
// Reports whether s itself was recomposed.
func (s *Shape) refreshWorld() bool {
	if s.settled() {
		return false
	}
	if s.parent == nil {
		return s.t.compose(nil)
	}
	s.parent.refreshWorld()
	return s.t.compose(&s.parent.t)
}

// MarkDirty forces recomposition and a bounds refresh, e.g. after mutating a
// Path that is already assigned to the shape.
func (s *Shape) MarkDirty() {
	s.geometryChanged()
	s.transformChanged()
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this shape's local coordinate space.
func (s *Shape) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(s.WorldMatrix())
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to world space.
func (s *Shape) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(s.WorldMatrix(), lx, ly)
}
