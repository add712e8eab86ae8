package easel

// IDAllocator hands out shape ids. Ids start at 1 and increase monotonically;
// 0 is never issued. One allocator is normally shared by every shape and
// canvas of a process, passed explicitly to constructors.
type IDAllocator struct {
	next uint32
}

// NewIDAllocator returns an allocator whose first id is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh id.
func (a *IDAllocator) Next() uint32 {
	a.next++
	return a.next
}

// Last returns the most recently issued id, or 0.
func (a *IDAllocator) Last() uint32 {
	return a.next
}

// geometry holds the kind-specific fields of the shape union. Only the
// fields of the shape's kind are meaningful.
type geometry struct {
	cx, cy   float64 // circle, ellipse
	rx, ry   float64 // circle uses rx as radius
	x, y     float64 // rect
	w, h     float64 // rect
	radius   float64 // rect corner radius
	points   []Vec2  // polyline
	path     *Path   // path
	pathSeen uint64  // path version the bounds were computed from
}

// Shape is the scene graph element. A single flat struct is used for every
// kind; Kind selects which geometry fields apply.
type Shape struct {
	// Identity
	ID   uint32
	Name string
	kind ShapeKind

	// Hierarchy. parent is a non-owning back-reference used for transform
	// walks and detachment only.
	parent   *Shape
	children []*Shape
	canvas   *Canvas

	t    Transform
	geom geometry

	// Paint
	fill          Color
	stroke        Color
	strokeWidth   float64
	strokeAlign   StrokeAlignment
	blend         BlendMode
	effectPadding float64
	batchable     bool

	// PointerEvents selects which regions picking tests. Read at pick time,
	// so plain assignment is enough.
	PointerEvents PointerEvents

	// HitArea, when set, replaces the kind's exact hit test.
	hitArea HitShape

	// Cached bounds (local space)
	geomBounds  Rect
	geomDirty   bool
	renderBnds  Rect
	renderDirty bool

	// Canvas bookkeeping
	worldBounds    Rect   // bounds last written to the spatial index
	syncedWorld    uint64 // world version worldBounds was computed from
	indexed        bool
	paintOrder     int
	transformQueue bool
	changeQueue    bool

	// Metadata
	UserData any
	EntityID uint32

	// Per-shape callbacks (nil by default)
	OnPointerDown  func(PointerContext)
	OnPointerUp    func(PointerContext)
	OnPointerMove  func(PointerContext)
	OnPointerEnter func(PointerContext)
	OnPointerLeave func(PointerContext)
	OnClick        func(PointerContext)
	OnDragStart    func(DragContext)
	OnDrag         func(DragContext)
	OnDragEnd      func(DragContext)

	disposed bool
}

func newShape(ids *IDAllocator, name string, kind ShapeKind) *Shape {
	if ids == nil {
		panic("easel: nil IDAllocator")
	}
	return &Shape{
		ID:          ids.Next(),
		Name:        name,
		kind:        kind,
		t:           newTransform(),
		strokeWidth: 1,
		batchable:   kind != ShapePath && kind != ShapeGroup,
		geomDirty:   true,
		renderDirty: true,
	}
}

// NewGroup creates a shape with no geometry that only parents others.
func NewGroup(ids *IDAllocator, name string) *Shape {
	return newShape(ids, name, ShapeGroup)
}

// NewCircle creates a circle centered at (cx, cy).
func NewCircle(ids *IDAllocator, name string, cx, cy, r float64) *Shape {
	s := newShape(ids, name, ShapeCircle)
	s.geom.cx, s.geom.cy, s.geom.rx = cx, cy, max(r, 0)
	return s
}

// NewEllipse creates an axis-aligned ellipse centered at (cx, cy).
func NewEllipse(ids *IDAllocator, name string, cx, cy, rx, ry float64) *Shape {
	s := newShape(ids, name, ShapeEllipse)
	s.geom.cx, s.geom.cy = cx, cy
	s.geom.rx, s.geom.ry = max(rx, 0), max(ry, 0)
	return s
}

// NewRect creates a rectangle with its top-left corner at (x, y).
func NewRect(ids *IDAllocator, name string, x, y, w, h float64) *Shape {
	s := newShape(ids, name, ShapeRect)
	s.geom.x, s.geom.y = x, y
	s.geom.w, s.geom.h = max(w, 0), max(h, 0)
	return s
}

// NewPolyline creates an open polyline. Polylines are stroke-only.
func NewPolyline(ids *IDAllocator, name string, points []Vec2) *Shape {
	s := newShape(ids, name, ShapePolyline)
	s.geom.points = append([]Vec2(nil), points...)
	return s
}

// NewPath creates a path shape. Paths are not batchable by default.
func NewPath(ids *IDAllocator, name string, p *Path) *Shape {
	s := newShape(ids, name, ShapePath)
	if p == nil {
		p = &Path{}
	}
	s.geom.path = p
	return s
}

// Kind returns the shape's kind tag.
func (s *Shape) Kind() ShapeKind { return s.kind }

// Parent returns the parent shape, or nil.
func (s *Shape) Parent() *Shape { return s.parent }

// Canvas returns the canvas the shape is attached to, or nil.
func (s *Shape) Canvas() *Canvas { return s.canvas }

// --- Geometry accessors ---

// Circle returns the circle's center and radius.
func (s *Shape) Circle() (cx, cy, r float64) { return s.geom.cx, s.geom.cy, s.geom.rx }

// SetCircle sets the circle's center and radius. No-op on other kinds.
func (s *Shape) SetCircle(cx, cy, r float64) {
	r = max(r, 0)
	if s.kind != ShapeCircle || (s.geom.cx == cx && s.geom.cy == cy && s.geom.rx == r) {
		return
	}
	s.geom.cx, s.geom.cy, s.geom.rx = cx, cy, r
	s.geometryChanged()
}

// Ellipse returns the ellipse's center and radii.
func (s *Shape) Ellipse() (cx, cy, rx, ry float64) {
	return s.geom.cx, s.geom.cy, s.geom.rx, s.geom.ry
}

// SetEllipse sets the ellipse's center and radii. No-op on other kinds.
func (s *Shape) SetEllipse(cx, cy, rx, ry float64) {
	rx, ry = max(rx, 0), max(ry, 0)
	g := &s.geom
	if s.kind != ShapeEllipse || (g.cx == cx && g.cy == cy && g.rx == rx && g.ry == ry) {
		return
	}
	g.cx, g.cy, g.rx, g.ry = cx, cy, rx, ry
	s.geometryChanged()
}

// RectGeometry returns the rectangle's origin, size and corner radius.
func (s *Shape) RectGeometry() (x, y, w, h, radius float64) {
	return s.geom.x, s.geom.y, s.geom.w, s.geom.h, s.geom.radius
}

// SetRect sets the rectangle's origin and size. No-op on other kinds.
func (s *Shape) SetRect(x, y, w, h float64) {
	w, h = max(w, 0), max(h, 0)
	g := &s.geom
	if s.kind != ShapeRect || (g.x == x && g.y == y && g.w == w && g.h == h) {
		return
	}
	g.x, g.y, g.w, g.h = x, y, w, h
	s.geometryChanged()
}

// SetCornerRadius rounds the rectangle's corners. The radius is clamped to
// half the shorter side when used.
func (s *Shape) SetCornerRadius(r float64) {
	r = max(r, 0)
	if s.kind != ShapeRect || s.geom.radius == r {
		return
	}
	s.geom.radius = r
	s.geometryChanged()
}

// Points returns the polyline's points. The slice MUST NOT be mutated.
func (s *Shape) Points() []Vec2 { return s.geom.points }

// SetPoints replaces the polyline's points. No-op on other kinds.
func (s *Shape) SetPoints(points []Vec2) {
	if s.kind != ShapePolyline {
		return
	}
	s.geom.points = append(s.geom.points[:0], points...)
	s.geometryChanged()
}

// Path returns the path geometry of a path shape.
func (s *Shape) Path() *Path { return s.geom.path }

// SetPath replaces the path geometry. No-op on other kinds.
func (s *Shape) SetPath(p *Path) {
	if s.kind != ShapePath || p == nil {
		return
	}
	s.geom.path = p
	s.geometryChanged()
}

// --- Paint accessors ---

// Fill returns the fill color. The zero Color means no fill.
func (s *Shape) Fill() Color { return s.fill }

// SetFill sets the fill color.
func (s *Shape) SetFill(c Color) {
	if s.fill == c {
		return
	}
	s.fill = c
	s.paintChanged(false)
}

// Stroke returns the stroke color. The zero Color means no stroke.
func (s *Shape) Stroke() Color { return s.stroke }

// SetStroke sets the stroke color.
func (s *Shape) SetStroke(c Color) {
	if s.stroke == c {
		return
	}
	s.stroke = c
	s.paintChanged(false)
}

// StrokeWidth returns the stroke width.
func (s *Shape) StrokeWidth() float64 { return s.strokeWidth }

// SetStrokeWidth sets the stroke width. Negative widths are treated as 0.
func (s *Shape) SetStrokeWidth(w float64) {
	w = max(w, 0)
	if s.strokeWidth == w {
		return
	}
	s.strokeWidth = w
	s.paintChanged(true)
}

// StrokeAlignment returns where the stroke sits relative to the outline.
func (s *Shape) StrokeAlignment() StrokeAlignment { return s.strokeAlign }

// SetStrokeAlignment sets where the stroke sits relative to the outline.
// Polylines and paths always stroke centered.
func (s *Shape) SetStrokeAlignment(a StrokeAlignment) {
	if s.strokeAlign == a {
		return
	}
	s.strokeAlign = a
	s.paintChanged(true)
}

// BlendMode returns the compositing mode.
func (s *Shape) BlendMode() BlendMode { return s.blend }

// SetBlendMode sets the compositing mode. Batchable shapes are pooled per
// blend mode, so this moves the shape to another pool.
func (s *Shape) SetBlendMode(b BlendMode) {
	if s.blend == b {
		return
	}
	s.blend = b
	s.rebatch()
}

// EffectPadding returns the extra render-bounds padding.
func (s *Shape) EffectPadding() float64 { return s.effectPadding }

// SetEffectPadding grows the render bounds by p on every side, for effects
// drawn outside the stroke.
func (s *Shape) SetEffectPadding(p float64) {
	p = max(p, 0)
	if s.effectPadding == p {
		return
	}
	s.effectPadding = p
	s.paintChanged(true)
}

// Batchable reports whether the shape shares pooled drawcalls.
func (s *Shape) Batchable() bool { return s.batchable }

// SetBatchable moves the shape between pooled and private drawcalls.
func (s *Shape) SetBatchable(b bool) {
	if s.batchable == b {
		return
	}
	s.batchable = b
	s.rebatch()
}

// HitArea returns the hit area override, or nil.
func (s *Shape) HitArea() HitShape { return s.hitArea }

// SetHitArea overrides the kind's exact hit test with h (local coordinates).
// Pass nil to restore the default test.
func (s *Shape) SetHitArea(h HitShape) {
	s.hitArea = h
	s.paintChanged(true)
}

// --- Tree manipulation ---

// AddChild appends child to this shape's children. If child already has a
// parent it is moved, never duplicated.
// Panics if child is nil or child is an ancestor of this shape (cycle).
func (s *Shape) AddChild(child *Shape) {
	s.AddChildAt(child, -1)
}

// AddChildAt inserts child at the given index; -1 appends.
// Same reparenting and cycle-check behavior as AddChild.
func (s *Shape) AddChildAt(child *Shape, index int) {
	if child == nil {
		panic("easel: cannot add nil child")
	}
	if debugEnabled() {
		debugCheckDisposed(s, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, s) {
		panic("easel: adding child would create a cycle")
	}
	n := len(s.children)
	if child.parent == s {
		n--
	}
	if index < 0 {
		index = n
	}
	if index > n {
		panic("easel: child index out of range")
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = s
	s.children = append(s.children, nil)
	copy(s.children[index+1:], s.children[index:])
	s.children[index] = child
	child.t.unlink()
	if s.canvas != nil {
		s.canvas.attach(child)
	}
	if debugEnabled() {
		debugCheckTreeDepth(child)
		debugCheckChildCount(s)
	}
}

// RemoveChild detaches child from this shape.
// Panics if child's parent is not this shape.
func (s *Shape) RemoveChild(child *Shape) {
	if child.parent != s {
		panic("easel: child's parent is not this shape")
	}
	s.removeChildByPtr(child)
	s.unlinkChild(child)
}

// RemoveChildAt removes and returns the child at the given index.
func (s *Shape) RemoveChildAt(index int) *Shape {
	if index < 0 || index >= len(s.children) {
		panic("easel: child index out of range")
	}
	child := s.children[index]
	copy(s.children[index:], s.children[index+1:])
	s.children[len(s.children)-1] = nil
	s.children = s.children[:len(s.children)-1]
	s.unlinkChild(child)
	return child
}

// RemoveFromParent detaches this shape from its parent.
// No-op if this shape has no parent.
func (s *Shape) RemoveFromParent() {
	if s.parent == nil {
		return
	}
	s.parent.RemoveChild(s)
}

// RemoveChildren detaches all children. Children are not disposed.
func (s *Shape) RemoveChildren() {
	children := s.children
	s.children = nil
	for _, child := range children {
		s.unlinkChild(child)
	}
}

func (s *Shape) unlinkChild(child *Shape) {
	child.parent = nil
	child.t.unlink()
	if child.canvas != nil {
		child.canvas.detach(child)
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (s *Shape) Children() []*Shape {
	return s.children
}

// NumChildren returns the number of children.
func (s *Shape) NumChildren() int {
	return len(s.children)
}

// ChildAt returns the child at the given index.
func (s *Shape) ChildAt(index int) *Shape {
	return s.children[index]
}

// SetChildIndex moves child to a new index among its siblings, changing its
// paint order.
func (s *Shape) SetChildIndex(child *Shape, index int) {
	if child.parent != s {
		panic("easel: child's parent is not this shape")
	}
	nc := len(s.children)
	if index < 0 || index >= nc {
		panic("easel: child index out of range")
	}
	oldIndex := -1
	for i, c := range s.children {
		if c == child {
			oldIndex = i
			break
		}
	}
	if oldIndex == index {
		return
	}
	if oldIndex < index {
		copy(s.children[oldIndex:], s.children[oldIndex+1:index+1])
	} else {
		copy(s.children[index+1:], s.children[index:oldIndex])
	}
	s.children[index] = child
	if s.canvas != nil {
		s.canvas.orderDirty = true
	}
}

// --- Disposal ---

// Dispose removes this shape from its parent and marks it and all
// descendants as disposed.
func (s *Shape) Dispose() {
	if s.disposed {
		return
	}
	s.RemoveFromParent()
	s.dispose()
}

func (s *Shape) dispose() {
	s.disposed = true
	for _, child := range s.children {
		child.parent = nil
		child.dispose()
	}
	s.children = nil
	s.hitArea = nil
	s.geom.points = nil
	s.geom.path = nil
	s.UserData = nil
	s.OnPointerDown = nil
	s.OnPointerUp = nil
	s.OnPointerMove = nil
	s.OnPointerEnter = nil
	s.OnPointerLeave = nil
	s.OnClick = nil
	s.OnDragStart = nil
	s.OnDrag = nil
	s.OnDragEnd = nil
}

// IsDisposed reports whether Dispose was called.
func (s *Shape) IsDisposed() bool {
	return s.disposed
}

// --- Invalidation ---

// transformChanged bumps the local version and queues the shape so the next
// synchronization point recomposes its subtree.
func (s *Shape) transformChanged() {
	s.t.touch()
	if s.canvas != nil {
		s.canvas.queueTransform(s)
	}
}

// geometryChanged dirties both bounds.
func (s *Shape) geometryChanged() {
	s.geomDirty = true
	s.renderDirty = true
	if s.canvas != nil {
		s.canvas.queueChange(s)
	}
}

// paintChanged marks the shape's drawcalls for rebuild; bounds reports
// whether the render bounds depend on the change.
func (s *Shape) paintChanged(bounds bool) {
	if bounds {
		s.renderDirty = true
	}
	if s.canvas != nil {
		s.canvas.queueChange(s)
	}
}

func (s *Shape) rebatch() {
	if s.canvas != nil {
		s.canvas.rebatch(s)
	}
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of shape (or shape itself).
func isAncestor(candidate, shape *Shape) bool {
	for p := shape; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from s.children without clearing child.parent.
func (s *Shape) removeChildByPtr(child *Shape) {
	for i, c := range s.children {
		if c == child {
			copy(s.children[i:], s.children[i+1:])
			s.children[len(s.children)-1] = nil
			s.children = s.children[:len(s.children)-1]
			return
		}
	}
}

// walk visits s and its descendants in paint order (pre-order).
func (s *Shape) walk(fn func(*Shape)) {
	fn(s)
	for _, child := range s.children {
		child.walk(fn)
	}
}
