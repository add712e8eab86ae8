package easel

import (
	"testing"
)

// --- Constructor defaults ---

func TestNewShapeDefaults(t *testing.T) {
	ids := NewIDAllocator()
	tests := []struct {
		shape *Shape
		kind  ShapeKind
		batch bool
	}{
		{NewGroup(ids, "group"), ShapeGroup, false},
		{NewCircle(ids, "circle", 0, 0, 5), ShapeCircle, true},
		{NewEllipse(ids, "ellipse", 0, 0, 5, 3), ShapeEllipse, true},
		{NewRect(ids, "rect", 0, 0, 5, 5), ShapeRect, true},
		{NewPolyline(ids, "polyline", []Vec2{{0, 0}, {1, 1}}), ShapePolyline, true},
		{NewPath(ids, "path", new(Path).MoveTo(0, 0).LineTo(1, 1)), ShapePath, false},
	}
	for _, tt := range tests {
		t.Run(tt.shape.Name, func(t *testing.T) {
			assertShapeDefaults(t, tt.shape, tt.kind)
			if tt.shape.Batchable() != tt.batch {
				t.Errorf("Batchable = %v, want %v", tt.shape.Batchable(), tt.batch)
			}
		})
	}
}

func assertShapeDefaults(t *testing.T, s *Shape, kind ShapeKind) {
	t.Helper()
	if s.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if s.Kind() != kind {
		t.Errorf("Kind = %v, want %v", s.Kind(), kind)
	}
	if s.StrokeWidth() != 1 {
		t.Errorf("StrokeWidth = %v, want 1", s.StrokeWidth())
	}
	if s.StrokeAlignment() != StrokeCenter {
		t.Errorf("StrokeAlignment = %v, want center", s.StrokeAlignment())
	}
	if s.BlendMode() != BlendNormal {
		t.Errorf("BlendMode = %v, want normal", s.BlendMode())
	}
	if !s.Visible() {
		t.Error("Visible should be true")
	}
	if s.WorldAlpha() != 1 {
		t.Errorf("WorldAlpha = %v, want 1", s.WorldAlpha())
	}
	if s.Parent() != nil || s.Canvas() != nil {
		t.Error("new shape should be unattached")
	}
}

func TestNilAllocatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewGroup(nil, "g")
}

func TestNegativeRadiusClamped(t *testing.T) {
	ids := NewIDAllocator()
	s := NewCircle(ids, "c", 0, 0, -5)
	if _, _, r := s.Circle(); r != 0 {
		t.Errorf("radius = %v, want 0", r)
	}
}

func TestIDAllocator(t *testing.T) {
	ids := NewIDAllocator()
	if ids.Last() != 0 {
		t.Errorf("Last = %d before any id", ids.Last())
	}
	seen := make(map[uint32]bool)
	for range 100 {
		id := ids.Next()
		if id == 0 || seen[id] {
			t.Fatalf("duplicate or zero id %d", id)
		}
		seen[id] = true
	}
	if ids.Last() != 100 {
		t.Errorf("Last = %d, want 100", ids.Last())
	}
}

// --- Tree operations ---

func TestAddChildBasic(t *testing.T) {
	ids := NewIDAllocator()
	parent := NewGroup(ids, "parent")
	child := NewCircle(ids, "child", 0, 0, 1)
	parent.AddChild(child)

	if child.Parent() != parent {
		t.Error("child.Parent() should be parent")
	}
	if parent.NumChildren() != 1 || parent.ChildAt(0) != child {
		t.Error("parent should hold the child")
	}
}

func TestAddChildReparent(t *testing.T) {
	ids := NewIDAllocator()
	a := NewGroup(ids, "a")
	b := NewGroup(ids, "b")
	child := NewCircle(ids, "child", 0, 0, 1)
	a.AddChild(child)
	b.AddChild(child)

	if a.NumChildren() != 0 {
		t.Error("old parent should lose the child")
	}
	if b.NumChildren() != 1 || child.Parent() != b {
		t.Error("new parent should own the child")
	}
}

func TestAddChildPanics(t *testing.T) {
	ids := NewIDAllocator()
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil", func() { NewGroup(ids, "g").AddChild(nil) }},
		{"self", func() {
			g := NewGroup(ids, "g")
			g.AddChild(g)
		}},
		{"cycle", func() {
			a := NewGroup(ids, "a")
			b := NewGroup(ids, "b")
			c := NewGroup(ids, "c")
			a.AddChild(b)
			b.AddChild(c)
			c.AddChild(a)
		}},
		{"index out of range", func() {
			NewGroup(ids, "g").AddChildAt(NewGroup(ids, "x"), 3)
		}},
		{"remove wrong parent", func() {
			a := NewGroup(ids, "a")
			a.RemoveChild(NewGroup(ids, "stranger"))
		}},
		{"remove at out of range", func() { NewGroup(ids, "g").RemoveChildAt(0) }},
		{"set index out of range", func() {
			a := NewGroup(ids, "a")
			b := NewGroup(ids, "b")
			a.AddChild(b)
			a.SetChildIndex(b, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestAddChildAt(t *testing.T) {
	ids := NewIDAllocator()
	p := NewGroup(ids, "p")
	a := NewGroup(ids, "a")
	b := NewGroup(ids, "b")
	c := NewGroup(ids, "c")
	p.AddChild(a)
	p.AddChild(c)
	p.AddChildAt(b, 1)
	assertChildOrder(t, p, a, b, c)

	d := NewGroup(ids, "d")
	p.AddChildAt(d, 0)
	assertChildOrder(t, p, d, a, b, c)
}

func TestAddChildAtSameParent(t *testing.T) {
	ids := NewIDAllocator()
	p := NewGroup(ids, "p")
	a := NewGroup(ids, "a")
	b := NewGroup(ids, "b")
	c := NewGroup(ids, "c")
	p.AddChild(a)
	p.AddChild(b)
	p.AddChild(c)

	p.AddChildAt(a, 2)
	assertChildOrder(t, p, b, c, a)
}

func TestAddChildAtOutOfRangeKeepsParent(t *testing.T) {
	ids := NewIDAllocator()
	old := NewGroup(ids, "old")
	child := NewGroup(ids, "child")
	old.AddChild(child)

	tests := []struct {
		name   string
		target *Shape
		index  int
	}{
		{"other parent", NewGroup(ids, "p"), 1},
		{"same parent", old, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			func() {
				defer func() {
					if recover() == nil {
						t.Error("expected panic")
					}
				}()
				tt.target.AddChildAt(child, tt.index)
			}()
			if child.Parent() != old {
				t.Errorf("parent = %v, want old", child.Parent())
			}
			assertChildOrder(t, old, child)
		})
	}
}

func assertChildOrder(t *testing.T, p *Shape, want ...*Shape) {
	t.Helper()
	if p.NumChildren() != len(want) {
		t.Fatalf("NumChildren = %d, want %d", p.NumChildren(), len(want))
	}
	for i, w := range want {
		if p.ChildAt(i) != w {
			t.Errorf("child[%d] = %s, want %s", i, p.ChildAt(i).Name, w.Name)
		}
	}
}

func TestRemoveChildAt(t *testing.T) {
	ids := NewIDAllocator()
	p := NewGroup(ids, "p")
	a := NewGroup(ids, "a")
	b := NewGroup(ids, "b")
	p.AddChild(a)
	p.AddChild(b)

	if got := p.RemoveChildAt(0); got != a {
		t.Errorf("RemoveChildAt(0) = %s, want a", got.Name)
	}
	if a.Parent() != nil {
		t.Error("removed child should have no parent")
	}
	assertChildOrder(t, p, b)
}

func TestRemoveFromParentNoOp(t *testing.T) {
	NewGroup(NewIDAllocator(), "orphan").RemoveFromParent()
}

func TestRemoveChildren(t *testing.T) {
	ids := NewIDAllocator()
	c := NewCanvas(CanvasOptions{IDs: ids, Headless: true})
	kids := []*Shape{NewCircle(ids, "a", 0, 0, 1), NewCircle(ids, "b", 0, 0, 1)}
	for _, k := range kids {
		c.Root().AddChild(k)
	}
	c.Root().RemoveChildren()
	if c.Root().NumChildren() != 0 {
		t.Error("root should be empty")
	}
	for _, k := range kids {
		if k.Parent() != nil || k.Canvas() != nil || k.IsDisposed() {
			t.Errorf("%s should be detached but not disposed", k.Name)
		}
	}
}

func TestSetChildIndex(t *testing.T) {
	ids := NewIDAllocator()
	p := NewGroup(ids, "p")
	a := NewGroup(ids, "a")
	b := NewGroup(ids, "b")
	c := NewGroup(ids, "c")
	p.AddChild(a)
	p.AddChild(b)
	p.AddChild(c)

	p.SetChildIndex(a, 2)
	assertChildOrder(t, p, b, c, a)
	p.SetChildIndex(a, 0)
	assertChildOrder(t, p, a, b, c)
	p.SetChildIndex(c, 1)
	assertChildOrder(t, p, a, c, b)
	p.SetChildIndex(c, 1)
	assertChildOrder(t, p, a, c, b)
}

func TestReparentRecomposesWorld(t *testing.T) {
	ids := NewIDAllocator()
	a := NewGroup(ids, "a")
	a.SetPosition(10, 0)
	b := NewGroup(ids, "b")
	b.SetPosition(0, 20)
	child := NewCircle(ids, "child", 0, 0, 1)
	a.AddChild(child)
	if m := child.WorldMatrix(); m[4] != 10 || m[5] != 0 {
		t.Fatalf("under a: %v", m)
	}
	b.AddChild(child)
	if m := child.WorldMatrix(); m[4] != 0 || m[5] != 20 {
		t.Errorf("under b: %v", m)
	}
}

// --- Disposal ---

func TestDispose(t *testing.T) {
	ids := NewIDAllocator()
	c := NewCanvas(CanvasOptions{IDs: ids, Headless: true})
	g := NewGroup(ids, "g")
	child := NewCircle(ids, "child", 0, 0, 5)
	child.OnClick = func(PointerContext) {}
	child.UserData = "payload"
	g.AddChild(child)
	c.Root().AddChild(g)
	c.Sync()

	g.Dispose()
	if !g.IsDisposed() || !child.IsDisposed() {
		t.Error("subtree should be disposed")
	}
	if g.Parent() != nil || c.Root().NumChildren() != 0 {
		t.Error("disposed shape should leave its parent")
	}
	if c.Shape(child.ID) != nil || c.Index().Len() != 0 {
		t.Error("disposed shapes should leave the canvas")
	}
	if child.OnClick != nil || child.UserData != nil {
		t.Error("callbacks and user data should be released")
	}
	g.Dispose() // idempotent
}

// --- Setters ---

func TestGeometrySetters(t *testing.T) {
	ids := NewIDAllocator()
	r := NewRect(ids, "r", 0, 0, 10, 10)
	r.SetRect(1, 2, 30, 40)
	r.SetCornerRadius(5)
	x, y, w, h, radius := r.RectGeometry()
	if x != 1 || y != 2 || w != 30 || h != 40 || radius != 5 {
		t.Errorf("RectGeometry = %v %v %v %v %v", x, y, w, h, radius)
	}

	e := NewEllipse(ids, "e", 0, 0, 1, 1)
	e.SetEllipse(5, 6, 7, 8)
	if cx, cy, rx, ry := e.Ellipse(); cx != 5 || cy != 6 || rx != 7 || ry != 8 {
		t.Errorf("Ellipse = %v %v %v %v", cx, cy, rx, ry)
	}

	p := NewPolyline(ids, "p", nil)
	pts := []Vec2{{0, 0}, {5, 5}, {10, 0}}
	p.SetPoints(pts)
	if len(p.Points()) != 3 {
		t.Errorf("Points = %v", p.Points())
	}
}

func TestPaintSettersQueueChange(t *testing.T) {
	c := NewCanvas(CanvasOptions{Headless: true})
	s := NewCircle(c.IDs(), "s", 0, 0, 5)
	c.Root().AddChild(s)
	c.Sync()

	changed := 0
	c.Use(HooksFunc(func() Hooks {
		return Hooks{ShapeChanged: func(*Shape) { changed++ }}
	}))

	setters := []struct {
		name string
		fn   func()
	}{
		{"fill", func() { s.SetFill(red) }},
		{"stroke", func() { s.SetStroke(ColorBlack) }},
		{"stroke width", func() { s.SetStrokeWidth(3) }},
		{"alignment", func() { s.SetStrokeAlignment(StrokeOuter) }},
		{"effect padding", func() { s.SetEffectPadding(2) }},
		{"geometry", func() { s.SetCircle(0, 0, 8) }},
	}
	for _, tt := range setters {
		changed = 0
		tt.fn()
		c.Sync()
		if changed != 1 {
			t.Errorf("%s: ShapeChanged fired %d times, want 1", tt.name, changed)
		}
	}

	// Same values again are no-ops.
	changed = 0
	s.SetFill(red)
	s.SetStrokeWidth(3)
	s.SetCircle(0, 0, 8)
	c.Sync()
	if changed != 0 {
		t.Errorf("no-op setters fired %d changes", changed)
	}
}

func TestGeometrySettersSkipNoOps(t *testing.T) {
	c := NewCanvas(CanvasOptions{Headless: true})
	e := NewEllipse(c.IDs(), "e", 0, 0, 10, 5)
	r := NewRect(c.IDs(), "r", 0, 0, 20, 10)
	c.Root().AddChild(e)
	c.Root().AddChild(r)
	c.Sync()

	changed := 0
	c.Use(HooksFunc(func() Hooks {
		return Hooks{ShapeChanged: func(*Shape) { changed++ }}
	}))

	e.SetEllipse(0, 0, 10, 5)
	r.SetRect(0, 0, 20, 10)
	r.SetRect(0, 0, 20, -1) // clamped height differs
	c.Sync()
	if changed != 1 {
		t.Errorf("ShapeChanged fired %d times, want 1", changed)
	}

	changed = 0
	e.SetEllipse(0, 0, 12, 5)
	r.SetRect(0, 0, 20, 0)
	c.Sync()
	if changed != 1 {
		t.Errorf("ShapeChanged fired %d times, want 1", changed)
	}
}

func TestRestyleHook(t *testing.T) {
	c := NewCanvas(CanvasOptions{Headless: true})
	s := NewCircle(c.IDs(), "s", 0, 0, 5)
	c.Root().AddChild(s)
	restyled := 0
	c.Use(HooksFunc(func() Hooks {
		return Hooks{ShapeRestyled: func(*Shape) { restyled++ }}
	}))
	s.SetBlendMode(BlendAdd)
	s.SetBlendMode(BlendAdd)
	s.SetBatchable(false)
	if restyled != 2 {
		t.Errorf("ShapeRestyled fired %d times, want 2", restyled)
	}
}
