package ecs

import (
	"testing"

	"github.com/phanxgames/easel"

	"github.com/yohamta/donburi"
)

func newShapeEntity(world donburi.World, data ShapeData) donburi.Entity {
	e := world.Create(ShapeComponent)
	ShapeComponent.SetValue(world.Entry(e), data)
	return e
}

func TestShapeSystem_AttachesNewEntities(t *testing.T) {
	world := donburi.NewWorld()
	c := easel.NewCanvas(easel.CanvasOptions{Headless: true})
	sys := NewShapeSystem(c)

	circle := easel.NewCircle(c.IDs(), "circle", 0, 0, 10)
	e := newShapeEntity(world, ShapeData{Shape: circle})

	added, removed := sys.Update(world)
	if added != 1 || removed != 0 {
		t.Fatalf("Update = (%d, %d), want (1, 0)", added, removed)
	}
	if circle.Parent() != c.Root() {
		t.Error("shape should be attached under the root")
	}
	if circle.Canvas() != c {
		t.Error("shape should belong to the canvas")
	}
	if circle.EntityID != uint32(e.Id()) {
		t.Errorf("EntityID = %d, want %d", circle.EntityID, e.Id())
	}
	if got, ok := sys.Entity(circle.ID); !ok || got != e {
		t.Errorf("Entity(%d) = %v, %v", circle.ID, got, ok)
	}
	if sys.Shape(e) != circle {
		t.Error("Shape(e) should return the tracked shape")
	}

	// A second update is a no-op.
	added, removed = sys.Update(world)
	if added != 0 || removed != 0 {
		t.Errorf("second Update = (%d, %d), want (0, 0)", added, removed)
	}
}

func TestShapeSystem_Parent(t *testing.T) {
	world := donburi.NewWorld()
	c := easel.NewCanvas(easel.CanvasOptions{Headless: true})
	sys := NewShapeSystem(c)

	layer := easel.NewGroup(c.IDs(), "layer")
	c.Root().AddChild(layer)
	box := easel.NewRect(c.IDs(), "box", 0, 0, 5, 5)
	newShapeEntity(world, ShapeData{Shape: box, Parent: layer})

	// A parent that is not on the canvas falls back to the root.
	orphanParent := easel.NewGroup(c.IDs(), "orphan")
	dot := easel.NewCircle(c.IDs(), "dot", 0, 0, 1)
	newShapeEntity(world, ShapeData{Shape: dot, Parent: orphanParent})

	sys.Update(world)
	if box.Parent() != layer {
		t.Error("box should be attached under its parent")
	}
	if dot.Parent() != c.Root() {
		t.Error("dot should fall back to the root")
	}
}

func TestShapeSystem_DetachesRemovedEntities(t *testing.T) {
	world := donburi.NewWorld()
	c := easel.NewCanvas(easel.CanvasOptions{Headless: true})
	sys := NewShapeSystem(c)

	a := easel.NewCircle(c.IDs(), "a", 0, 0, 10)
	b := easel.NewCircle(c.IDs(), "b", 50, 0, 10)
	ea := newShapeEntity(world, ShapeData{Shape: a})
	newShapeEntity(world, ShapeData{Shape: b})
	sys.Update(world)
	if sys.Len() != 2 {
		t.Fatalf("Len = %d, want 2", sys.Len())
	}

	world.Remove(ea)
	added, removed := sys.Update(world)
	if added != 0 || removed != 1 {
		t.Fatalf("Update = (%d, %d), want (0, 1)", added, removed)
	}
	if a.Parent() != nil || a.Canvas() != nil {
		t.Error("removed entity's shape should be detached")
	}
	if a.EntityID != 0 {
		t.Errorf("EntityID = %d, want 0", a.EntityID)
	}
	if _, ok := sys.Entity(a.ID); ok {
		t.Error("detached shape should not map to an entity")
	}
	if b.Parent() != c.Root() {
		t.Error("other shape should stay attached")
	}
	if c.Shape(a.ID) != nil {
		t.Error("canvas should forget the detached shape")
	}
}

func TestShapeSystem_ReplacedShape(t *testing.T) {
	world := donburi.NewWorld()
	c := easel.NewCanvas(easel.CanvasOptions{Headless: true})
	sys := NewShapeSystem(c)

	first := easel.NewCircle(c.IDs(), "first", 0, 0, 10)
	e := newShapeEntity(world, ShapeData{Shape: first})
	sys.Update(world)

	second := easel.NewRect(c.IDs(), "second", 0, 0, 10, 10)
	ShapeComponent.SetValue(world.Entry(e), ShapeData{Shape: second})
	added, removed := sys.Update(world)
	if added != 1 || removed != 1 {
		t.Fatalf("Update = (%d, %d), want (1, 1)", added, removed)
	}
	if first.Parent() != nil {
		t.Error("replaced shape should be detached")
	}
	if second.Parent() != c.Root() {
		t.Error("new shape should be attached")
	}
	if sys.Shape(e) != second {
		t.Error("entity should track the new shape")
	}
}
