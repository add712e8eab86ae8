package ecs

import (
	"github.com/phanxgames/easel"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// ShapeData binds an entity to a shape. Parent, when set, must already be
// on the canvas; otherwise the shape is added under the canvas root.
type ShapeData struct {
	Shape  *easel.Shape
	Parent *easel.Shape
}

// ShapeComponent is the component ShapeSystem tracks.
var ShapeComponent = donburi.NewComponentType[ShapeData]()

// ShapeSystem mirrors the set of entities carrying ShapeComponent onto a
// canvas. Call Update once per tick, before the canvas frame.
type ShapeSystem struct {
	canvas  *easel.Canvas
	query   *donburi.Query
	tracked map[donburi.Entity]*easel.Shape
	byShape map[uint32]donburi.Entity

	seen map[donburi.Entity]bool
}

// NewShapeSystem returns a system attaching shapes to c.
func NewShapeSystem(c *easel.Canvas) *ShapeSystem {
	return &ShapeSystem{
		canvas:  c,
		query:   donburi.NewQuery(filter.Contains(ShapeComponent)),
		tracked: make(map[donburi.Entity]*easel.Shape),
		byShape: make(map[uint32]donburi.Entity),
		seen:    make(map[donburi.Entity]bool),
	}
}

// Update attaches the shapes of entities that gained ShapeComponent and
// detaches the shapes of entities that lost it or were removed. It returns
// the number of shapes added and removed.
func (s *ShapeSystem) Update(world donburi.World) (added, removed int) {
	clear(s.seen)
	s.query.Each(world, func(entry *donburi.Entry) {
		e := entry.Entity()
		s.seen[e] = true
		data := ShapeComponent.Get(entry)
		if data.Shape == nil {
			return
		}
		if prev, ok := s.tracked[e]; ok {
			if prev == data.Shape {
				return
			}
			// component now points at another shape
			s.detach(e, prev)
			removed++
		}
		parent := data.Parent
		if parent == nil || parent.Canvas() != s.canvas {
			parent = s.canvas.Root()
		}
		if data.Shape.Parent() != parent {
			parent.AddChild(data.Shape)
		}
		data.Shape.EntityID = uint32(e.Id())
		s.tracked[e] = data.Shape
		s.byShape[data.Shape.ID] = e
		added++
	})
	for e, sh := range s.tracked {
		if !s.seen[e] {
			s.detach(e, sh)
			removed++
		}
	}
	return added, removed
}

func (s *ShapeSystem) detach(e donburi.Entity, sh *easel.Shape) {
	sh.RemoveFromParent()
	sh.EntityID = 0
	delete(s.tracked, e)
	delete(s.byShape, sh.ID)
}

// Entity returns the entity bound to a shape id.
func (s *ShapeSystem) Entity(shapeID uint32) (donburi.Entity, bool) {
	e, ok := s.byShape[shapeID]
	return e, ok
}

// Shape returns the shape tracked for an entity.
func (s *ShapeSystem) Shape(e donburi.Entity) *easel.Shape {
	return s.tracked[e]
}

// Len returns the number of tracked shapes.
func (s *ShapeSystem) Len() int {
	return len(s.tracked)
}
