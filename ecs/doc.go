// Package ecs connects easel canvases to a [Donburi] world.
//
// [NewDonburiStore] bridges easel interaction events (pointer, click, drag)
// into the world as typed events. Subscribe to [InteractionEventType] in
// your systems to receive them:
//
//	store := ecs.NewDonburiStore(world)
//	canvas.SetEntityStore(store)
//
// [ShapeSystem] keeps entities carrying a [ShapeComponent] attached to a
// canvas: shapes of new entities are added under their parent (or the
// canvas root), and shapes of removed entities are detached.
//
//	sys := ecs.NewShapeSystem(canvas)
//	e := world.Create(ecs.ShapeComponent)
//	ecs.ShapeComponent.SetValue(world.Entry(e), ecs.ShapeData{Shape: circle})
//	sys.Update(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
