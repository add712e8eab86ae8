// Package easel is a retained-mode 2D vector scene graph for [Ebitengine].
//
// Easel keeps a tree of shapes (circles, ellipses, rounded rectangles,
// polylines and paths), composes their transforms lazily, indexes their
// world bounds in an R-tree for picking and culling, and groups them into
// batched draw calls that are rebuilt only when their members change.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	c := easel.NewCanvas(easel.CanvasOptions{})
//	dot := easel.NewCircle(c.IDs(), "dot", 0, 0, 40)
//	dot.SetFill(easel.Color{R: 0.9, G: 0.3, B: 0.2, A: 1})
//	dot.SetPosition(320, 240)
//	c.Root().AddChild(dot)
//	easel.Run(c, easel.RunConfig{Title: "dots", WheelZoom: true})
//
// For full control, drive the frame yourself. [Canvas.Frame] runs
// BeginFrame, Render and EndFrame against whatever [Device] the canvas was
// created with:
//
//	c := easel.NewCanvas(easel.CanvasOptions{Device: dev})
//	if err := c.InitAsync(ctx); err != nil { ... }
//	for running {
//		if err := c.Frame(); err != nil { ... }
//	}
//
// # Scene graph
//
// Every visual element is a [Shape]. Shapes form a tree rooted at
// [Canvas.Root]; children inherit their parent's transform, opacity and
// visibility. Mutations only bump version counters. World matrices, world
// bounds, the spatial index and paint order catch up at the next
// synchronization point ([Canvas.Sync]), which BeginFrame and the pick
// functions run.
//
// # Camera
//
// The [Camera] maps world space to the viewport. Its position is the world
// point shown at the viewport's top-left corner. [Camera.ZoomBy] keeps a
// viewport pivot fixed, and [Camera.FlyTo] animates position and zoom with
// [gween] tweens.
//
// # Picking and input
//
// [Canvas.Pick] returns the topmost shape under a viewport pixel using each
// kind's exact hit test, stroke alignment and the configured pick radius.
// [Canvas.HandlePointer] turns raw pointer samples into enter, leave, down,
// up, click and drag callbacks; [Run] feeds it from the mouse and touches.
//
// # Rendering
//
// The built-in [Renderer] is a [Plugin]. It keeps a [BatchManager] in sync
// with the scene through shape hooks, submits visible shapes during Render
// and flushes dirty [Drawcall]s at EndFrame. [EbitenDevice] implements
// [Device] on top of ebiten; other backends implement the same interface.
// Lost devices are recreated on the next frame.
//
// ECS integration is available through the [Donburi] adapter in easel/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package easel
