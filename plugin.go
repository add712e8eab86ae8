package easel

import "context"

// Hooks are the callbacks a plugin contributes to a canvas. Nil fields are
// skipped. The frame hooks run in the fixed order Init, InitAsync, then per
// frame BeginFrame, Render (once per drawn shape), EndFrame; Resize and
// Destroy run when the host calls them.
type Hooks struct {
	Init       func(c *Canvas)
	InitAsync  func(ctx context.Context, c *Canvas) error
	BeginFrame func(c *Canvas) error
	Render     func(c *Canvas, s *Shape)
	EndFrame   func(c *Canvas) error
	Resize     func(c *Canvas, width, height int)
	Destroy    func(c *Canvas)

	// Scene notifications. ShapeAdded and ShapeRemoved fire on attach and
	// detach; ShapeChanged fires at the synchronization point for shapes
	// whose world state, geometry or paint changed; ShapeRestyled fires when
	// the blend mode or batchability changed; Reorder fires after paint
	// order was renumbered.
	ShapeAdded    func(s *Shape)
	ShapeRemoved  func(s *Shape)
	ShapeChanged  func(s *Shape)
	ShapeRestyled func(s *Shape)
	Reorder       func()
}

// Plugin contributes hooks to a canvas.
type Plugin interface {
	Hooks() Hooks
}

// HooksFunc adapts a Hooks value to the Plugin interface.
type HooksFunc func() Hooks

// Hooks returns f().
func (f HooksFunc) Hooks() Hooks { return f() }
