package easel

import (
	"context"
	"fmt"
)

// CanvasOptions configures NewCanvas.
type CanvasOptions struct {
	// Config is validated and zero fields take defaults. The zero value
	// means DefaultConfig.
	Config Config
	// IDs issues shape ids; the root group takes one. Nil creates a new allocator.
	IDs *IDAllocator
	// Device is the GPU device the renderer draws with.
	Device Device
	// NewDevice creates a device in InitAsync when Device is nil, and again
	// after a device loss.
	NewDevice func(ctx context.Context) (Device, error)
	// Headless skips the built-in renderer entirely.
	Headless bool
	// Plugins are installed after the renderer, in order.
	Plugins []Plugin
}

// FrameStats are the counters of the last frame.
type FrameStats struct {
	Frame      uint64
	Shapes     int // attached shapes, root included
	Indexed    int // spatial index entries
	Recomposed int // shapes refreshed at the last synchronization point
	Rendered   int // shapes passed to render hooks
	Culled     int // shapes skipped by viewport culling
	Batch      BatchStats
}

// Canvas is the top-level object that owns the shape tree, the camera, the
// spatial index and the plugins, and drives the frame hook sequence.
type Canvas struct {
	cfg    Config
	ids    *IDAllocator
	root   *Shape
	camera *Camera
	index  *SpatialIndex
	shapes map[uint32]*Shape
	store  EntityStore
	debug  bool

	renderer *Renderer
	hooks    []Hooks

	transformQueue []*Shape
	changeQueue    []*Shape
	orderDirty     bool

	width, height int
	inited        bool
	destroyed     bool
	stats         FrameStats

	// ScreenshotDir is where Screenshot writes PNG files ("screenshots" when empty).
	ScreenshotDir   string
	screenshotQueue []string
	captureSink     func(Capture) error

	// Input state
	handlers    handlerRegistry
	captured    [maxPointers]*Shape
	pointers    [maxPointers]pointerState
	panOnDrag   bool
	injectQueue []syntheticPointerEvent
	candidates  []uint32
}

// NewCanvas creates a canvas with a root group, a camera sized to the
// configured window, and the built-in renderer unless opts.Headless is set.
// An invalid Config panics.
func NewCanvas(opts CanvasOptions) *Canvas {
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	ids := opts.IDs
	if ids == nil {
		ids = NewIDAllocator()
	}
	c := &Canvas{
		cfg:    cfg,
		ids:    ids,
		index:  NewSpatialIndex(),
		shapes: make(map[uint32]*Shape),
		width:  cfg.WindowWidth,
		height: cfg.WindowHeight,
		debug:  cfg.Debug,
	}
	if cfg.Debug {
		debugFlag.Store(true)
	}
	c.camera = NewCamera(float64(c.width), float64(c.height), cfg.MinZoom, cfg.MaxZoom)
	if !opts.Headless {
		c.renderer = newRenderer(c, opts.Device, opts.NewDevice)
		c.Use(c.renderer)
	}
	for _, p := range opts.Plugins {
		c.Use(p)
	}
	c.root = NewGroup(ids, "root")
	c.attach(c.root)
	return c
}

// Use installs a plugin. Shapes already attached are reported to its
// ShapeAdded hook.
func (c *Canvas) Use(p Plugin) {
	h := p.Hooks()
	c.hooks = append(c.hooks, h)
	if h.ShapeAdded != nil && c.root != nil {
		c.root.walk(h.ShapeAdded)
	}
}

// Root returns the canvas's root group.
func (c *Canvas) Root() *Shape { return c.root }

// Camera returns the canvas camera.
func (c *Canvas) Camera() *Camera { return c.camera }

// IDs returns the id allocator shared by the canvas.
func (c *Canvas) IDs() *IDAllocator { return c.ids }

// Config returns the effective configuration.
func (c *Canvas) Config() Config { return c.cfg }

// Renderer returns the built-in renderer, or nil for a headless canvas.
func (c *Canvas) Renderer() *Renderer { return c.renderer }

// Index returns the spatial index. It reflects the last synchronization point.
func (c *Canvas) Index() *SpatialIndex { return c.index }

// Shape returns the attached shape with the given id, or nil.
func (c *Canvas) Shape(id uint32) *Shape { return c.shapes[id] }

// Size returns the viewport size in pixels.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// Destroyed reports whether Destroy was called.
func (c *Canvas) Destroyed() bool { return c.destroyed }

// SetEntityStore sets the optional ECS bridge for interaction events.
func (c *Canvas) SetEntityStore(store EntityStore) { c.store = store }

// SetDebugMode enables per-frame statistics logging and tree checks.
func (c *Canvas) SetDebugMode(enabled bool) {
	c.debug = enabled
	debugFlag.Store(enabled)
}

// SetPanOnDrag makes drags that start on empty canvas pan the camera.
func (c *Canvas) SetPanOnDrag(enabled bool) { c.panOnDrag = enabled }

// --- Attachment ---

// attach registers s and its subtree with the canvas.
func (c *Canvas) attach(s *Shape) {
	s.walk(func(n *Shape) {
		if n.canvas != nil && n.canvas != c {
			panic("easel: shape belongs to another canvas")
		}
		n.canvas = c
		n.syncedWorld = 0
		n.geomDirty = true
		n.renderDirty = true
		c.shapes[n.ID] = n
		for _, h := range c.hooks {
			if h.ShapeAdded != nil {
				h.ShapeAdded(n)
			}
		}
	})
	c.orderDirty = true
	c.queueTransform(s)
}

// detach unregisters s and its subtree. Index entries and drawcall
// membership are dropped immediately.
func (c *Canvas) detach(s *Shape) {
	s.walk(func(n *Shape) {
		c.index.Remove(n.ID)
		n.indexed = false
		for _, h := range c.hooks {
			if h.ShapeRemoved != nil {
				h.ShapeRemoved(n)
			}
		}
		for i := range c.pointers {
			ps := &c.pointers[i]
			if ps.hitShape == n {
				ps.hitShape = nil
			}
			if ps.hoverShape == n {
				ps.hoverShape = nil
			}
			if c.captured[i] == n {
				c.captured[i] = nil
			}
		}
		delete(c.shapes, n.ID)
		n.canvas = nil
		n.syncedWorld = 0
		// Entries left in this canvas's queues are skipped by Sync; the
		// next canvas must be able to queue n again.
		n.transformQueue = false
		n.changeQueue = false
	})
	c.orderDirty = true
}

func (c *Canvas) queueTransform(s *Shape) {
	if s.transformQueue {
		return
	}
	s.transformQueue = true
	c.transformQueue = append(c.transformQueue, s)
}

func (c *Canvas) queueChange(s *Shape) {
	if s.changeQueue {
		return
	}
	s.changeQueue = true
	c.changeQueue = append(c.changeQueue, s)
}

func (c *Canvas) rebatch(s *Shape) {
	for _, h := range c.hooks {
		if h.ShapeRestyled != nil {
			h.ShapeRestyled(s)
		}
	}
	c.queueChange(s)
}

// --- Synchronization point ---

// Sync brings world transforms, world bounds, the spatial index and paint
// order up to date with every mutation made since the last call. BeginFrame
// and the pick functions call it.
func (c *Canvas) Sync() {
	if c.destroyed {
		return
	}
	c.stats.Recomposed = 0
	if c.orderDirty {
		c.renumber()
	}
	// Queues may grow while draining when hooks mutate shapes.
	for i := 0; i < len(c.transformQueue); i++ {
		s := c.transformQueue[i]
		if s.canvas != c {
			continue
		}
		s.transformQueue = false
		s.refreshWorld()
		c.propagate(s)
	}
	clear(c.transformQueue)
	c.transformQueue = c.transformQueue[:0]
	for i := 0; i < len(c.changeQueue); i++ {
		s := c.changeQueue[i]
		if s.canvas != c {
			continue
		}
		s.changeQueue = false
		if s.syncedWorld != 0 {
			c.refresh(s)
		}
	}
	clear(c.changeQueue)
	c.changeQueue = c.changeQueue[:0]
}

// propagate refreshes s if its world state moved since it was last synced,
// then descends into the children whose world state moved. s is composed.
func (c *Canvas) propagate(s *Shape) {
	if s.t.worldVersion != s.syncedWorld {
		c.refresh(s)
	}
	for _, child := range s.children {
		child.t.compose(&s.t)
		if child.t.worldVersion != child.syncedWorld {
			c.propagate(child)
		}
	}
}

// refresh recomputes the world bounds of s, updates its index entry and
// notifies plugins.
func (c *Canvas) refresh(s *Shape) {
	s.syncedWorld = s.t.worldVersion
	c.stats.Recomposed++
	if s.hasExtent() {
		s.worldBounds = transformRect(s.t.world, s.indexBounds())
		c.index.Update(s.ID, s.worldBounds)
		s.indexed = true
	} else if s.indexed {
		c.index.Remove(s.ID)
		s.indexed = false
	}
	for _, h := range c.hooks {
		if h.ShapeChanged != nil {
			h.ShapeChanged(s)
		}
	}
}

// renumber assigns global paint order by pre-order traversal.
func (c *Canvas) renumber() {
	n := 0
	c.root.walk(func(s *Shape) {
		s.paintOrder = n
		n++
	})
	c.orderDirty = false
	for _, h := range c.hooks {
		if h.Reorder != nil {
			h.Reorder()
		}
	}
}

// --- Hook sequence ---

// Init runs the Init hooks. It is idempotent.
func (c *Canvas) Init() {
	if c.inited || c.destroyed {
		return
	}
	c.inited = true
	for _, h := range c.hooks {
		if h.Init != nil {
			h.Init(c)
		}
	}
}

// InitAsync runs Init if needed, then the InitAsync hooks in order. Device
// creation and program compilation failures are returned.
func (c *Canvas) InitAsync(ctx context.Context) error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.Init()
	for _, h := range c.hooks {
		if h.InitAsync == nil {
			continue
		}
		if err := h.InitAsync(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// BeginFrame updates the camera, runs the synchronization point and the
// BeginFrame hooks.
func (c *Canvas) BeginFrame() error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.stats.Frame++
	c.stats.Rendered = 0
	c.stats.Culled = 0
	c.camera.Update()
	c.Sync()
	for _, h := range c.hooks {
		if h.BeginFrame == nil {
			continue
		}
		if err := h.BeginFrame(c); err != nil {
			return err
		}
	}
	return nil
}

// Render walks the tree in paint order and calls the Render hooks for every
// visible, non-group shape. With Config.Culling, shapes whose world bounds
// miss the camera's visible bounds are skipped.
func (c *Canvas) Render() {
	if c.destroyed {
		return
	}
	var view Rect
	if c.cfg.Culling {
		view = c.camera.VisibleBounds()
	}
	c.render(c.root, view)
}

func (c *Canvas) render(s *Shape, view Rect) {
	if !s.t.worldVisible {
		return
	}
	if s.kind != ShapeGroup {
		if c.cfg.Culling && !s.worldBounds.Intersects(view) {
			c.stats.Culled++
		} else {
			c.stats.Rendered++
			for _, h := range c.hooks {
				if h.Render != nil {
					h.Render(c, s)
				}
			}
		}
	}
	for _, child := range s.children {
		c.render(child, view)
	}
}

// EndFrame runs the EndFrame hooks; the renderer flushes here.
func (c *Canvas) EndFrame() error {
	if c.destroyed {
		return ErrDestroyed
	}
	for _, h := range c.hooks {
		if h.EndFrame == nil {
			continue
		}
		if err := h.EndFrame(c); err != nil {
			return err
		}
	}
	c.logFrameStats()
	c.captureFrame()
	return nil
}

// Frame runs BeginFrame, Render and EndFrame.
func (c *Canvas) Frame() error {
	if err := c.BeginFrame(); err != nil {
		return err
	}
	c.Render()
	return c.EndFrame()
}

// Resize updates the camera projection and runs the Resize hooks.
// Non-positive sizes are ignored.
func (c *Canvas) Resize(width, height int) {
	if c.destroyed {
		return
	}
	if width <= 0 || height <= 0 {
		Logger().Debug("easel: ignored resize", "width", width, "height", height)
		return
	}
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.camera.Projection(float64(width), float64(height))
	for _, h := range c.hooks {
		if h.Resize != nil {
			h.Resize(c, width, height)
		}
	}
}

// Destroy runs the Destroy hooks in reverse order and releases the scene.
// Later calls are no-ops.
func (c *Canvas) Destroy() {
	if c.destroyed {
		return
	}
	for i := len(c.hooks) - 1; i >= 0; i-- {
		if h := c.hooks[i]; h.Destroy != nil {
			h.Destroy(c)
		}
	}
	c.root.walk(func(s *Shape) {
		s.canvas = nil
		s.indexed = false
		s.syncedWorld = 0
		s.transformQueue = false
		s.changeQueue = false
	})
	c.index.Clear()
	clear(c.shapes)
	c.transformQueue = nil
	c.changeQueue = nil
	c.hooks = nil
	c.destroyed = true
}

// Stats returns the counters of the last frame.
func (c *Canvas) Stats() FrameStats {
	st := c.stats
	st.Shapes = len(c.shapes)
	st.Indexed = c.index.Len()
	if c.renderer != nil {
		st.Batch = c.renderer.bm.Stats()
	}
	return st
}

// String implements fmt.Stringer.
func (c *Canvas) String() string {
	return fmt.Sprintf("Canvas{shapes: %d, viewport: %dx%d}", len(c.shapes), c.width, c.height)
}
