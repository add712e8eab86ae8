package easel

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	maxPointers = 10 // pointer 0 = mouse, 1-9 = touch
)

// --- ECS bridge ---

// EntityStore is the interface for optional ECS integration.
// When set on a Canvas, interaction events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	ShapeID   uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
}

// --- Callback contexts ---

// PointerContext describes a pointer event. Shape is nil when the pointer
// is over empty canvas.
type PointerContext struct {
	Shape     *Shape
	EntityID  uint32
	UserData  any
	GlobalX   float64 // world coordinates
	GlobalY   float64
	LocalX    float64 // shape-local coordinates
	LocalY    float64
	ViewportX float64 // viewport pixels
	ViewportY float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
}

// DragContext describes a drag event. Start is the world point of the
// press; Delta is the world movement since the previous drag event.
type DragContext struct {
	PointerContext
	StartX, StartY float64
	DeltaX, DeltaY float64
}

// --- Per-pointer state ---

type pointerState struct {
	down       bool
	startX     float64 // world
	startY     float64
	startVX    float64 // viewport
	startVY    float64
	lastX      float64
	lastY      float64
	lastVX     float64
	lastVY     float64
	hitShape   *Shape
	hoverShape *Shape // last shape the pointer was hovering over (for enter/leave)
	dragging   bool
	panning    bool
	button     MouseButton // button captured at press time
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type dragHandler struct {
	id uint32
	fn func(DragContext)
}

type handlerRegistry struct {
	pointerDown  []pointerHandler
	pointerUp    []pointerHandler
	pointerMove  []pointerHandler
	pointerEnter []pointerHandler
	pointerLeave []pointerHandler
	click        []pointerHandler
	dragStart    []dragHandler
	drag         []dragHandler
	dragEnd      []dragHandler
	nextID       uint32
}

// CallbackHandle allows removing a registered canvas-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		h.reg.pointerDown = removeHandler(h.reg.pointerDown, h.id)
	case EventPointerUp:
		h.reg.pointerUp = removeHandler(h.reg.pointerUp, h.id)
	case EventPointerMove:
		h.reg.pointerMove = removeHandler(h.reg.pointerMove, h.id)
	case EventPointerEnter:
		h.reg.pointerEnter = removeHandler(h.reg.pointerEnter, h.id)
	case EventPointerLeave:
		h.reg.pointerLeave = removeHandler(h.reg.pointerLeave, h.id)
	case EventClick:
		h.reg.click = removeHandler(h.reg.click, h.id)
	case EventDragStart:
		h.reg.dragStart = removeHandler(h.reg.dragStart, h.id)
	case EventDrag:
		h.reg.drag = removeHandler(h.reg.drag, h.id)
	case EventDragEnd:
		h.reg.dragEnd = removeHandler(h.reg.dragEnd, h.id)
	}
}

type handlerEntry interface {
	pointerHandler | dragHandler
}

func handlerID[T handlerEntry](h T) uint32 {
	switch v := any(h).(type) {
	case pointerHandler:
		return v.id
	case dragHandler:
		return v.id
	}
	return 0
}

func removeHandler[T handlerEntry](s []T, id uint32) []T {
	for i := range s {
		if handlerID(s[i]) == id {
			var zero T
			copy(s[i:], s[i+1:])
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

func (r *handlerRegistry) addPointer(list *[]pointerHandler, event EventType, fn func(PointerContext)) CallbackHandle {
	r.nextID++
	*list = append(*list, pointerHandler{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, event: event}
}

func (r *handlerRegistry) addDrag(list *[]dragHandler, event EventType, fn func(DragContext)) CallbackHandle {
	r.nextID++
	*list = append(*list, dragHandler{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, event: event}
}

// --- Canvas-level event registration ---

// OnPointerDown registers a canvas-level callback for pointer down events.
func (c *Canvas) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	return c.handlers.addPointer(&c.handlers.pointerDown, EventPointerDown, fn)
}

// OnPointerUp registers a canvas-level callback for pointer up events.
func (c *Canvas) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	return c.handlers.addPointer(&c.handlers.pointerUp, EventPointerUp, fn)
}

// OnPointerMove registers a canvas-level callback for hover moves.
func (c *Canvas) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	return c.handlers.addPointer(&c.handlers.pointerMove, EventPointerMove, fn)
}

// OnPointerEnter registers a canvas-level callback fired when the pointer
// enters a shape.
func (c *Canvas) OnPointerEnter(fn func(PointerContext)) CallbackHandle {
	return c.handlers.addPointer(&c.handlers.pointerEnter, EventPointerEnter, fn)
}

// OnPointerLeave registers a canvas-level callback fired when the pointer
// leaves a shape.
func (c *Canvas) OnPointerLeave(fn func(PointerContext)) CallbackHandle {
	return c.handlers.addPointer(&c.handlers.pointerLeave, EventPointerLeave, fn)
}

// OnClick registers a canvas-level callback for clicks.
func (c *Canvas) OnClick(fn func(PointerContext)) CallbackHandle {
	return c.handlers.addPointer(&c.handlers.click, EventClick, fn)
}

// OnDragStart registers a canvas-level callback for drag start events.
func (c *Canvas) OnDragStart(fn func(DragContext)) CallbackHandle {
	return c.handlers.addDrag(&c.handlers.dragStart, EventDragStart, fn)
}

// OnDrag registers a canvas-level callback for drag events.
func (c *Canvas) OnDrag(fn func(DragContext)) CallbackHandle {
	return c.handlers.addDrag(&c.handlers.drag, EventDrag, fn)
}

// OnDragEnd registers a canvas-level callback for drag end events.
func (c *Canvas) OnDragEnd(fn func(DragContext)) CallbackHandle {
	return c.handlers.addDrag(&c.handlers.dragEnd, EventDragEnd, fn)
}

// CapturePointer routes all events for pointerID to the given shape.
func (c *Canvas) CapturePointer(pointerID int, s *Shape) {
	if pointerID >= 0 && pointerID < maxPointers {
		c.captured[pointerID] = s
	}
}

// ReleasePointer stops routing events for pointerID to a captured shape.
func (c *Canvas) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		c.captured[pointerID] = nil
	}
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// HandlePointer feeds one pointer sample in viewport pixels through the
// pointer state machine. Hosts call it once per pointer per update; Run
// does this for the mouse and touches.
func (c *Canvas) HandlePointer(pointerID int, vx, vy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	if c.destroyed || pointerID < 0 || pointerID >= maxPointers {
		return
	}
	c.processPointer(pointerID, vx, vy, pressed, button, mods)
}

// HandleWheel zooms around the viewport pixel (vx, vy). Positive steps zoom
// in by Config.WheelZoomStep per step.
func (c *Canvas) HandleWheel(vx, vy, steps float64) {
	if c.destroyed || steps == 0 {
		return
	}
	c.camera.ZoomBy(math.Pow(c.cfg.WheelZoomStep, steps), vx, vy)
}

// processPointer runs the pointer state machine for a single pointer.
func (c *Canvas) processPointer(pointerID int, vx, vy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &c.pointers[pointerID]
	wx, wy := c.camera.ViewportToWorld(vx, vy)

	// Determine target shape: captured shape or pick.
	var target *Shape
	if c.captured[pointerID] != nil {
		target = c.captured[pointerID]
	} else {
		target = c.PickWorld(wx, wy)
	}

	// Fire hover enter/leave when the hovered shape changes.
	if target != ps.hoverShape {
		if ps.hoverShape != nil {
			c.firePointer(EventPointerLeave, ps.hoverShape, pointerID, wx, wy, vx, vy, button, mods)
		}
		if target != nil {
			c.firePointer(EventPointerEnter, target, pointerID, wx, wy, vx, vy, button, mods)
		}
		ps.hoverShape = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = wx, wy
		ps.startVX, ps.startVY = vx, vy
		ps.lastX, ps.lastY = wx, wy
		ps.lastVX, ps.lastVY = vx, vy
		ps.hitShape = target
		ps.dragging = false
		ps.panning = false

		c.firePointer(EventPointerDown, target, pointerID, wx, wy, vx, vy, ps.button, mods)

	case !pressed && ps.down:
		if ps.dragging {
			c.fireDrag(EventDragEnd, ps.hitShape, pointerID, wx, wy, vx, vy,
				ps.startX, ps.startY, wx-ps.lastX, wy-ps.lastY, ps.button, mods)
		} else if !ps.panning && ps.hitShape != nil && ps.hitShape == target {
			c.firePointer(EventClick, target, pointerID, wx, wy, vx, vy, ps.button, mods)
		}
		c.firePointer(EventPointerUp, target, pointerID, wx, wy, vx, vy, ps.button, mods)

		// Auto-release capture.
		c.captured[pointerID] = nil
		ps.down = false
		ps.hitShape = nil
		ps.dragging = false
		ps.panning = false
		ps.lastX, ps.lastY = wx, wy
		ps.lastVX, ps.lastVY = vx, vy

	case pressed && ps.down:
		if vx == ps.lastVX && vy == ps.lastVY {
			break
		}
		if !ps.dragging && !ps.panning {
			if math.Hypot(vx-ps.startVX, vy-ps.startVY) > c.cfg.DragDeadZone {
				if ps.hitShape == nil && c.panOnDrag {
					ps.panning = true
				} else {
					ps.dragging = true
					c.fireDrag(EventDragStart, ps.hitShape, pointerID, wx, wy, vx, vy,
						ps.startX, ps.startY, wx-ps.startX, wy-ps.startY, ps.button, mods)
				}
			}
		}
		if ps.panning {
			c.camera.PanViewport(vx-ps.lastVX, vy-ps.lastVY)
			wx, wy = c.camera.ViewportToWorld(vx, vy)
		} else if ps.dragging {
			c.fireDrag(EventDrag, ps.hitShape, pointerID, wx, wy, vx, vy,
				ps.startX, ps.startY, wx-ps.lastX, wy-ps.lastY, ps.button, mods)
		}
		ps.lastX, ps.lastY = wx, wy
		ps.lastVX, ps.lastVY = vx, vy

	default:
		// Hover move.
		if vx != ps.lastVX || vy != ps.lastVY {
			c.firePointer(EventPointerMove, target, pointerID, wx, wy, vx, vy, button, mods)
			ps.lastX, ps.lastY = wx, wy
			ps.lastVX, ps.lastVY = vx, vy
		}
	}
}

// --- Event dispatch ---

func (c *Canvas) pointerContext(s *Shape, pointerID int, wx, wy, vx, vy float64, button MouseButton, mods KeyModifiers) PointerContext {
	ctx := PointerContext{
		Shape:   s,
		GlobalX: wx, GlobalY: wy,
		ViewportX: vx, ViewportY: vy,
		Button: button, PointerID: pointerID, Modifiers: mods,
	}
	if s != nil {
		ctx.LocalX, ctx.LocalY = s.WorldToLocal(wx, wy)
		ctx.EntityID = s.EntityID
		ctx.UserData = s.UserData
	}
	return ctx
}

func (c *Canvas) firePointer(event EventType, s *Shape, pointerID int, wx, wy, vx, vy float64, button MouseButton, mods KeyModifiers) {
	ctx := c.pointerContext(s, pointerID, wx, wy, vx, vy, button, mods)
	var handlers []pointerHandler
	var own func(PointerContext)
	switch event {
	case EventPointerDown:
		handlers = c.handlers.pointerDown
		if s != nil {
			own = s.OnPointerDown
		}
	case EventPointerUp:
		handlers = c.handlers.pointerUp
		if s != nil {
			own = s.OnPointerUp
		}
	case EventPointerMove:
		handlers = c.handlers.pointerMove
		if s != nil {
			own = s.OnPointerMove
		}
	case EventPointerEnter:
		handlers = c.handlers.pointerEnter
		if s != nil {
			own = s.OnPointerEnter
		}
	case EventPointerLeave:
		handlers = c.handlers.pointerLeave
		if s != nil {
			own = s.OnPointerLeave
		}
	case EventClick:
		handlers = c.handlers.click
		if s != nil {
			own = s.OnClick
		}
	}
	// Canvas-level handlers first.
	for _, h := range handlers {
		h.fn(ctx)
	}
	// Per-shape callback.
	if own != nil {
		own(ctx)
	}
	c.emitInteractionEvent(event, ctx, DragContext{})
}

func (c *Canvas) fireDrag(event EventType, s *Shape, pointerID int, wx, wy, vx, vy, startX, startY, deltaX, deltaY float64, button MouseButton, mods KeyModifiers) {
	ctx := DragContext{
		PointerContext: c.pointerContext(s, pointerID, wx, wy, vx, vy, button, mods),
		StartX:         startX, StartY: startY,
		DeltaX: deltaX, DeltaY: deltaY,
	}
	var handlers []dragHandler
	var own func(DragContext)
	switch event {
	case EventDragStart:
		handlers = c.handlers.dragStart
		if s != nil {
			own = s.OnDragStart
		}
	case EventDrag:
		handlers = c.handlers.drag
		if s != nil {
			own = s.OnDrag
		}
	case EventDragEnd:
		handlers = c.handlers.dragEnd
		if s != nil {
			own = s.OnDragEnd
		}
	}
	for _, h := range handlers {
		h.fn(ctx)
	}
	if own != nil {
		own(ctx)
	}
	c.emitInteractionEvent(event, ctx.PointerContext, ctx)
}

func (c *Canvas) emitInteractionEvent(event EventType, ctx PointerContext, drag DragContext) {
	if c.store == nil || ctx.Shape == nil || ctx.Shape.EntityID == 0 {
		return
	}
	c.store.EmitEvent(InteractionEvent{
		Type:      event,
		EntityID:  ctx.Shape.EntityID,
		ShapeID:   ctx.Shape.ID,
		GlobalX:   ctx.GlobalX,
		GlobalY:   ctx.GlobalY,
		LocalX:    ctx.LocalX,
		LocalY:    ctx.LocalY,
		Button:    ctx.Button,
		Modifiers: ctx.Modifiers,
		StartX:    drag.StartX,
		StartY:    drag.StartY,
		DeltaX:    drag.DeltaX,
		DeltaY:    drag.DeltaY,
	})
}
