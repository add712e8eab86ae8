package easel

// syntheticPointerEvent represents a single injected pointer event in
// viewport pixels, converted to world coordinates through the camera
// exactly like real mouse input.
type syntheticPointerEvent struct {
	viewportX, viewportY float64
	pressed              bool
	button               MouseButton
	wheel                float64
}

// InjectPress queues a left-button press at the given viewport coordinates.
// The event is consumed by the next ProcessInjected call.
func (c *Canvas) InjectPress(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{
		viewportX: x, viewportY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (c *Canvas) InjectMove(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{
		viewportX: x, viewportY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectHover queues a pointer move with no button held.
func (c *Canvas) InjectHover(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{
		viewportX: x, viewportY: y,
		button: MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release at the given viewport coordinates.
func (c *Canvas) InjectRelease(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{
		viewportX: x, viewportY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectWheel queues a wheel zoom of the given steps around (x, y).
func (c *Canvas) InjectWheel(x, y, steps float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{
		viewportX: x, viewportY: y,
		wheel: steps,
	})
}

// InjectClick queues a press followed by a release at the same viewport
// coordinates. Consumes two events.
func (c *Canvas) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate events, and
// release at (toX, toY). Minimum frames is 2 (press + release).
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		c.InjectMove(x, y)
	}
	c.InjectRelease(toX, toY)
}

// PendingInjected returns the number of queued synthetic events.
func (c *Canvas) PendingInjected() int { return len(c.injectQueue) }

// ProcessInjected pops one queued event and feeds it to pointer 0. It
// reports whether an event was consumed; Run skips real mouse input for
// that update when it was.
func (c *Canvas) ProcessInjected(mods KeyModifiers) bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	if evt.wheel != 0 {
		c.HandleWheel(evt.viewportX, evt.viewportY, evt.wheel)
		return true
	}
	c.HandlePointer(0, evt.viewportX, evt.viewportY, evt.pressed, evt.button, mods)
	return true
}

// ProcessAllInjected drains the queue, one event at a time.
func (c *Canvas) ProcessAllInjected() {
	for c.ProcessInjected(0) {
	}
}
