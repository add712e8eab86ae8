package easel

import (
	"context"
	"errors"
	"fmt"
)

// Renderer is the built-in plugin that turns the scene into drawcalls. It
// owns the device and the BatchManager.
//
// When the device reports ErrDeviceLost the renderer drops every GPU
// resource and recreates the device at the next BeginFrame; until that
// succeeds Render and EndFrame do nothing.
type Renderer struct {
	canvas    *Canvas
	dev       Device
	newDevice func(ctx context.Context) (Device, error)
	bm        *BatchManager

	lost      bool
	frameOpen bool
	losses    int
}

func newRenderer(c *Canvas, dev Device, newDevice func(ctx context.Context) (Device, error)) *Renderer {
	r := &Renderer{canvas: c, dev: dev, newDevice: newDevice}
	r.bm = NewBatchManager(dev, c.cfg.MaxInstances, c.Shape)
	return r
}

// BatchManager returns the renderer's batch manager.
func (r *Renderer) BatchManager() *BatchManager { return r.bm }

// Device returns the current device, or nil while lost or before InitAsync.
func (r *Renderer) Device() Device { return r.dev }

// Lost reports whether the device is lost and not yet recreated.
func (r *Renderer) Lost() bool { return r.lost }

// Losses returns how many times the device was lost.
func (r *Renderer) Losses() int { return r.losses }

// Hooks implements Plugin.
func (r *Renderer) Hooks() Hooks {
	return Hooks{
		InitAsync:     r.initAsync,
		BeginFrame:    r.beginFrame,
		Render:        r.render,
		EndFrame:      r.endFrame,
		Resize:        r.resize,
		Destroy:       r.destroy,
		ShapeAdded:    r.shapeAdded,
		ShapeRemoved:  r.shapeRemoved,
		ShapeChanged:  r.shapeChanged,
		ShapeRestyled: r.shapeRestyled,
		Reorder:       r.bm.Reorder,
	}
}

func (r *Renderer) initAsync(ctx context.Context, _ *Canvas) error {
	if r.dev == nil {
		if r.newDevice == nil {
			return ErrNoDevice
		}
		dev, err := r.newDevice(ctx)
		if err != nil {
			return fmt.Errorf("easel: create device: %w", err)
		}
		r.dev = dev
		r.bm.SetDevice(dev)
	}
	return r.bm.Prepare()
}

func (r *Renderer) beginFrame(c *Canvas) error {
	r.frameOpen = false
	r.bm.Sync()
	if r.lost && !r.recreate() {
		return nil
	}
	if r.dev == nil {
		return nil
	}
	if err := r.dev.BeginFrame(); err != nil {
		if errors.Is(err, ErrDeviceLost) {
			r.markLost(err)
			return nil
		}
		return fmt.Errorf("easel: begin frame: %w", err)
	}
	r.frameOpen = true
	return nil
}

func (r *Renderer) render(_ *Canvas, s *Shape) {
	if r.frameOpen {
		r.bm.Submit(s)
	}
}

func (r *Renderer) endFrame(c *Canvas) error {
	if !r.frameOpen {
		return nil
	}
	r.frameOpen = false
	pass, err := r.dev.CreateRenderPass(RenderPassDescriptor{Clear: true, ClearColor: c.cfg.BackgroundColor()})
	if err != nil {
		return r.deviceError("create render pass", err)
	}
	cam := c.camera
	w, h := cam.Viewport()
	u := Uniforms{ViewProjection: cam.ViewProjection(), ViewportWidth: w, ViewportHeight: h}
	if err := r.bm.Flush(pass, u); err != nil {
		return r.deviceError("flush", err)
	}
	if err := r.dev.SubmitPass(pass); err != nil {
		return r.deviceError("submit pass", err)
	}
	if err := r.dev.EndFrame(); err != nil {
		return r.deviceError("end frame", err)
	}
	return nil
}

func (r *Renderer) resize(_ *Canvas, width, height int) {
	if r.dev == nil {
		return
	}
	if err := r.dev.Resize(width, height); err != nil {
		if errors.Is(err, ErrDeviceLost) {
			r.markLost(err)
			return
		}
		Logger().Warn("easel: resize failed", "width", width, "height", height, "error", err)
	}
}

func (r *Renderer) destroy(_ *Canvas) {
	r.bm.Destroy()
	if r.dev != nil {
		r.dev.Destroy()
		r.dev = nil
	}
	r.frameOpen = false
}

func (r *Renderer) shapeAdded(s *Shape) {
	if s.kind != ShapeGroup {
		r.bm.Add(s)
	}
}

func (r *Renderer) shapeRemoved(s *Shape) { r.bm.Remove(s.ID) }

func (r *Renderer) shapeChanged(s *Shape) { r.bm.Invalidate(s.ID) }

func (r *Renderer) shapeRestyled(s *Shape) {
	r.bm.Remove(s.ID)
	r.shapeAdded(s)
}

// deviceError treats ErrDeviceLost as recoverable and wraps anything else.
func (r *Renderer) deviceError(op string, err error) error {
	if errors.Is(err, ErrDeviceLost) {
		r.markLost(err)
		return nil
	}
	return fmt.Errorf("easel: %s: %w", op, err)
}

func (r *Renderer) markLost(err error) {
	Logger().Warn("easel: device lost", "error", err)
	r.lost = true
	r.losses++
	r.frameOpen = false
	old := r.dev
	r.dev = nil
	r.bm.SetDevice(nil)
	if old != nil {
		old.Destroy()
	}
}

// recreate builds a new device after a loss. It reports whether rendering
// can resume this frame.
func (r *Renderer) recreate() bool {
	if r.newDevice == nil {
		return false
	}
	dev, err := r.newDevice(context.Background())
	if err != nil {
		Logger().Warn("easel: device recreation failed", "error", err)
		return false
	}
	r.dev = dev
	r.bm.SetDevice(dev)
	if w, h := r.canvas.Size(); w > 0 && h > 0 {
		if err := dev.Resize(w, h); err != nil {
			Logger().Warn("easel: resize after recreation failed", "error", err)
		}
	}
	r.lost = false
	Logger().Info("easel: device recreated", "losses", r.losses)
	return true
}
