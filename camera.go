package easel

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// flyAnim holds the tweens of an active FlyTo: the world point kept at the
// viewport centre, and the zoom.
type flyAnim struct {
	tweenX    *gween.Tween
	tweenY    *gween.Tween
	tweenZoom *gween.Tween
	doneX     bool
	doneY     bool
	doneZoom  bool
}

// Camera maps between viewport pixels, clip space and world space.
//
// The position is the world point shown at the viewport's top-left corner.
// Mutators only mark the matrices stale; Update recomputes them, so several
// fields can change before one recomputation. The coordinate conversion
// helpers call Update themselves.
type Camera struct {
	x, y     float64
	zoom     float64
	rotation float64
	width    float64
	height   float64

	minZoom, maxZoom float64

	projection        [6]float64
	view              [6]float64
	viewProjection    [6]float64
	viewProjectionInv [6]float64
	stale             bool

	fly *flyAnim
}

// NewCamera returns a camera at the origin with zoom 1. Zoom is clamped to
// [minZoom, maxZoom]; non-positive viewport sizes fall back to 1x1.
func NewCamera(width, height, minZoom, maxZoom float64) *Camera {
	if minZoom <= 0 {
		minZoom = DefaultConfig().MinZoom
	}
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	c := &Camera{
		zoom:    clamp(1, minZoom, maxZoom),
		width:   1,
		height:  1,
		minZoom: minZoom,
		maxZoom: maxZoom,
		stale:   true,
	}
	c.Projection(width, height)
	c.Update()
	return c
}

// Position returns the world point at the viewport's top-left corner.
func (c *Camera) Position() (x, y float64) { return c.x, c.y }

// Zoom returns the zoom factor (screen pixels per world unit).
func (c *Camera) Zoom() float64 { return c.zoom }

// Rotation returns the rotation in radians.
func (c *Camera) Rotation() float64 { return c.rotation }

// Viewport returns the viewport size in pixels.
func (c *Camera) Viewport() (width, height float64) { return c.width, c.height }

// ZoomRange returns the zoom clamp bounds.
func (c *Camera) ZoomRange() (minZoom, maxZoom float64) { return c.minZoom, c.maxZoom }

// Stale reports whether a mutation happened since the last Update.
func (c *Camera) Stale() bool { return c.stale }

// SetZoomRange changes the clamp bounds and re-clamps the zoom. Invalid
// ranges are ignored.
func (c *Camera) SetZoomRange(minZoom, maxZoom float64) {
	if minZoom <= 0 || maxZoom < minZoom {
		return
	}
	c.minZoom, c.maxZoom = minZoom, maxZoom
	c.SetZoom(c.zoom)
}

// Projection rebuilds the projection for a viewport of width x height pixels.
// Non-positive sizes are ignored and the previous projection is kept.
func (c *Camera) Projection(width, height float64) {
	if width <= 0 || height <= 0 {
		Logger().Debug("easel: ignored camera projection", "width", width, "height", height)
		return
	}
	c.width, c.height = width, height
	c.projection = [6]float64{2 / width, 0, 0, -2 / height, -1, 1}
	c.stale = true
}

// SetPosition moves the viewport's top-left corner to the world point (x, y).
func (c *Camera) SetPosition(x, y float64) {
	c.x, c.y = x, y
	c.stale = true
}

// SetZoom sets the zoom, clamped to the zoom range. The top-left corner stays put.
func (c *Camera) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	c.zoom = clamp(z, c.minZoom, c.maxZoom)
	c.stale = true
}

// SetRotation sets the rotation in radians around the top-left corner.
func (c *Camera) SetRotation(r float64) {
	c.rotation = r
	c.stale = true
}

// Pan moves the camera by (dx, dy) world units.
func (c *Camera) Pan(dx, dy float64) {
	c.x += dx
	c.y += dy
	c.stale = true
}

// PanViewport moves the content by (dx, dy) viewport pixels, as a drag does.
func (c *Camera) PanViewport(dx, dy float64) {
	wx, wy := c.rotateScaled(dx, dy, c.zoom)
	c.Pan(-wx, -wy)
}

// ZoomBy multiplies the zoom by factor, keeping the world point under the
// viewport pixel (px, py) fixed. Non-positive factors are ignored.
func (c *Camera) ZoomBy(factor, px, py float64) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return
	}
	ox, oy := c.rotateScaled(px, py, c.zoom)
	wx, wy := c.x+ox, c.y+oy
	c.zoom = clamp(c.zoom*factor, c.minZoom, c.maxZoom)
	nx, ny := c.rotateScaled(px, py, c.zoom)
	c.x, c.y = wx-nx, wy-ny
	c.stale = true
}

// Rotate adds delta radians, keeping the viewport centre fixed.
func (c *Camera) Rotate(delta float64) {
	cx, cy := c.Center()
	c.rotation += delta
	c.CenterOn(cx, cy)
}

// Center returns the world point at the viewport centre.
func (c *Camera) Center() (x, y float64) {
	ox, oy := c.rotateScaled(c.width/2, c.height/2, c.zoom)
	return c.x + ox, c.y + oy
}

// CenterOn moves the camera so the world point (x, y) is at the viewport centre.
func (c *Camera) CenterOn(x, y float64) {
	ox, oy := c.rotateScaled(c.width/2, c.height/2, c.zoom)
	c.x, c.y = x-ox, y-oy
	c.stale = true
}

// rotateScaled maps a viewport-pixel offset to a world offset at zoom z.
func (c *Camera) rotateScaled(px, py, z float64) (float64, float64) {
	sin, cos := math.Sincos(c.rotation)
	px /= z
	py /= z
	return cos*px - sin*py, sin*px + cos*py
}

// Update recomputes view, viewProjection and its inverse if anything changed
// since the last call. It reports whether a recomputation happened.
func (c *Camera) Update() bool {
	if !c.stale {
		return false
	}
	sin, cos := math.Sincos(c.rotation)
	inv := 1 / c.zoom
	// camera-to-world: T(x, y) x R(rotation) x S(1/zoom)
	world := [6]float64{cos * inv, sin * inv, -sin * inv, cos * inv, c.x, c.y}
	c.view = invertAffine(world)
	c.viewProjection = multiplyAffine(c.projection, c.view)
	c.viewProjectionInv = invertAffine(c.viewProjection)
	c.stale = false
	return true
}

// ProjectionMatrix returns the viewport-pixel to clip-space matrix.
func (c *Camera) ProjectionMatrix() [6]float64 { return c.projection }

// ViewMatrix returns the world to viewport-pixel matrix as of the last Update.
func (c *Camera) ViewMatrix() [6]float64 { return c.view }

// ViewProjection returns the world to clip-space matrix as of the last Update.
func (c *Camera) ViewProjection() [6]float64 { return c.viewProjection }

// ViewProjectionInverse returns the clip-space to world matrix as of the last Update.
func (c *Camera) ViewProjectionInverse() [6]float64 { return c.viewProjectionInv }

// ViewportToClip maps viewport pixels (y down) to clip space (y up).
func (c *Camera) ViewportToClip(px, py float64) (cx, cy float64) {
	return transformPoint(c.projection, px, py)
}

// ClipToViewport is the inverse of ViewportToClip.
func (c *Camera) ClipToViewport(cx, cy float64) (px, py float64) {
	return (cx + 1) / 2 * c.width, (1 - cy) / 2 * c.height
}

// ViewportToWorld unprojects a viewport pixel into world space.
func (c *Camera) ViewportToWorld(px, py float64) (wx, wy float64) {
	c.Update()
	cx, cy := c.ViewportToClip(px, py)
	return transformPoint(c.viewProjectionInv, cx, cy)
}

// WorldToViewport projects a world point to viewport pixels.
func (c *Camera) WorldToViewport(wx, wy float64) (px, py float64) {
	c.Update()
	cx, cy := transformPoint(c.viewProjection, wx, wy)
	return c.ClipToViewport(cx, cy)
}

// VisibleBounds returns the world-space AABB of the viewport.
func (c *Camera) VisibleBounds() Rect {
	x0, y0 := c.ViewportToWorld(0, 0)
	x1, y1 := c.ViewportToWorld(c.width, 0)
	x2, y2 := c.ViewportToWorld(0, c.height)
	x3, y3 := c.ViewportToWorld(c.width, c.height)
	return rectFromPoints([]Vec2{{x0, y0}, {x1, y1}, {x2, y2}, {x3, y3}})
}

// FlyTo animates the camera so the world point (x, y) ends at the viewport
// centre at the given zoom, over duration seconds. Tick advances it. A
// non-positive duration jumps immediately.
func (c *Camera) FlyTo(x, y, zoom float64, duration float32, easeFn ease.TweenFunc) {
	zoom = clamp(zoom, c.minZoom, c.maxZoom)
	if duration <= 0 {
		c.fly = nil
		c.zoom = zoom
		c.CenterOn(x, y)
		return
	}
	if easeFn == nil {
		easeFn = ease.Linear
	}
	cx, cy := c.Center()
	c.fly = &flyAnim{
		tweenX:    gween.New(float32(cx), float32(x), duration, easeFn),
		tweenY:    gween.New(float32(cy), float32(y), duration, easeFn),
		tweenZoom: gween.New(float32(c.zoom), float32(zoom), duration, easeFn),
	}
}

// Flying reports whether a FlyTo animation is running.
func (c *Camera) Flying() bool { return c.fly != nil }

// StopFlying cancels a running FlyTo, leaving the camera where it is.
func (c *Camera) StopFlying() { c.fly = nil }

// Tick advances a running FlyTo by dt seconds. It reports whether the
// camera moved.
func (c *Camera) Tick(dt float32) bool {
	f := c.fly
	if f == nil {
		return false
	}
	cx, cy := c.Center()
	if !f.doneZoom {
		val, done := f.tweenZoom.Update(dt)
		c.zoom = clamp(float64(val), c.minZoom, c.maxZoom)
		f.doneZoom = done
	}
	if !f.doneX {
		val, done := f.tweenX.Update(dt)
		cx = float64(val)
		f.doneX = done
	}
	if !f.doneY {
		val, done := f.tweenY.Update(dt)
		cy = float64(val)
		f.doneY = done
	}
	c.CenterOn(cx, cy)
	if f.doneX && f.doneY && f.doneZoom {
		c.fly = nil
	}
	return true
}
