package easel

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures Run. Zero fields take their value from the canvas
// Config.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	// PanOnDrag pans the camera when a drag starts on empty canvas.
	PanOnDrag bool
	// WheelZoom zooms around the cursor with the mouse wheel.
	WheelZoom bool
	// Update is called once per tick after input, before drawing.
	Update func(dt float32) error
	// TestRunner, when set, replays a scripted interaction.
	TestRunner *TestRunner
	// ScreenshotDir is where Canvas.Screenshot writes PNG files.
	ScreenshotDir string
	// ShowStats draws FPS and frame statistics in the top-left corner.
	ShowStats bool
}

// ErrQuit is returned from RunConfig.Update to stop Run without an error.
var ErrQuit = errors.New("easel: quit")

// Run opens a window and drives the canvas from ebiten's game loop: input
// and camera animation in Update, the frame hook sequence in Draw. The
// canvas renders through an EbitenDevice, which Run installs when the
// canvas has none. Run destroys the canvas when the loop ends.
func Run(c *Canvas, cfg RunConfig) error {
	if c.renderer == nil {
		return fmt.Errorf("easel: run: %w", ErrNoDevice)
	}
	cc := c.Config()
	if cfg.Title == "" {
		cfg.Title = cc.WindowTitle
	}
	if cfg.Width <= 0 {
		cfg.Width = cc.WindowWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = cc.WindowHeight
	}
	if cfg.ScreenshotDir != "" {
		c.ScreenshotDir = cfg.ScreenshotDir
	}
	r := c.renderer
	if r.newDevice == nil {
		r.newDevice = func(context.Context) (Device, error) { return NewEbitenDevice(), nil }
	}
	if err := c.InitAsync(context.Background()); err != nil {
		return err
	}
	c.SetPanOnDrag(cfg.PanOnDrag)
	c.Resize(cfg.Width, cfg.Height)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	g := &game{canvas: c, cfg: cfg}
	err := ebiten.RunGame(g)
	c.Destroy()
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

// game adapts a Canvas to ebiten.Game.
type game struct {
	canvas *Canvas
	cfg    RunConfig
	err    error
	stats  statsOverlay

	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
}

func (g *game) Update() error {
	if g.err != nil {
		return g.err
	}
	c := g.canvas
	dt := float32(1.0 / float64(ebiten.TPS()))
	c.camera.Tick(dt)

	if g.cfg.TestRunner != nil {
		g.cfg.TestRunner.Step(c)
	}
	mods := readModifiers()
	if !c.ProcessInjected(mods) {
		g.processMouse(mods)
		g.processTouches(mods)
	}
	if g.cfg.Update != nil {
		if err := g.cfg.Update(dt); err != nil {
			return err
		}
	}
	if g.cfg.ShowStats {
		g.stats.update(dt, c)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	c := g.canvas
	if dev, ok := c.renderer.Device().(*EbitenDevice); ok {
		dev.SetTarget(screen)
	}
	if err := c.Frame(); err != nil && g.err == nil {
		g.err = err
	}
	if g.cfg.ShowStats {
		g.stats.draw(screen)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.canvas.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// processMouse handles mouse input (pointer 0) and the wheel.
func (g *game) processMouse(mods KeyModifiers) {
	c := g.canvas
	mx, my := ebiten.CursorPosition()
	vx, vy := float64(mx), float64(my)

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}
	c.HandlePointer(0, vx, vy, pressed, button, mods)

	if g.cfg.WheelZoom {
		if _, wy := ebiten.Wheel(); wy != 0 {
			c.HandleWheel(vx, vy, wy)
		}
	}
}

// processTouches handles touch input (pointers 1-9).
func (g *game) processTouches(mods KeyModifiers) {
	c := g.canvas
	touchIDs := ebiten.AppendTouchIDs(g.prevTouchIDs[:0])
	g.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := g.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		c.HandlePointer(slot, float64(tx), float64(ty), true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if g.touchUsed[i] && !activeSlots[i] {
			ps := &c.pointers[i]
			if ps.down {
				c.HandlePointer(i, ps.lastVX, ps.lastVY, false, MouseButtonLeft, mods)
			}
			g.touchUsed[i] = false
			g.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (g *game) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if g.touchUsed[i] && g.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !g.touchUsed[i] {
			g.touchUsed[i] = true
			g.touchMap[i] = tid
			return i
		}
	}
	return -1
}
