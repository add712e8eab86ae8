// shapes10k spawns 10,000 shapes that rotate, scale, fade, and bounce around
// the screen simultaneously. A stress test for the easel batching pipeline.
package main

import (
	"log"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/easel"
)

const (
	screenW = 1280
	screenH = 720
	count   = 10_000
	size    = 24.0
)

type mover struct {
	shape      *easel.Shape
	x, y       float64
	dx, dy     float64
	rot        float64
	rotSpeed   float64
	scaleSpeed float64
	scaleBase  float64
	scaleAmp   float64
	alphaSpeed float64
	phase      float64
}

func main() {
	c := easel.NewCanvas(easel.CanvasOptions{Config: easel.Config{
		Background:   "#0f0f17",
		MaxInstances: 2000,
		Culling:      true,
	}})
	ids := c.IDs()
	root := c.Root()

	movers := make([]mover, count)
	for i := range movers {
		var s *easel.Shape
		switch i % 3 {
		case 0:
			s = easel.NewCircle(ids, "dot", 0, 0, size/2)
		case 1:
			s = easel.NewRect(ids, "box", -size/2, -size/2, size, size)
			s.SetCornerRadius(4)
		default:
			s = easel.NewEllipse(ids, "oval", 0, 0, size/2, size/4)
		}
		s.SetFill(easel.Color{
			R: 0.5 + rand.Float64()*0.5,
			G: 0.5 + rand.Float64()*0.5,
			B: 0.5 + rand.Float64()*0.5,
			A: 1,
		})
		if i%10 == 0 {
			s.SetBlendMode(easel.BlendAdd)
		}
		root.AddChild(s)

		base := 0.6 + rand.Float64()*0.8
		movers[i] = mover{
			shape:      s,
			x:          rand.Float64() * screenW,
			y:          rand.Float64() * screenH,
			dx:         (rand.Float64() - 0.5) * 4,
			dy:         (rand.Float64() - 0.5) * 4,
			rotSpeed:   (rand.Float64() - 0.5) * 0.08,
			scaleSpeed: 1 + rand.Float64()*2,
			scaleBase:  base,
			scaleAmp:   0.1 + rand.Float64()*0.2,
			alphaSpeed: 0.5 + rand.Float64()*2,
			phase:      rand.Float64() * math.Pi * 2,
		}
	}

	var frame float64
	update := func(dt float32) error {
		frame++
		t := frame / 60.0

		if frame == 30 {
			c.ScreenshotDir = "docs/demos/shapes10k"
			c.Screenshot("thumbnail")
		}
		if ebiten.IsKeyPressed(ebiten.KeyEscape) {
			return ebiten.Termination
		}

		for i := range movers {
			m := &movers[i]
			m.x += m.dx
			m.y += m.dy

			half := m.scaleBase * size / 2
			if m.x < half {
				m.x = half
				m.dx = -m.dx
			} else if m.x > screenW-half {
				m.x = screenW - half
				m.dx = -m.dx
			}
			if m.y < half {
				m.y = half
				m.dy = -m.dy
			} else if m.y > screenH-half {
				m.y = screenH - half
				m.dy = -m.dy
			}
			m.rot += m.rotSpeed

			sc := m.scaleBase + m.scaleAmp*math.Sin(t*m.scaleSpeed+m.phase)
			s := m.shape
			s.SetPosition(m.x, m.y)
			s.SetRotation(m.rot)
			s.SetScale(sc, sc)
			s.SetOpacity(0.5 + 0.5*math.Sin(t*m.alphaSpeed+m.phase))
		}
		return nil
	}

	if err := easel.Run(c, easel.RunConfig{
		Title:     "Easel - 10k Shapes",
		Width:     screenW,
		Height:    screenH,
		Update:    update,
		WheelZoom: true,
		PanOnDrag: true,
		ShowStats: true,
	}); err != nil {
		log.Fatal(err)
	}
}
