package easel

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsOverlay draws frame statistics in the top-left corner of the screen.
// The text is refreshed every ~0.5 seconds into a private image.
type statsOverlay struct {
	img     *ebiten.Image
	elapsed float32
	text    string
}

// 200x96 is enough for the six lines of statsText.
const overlayW, overlayH = 200, 96

func (o *statsOverlay) update(dt float32, c *Canvas) {
	o.elapsed += dt
	if o.text != "" && o.elapsed < 0.5 {
		return
	}
	o.elapsed = 0
	o.text = statsText(ebiten.ActualFPS(), ebiten.ActualTPS(), c.Stats())
	if o.img == nil {
		o.img = ebiten.NewImage(overlayW, overlayH)
	}
	o.img.Clear()
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
}

func (o *statsOverlay) draw(screen *ebiten.Image) {
	if o.img == nil {
		return
	}
	screen.DrawImage(o.img, nil)
}

// statsText formats the overlay contents.
func statsText(fps, tps float64, st FrameStats) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nshapes: %d\nrendered: %d culled: %d\ndrawcalls: %d/%d\nrebuilt: %d drawn: %d",
		fps, tps, st.Shapes, st.Rendered, st.Culled,
		st.Batch.Populated, st.Batch.Drawcalls, st.Batch.Rebuilt, st.Batch.Drawn)
}
