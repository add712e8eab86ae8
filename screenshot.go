package easel

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FrameCapturer is implemented by devices that can read back the frame they
// just drew. Screenshots require it.
type FrameCapturer interface {
	CaptureFrame() (*image.NRGBA, error)
}

// Capture is one screenshot, taken after the EndFrame hooks of Frame.
type Capture struct {
	Label string
	Frame uint64
	Image *image.NRGBA
}

var errNoCapture = errors.New("easel: device cannot capture frames")

// Screenshot queues a labeled capture of the next completed frame. Captures
// go to the OnCapture sink, or to PNG files under ScreenshotDir by default.
func (c *Canvas) Screenshot(label string) {
	c.screenshotQueue = append(c.screenshotQueue, label)
}

// OnCapture replaces the capture sink. Nil restores the PNG writer.
func (c *Canvas) OnCapture(fn func(Capture) error) {
	c.captureSink = fn
}

// captureFrame hands the frame to the sink once per queued label. Errors are
// logged; the queue is emptied either way.
func (c *Canvas) captureFrame() {
	if len(c.screenshotQueue) == 0 {
		return
	}
	defer func() { c.screenshotQueue = c.screenshotQueue[:0] }()

	var dev Device
	if c.renderer != nil {
		dev = c.renderer.Device()
	}
	fc, ok := dev.(FrameCapturer)
	if !ok {
		Logger().Warn("easel: screenshot", "error", errNoCapture, "dropped", len(c.screenshotQueue))
		return
	}
	img, err := fc.CaptureFrame()
	if err != nil {
		Logger().Warn("easel: screenshot", "frame", c.stats.Frame, "error", err)
		return
	}
	sink := c.captureSink
	if sink == nil {
		sink = c.savePNG
	}
	for _, label := range c.screenshotQueue {
		if err := sink(Capture{Label: label, Frame: c.stats.Frame, Image: img}); err != nil {
			Logger().Warn("easel: screenshot", "label", label, "error", err)
		}
	}
}

// savePNG is the default capture sink.
func (c *Canvas) savePNG(cp Capture) error {
	dir := c.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, captureName(time.Now(), cp))
	if err := writePNG(path, cp.Image); err != nil {
		return err
	}
	Logger().Info("easel: screenshot written", "path", path)
	return nil
}

// captureName is "<date>_<time>_f<frame>_<label>.png".
func captureName(now time.Time, cp Capture) string {
	return fmt.Sprintf("%s_f%06d_%s.png", now.Format("20060102_150405"), cp.Frame, sanitizeLabel(cp.Label))
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := min(len(pixels), len(img.Pix)) &^ 3
	for i := 0; i < n; i += 4 {
		px := img.Pix[i : i+4 : i+4]
		copy(px, pixels[i:i+4])
		if a := int(px[3]); a > 0 && a < 255 {
			for j := range 3 {
				px[j] = uint8(min(int(px[j])*255/a, 255))
			}
		}
	}
	return img
}

// writePNG encodes img to a new file at path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps [A-Za-z0-9.-] and maps everything else to '_'.
// Blank labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
