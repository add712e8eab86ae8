package easel

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// capturingDevice adds frame read-back to the recording fake.
type capturingDevice struct {
	*fakeDevice
	err      error
	captures int
}

func (d *capturingDevice) CaptureFrame() (*image.NRGBA, error) {
	d.captures++
	if d.err != nil {
		return nil, d.err
	}
	return unpremultiply([]byte{10, 20, 30, 255}, 1, 1), nil
}

func newCaptureCanvas(t *testing.T) (*Canvas, *capturingDevice, *[]Capture) {
	t.Helper()
	dev := &capturingDevice{fakeDevice: &fakeDevice{}}
	c := NewCanvas(CanvasOptions{Device: dev})
	if err := c.InitAsync(context.Background()); err != nil {
		t.Fatalf("InitAsync: %v", err)
	}
	var got []Capture
	c.OnCapture(func(cp Capture) error {
		got = append(got, cp)
		return nil
	})
	return c, dev, &got
}

func TestScreenshotCapturedAtEndOfFrame(t *testing.T) {
	c, dev, got := newCaptureCanvas(t)
	c.Screenshot("a")
	c.Screenshot("b")
	if len(*got) != 0 {
		t.Fatal("captures should wait for the frame")
	}
	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 2 || (*got)[0].Label != "a" || (*got)[1].Label != "b" {
		t.Fatalf("captures = %+v", *got)
	}
	if (*got)[0].Frame != 1 || (*got)[0].Image.Bounds().Dx() != 1 {
		t.Errorf("capture = %+v", (*got)[0])
	}
	if dev.captures != 1 {
		t.Errorf("device captures = %d, want 1 per frame", dev.captures)
	}
	if len(c.screenshotQueue) != 0 {
		t.Error("queue should be empty after the frame")
	}

	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	if dev.captures != 1 {
		t.Error("frames without queued screenshots should not read back")
	}
}

func TestScreenshotCaptureError(t *testing.T) {
	c, dev, got := newCaptureCanvas(t)
	dev.err = errors.New("read back failed")
	c.Screenshot("x")
	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 0 || len(c.screenshotQueue) != 0 {
		t.Errorf("captures = %d queue = %v", len(*got), c.screenshotQueue)
	}
}

func TestScreenshotWithoutCapturer(t *testing.T) {
	c, _ := newTestCanvas(t, DefaultConfig())
	called := false
	c.OnCapture(func(Capture) error {
		called = true
		return nil
	})
	c.Screenshot("x")
	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	if called || len(c.screenshotQueue) != 0 {
		t.Error("screenshots should be dropped when the device cannot capture")
	}
}

func TestScreenshotDefaultSinkWritesPNG(t *testing.T) {
	c, _, _ := newCaptureCanvas(t)
	c.OnCapture(nil)
	c.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	c.Screenshot("first shot")
	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	matches, err := filepath.Glob(filepath.Join(c.ScreenshotDir, "*_f000001_first_shot.png"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("written files = %v, %v", matches, err)
	}
}

func TestCaptureName(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := captureName(now, Capture{Label: "a/b", Frame: 42})
	if want := "20260304_050607_f000042_a_b.png"; got != want {
		t.Errorf("captureName = %q, want %q", got, want)
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-spawn", "after-spawn"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	c := NewCanvas(CanvasOptions{Headless: true})
	c.Screenshot("a")
	c.Screenshot("b")
	c.Screenshot("c")
	if len(c.screenshotQueue) != 3 {
		t.Fatalf("queue len = %d, want 3", len(c.screenshotQueue))
	}
	if c.screenshotQueue[0] != "a" || c.screenshotQueue[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", c.screenshotQueue)
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 255, // opaque red
		64, 32, 0, 128, // half-transparent
		0, 0, 0, 0, // transparent
	}
	img := unpremultiply(pixels, 3, 1)
	tests := []struct {
		x    int
		want color.NRGBA
	}{
		{0, color.NRGBA{255, 0, 0, 255}},
		{1, color.NRGBA{127, 63, 0, 128}},
		{2, color.NRGBA{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, 0); got != tt.want {
			t.Errorf("pixel %d = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestUnpremultiplyShortBuffer(t *testing.T) {
	img := unpremultiply([]byte{1, 2, 3}, 2, 2)
	if img.Bounds().Dx() != 2 || img.Pix[0] != 0 {
		t.Error("short buffers should leave the image blank")
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	img := unpremultiply([]byte{10, 20, 30, 255}, 1, 1)
	if err := writePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := decoded.At(0, 0).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("decoded = %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestWritePNGBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "shot.png")
	if err := writePNG(path, unpremultiply(nil, 1, 1)); err == nil {
		t.Error("expected error for a missing directory")
	}
}
