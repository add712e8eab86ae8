package easel

import (
	"context"
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestEbitenDeviceInputLayout(t *testing.T) {
	d := NewEbitenDevice()
	l, err := d.CreateInputLayout(InputLayoutDescriptor{Stride: vertexStride, Attributes: shapeVertexAttributes})
	if err != nil {
		t.Fatal(err)
	}
	if l.Stride() != vertexStride {
		t.Errorf("Stride = %d", l.Stride())
	}

	bad := []InputLayoutDescriptor{
		{Stride: vertexStride},
		{Stride: 4, Attributes: shapeVertexAttributes},
		{Stride: vertexStride, Attributes: []VertexAttribute{{Location: attribPosition, Format: VertexFloat32x4}}},
	}
	for i, desc := range bad {
		if _, err := d.CreateInputLayout(desc); err == nil {
			t.Errorf("layout %d should be rejected", i)
		}
	}
}

func TestEbitenDeviceBuffers(t *testing.T) {
	d := NewEbitenDevice()
	vb, err := d.CreateBuffer(BufferDescriptor{Usage: BufferVertex, Size: 12})
	if err != nil {
		t.Fatal(err)
	}
	ib, _ := d.CreateBuffer(BufferDescriptor{Usage: BufferIndex, Size: 3})
	if vb.Size() != 12 || ib.Size() != 3 {
		t.Errorf("sizes = %d, %d", vb.Size(), ib.Size())
	}
	vb.WriteFloat32(10, []float32{1, 2, 3, 4}) // clipped
	vb.WriteFloat32(-1, []float32{1})          // ignored
	ib.WriteUint32(0, []uint32{0, 1, 2})
	if got := vb.(*ebitenBuffer).f32[11]; got != 2 {
		t.Errorf("f32[11] = %v, want 2", got)
	}
	vb.Destroy()
	vb.WriteFloat32(0, []float32{1})
	if vb.Size() != 0 {
		t.Error("destroyed buffer should be empty")
	}

	if _, err := d.CreateBuffer(BufferDescriptor{Size: -1}); err == nil {
		t.Error("negative size should fail")
	}
}

func TestEbitenDeviceWrongBackend(t *testing.T) {
	d := NewEbitenDevice()
	fake := &fakeDevice{}
	prog, _ := fake.CreateProgram(ProgramDescriptor{})
	if _, err := d.CreateRenderPipeline(RenderPipelineDescriptor{Program: prog}); !errors.Is(err, errWrongBackend) {
		t.Errorf("pipeline err = %v", err)
	}
	buf, _ := fake.CreateBuffer(BufferDescriptor{Usage: BufferUniform, Size: uniformWords})
	if _, err := d.CreateBindings(BindingsDescriptor{Uniforms: buf}); !errors.Is(err, errWrongBackend) {
		t.Errorf("bindings err = %v", err)
	}
	if err := d.SubmitPass(&fakePass{}); !errors.Is(err, errWrongBackend) {
		t.Errorf("submit err = %v", err)
	}
}

func TestEbitenDeviceLostAfterDestroy(t *testing.T) {
	d := NewEbitenDevice()
	if err := d.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	d.Destroy()
	if err := d.BeginFrame(); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("BeginFrame after Destroy = %v, want ErrDeviceLost", err)
	}
}

func TestEbitenDeviceCaptureWithoutTarget(t *testing.T) {
	d := NewEbitenDevice()
	if _, err := d.CaptureFrame(); !errors.Is(err, errNoTarget) {
		t.Errorf("CaptureFrame without target = %v, want errNoTarget", err)
	}
	d.Destroy()
	if _, err := d.CaptureFrame(); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("CaptureFrame after Destroy = %v, want ErrDeviceLost", err)
	}
	var _ FrameCapturer = d
}

func TestEbitenDeviceResize(t *testing.T) {
	d := NewEbitenDevice()
	_ = d.Resize(320, 240)
	_ = d.Resize(0, 10)
	if d.width != 320 || d.height != 240 {
		t.Errorf("size = %dx%d", d.width, d.height)
	}
	img := ebiten.NewImage(64, 32)
	d.SetTarget(img)
	if d.Target() != img || d.width != 64 || d.height != 32 {
		t.Error("SetTarget should adopt the image size")
	}
}

func TestEbitenDeviceWithoutTargetDiscards(t *testing.T) {
	dev := NewEbitenDevice()
	c := NewCanvas(CanvasOptions{Device: dev})
	if err := c.InitAsync(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := NewCircle(c.IDs(), "s", 10, 10, 5)
	s.SetFill(red)
	c.Root().AddChild(s)
	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	if dev.DrawCalls() != 0 {
		t.Errorf("DrawCalls = %d without a target", dev.DrawCalls())
	}
}

func TestEbitenDeviceDrawsCanvas(t *testing.T) {
	dev := NewEbitenDevice()
	dev.SetTarget(ebiten.NewImage(200, 100))

	cfg := DefaultConfig()
	cfg.WindowWidth, cfg.WindowHeight = 200, 100
	c := NewCanvas(CanvasOptions{Config: cfg, Device: dev})
	if err := c.InitAsync(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		s := NewRect(c.IDs(), "r", float64(i*40), 10, 30, 30)
		s.SetFill(red)
		c.Root().AddChild(s)
	}
	p := NewPath(c.IDs(), "tri", new(Path).MoveTo(150, 10).LineTo(190, 10).LineTo(170, 60).Close())
	p.SetFill(Color{G: 1, A: 1})
	p.SetBlendMode(BlendAdd)
	c.Root().AddChild(p)

	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	// One pooled drawcall for the rects and a private fill for the path;
	// the path stroke is unpainted and draws nothing.
	if got := dev.DrawCalls(); got != 2 {
		t.Errorf("DrawCalls = %d, want 2", got)
	}

	if err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	if got := dev.DrawCalls(); got != 2 {
		t.Errorf("DrawCalls on the second frame = %d, want 2", got)
	}
}

func TestBlendModeEbitenBlend(t *testing.T) {
	tests := []struct {
		mode BlendMode
		want ebiten.Blend
	}{
		{BlendNormal, ebiten.BlendSourceOver},
		{BlendAdd, ebiten.BlendLighter},
		{BlendErase, ebiten.BlendDestinationOut},
	}
	for _, tt := range tests {
		if got := tt.mode.EbitenBlend(); got != tt.want {
			t.Errorf("%v.EbitenBlend() = %+v, want %+v", tt.mode, got, tt.want)
		}
	}
}
