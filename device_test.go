package easel

import (
	"context"
	"errors"
	"testing"
)

// --- Recording fake device ---

type fakeBuffer struct {
	usage     BufferUsage
	f32       []float32
	u32       []uint32
	destroyed bool
}

func (b *fakeBuffer) Size() int {
	if b.usage == BufferIndex {
		return len(b.u32)
	}
	return len(b.f32)
}

func (b *fakeBuffer) WriteFloat32(offset int, data []float32) { copy(b.f32[offset:], data) }
func (b *fakeBuffer) WriteUint32(offset int, data []uint32)   { copy(b.u32[offset:], data) }
func (b *fakeBuffer) Destroy()                                { b.destroyed = true }

type fakeResource struct {
	kind      string
	blend     BlendMode
	destroyed bool
}

func (r *fakeResource) Destroy()    { r.destroyed = true }
func (r *fakeResource) Stride() int { return vertexStride }

type fakeDraw struct {
	pipeline *fakeResource
	vertices *fakeBuffer
	count    int
}

type fakePass struct {
	desc     RenderPassDescriptor
	pipeline *fakeResource
	vertices *fakeBuffer
	draws    []fakeDraw
	submits  int
}

func (p *fakePass) SetPipeline(rp RenderPipeline) { p.pipeline = rp.(*fakeResource) }
func (p *fakePass) SetBindings(Bindings)          {}
func (p *fakePass) SetVertexInput(_ InputLayout, v, _ Buffer) {
	p.vertices = v.(*fakeBuffer)
}
func (p *fakePass) DrawIndexed(n int) {
	p.draws = append(p.draws, fakeDraw{pipeline: p.pipeline, vertices: p.vertices, count: n})
}

type fakeDevice struct {
	buffers   []*fakeBuffer
	resources []*fakeResource
	passes    []*fakePass
	resizes   [][2]int

	frames     int
	endFrames  int
	destroyed  bool
	beginErr   error // returned once by the next BeginFrame
	programErr error
}

func (d *fakeDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	b := &fakeBuffer{usage: desc.Usage}
	if desc.Usage == BufferIndex {
		b.u32 = make([]uint32, desc.Size)
	} else {
		b.f32 = make([]float32, desc.Size)
	}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) resource(kind string, blend BlendMode) *fakeResource {
	r := &fakeResource{kind: kind, blend: blend}
	d.resources = append(d.resources, r)
	return r
}

func (d *fakeDevice) CreateProgram(ProgramDescriptor) (Program, error) {
	if d.programErr != nil {
		return nil, d.programErr
	}
	return d.resource("program", 0), nil
}

func (d *fakeDevice) CreateInputLayout(InputLayoutDescriptor) (InputLayout, error) {
	return d.resource("layout", 0), nil
}

func (d *fakeDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	return d.resource("pipeline", desc.Blend), nil
}

func (d *fakeDevice) CreateBindings(BindingsDescriptor) (Bindings, error) {
	return d.resource("bindings", 0), nil
}

func (d *fakeDevice) CreateRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	p := &fakePass{desc: desc}
	d.passes = append(d.passes, p)
	return p, nil
}

func (d *fakeDevice) BeginFrame() error {
	if d.beginErr != nil {
		err := d.beginErr
		d.beginErr = nil
		return err
	}
	d.frames++
	return nil
}

func (d *fakeDevice) SubmitPass(rp RenderPass) error {
	rp.(*fakePass).submits++
	return nil
}

func (d *fakeDevice) EndFrame() error {
	d.endFrames++
	return nil
}

func (d *fakeDevice) Resize(w, h int) error {
	d.resizes = append(d.resizes, [2]int{w, h})
	return nil
}

func (d *fakeDevice) Destroy() { d.destroyed = true }

func (d *fakeDevice) lastPass() *fakePass {
	if len(d.passes) == 0 {
		return nil
	}
	return d.passes[len(d.passes)-1]
}

func (d *fakeDevice) pipelines() []*fakeResource {
	var out []*fakeResource
	for _, r := range d.resources {
		if r.kind == "pipeline" {
			out = append(out, r)
		}
	}
	return out
}

// newTestCanvas returns a canvas rendering through a fresh fake device.
func newTestCanvas(t *testing.T, cfg Config) (*Canvas, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	c := NewCanvas(CanvasOptions{Config: cfg, Device: dev})
	if err := c.InitAsync(context.Background()); err != nil {
		t.Fatalf("InitAsync: %v", err)
	}
	return c, dev
}

// --- Uniform packing ---

func TestUniformsPackRoundTrip(t *testing.T) {
	u := Uniforms{
		ViewProjection: [6]float64{0.5, 0.25, -0.25, 0.5, -1, 1},
		ViewportWidth:  800,
		ViewportHeight: 600,
	}
	var buf [uniformWords]float32
	u.pack(buf[:])
	if buf[10] != 1 {
		t.Errorf("homogeneous term = %v, want 1", buf[10])
	}
	got := unpackUniforms(buf[:])
	assertMatrix(t, "vp", got.ViewProjection, u.ViewProjection)
	assertNear(t, "width", got.ViewportWidth, 800)
	assertNear(t, "height", got.ViewportHeight, 600)
}

func TestUnpackUniformsShort(t *testing.T) {
	got := unpackUniforms(make([]float32, 3))
	assertMatrix(t, "vp", got.ViewProjection, identityTransform)
}

func TestFakeDeviceSatisfiesDevice(t *testing.T) {
	var _ Device = (*fakeDevice)(nil)
	dev := &fakeDevice{beginErr: ErrDeviceLost}
	if err := dev.BeginFrame(); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("BeginFrame = %v, want ErrDeviceLost", err)
	}
	if err := dev.BeginFrame(); err != nil {
		t.Errorf("second BeginFrame = %v", err)
	}
}
