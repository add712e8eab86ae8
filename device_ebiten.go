package easel

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- White pixel singleton (no sync.Once; easel is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used
// as the source of flat-color triangles.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

var (
	errWrongBackend = errors.New("easel: resource from another device")
	errNoTarget     = errors.New("easel: no target image")
)

// EbitenDevice implements Device on top of ebiten. Buffers live in CPU
// memory; a submitted pass replays its draws onto the target image with
// DrawTriangles32, or DrawTrianglesShader32 for programs with Kage source.
type EbitenDevice struct {
	target    *ebiten.Image
	width     int
	height    int
	frameOpen bool
	destroyed bool

	verts []ebiten.Vertex
	inds  []uint32

	drawCalls int // draw calls issued during the current frame
}

// NewEbitenDevice returns a device without a target. SetTarget must be
// called before passes draw anything; until then they are discarded.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{}
}

// SetTarget sets the image passes draw onto, normally the screen given to
// ebiten.Game.Draw.
func (d *EbitenDevice) SetTarget(img *ebiten.Image) {
	d.target = img
	if img != nil {
		b := img.Bounds()
		d.width, d.height = b.Dx(), b.Dy()
	}
}

// Target returns the current target image.
func (d *EbitenDevice) Target() *ebiten.Image { return d.target }

// DrawCalls returns the number of draw calls issued in the current frame.
func (d *EbitenDevice) DrawCalls() int { return d.drawCalls }

// --- Resources ---

type ebitenBuffer struct {
	usage     BufferUsage
	f32       []float32
	u32       []uint32
	destroyed bool
}

func (b *ebitenBuffer) Size() int {
	if b.usage == BufferIndex {
		return len(b.u32)
	}
	return len(b.f32)
}

func (b *ebitenBuffer) WriteFloat32(offset int, data []float32) {
	if b.destroyed || offset < 0 || offset >= len(b.f32) {
		return
	}
	copy(b.f32[offset:], data)
}

func (b *ebitenBuffer) WriteUint32(offset int, data []uint32) {
	if b.destroyed || offset < 0 || offset >= len(b.u32) {
		return
	}
	copy(b.u32[offset:], data)
}

func (b *ebitenBuffer) Destroy() {
	b.destroyed = true
	b.f32 = nil
	b.u32 = nil
}

type ebitenProgram struct {
	shader *ebiten.Shader
}

func (p *ebitenProgram) Destroy() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}

type ebitenLayout struct {
	stride   int
	position int
	color    int
}

func (l *ebitenLayout) Stride() int { return l.stride }
func (l *ebitenLayout) Destroy()    {}

type ebitenPipeline struct {
	program *ebitenProgram
	blend   ebiten.Blend
}

func (p *ebitenPipeline) Destroy() {}

type ebitenBindings struct {
	uniforms *ebitenBuffer
}

func (b *ebitenBindings) Destroy() {}

type ebitenDraw struct {
	pipeline *ebitenPipeline
	bindings *ebitenBindings
	layout   *ebitenLayout
	vertices *ebitenBuffer
	indices  *ebitenBuffer
	count    int
}

type ebitenPass struct {
	desc     RenderPassDescriptor
	pipeline *ebitenPipeline
	bindings *ebitenBindings
	layout   *ebitenLayout
	vertices *ebitenBuffer
	indices  *ebitenBuffer
	draws    []ebitenDraw
}

func (p *ebitenPass) SetPipeline(rp RenderPipeline) {
	p.pipeline, _ = rp.(*ebitenPipeline)
}

func (p *ebitenPass) SetBindings(b Bindings) {
	p.bindings, _ = b.(*ebitenBindings)
}

func (p *ebitenPass) SetVertexInput(layout InputLayout, vertices, indices Buffer) {
	p.layout, _ = layout.(*ebitenLayout)
	p.vertices, _ = vertices.(*ebitenBuffer)
	p.indices, _ = indices.(*ebitenBuffer)
}

func (p *ebitenPass) DrawIndexed(count int) {
	if p.pipeline == nil || p.layout == nil || p.vertices == nil || p.indices == nil || count <= 0 {
		return
	}
	p.draws = append(p.draws, ebitenDraw{
		pipeline: p.pipeline,
		bindings: p.bindings,
		layout:   p.layout,
		vertices: p.vertices,
		indices:  p.indices,
		count:    min(count, len(p.indices.u32)),
	})
}

// --- Device ---

// CreateBuffer implements Device.
func (d *EbitenDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	if desc.Size < 0 {
		return nil, fmt.Errorf("easel: buffer %q: negative size %d", desc.Label, desc.Size)
	}
	b := &ebitenBuffer{usage: desc.Usage}
	if desc.Usage == BufferIndex {
		b.u32 = make([]uint32, desc.Size)
	} else {
		b.f32 = make([]float32, desc.Size)
	}
	return b, nil
}

// CreateProgram implements Device. Empty sources select the built-in
// flat-color path; a Fragment source is compiled as a Kage shader.
func (d *EbitenDevice) CreateProgram(desc ProgramDescriptor) (Program, error) {
	if desc.Fragment == "" {
		return &ebitenProgram{}, nil
	}
	s, err := ebiten.NewShader([]byte(desc.Fragment))
	if err != nil {
		return nil, fmt.Errorf("easel: compile program %q: %w", desc.Label, err)
	}
	return &ebitenProgram{shader: s}, nil
}

// CreateInputLayout implements Device. The layout must provide a 2-float
// position and a 4-float color.
func (d *EbitenDevice) CreateInputLayout(desc InputLayoutDescriptor) (InputLayout, error) {
	l := &ebitenLayout{stride: desc.Stride, position: -1, color: -1}
	for _, a := range desc.Attributes {
		switch {
		case a.Location == attribPosition && a.Format == VertexFloat32x2:
			l.position = a.Offset
		case a.Location == attribColor && a.Format == VertexFloat32x4:
			l.color = a.Offset
		}
	}
	if l.position < 0 || l.color < 0 || desc.Stride < 6 {
		return nil, fmt.Errorf("easel: unsupported input layout (stride %d)", desc.Stride)
	}
	return l, nil
}

// CreateRenderPipeline implements Device.
func (d *EbitenDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	prog, ok := desc.Program.(*ebitenProgram)
	if !ok {
		return nil, errWrongBackend
	}
	return &ebitenPipeline{program: prog, blend: desc.Blend.EbitenBlend()}, nil
}

// CreateBindings implements Device.
func (d *EbitenDevice) CreateBindings(desc BindingsDescriptor) (Bindings, error) {
	u, ok := desc.Uniforms.(*ebitenBuffer)
	if !ok {
		return nil, errWrongBackend
	}
	return &ebitenBindings{uniforms: u}, nil
}

// CreateRenderPass implements Device.
func (d *EbitenDevice) CreateRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	return &ebitenPass{desc: desc}, nil
}

// BeginFrame implements Device.
func (d *EbitenDevice) BeginFrame() error {
	if d.destroyed {
		return ErrDeviceLost
	}
	d.frameOpen = true
	d.drawCalls = 0
	return nil
}

// SubmitPass replays the pass onto the target image.
func (d *EbitenDevice) SubmitPass(rp RenderPass) error {
	p, ok := rp.(*ebitenPass)
	if !ok {
		return errWrongBackend
	}
	if d.target == nil {
		return nil
	}
	if p.desc.Clear {
		d.target.Fill(p.desc.ClearColor.toRGBA())
	}
	for i := range p.draws {
		d.draw(&p.draws[i])
	}
	return nil
}

func (d *EbitenDevice) draw(dc *ebitenDraw) {
	var u Uniforms
	if dc.bindings != nil && dc.bindings.uniforms != nil {
		u = unpackUniforms(dc.bindings.uniforms.f32)
	} else {
		u = Uniforms{ViewProjection: identityTransform}
	}
	w, h := u.ViewportWidth, u.ViewportHeight
	if w <= 0 || h <= 0 {
		w, h = float64(d.width), float64(d.height)
	}
	// clip (y up) to target pixels (y down)
	toPixels := multiplyAffine([6]float64{w / 2, 0, 0, -h / 2, w / 2, h / 2}, u.ViewProjection)

	d.inds = append(d.inds[:0], dc.indices.u32[:dc.count]...)
	var maxIndex uint32
	for _, i := range d.inds {
		maxIndex = max(maxIndex, i)
	}
	l := dc.layout
	n := int(maxIndex) + 1
	if n*l.stride > len(dc.vertices.f32) {
		return
	}
	d.verts = d.verts[:0]
	for v := 0; v < n; v++ {
		base := v * l.stride
		src := dc.vertices.f32[base : base+l.stride]
		px, py := transformPoint(toPixels, float64(src[l.position]), float64(src[l.position+1]))
		d.verts = append(d.verts, ebiten.Vertex{
			DstX: float32(px), DstY: float32(py),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: src[l.color], ColorG: src[l.color+1],
			ColorB: src[l.color+2], ColorA: src[l.color+3],
		})
	}

	if sh := dc.pipeline.program.shader; sh != nil {
		var op ebiten.DrawTrianglesShaderOptions
		op.Blend = dc.pipeline.blend
		op.Uniforms = map[string]any{"ViewportSize": []float32{float32(w), float32(h)}}
		d.target.DrawTrianglesShader32(d.verts, d.inds, sh, &op)
	} else {
		var op ebiten.DrawTrianglesOptions
		op.Blend = dc.pipeline.blend
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		d.target.DrawTriangles32(d.verts, d.inds, ensureWhitePixel(), &op)
	}
	d.drawCalls++
}

// EndFrame implements Device.
func (d *EbitenDevice) EndFrame() error {
	d.frameOpen = false
	return nil
}

// CaptureFrame implements FrameCapturer by reading the target back. It is
// only valid while ebiten runs its game loop.
func (d *EbitenDevice) CaptureFrame() (*image.NRGBA, error) {
	if d.destroyed {
		return nil, ErrDeviceLost
	}
	if d.target == nil {
		return nil, errNoTarget
	}
	b := d.target.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	d.target.ReadPixels(pixels)
	return unpremultiply(pixels, b.Dx(), b.Dy()), nil
}

// Resize implements Device. The target follows the screen passed to
// SetTarget, so only the fallback viewport is updated.
func (d *EbitenDevice) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	d.width, d.height = width, height
	return nil
}

// Destroy implements Device. Later BeginFrame calls report ErrDeviceLost.
func (d *EbitenDevice) Destroy() {
	d.destroyed = true
	d.target = nil
	d.verts = nil
	d.inds = nil
}
