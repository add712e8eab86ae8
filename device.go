package easel

import "errors"

// Device errors.
var (
	// ErrDeviceLost is wrapped by Device.BeginFrame when the GPU context is
	// gone. The renderer drops its resources and recreates the device.
	ErrDeviceLost = errors.New("easel: device lost")
	// ErrNoDevice is returned when a canvas has neither a device nor a way to create one.
	ErrNoDevice = errors.New("easel: no device")
	// ErrDestroyed is returned by operations on a destroyed canvas.
	ErrDestroyed = errors.New("easel: canvas destroyed")
)

// BufferUsage describes how a buffer is bound.
type BufferUsage uint8

const (
	BufferVertex  BufferUsage = 1 << iota // per-vertex attributes
	BufferIndex                           // uint32 triangle indices
	BufferUniform                         // per-pass constants
)

// BufferDescriptor describes a buffer. Size is in 4-byte words.
type BufferDescriptor struct {
	Label string
	Usage BufferUsage
	Size  int
}

// Buffer is GPU memory written from the CPU. Offsets and sizes are in words.
type Buffer interface {
	Size() int
	WriteFloat32(offset int, data []float32)
	WriteUint32(offset int, data []uint32)
	Destroy()
}

// ProgramDescriptor carries shader sources. Backends may treat empty sources
// as "use the built-in flat-color program".
type ProgramDescriptor struct {
	Label    string
	Vertex   string
	Fragment string
}

// Program is a compiled shader program.
type Program interface {
	Destroy()
}

// VertexFormat is the type of one vertex attribute.
type VertexFormat uint8

const (
	VertexFloat32x2 VertexFormat = iota
	VertexFloat32x4
)

// VertexAttribute places one attribute inside a vertex. Offset is in words.
type VertexAttribute struct {
	Location int
	Format   VertexFormat
	Offset   int
}

// InputLayoutDescriptor describes the vertex layout a program consumes.
// Stride is in words.
type InputLayoutDescriptor struct {
	Program    Program
	Stride     int
	Attributes []VertexAttribute
}

// InputLayout is a validated vertex layout.
type InputLayout interface {
	Stride() int
	Destroy()
}

// RenderPipelineDescriptor combines a program, a layout and fixed-function state.
type RenderPipelineDescriptor struct {
	Label       string
	Program     Program
	InputLayout InputLayout
	Blend       BlendMode
}

// RenderPipeline is immutable draw state.
type RenderPipeline interface {
	Destroy()
}

// BindingsDescriptor binds uniform buffers to a pipeline.
type BindingsDescriptor struct {
	Pipeline RenderPipeline
	Uniforms Buffer
}

// Bindings are the resources bound for a draw.
type Bindings interface {
	Destroy()
}

// RenderPassDescriptor configures the attachment of a pass.
type RenderPassDescriptor struct {
	Clear      bool
	ClearColor Color
}

// RenderPass records draws. It is submitted with Device.SubmitPass.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindings(b Bindings)
	SetVertexInput(layout InputLayout, vertices, indices Buffer)
	DrawIndexed(indexCount int)
}

// Device is the GPU capability surface the renderer drives. The renderer
// decides what to submit and when; the device owns the backend.
type Device interface {
	CreateBuffer(desc BufferDescriptor) (Buffer, error)
	CreateProgram(desc ProgramDescriptor) (Program, error)
	CreateInputLayout(desc InputLayoutDescriptor) (InputLayout, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)
	CreateBindings(desc BindingsDescriptor) (Bindings, error)
	CreateRenderPass(desc RenderPassDescriptor) (RenderPass, error)

	BeginFrame() error
	SubmitPass(pass RenderPass) error
	EndFrame() error

	// Resize recreates the swapchain. Callers never pass non-positive sizes.
	Resize(width, height int) error
	Destroy()
}

// Uniforms are the per-frame constants of the shape program.
type Uniforms struct {
	// ViewProjection maps world coordinates to clip space.
	ViewProjection [6]float64
	ViewportWidth  float64
	ViewportHeight float64
}

// uniformWords is the uniform block size: a column-major mat3 padded to
// three vec4 columns, then the viewport size padded to a vec4.
const uniformWords = 16

// pack writes u in the std140-style layout the shape program reads.
func (u Uniforms) pack(dst []float32) {
	m := u.ViewProjection
	copy(dst, []float32{
		float32(m[0]), float32(m[1]), 0, 0,
		float32(m[2]), float32(m[3]), 0, 0,
		float32(m[4]), float32(m[5]), 1, 0,
		float32(u.ViewportWidth), float32(u.ViewportHeight), 0, 0,
	})
}

// unpackUniforms is the inverse of Uniforms.pack.
func unpackUniforms(src []float32) Uniforms {
	if len(src) < uniformWords {
		return Uniforms{ViewProjection: identityTransform}
	}
	return Uniforms{
		ViewProjection: [6]float64{
			float64(src[0]), float64(src[1]),
			float64(src[4]), float64(src[5]),
			float64(src[8]), float64(src[9]),
		},
		ViewportWidth:  float64(src[12]),
		ViewportHeight: float64(src[13]),
	}
}

// Shape vertex layout: position (x, y) then premultiplied color (r, g, b, a).
const (
	vertexStride    = 6
	attribPosition  = 0
	attribColor     = 1
	colorWordOffset = 2
)

var shapeVertexAttributes = []VertexAttribute{
	{Location: attribPosition, Format: VertexFloat32x2, Offset: 0},
	{Location: attribColor, Format: VertexFloat32x4, Offset: colorWordOffset},
}
