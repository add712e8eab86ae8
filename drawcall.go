package easel

import (
	"fmt"
	"slices"
)

// batchKey groups batchable shapes that can share one drawcall.
type batchKey struct {
	kind  ShapeKind
	blend BlendMode
}

// Drawcall is one GPU submission covering one or more shapes. It owns its
// vertex and index buffers and a non-owning list of member shape ids.
type Drawcall struct {
	key          batchKey
	parts        MeshParts
	members      []uint32
	maxInstances int
	dirty        bool

	mesh        Mesh
	vertices    Buffer
	indices     Buffer
	indexCount  int
	bounds      Rect
	queuedFrame uint64
}

func newDrawcall(key batchKey, parts MeshParts, maxInstances int) *Drawcall {
	return &Drawcall{key: key, parts: parts, maxInstances: maxInstances, dirty: true}
}

// Kind returns the shape kind the drawcall renders.
func (d *Drawcall) Kind() ShapeKind { return d.key.kind }

// Blend returns the drawcall's blend mode.
func (d *Drawcall) Blend() BlendMode { return d.key.blend }

// Count returns the number of member shapes.
func (d *Drawcall) Count() int { return len(d.members) }

// Capacity returns the maximum number of member shapes.
func (d *Drawcall) Capacity() int { return d.maxInstances }

// Validate reports whether the drawcall can take another shape.
func (d *Drawcall) Validate() bool { return len(d.members) < d.maxInstances }

// Dirty reports whether the buffers will be rebuilt at the next flush.
func (d *Drawcall) Dirty() bool { return d.dirty }

// Members returns the member shape ids. The returned slice MUST NOT be mutated.
func (d *Drawcall) Members() []uint32 { return d.members }

// IndexCount returns the number of indices uploaded at the last rebuild.
func (d *Drawcall) IndexCount() int { return d.indexCount }

// Bounds returns the world bounds of the members at the last rebuild.
func (d *Drawcall) Bounds() Rect { return d.bounds }

func (d *Drawcall) add(id uint32) {
	d.members = append(d.members, id)
	d.dirty = true
}

func (d *Drawcall) remove(id uint32) bool {
	i := slices.Index(d.members, id)
	if i < 0 {
		return false
	}
	d.members = slices.Delete(d.members, i, i+1)
	d.dirty = true
	return true
}

// rebuild re-tessellates every visible member, in paint order, into the CPU mesh.
func (d *Drawcall) rebuild(lookup func(uint32) *Shape, tess Tessellator) {
	d.mesh.Reset()
	d.bounds = Rect{}
	slices.SortStableFunc(d.members, func(a, b uint32) int {
		return paintOrderOf(lookup, a) - paintOrderOf(lookup, b)
	})
	first := true
	for _, id := range d.members {
		s := lookup(id)
		if s == nil {
			continue
		}
		m := s.WorldMatrix()
		if !s.t.worldVisible {
			continue
		}
		tess(s, &d.mesh, TessellateOptions{
			Matrix:   m,
			Alpha:    s.t.worldAlpha,
			Segments: s.curveSegments(),
			Parts:    d.parts,
		})
		b := transformRect(m, s.RenderBounds())
		if first {
			d.bounds, first = b, false
		} else {
			d.bounds = d.bounds.Union(b)
		}
	}
	d.dirty = false
}

func paintOrderOf(lookup func(uint32) *Shape, id uint32) int {
	if s := lookup(id); s != nil {
		return s.paintOrder
	}
	return 0
}

// upload grows the GPU buffers if needed and writes the mesh.
func (d *Drawcall) upload(dev Device) error {
	nv, ni := len(d.mesh.Vertices), len(d.mesh.Indices)
	if d.vertices == nil || d.vertices.Size() < nv {
		if d.vertices != nil {
			d.vertices.Destroy()
			d.vertices = nil
		}
		buf, err := dev.CreateBuffer(BufferDescriptor{
			Label: "shape-vertices",
			Usage: BufferVertex,
			Size:  nextMultipleOf(max(nv, 1), 1024),
		})
		if err != nil {
			return fmt.Errorf("easel: create vertex buffer: %w", err)
		}
		d.vertices = buf
	}
	if d.indices == nil || d.indices.Size() < ni {
		if d.indices != nil {
			d.indices.Destroy()
			d.indices = nil
		}
		buf, err := dev.CreateBuffer(BufferDescriptor{
			Label: "shape-indices",
			Usage: BufferIndex,
			Size:  nextMultipleOf(max(ni, 1), 1024),
		})
		if err != nil {
			return fmt.Errorf("easel: create index buffer: %w", err)
		}
		d.indices = buf
	}
	if nv > 0 {
		d.vertices.WriteFloat32(0, d.mesh.Vertices)
	}
	if ni > 0 {
		d.indices.WriteUint32(0, d.mesh.Indices)
	}
	d.indexCount = ni
	return nil
}

// releaseGPU destroys the buffers and marks the drawcall for a full rebuild.
func (d *Drawcall) releaseGPU() {
	if d.vertices != nil {
		d.vertices.Destroy()
		d.vertices = nil
	}
	if d.indices != nil {
		d.indices.Destroy()
		d.indices = nil
	}
	d.indexCount = 0
	d.dirty = true
}
