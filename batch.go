package easel

import (
	"fmt"
	"slices"
)

// shapeProgram is the flat-color program every pipeline shares. Empty
// sources select the backend's built-in program.
var shapeProgram = ProgramDescriptor{Label: "easel-shape"}

// privateDrawcalls is the cached fill/stroke pair of a non-batchable shape.
type privateDrawcalls struct {
	fill   *Drawcall
	stroke *Drawcall
}

type pipelineState struct {
	pipeline RenderPipeline
	bindings Bindings
}

// BatchStats reports batching work.
type BatchStats struct {
	Drawcalls int // all drawcalls, empty pools included
	Populated int // drawcalls with at least one member
	Queued    int // drawcalls submitted for the current frame
	Rebuilt   int // drawcalls re-tessellated by the last Flush
	Drawn     int // DrawIndexed calls issued by the last Flush
}

// BatchManager maps shapes to drawcalls and submits the working set of a
// frame. Batchable shapes share pooled drawcalls keyed by kind and blend
// mode; non-batchable shapes own a private pair created once and reused.
// Shapes are referenced by id and resolved through the lookup function.
type BatchManager struct {
	dev          Device
	maxInstances int
	lookup       func(uint32) *Shape
	tessellators [numShapeKinds]Tessellator

	pools      map[batchKey][]*Drawcall
	poolOrder  []batchKey
	owner      map[uint32]*Drawcall
	private    map[uint32]*privateDrawcalls
	fragmented map[batchKey]bool

	queue []*Drawcall
	frame uint64

	program     Program
	layout      InputLayout
	uniforms    Buffer
	uniformData [uniformWords]float32
	pipelines   map[BlendMode]*pipelineState

	rebuilt, drawn int
}

// NewBatchManager creates a manager drawing through dev. dev may be nil
// until SetDevice is called; Flush fails with ErrNoDevice meanwhile.
// maxInstances values below 1 are raised to 1.
func NewBatchManager(dev Device, maxInstances int, lookup func(uint32) *Shape) *BatchManager {
	if lookup == nil {
		panic("easel: nil shape lookup")
	}
	return &BatchManager{
		dev:          dev,
		maxInstances: max(maxInstances, 1),
		lookup:       lookup,
		tessellators: defaultTessellators(),
		pools:        make(map[batchKey][]*Drawcall),
		owner:        make(map[uint32]*Drawcall),
		private:      make(map[uint32]*privateDrawcalls),
		fragmented:   make(map[batchKey]bool),
		pipelines:    make(map[BlendMode]*pipelineState),
		frame:        1,
	}
}

// MaxInstances returns the per-drawcall capacity.
func (bm *BatchManager) MaxInstances() int { return bm.maxInstances }

// Register installs the tessellator for kind, replacing any previous one.
func (bm *BatchManager) Register(kind ShapeKind, t Tessellator) {
	if kind >= numShapeKinds {
		panic(fmt.Sprintf("easel: unknown shape kind %d", kind))
	}
	bm.tessellators[kind] = t
	bm.markKindDirty(kind)
}

// Unregister removes the tessellator for kind and drops every drawcall of
// that kind. Shapes of the kind stop rendering until re-added.
func (bm *BatchManager) Unregister(kind ShapeKind) {
	if kind >= numShapeKinds {
		return
	}
	bm.tessellators[kind] = nil
	for id, d := range bm.owner {
		if d.key.kind == kind {
			delete(bm.owner, id)
		}
	}
	for _, key := range bm.poolOrder {
		if key.kind != kind {
			continue
		}
		for _, d := range bm.pools[key] {
			d.releaseGPU()
		}
		delete(bm.pools, key)
		delete(bm.fragmented, key)
	}
	bm.poolOrder = slices.DeleteFunc(bm.poolOrder, func(k batchKey) bool { return k.kind == kind })
	for id, p := range bm.private {
		if p.fill.key.kind == kind {
			bm.dropPrivate(id, p)
		}
	}
	bm.queue = slices.DeleteFunc(bm.queue, func(d *Drawcall) bool { return d.key.kind == kind })
}

// Registered reports whether kind has a tessellator.
func (bm *BatchManager) Registered(kind ShapeKind) bool {
	return kind < numShapeKinds && bm.tessellators[kind] != nil
}

// Add registers s with a drawcall. It returns false, and logs a warning,
// when no tessellator is registered for the shape's kind. Adding a shape
// that is already registered is a no-op.
func (bm *BatchManager) Add(s *Shape) bool {
	if !bm.Registered(s.kind) {
		Logger().Warn("easel: no drawcall for shape kind", "kind", s.kind.String(), "shape", s.ID)
		return false
	}
	if bm.Contains(s.ID) {
		return true
	}
	key := batchKey{kind: s.kind, blend: s.blend}
	if !s.batchable {
		p := &privateDrawcalls{
			fill:   newDrawcall(key, PartFill, 1),
			stroke: newDrawcall(key, PartStroke, 1),
		}
		p.fill.add(s.ID)
		p.stroke.add(s.ID)
		bm.private[s.ID] = p
		return true
	}
	pool, ok := bm.pools[key]
	if !ok {
		bm.poolOrder = append(bm.poolOrder, key)
	}
	for _, d := range pool {
		if d.Validate() {
			d.add(s.ID)
			bm.owner[s.ID] = d
			return true
		}
	}
	d := newDrawcall(key, PartAll, bm.maxInstances)
	d.add(s.ID)
	bm.pools[key] = append(pool, d)
	bm.owner[s.ID] = d
	return true
}

// Remove detaches the shape id from its drawcall. Pooled drawcalls stay
// allocated for reuse; a private pair is destroyed.
func (bm *BatchManager) Remove(id uint32) {
	if d, ok := bm.owner[id]; ok {
		d.remove(id)
		delete(bm.owner, id)
		bm.fragmented[d.key] = true
		return
	}
	if p, ok := bm.private[id]; ok {
		bm.dropPrivate(id, p)
	}
}

func (bm *BatchManager) dropPrivate(id uint32, p *privateDrawcalls) {
	p.fill.members = nil
	p.stroke.members = nil
	p.fill.releaseGPU()
	p.stroke.releaseGPU()
	delete(bm.private, id)
}

// Contains reports whether the shape id is registered.
func (bm *BatchManager) Contains(id uint32) bool {
	if _, ok := bm.owner[id]; ok {
		return true
	}
	_, ok := bm.private[id]
	return ok
}

// Invalidate marks the drawcalls holding id for rebuild at the next flush.
func (bm *BatchManager) Invalidate(id uint32) {
	if d, ok := bm.owner[id]; ok {
		d.dirty = true
		return
	}
	if p, ok := bm.private[id]; ok {
		p.fill.dirty = true
		p.stroke.dirty = true
	}
}

// Reorder marks every populated pooled drawcall dirty after the global
// paint order changed.
func (bm *BatchManager) Reorder() {
	for _, key := range bm.poolOrder {
		for _, d := range bm.pools[key] {
			if d.Count() > 1 {
				d.dirty = true
			}
		}
	}
}

func (bm *BatchManager) markKindDirty(kind ShapeKind) {
	for _, key := range bm.poolOrder {
		if key.kind == kind {
			for _, d := range bm.pools[key] {
				d.dirty = true
			}
		}
	}
	for _, p := range bm.private {
		if p.fill.key.kind == kind {
			p.fill.dirty = true
			p.stroke.dirty = true
		}
	}
}

// Sync starts a new frame: the queue is emptied and pools that lost members
// are compacted.
func (bm *BatchManager) Sync() {
	bm.frame++
	clear(bm.queue)
	bm.queue = bm.queue[:0]
	for key := range bm.fragmented {
		bm.compact(key)
		delete(bm.fragmented, key)
	}
}

// compact moves members from the tail of a pool into free capacity at its
// head, so a key with n members populates ceil(n/maxInstances) drawcalls.
func (bm *BatchManager) compact(key batchKey) {
	pool := bm.pools[key]
	i, j := 0, len(pool)-1
	for i < j {
		switch {
		case !pool[i].Validate():
			i++
		case pool[j].Count() == 0:
			j--
		default:
			src := pool[j]
			id := src.members[len(src.members)-1]
			src.remove(id)
			pool[i].add(id)
			bm.owner[id] = pool[i]
		}
	}
}

// Submit queues the drawcalls of s for the current frame in order of first
// appearance. It reports whether s is registered.
func (bm *BatchManager) Submit(s *Shape) bool {
	if d, ok := bm.owner[s.ID]; ok {
		bm.enqueue(d)
		return true
	}
	if p, ok := bm.private[s.ID]; ok {
		bm.enqueue(p.fill)
		bm.enqueue(p.stroke)
		return true
	}
	return false
}

func (bm *BatchManager) enqueue(d *Drawcall) {
	if d.queuedFrame == bm.frame {
		return
	}
	d.queuedFrame = bm.frame
	bm.queue = append(bm.queue, d)
}

// Queued returns the drawcalls submitted for the current frame.
func (bm *BatchManager) Queued() []*Drawcall { return bm.queue }

// Flush rebuilds the dirty queued drawcalls and records them into pass.
func (bm *BatchManager) Flush(pass RenderPass, u Uniforms) error {
	bm.rebuilt, bm.drawn = 0, 0
	if bm.dev == nil {
		return ErrNoDevice
	}
	if len(bm.queue) == 0 {
		return nil
	}
	if err := bm.Prepare(); err != nil {
		return err
	}
	u.pack(bm.uniformData[:])
	bm.uniforms.WriteFloat32(0, bm.uniformData[:])

	var bound RenderPipeline
	for _, d := range bm.queue {
		if d.Count() == 0 {
			continue
		}
		if d.dirty {
			tess := bm.tessellators[d.key.kind]
			if tess == nil {
				continue
			}
			d.rebuild(bm.lookup, tess)
			if err := d.upload(bm.dev); err != nil {
				return err
			}
			bm.rebuilt++
		}
		if d.indexCount == 0 {
			continue
		}
		ps, err := bm.pipeline(d.key.blend)
		if err != nil {
			return err
		}
		if ps.pipeline != bound {
			pass.SetPipeline(ps.pipeline)
			pass.SetBindings(ps.bindings)
			bound = ps.pipeline
		}
		pass.SetVertexInput(bm.layout, d.vertices, d.indices)
		pass.DrawIndexed(d.indexCount)
		bm.drawn++
	}
	return nil
}

// Prepare creates the shared program, input layout and uniform buffer, and
// the pipeline for normal blending. Flush calls it lazily; calling it up
// front surfaces compilation failures early.
func (bm *BatchManager) Prepare() error {
	if bm.dev == nil {
		return ErrNoDevice
	}
	if bm.program == nil {
		p, err := bm.dev.CreateProgram(shapeProgram)
		if err != nil {
			return fmt.Errorf("easel: create program: %w", err)
		}
		bm.program = p
	}
	if bm.layout == nil {
		l, err := bm.dev.CreateInputLayout(InputLayoutDescriptor{
			Program:    bm.program,
			Stride:     vertexStride,
			Attributes: shapeVertexAttributes,
		})
		if err != nil {
			return fmt.Errorf("easel: create input layout: %w", err)
		}
		bm.layout = l
	}
	if bm.uniforms == nil {
		b, err := bm.dev.CreateBuffer(BufferDescriptor{Label: "easel-uniforms", Usage: BufferUniform, Size: uniformWords})
		if err != nil {
			return fmt.Errorf("easel: create uniform buffer: %w", err)
		}
		bm.uniforms = b
	}
	_, err := bm.pipeline(BlendNormal)
	return err
}

func (bm *BatchManager) pipeline(blend BlendMode) (*pipelineState, error) {
	if ps, ok := bm.pipelines[blend]; ok {
		return ps, nil
	}
	p, err := bm.dev.CreateRenderPipeline(RenderPipelineDescriptor{
		Label:       "easel-shape",
		Program:     bm.program,
		InputLayout: bm.layout,
		Blend:       blend,
	})
	if err != nil {
		return nil, fmt.Errorf("easel: create pipeline: %w", err)
	}
	b, err := bm.dev.CreateBindings(BindingsDescriptor{Pipeline: p, Uniforms: bm.uniforms})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("easel: create bindings: %w", err)
	}
	ps := &pipelineState{pipeline: p, bindings: b}
	bm.pipelines[blend] = ps
	return ps, nil
}

// SetDevice releases every GPU resource made on the previous device and
// switches to dev. Every drawcall is rebuilt at its next flush.
func (bm *BatchManager) SetDevice(dev Device) {
	bm.releaseGPU()
	bm.dev = dev
}

func (bm *BatchManager) releaseGPU() {
	for _, d := range bm.Drawcalls() {
		d.releaseGPU()
	}
	for blend, ps := range bm.pipelines {
		ps.bindings.Destroy()
		ps.pipeline.Destroy()
		delete(bm.pipelines, blend)
	}
	if bm.uniforms != nil {
		bm.uniforms.Destroy()
		bm.uniforms = nil
	}
	if bm.layout != nil {
		bm.layout.Destroy()
		bm.layout = nil
	}
	if bm.program != nil {
		bm.program.Destroy()
		bm.program = nil
	}
}

// Destroy releases all GPU resources and forgets every shape.
func (bm *BatchManager) Destroy() {
	bm.releaseGPU()
	clear(bm.pools)
	clear(bm.owner)
	clear(bm.private)
	clear(bm.fragmented)
	bm.poolOrder = nil
	bm.queue = nil
	bm.dev = nil
}

// Pool returns the pooled drawcalls for a kind and blend mode.
func (bm *BatchManager) Pool(kind ShapeKind, blend BlendMode) []*Drawcall {
	return bm.pools[batchKey{kind: kind, blend: blend}]
}

// Drawcalls returns every drawcall: pools in creation order, then private
// pairs by shape id.
func (bm *BatchManager) Drawcalls() []*Drawcall {
	var out []*Drawcall
	for _, key := range bm.poolOrder {
		out = append(out, bm.pools[key]...)
	}
	ids := make([]uint32, 0, len(bm.private))
	for id := range bm.private {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := bm.private[id]
		out = append(out, p.fill, p.stroke)
	}
	return out
}

// PopulatedDrawcalls returns the number of drawcalls with members.
func (bm *BatchManager) PopulatedDrawcalls() int {
	n := 0
	for _, d := range bm.Drawcalls() {
		if d.Count() > 0 {
			n++
		}
	}
	return n
}

// Stats returns the current counters.
func (bm *BatchManager) Stats() BatchStats {
	all := bm.Drawcalls()
	populated := 0
	for _, d := range all {
		if d.Count() > 0 {
			populated++
		}
	}
	return BatchStats{
		Drawcalls: len(all),
		Populated: populated,
		Queued:    len(bm.queue),
		Rebuilt:   bm.rebuilt,
		Drawn:     bm.drawn,
	}
}
