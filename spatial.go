package easel

import "github.com/tidwall/rtree"

// SpatialIndex is a broad-phase R-tree over shape bounds, keyed by shape id.
// Queries may over-report; callers run an exact test on every candidate.
type SpatialIndex struct {
	tree    rtree.RTreeG[uint32]
	entries map[uint32]Rect
}

// NewSpatialIndex returns an empty index.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{entries: make(map[uint32]Rect)}
}

// Insert adds id with the given bounds. Inserting an id that is already
// present behaves like Update.
func (ix *SpatialIndex) Insert(id uint32, bbox Rect) {
	if _, ok := ix.entries[id]; ok {
		ix.Update(id, bbox)
		return
	}
	ix.tree.Insert(bbox.Min(), bbox.Max(), id)
	ix.entries[id] = bbox
}

// Update moves id to new bounds. Unknown ids are inserted.
func (ix *SpatialIndex) Update(id uint32, bbox Rect) {
	old, ok := ix.entries[id]
	if !ok {
		ix.Insert(id, bbox)
		return
	}
	if old == bbox {
		return
	}
	ix.tree.Replace(old.Min(), old.Max(), id, bbox.Min(), bbox.Max(), id)
	ix.entries[id] = bbox
}

// Remove drops id. Unknown ids are ignored.
func (ix *SpatialIndex) Remove(id uint32) {
	old, ok := ix.entries[id]
	if !ok {
		return
	}
	ix.tree.Delete(old.Min(), old.Max(), id)
	delete(ix.entries, id)
}

// Query appends to dst the ids whose bounds overlap bbox (edges touching
// count) and returns the extended slice.
func (ix *SpatialIndex) Query(bbox Rect, dst []uint32) []uint32 {
	ix.tree.Search(bbox.Min(), bbox.Max(), func(_, _ [2]float64, id uint32) bool {
		dst = append(dst, id)
		return true
	})
	return dst
}

// Bounds returns the stored bounds of id.
func (ix *SpatialIndex) Bounds(id uint32) (Rect, bool) {
	r, ok := ix.entries[id]
	return r, ok
}

// Len returns the number of entries.
func (ix *SpatialIndex) Len() int {
	return len(ix.entries)
}

// Clear removes every entry.
func (ix *SpatialIndex) Clear() {
	ix.tree.Clear()
	clear(ix.entries)
}
