package editor

import (
	"sort"

	"mesh-editor/math"
)

// KeyIndex maps every raw vertex index to a bucket of coincident indices.
//
// Attached buckets are found by position key. Detached buckets hold the
// copies an extrusion is dragging away from their source; they keep their
// own identity even while they still sit on top of an attached bucket.
type KeyIndex struct {
	precision float64
	byIndex   []int
	buckets   []*bucket
	byKey     map[PositionKey]int
}

type bucket struct {
	key      PositionKey
	members  map[int]struct{}
	detached bool
}

// NewKeyIndex buckets every position at precision.
func NewKeyIndex(positions []math.Vec3, precision float64) *KeyIndex {
	idx := &KeyIndex{
		precision: precision,
		byIndex:   make([]int, 0, len(positions)),
		byKey:     make(map[PositionKey]int),
	}
	for i, p := range positions {
		idx.Attach(i, p)
	}
	return idx
}

// Len returns the number of indexed raw vertices.
func (idx *KeyIndex) Len() int { return len(idx.byIndex) }

// Precision returns the quantization step.
func (idx *KeyIndex) Precision() float64 { return idx.precision }

// Key returns the key of the bucket holding raw index i.
func (idx *KeyIndex) Key(i int) PositionKey {
	return idx.buckets[idx.byIndex[i]].key
}

// Detached reports whether raw index i sits in a detached bucket.
func (idx *KeyIndex) Detached(i int) bool {
	return idx.buckets[idx.byIndex[i]].detached
}

// Coincident returns the sorted members of i's bucket, i included.
func (idx *KeyIndex) Coincident(i int) []int {
	if i < 0 || i >= len(idx.byIndex) {
		return nil
	}
	return sortedMembers(idx.buckets[idx.byIndex[i]])
}

// Lookup returns the sorted members of the attached bucket for key.
func (idx *KeyIndex) Lookup(key PositionKey) []int {
	id, ok := idx.byKey[key]
	if !ok {
		return nil
	}
	return sortedMembers(idx.buckets[id])
}

// Expand returns every raw index coincident with any of indices, sorted
// and without duplicates.
func (idx *KeyIndex) Expand(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	var out []int
	visited := make(map[int]struct{})
	for _, i := range indices {
		if i < 0 || i >= len(idx.byIndex) {
			continue
		}
		id := idx.byIndex[i]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		for m := range idx.buckets[id].members {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	sort.Ints(out)
	return out
}

// Attach adds raw index i at p to the attached bucket for its key.
func (idx *KeyIndex) Attach(i int, p math.Vec3) {
	idx.grow(i)
	key := KeyOf(p, idx.precision)
	id, ok := idx.byKey[key]
	if !ok {
		id = idx.newBucket(key, false)
		idx.byKey[key] = id
	}
	idx.buckets[id].members[i] = struct{}{}
	idx.byIndex[i] = id
}

// NewDetachedGroup creates an empty detached bucket at p and returns its id.
func (idx *KeyIndex) NewDetachedGroup(p math.Vec3) int {
	return idx.newBucket(KeyOf(p, idx.precision), true)
}

// AttachToGroup adds raw index i to an existing bucket.
func (idx *KeyIndex) AttachToGroup(i, group int) {
	idx.grow(i)
	idx.buckets[group].members[i] = struct{}{}
	idx.byIndex[i] = group
}

// Patch moves raw index i to position p. A detached bucket is re-keyed in
// place; an attached index leaves its old bucket and joins the bucket for
// its new key.
func (idx *KeyIndex) Patch(i int, p math.Vec3) {
	if i < 0 || i >= len(idx.byIndex) {
		return
	}
	key := KeyOf(p, idx.precision)
	id := idx.byIndex[i]
	b := idx.buckets[id]
	if b.key == key {
		return
	}
	if b.detached {
		b.key = key
		return
	}
	delete(b.members, i)
	if len(b.members) == 0 {
		delete(idx.byKey, b.key)
	}
	idx.Attach(i, p)
}

func (idx *KeyIndex) grow(i int) {
	for len(idx.byIndex) <= i {
		idx.byIndex = append(idx.byIndex, -1)
	}
}

func (idx *KeyIndex) newBucket(key PositionKey, detached bool) int {
	idx.buckets = append(idx.buckets, &bucket{
		key:      key,
		members:  make(map[int]struct{}),
		detached: detached,
	})
	return len(idx.buckets) - 1
}

// attachedBuckets returns the member lists of every non-empty attached
// bucket, ordered by minimum raw index.
func (idx *KeyIndex) attachedBuckets() [][]int {
	var out [][]int
	for _, id := range idx.byKey {
		if m := sortedMembers(idx.buckets[id]); len(m) > 0 {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a][0] < out[b][0] })
	return out
}

func sortedMembers(b *bucket) []int {
	out := make([]int, 0, len(b.members))
	for m := range b.members {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}
