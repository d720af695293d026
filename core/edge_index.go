package core

import "math/bits"

// edgeIndex is an open-addressed hash table mapping the ordered pair
// (src,dst) to an EdgeSlot, sized to the next power of two above twice the
// edge capacity (at least 16 entries). The starting position is a Fibonacci
// hash of the key (golden-ratio multiplicative constant), which spreads
// clustered keys (sequential vertex ids) across the table; collisions are
// then resolved by linear probing, one entry at a time.
type edgeIndex struct {
	entries []indexEntry
	shift   uint // 64 - log2(len(entries)); fibHash(key) >> shift indexes entries
	count   int
}

type entryState uint8

const (
	stateEmpty entryState = iota
	stateOccupied
	stateTombstone
)

type indexEntry struct {
	key   uint64
	slot  EdgeSlot
	state entryState
}

// fibConst is 2^64 / phi, the standard Fibonacci-hashing multiplier.
const fibConst = 0x9E3779B97F4A7C15

// packKey combines src and dst into the 64-bit lookup key spec.md §4.1
// specifies: (src<<32)|dst.
func packKey(src, dst VertexID) uint64 {
	return uint64(src)<<32 | uint64(dst)
}

func fibHash(key uint64, shift uint) uint64 {
	return (key * fibConst) >> shift
}

// newEdgeIndex allocates a table sized for capacityHint entries at a load
// factor of ~0.5, per spec.md §4.1 ("next power of two above edge capacity").
func newEdgeIndex(capacityHint uint32) *edgeIndex {
	want := uint64(capacityHint)*2 + 1
	if want < 16 {
		want = 16
	}
	size := uint64(1) << bits.Len64(want-1)
	return &edgeIndex{
		entries: make([]indexEntry, size),
		shift:   64 - uint(bits.Len64(size-1)),
	}
}

// probe returns the slot index of the entry for key, and whether it was
// found. Tombstones are skipped over (not returned as found) but remembered
// as the preferred insertion point.
func (idx *edgeIndex) probe(key uint64) (pos int, found bool, firstTombstone int) {
	n := len(idx.entries)
	start := int(fibHash(key, idx.shift))
	firstTombstone = -1
	step := uint64(1)
	for i := 0; i < n; i++ {
		pos = (start + int(step*uint64(i))) % n
		e := &idx.entries[pos]
		switch e.state {
		case stateEmpty:
			return pos, false, firstTombstone
		case stateTombstone:
			if firstTombstone < 0 {
				firstTombstone = pos
			}
		case stateOccupied:
			if e.key == key {
				return pos, true, firstTombstone
			}
		}
	}
	// Table full of tombstones/occupied entries with no match: caller must
	// have sized the table so this never happens in practice (load factor
	// ~0.5); return the first tombstone as a last resort insertion point.
	return firstTombstone, false, firstTombstone
}

// Lookup returns the edge slot for (src,dst), if present.
func (idx *edgeIndex) Lookup(src, dst VertexID) (EdgeSlot, bool) {
	pos, found, _ := idx.probe(packKey(src, dst))
	if !found {
		return InvalidEdgeSlot, false
	}
	return idx.entries[pos].slot, true
}

// Insert registers (src,dst) -> slot. The caller must have checked via
// Lookup that the pair does not already exist.
func (idx *edgeIndex) Insert(src, dst VertexID, slot EdgeSlot) {
	key := packKey(src, dst)
	pos, found, tomb := idx.probe(key)
	if found {
		idx.entries[pos].slot = slot
		return
	}
	if tomb >= 0 {
		pos = tomb
	}
	idx.entries[pos] = indexEntry{key: key, slot: slot, state: stateOccupied}
	idx.count++
}

// Delete removes the (src,dst) entry, leaving a tombstone so later probes
// for colliding keys still terminate correctly.
func (idx *edgeIndex) Delete(src, dst VertexID) {
	pos, found, _ := idx.probe(packKey(src, dst))
	if !found {
		return
	}
	idx.entries[pos] = indexEntry{state: stateTombstone}
	idx.count--
}

// rebuildEdgeIndex reconstructs the index from scratch with a fresh table
// sized for capacityHint, re-inserting every (src,dst,slot) triple live
// provides. Nothing in this module calls it: RestoreArena fills a fresh
// index by inserting each live edge directly.
func rebuildEdgeIndex(capacityHint uint32, live func(yield func(src, dst VertexID, slot EdgeSlot))) *edgeIndex {
	idx := newEdgeIndex(capacityHint)
	live(func(src, dst VertexID, slot EdgeSlot) {
		idx.Insert(src, dst, slot)
	})
	return idx
}
