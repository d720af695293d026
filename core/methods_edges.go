// File: methods_edges.go
// Role: Edge lifecycle — allocation, lookup, freeing, iteration. Degree
// bookkeeping on the endpoint vertices happens here so InDegree/OutDegree
// always equal the true count of live incident edges (spec.md §3 invariant).
package core

import "sync/atomic"

// AllocateEdge reserves an edge src->dst. If the pair already exists, its
// existing slot is returned with a nil error (idempotent, matching the
// teacher's AddVertex no-op-on-existing idiom). Returns ErrSelfLoop if
// src==dst, ErrInvalidVertex if either endpoint is not live, or
// ErrCapacityExhausted if no free edge slot remains.
func (a *Arena) AllocateEdge(src, dst VertexID) (EdgeSlot, error) {
	if src == dst {
		return InvalidEdgeSlot, ErrSelfLoop
	}

	a.muSlots.Lock()
	defer a.muSlots.Unlock()

	sv, err := a.liveVertexLocked(src)
	if err != nil {
		return InvalidEdgeSlot, err
	}
	dv, err := a.liveVertexLocked(dst)
	if err != nil {
		return InvalidEdgeSlot, err
	}

	a.muIndex.Lock()
	if slot, ok := a.index.Lookup(src, dst); ok {
		a.muIndex.Unlock()
		return slot, nil
	}
	a.muIndex.Unlock()

	if a.edgeFreeHead == InvalidEdgeSlot {
		atomic.AddUint64(&a.capacityExhaustedCount, 1)
		return InvalidEdgeSlot, ErrCapacityExhausted
	}

	slot := a.edgeFreeHead
	e := &a.edges[slot]
	a.edgeFreeHead = e.nextFree

	*e = Edge{
		Src:  src,
		Dst:  dst,
		live: true,
	}

	a.muIndex.Lock()
	a.index.Insert(src, dst, slot)
	a.muIndex.Unlock()

	sv.OutDegree++
	dv.InDegree++
	a.liveEdges++
	return slot, nil
}

// FreeEdge releases an edge back to the free list, decrementing both
// endpoints' degrees and removing the (src,dst) entry from the edge index.
// Returns ErrInvalidEdge if slot does not name a live edge.
func (a *Arena) FreeEdge(slot EdgeSlot) error {
	a.muSlots.Lock()
	defer a.muSlots.Unlock()

	e, err := a.liveEdgeLocked(slot)
	if err != nil {
		return err
	}

	if sv := &a.vertices[e.Src]; sv.live && sv.OutDegree > 0 {
		sv.OutDegree--
	}
	if dv := &a.vertices[e.Dst]; dv.live && dv.InDegree > 0 {
		dv.InDegree--
	}

	a.muIndex.Lock()
	a.index.Delete(e.Src, e.Dst)
	a.muIndex.Unlock()

	e.live = false
	e.nextFree = a.edgeFreeHead
	a.edgeFreeHead = slot
	a.liveEdges--
	return nil
}

// Edge returns a pointer to the live edge record for slot, with the same
// bounded-lifetime contract as Vertex.
func (a *Arena) Edge(slot EdgeSlot) (*Edge, error) {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	return a.liveEdgeLocked(slot)
}

func (a *Arena) liveEdgeLocked(slot EdgeSlot) (*Edge, error) {
	if slot >= EdgeSlot(len(a.edges)) {
		return nil, ErrInvalidEdge
	}
	e := &a.edges[slot]
	if !e.live {
		return nil, ErrInvalidEdge
	}
	return e, nil
}

// FindEdge looks up the edge slot for src->dst without allocating.
func (a *Arena) FindEdge(src, dst VertexID) (EdgeSlot, bool) {
	a.muIndex.RLock()
	defer a.muIndex.RUnlock()
	return a.index.Lookup(src, dst)
}

// EachLiveEdge calls fn for every live edge in slot order. fn must not call
// AllocateVertex/FreeVertex/AllocateEdge/FreeEdge.
func (a *Arena) EachLiveEdge(fn func(EdgeSlot, *Edge)) {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	for i := range a.edges {
		if a.edges[i].live {
			fn(EdgeSlot(i), &a.edges[i])
		}
	}
}

// EffectiveWeight returns gamma*w_slow + (1-gamma)*w_fast, the blend the
// propagator uses (spec.md §3's w_eff invariant).
func EffectiveWeight(e *Edge, gamma float64) float64 {
	return gamma*e.WSlow + (1-gamma)*e.WFast
}
