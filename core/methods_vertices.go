// File: methods_vertices.go
// Role: Vertex lifecycle — allocation, lookup, freeing, iteration.
package core

import "sync/atomic"

// AllocateVertex reserves a fresh vertex slot, zero-initialized except for
// LastActiveTick, and returns its id. Returns ErrCapacityExhausted if no
// free slot exists, and in that case also bumps the capacityExhaustedCount
// counter that callers can observe via Stats().
func (a *Arena) AllocateVertex(tick uint64) (VertexID, error) {
	a.muSlots.Lock()
	defer a.muSlots.Unlock()

	if a.vertexFreeHead == InvalidVertexID {
		atomic.AddUint64(&a.capacityExhaustedCount, 1)
		return InvalidVertexID, ErrCapacityExhausted
	}

	id := a.vertexFreeHead
	slot := &a.vertices[id]
	a.vertexFreeHead = slot.nextFree

	*slot = Vertex{
		ID:             id,
		live:           true,
		LastActiveTick: tick,
	}
	a.liveVertices++
	return id, nil
}

// FreeVertex releases a vertex back to the free list. It fails with
// ErrVertexNotIsolated unless both degrees are zero, and with
// ErrInvalidVertex if id does not name a live vertex.
func (a *Arena) FreeVertex(id VertexID) error {
	a.muSlots.Lock()
	defer a.muSlots.Unlock()

	v, err := a.liveVertexLocked(id)
	if err != nil {
		return err
	}
	if v.InDegree != 0 || v.OutDegree != 0 {
		return ErrVertexNotIsolated
	}

	v.live = false
	v.nextFree = a.vertexFreeHead
	a.vertexFreeHead = id
	a.liveVertices--
	return nil
}

// Vertex returns a pointer to the live vertex record for id. The pointer is
// valid until the next AllocateVertex/FreeVertex call on this Arena (no
// reallocation occurs, but content is only meaningful for a live vertex);
// callers must not retain it across such calls, matching spec.md §4.1's
// "bounded-lifetime accessor" contract.
func (a *Arena) Vertex(id VertexID) (*Vertex, error) {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	return a.liveVertexLocked(id)
}

// liveVertexLocked is the shared bounds+liveness check; callers must hold
// muSlots (read or write).
func (a *Arena) liveVertexLocked(id VertexID) (*Vertex, error) {
	if id >= VertexID(len(a.vertices)) {
		atomic.AddUint64(&a.invalidVertexCount, 1)
		return nil, ErrInvalidVertex
	}
	v := &a.vertices[id]
	if !v.live {
		atomic.AddUint64(&a.invalidVertexCount, 1)
		return nil, ErrInvalidVertex
	}
	return v, nil
}

// EachLiveVertex calls fn for every live vertex in slot order (spec.md
// §4.1's "stable order equal to slot order"). fn must not call
// AllocateVertex/FreeVertex/AllocateEdge/FreeEdge.
func (a *Arena) EachLiveVertex(fn func(*Vertex)) {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	for i := range a.vertices {
		if a.vertices[i].live {
			fn(&a.vertices[i])
		}
	}
}
