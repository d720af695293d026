// File: snapshot_support.go
// Role: export/restore hooks for package snapshot. Vertex/Edge's liveness
// and free-list linkage are unexported (internal invariants the rest of the
// codebase has no business touching), so the codec that needs to capture
// and replay them exactly lives here, inside core, rather than reaching
// into the struct from outside the package.
package core

// VertexRecord is one vertex slot's full on-disk representation: the
// public Vertex fields plus the two that never leave this package in any
// other accessor.
type VertexRecord struct {
	Vertex
	Live     bool
	NextFree VertexID
}

// EdgeRecord is one edge slot's full on-disk representation.
type EdgeRecord struct {
	Edge
	Live     bool
	NextFree EdgeSlot
}

// ExportVertices returns every vertex slot, live or dead, in slot order.
// The slot order itself is part of the snapshot's bit-exact contract
// (spec.md §6.3), so dead slots are included rather than skipped.
func (a *Arena) ExportVertices() []VertexRecord {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	out := make([]VertexRecord, len(a.vertices))
	for i, v := range a.vertices {
		out[i] = VertexRecord{Vertex: v, Live: v.live, NextFree: v.nextFree}
	}
	return out
}

// ExportEdges returns every edge slot, live or dead, in slot order.
func (a *Arena) ExportEdges() []EdgeRecord {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	out := make([]EdgeRecord, len(a.edges))
	for i, e := range a.edges {
		out[i] = EdgeRecord{Edge: e, Live: e.live, NextFree: e.nextFree}
	}
	return out
}

// VertexFreeHead returns the current head of the vertex free list.
func (a *Arena) VertexFreeHead() VertexID {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	return a.vertexFreeHead
}

// EdgeFreeHead returns the current head of the edge free list.
func (a *Arena) EdgeFreeHead() EdgeSlot {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	return a.edgeFreeHead
}

// RestoreParams groups everything RestoreArena needs to reconstruct an
// Arena byte-for-byte from a decoded snapshot.
type RestoreParams struct {
	WeightMax      float64
	Vertices       []VertexRecord
	Edges          []EdgeRecord
	VertexFreeHead VertexID
	EdgeFreeHead   EdgeSlot
	LiveVertices   uint32
	LiveEdges      uint32
}

// RestoreArena rebuilds an Arena exactly from a prior Export* capture,
// restoring free-list heads and liveness bits verbatim instead of
// relinking by slot order the way NewArena does, and re-populating the
// edge index from whichever edge slots come back marked live.
func RestoreArena(p RestoreParams) *Arena {
	a := &Arena{
		vertices:       make([]Vertex, len(p.Vertices)),
		edges:          make([]Edge, len(p.Edges)),
		vertexCap:      uint32(len(p.Vertices)),
		edgeCap:        uint32(len(p.Edges)),
		wMax:           p.WeightMax,
		index:          newEdgeIndex(uint32(len(p.Edges))),
		vertexFreeHead: p.VertexFreeHead,
		edgeFreeHead:   p.EdgeFreeHead,
		liveVertices:   p.LiveVertices,
		liveEdges:      p.LiveEdges,
	}

	for i, vr := range p.Vertices {
		v := vr.Vertex
		v.live = vr.Live
		v.nextFree = vr.NextFree
		a.vertices[i] = v
	}

	for i, er := range p.Edges {
		e := er.Edge
		e.live = er.Live
		e.nextFree = er.NextFree
		a.edges[i] = e
		if e.live {
			a.index.Insert(e.Src, e.Dst, EdgeSlot(i))
		}
	}

	return a
}
