// File: api.go
// Role: Arena construction, capacity options, and read-only accessors.
// Concurrency: NewArena and option application happen before any goroutine
// shares the Arena; no locking needed during construction.
package core

import "sync"

// ArenaOption configures an Arena at construction time.
type ArenaOption func(*arenaConfig)

type arenaConfig struct {
	vertexCap uint32
	edgeCap   uint32
	wMax      float64
}

func defaultArenaConfig() arenaConfig {
	return arenaConfig{
		vertexCap: 8192,
		edgeCap:   65536,
		wMax:      255.0,
	}
}

// WithVertexCapacity sets the maximum number of simultaneously live
// vertices (spec.md §6.1's --nodes).
func WithVertexCapacity(n uint32) ArenaOption {
	return func(c *arenaConfig) { c.vertexCap = n }
}

// WithEdgeCapacity sets the maximum number of simultaneously live edges
// (spec.md §6.1's --edges).
func WithEdgeCapacity(n uint32) ArenaOption {
	return func(c *arenaConfig) { c.edgeCap = n }
}

// WithWeightMax sets W_MAX, the upper clamp for both w_fast and w_slow.
func WithWeightMax(w float64) ArenaOption {
	return func(c *arenaConfig) { c.wMax = w }
}

// Arena is the fixed-capacity vertex/edge store described in spec.md §4.1.
// Every field mutation during normal operation happens from the tick
// driver's single goroutine; muSlots/muIndex exist only so a snapshotter
// goroutine can read a consistent view without stalling the tick driver for
// more than a short critical section (spec.md §5).
type Arena struct {
	muSlots sync.RWMutex
	muIndex sync.RWMutex

	vertices       []Vertex
	edges          []Edge
	vertexFreeHead VertexID
	edgeFreeHead   EdgeSlot
	liveVertices   uint32
	liveEdges      uint32

	vertexCap uint32
	edgeCap   uint32
	wMax      float64

	index *edgeIndex

	capacityExhaustedCount uint64
	invalidVertexCount     uint64
}

// NewArena allocates a new Arena with the given options applied in order.
// All vertex and edge slots are preallocated and linked into free lists;
// Arena never grows its backing slices at runtime (capacity changes require
// a fresh Arena, typically across a restart with different CLI flags).
func NewArena(opts ...ArenaOption) *Arena {
	cfg := defaultArenaConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Arena{
		vertices:  make([]Vertex, cfg.vertexCap),
		edges:     make([]Edge, cfg.edgeCap),
		vertexCap: cfg.vertexCap,
		edgeCap:   cfg.edgeCap,
		wMax:      cfg.wMax,
		index:     newEdgeIndex(cfg.edgeCap),
	}
	a.relinkFreeLists()
	return a
}

// relinkFreeLists threads every slot into its free list in slot order,
// giving deterministic allocation order (lowest free slot first) which the
// determinism property in spec.md §5 depends on.
func (a *Arena) relinkFreeLists() {
	a.vertexFreeHead = InvalidVertexID
	for i := len(a.vertices) - 1; i >= 0; i-- {
		a.vertices[i].nextFree = a.vertexFreeHead
		a.vertexFreeHead = VertexID(i)
	}
	a.edgeFreeHead = InvalidEdgeSlot
	for i := len(a.edges) - 1; i >= 0; i-- {
		a.edges[i].nextFree = a.edgeFreeHead
		a.edgeFreeHead = EdgeSlot(i)
	}
}

// VertexCap returns the configured maximum live vertex count.
func (a *Arena) VertexCap() uint32 { return a.vertexCap }

// EdgeCap returns the configured maximum live edge count.
func (a *Arena) EdgeCap() uint32 { return a.edgeCap }

// WeightMax returns W_MAX, the clamp applied to w_fast and w_slow.
func (a *Arena) WeightMax() float64 { return a.wMax }

// LiveVertexCount returns the current number of live vertices.
func (a *Arena) LiveVertexCount() uint32 {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	return a.liveVertices
}

// LiveEdgeCount returns the current number of live edges.
func (a *Arena) LiveEdgeCount() uint32 {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	return a.liveEdges
}

// Stats is an O(1) snapshot of arena occupancy, used by the homeostat's
// capacity_usage measurement (spec.md §4.7) and exported as gauges by
// package telemetry.
type Stats struct {
	VertexCap        uint32
	EdgeCap          uint32
	LiveVertices     uint32
	LiveEdges        uint32
	CapacityExhausted uint64
	InvalidVertexOps  uint64
}

// Stats returns a point-in-time snapshot of arena occupancy and error
// counters.
func (a *Arena) Stats() Stats {
	a.muSlots.RLock()
	defer a.muSlots.RUnlock()
	return Stats{
		VertexCap:         a.vertexCap,
		EdgeCap:           a.edgeCap,
		LiveVertices:      a.liveVertices,
		LiveEdges:         a.liveEdges,
		CapacityExhausted: a.capacityExhaustedCount,
		InvalidVertexOps:  a.invalidVertexCount,
	}
}
