// Package core implements the Arena: the capacity-bounded, free-list backed
// storage for every vertex and edge in the substrate, plus the open-addressed
// edge index that maps (src,dst) pairs to edge slots in O(1).
//
// The Arena is the sole owner of vertex and edge storage. Every other
// package (sense, propagate, learn, plasticity, homeostat, action) holds
// only VertexID/EdgeSlot indices into an *Arena — never a long-lived pointer
// across a call that might free or reallocate a slot.
//
// Concurrency: the tick driver is the only writer (single-threaded
// cooperative loop, see engine). muSlots/muIndex exist so a snapshotter
// goroutine can take a consistent read-only view without blocking the tick
// driver for more than a short critical section.
package core
