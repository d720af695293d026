package core

import "errors"

// Sentinel errors for Arena operations. Callers branch on these with
// errors.Is; messages are never stringified into comparisons.
var (
	// ErrCapacityExhausted indicates the arena has no free vertex or edge
	// slot. Recoverable: callers skip the operation (see packages plasticity
	// and sense) and the arena counts the miss in Stats().CapacityExhausted.
	// No caller forces a pruning pass or retries the allocation.
	ErrCapacityExhausted = errors.New("core: capacity exhausted")

	// ErrInvalidVertex indicates an operation referenced a dead or
	// out-of-range vertex id. The operation is dropped by the caller.
	ErrInvalidVertex = errors.New("core: invalid vertex")

	// ErrInvalidEdge indicates an operation referenced a dead or
	// out-of-range edge slot.
	ErrInvalidEdge = errors.New("core: invalid edge")

	// ErrSelfLoop indicates an AllocateEdge call with src == dst, which the
	// arena rejects unconditionally (the spec's named-recurrent-node
	// whitelist is not part of the canonical core).
	ErrSelfLoop = errors.New("core: self-loop not allowed")

	// ErrVertexNotIsolated indicates FreeVertex was called on a vertex that
	// still has live incident edges.
	ErrVertexNotIsolated = errors.New("core: vertex has live edges")
)
