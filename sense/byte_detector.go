package sense

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/katalvlaran/meridian/core"
)

// ByteDetector is the built-in DetectorSet: one sensory vertex per distinct
// byte value (activation 1.0 on every occurrence) and one sensory vertex
// per distinct two-byte bigram (activation 0.6, letting the single-byte and
// bigram signals coexist via the max rule). Bigram patterns are hashed with
// xxhash.Sum64 into a stable 64-bit key so the lookup table never has to
// store the two raw bytes as a map key type of its own.
type ByteDetector struct {
	arena *core.Arena

	mu       sync.Mutex
	byByte   [256]core.VertexID // InvalidVertexID until first sighting
	byBigram map[uint64]core.VertexID
}

// NewByteDetector returns a ByteDetector bound to a. Vertex creation is
// lazy: no vertices are allocated until a byte or bigram is actually seen.
func NewByteDetector(a *core.Arena) *ByteDetector {
	d := &ByteDetector{arena: a, byBigram: make(map[uint64]core.VertexID)}
	for i := range d.byByte {
		d.byByte[i] = core.InvalidVertexID
	}
	return d
}

const bigramActivation = 0.6

// Detect implements DetectorSet.
func (d *ByteDetector) Detect(frame []byte, tick uint64) (map[core.VertexID]float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acts := make(map[core.VertexID]float64, len(frame))
	for i, b := range frame {
		id, err := d.resolveByte(b, tick)
		if err == nil {
			merge(acts, id, 1.0)
		}
		// CapacityExhausted on a single pattern is not fatal (spec.md §7):
		// this tick simply contributes no activation for that pattern.

		if i > 0 {
			key := xxhash.Sum64(frame[i-1 : i+1])
			id, err := d.resolveBigram(key, tick)
			if err == nil {
				merge(acts, id, bigramActivation)
			}
		}
	}
	return acts, nil
}

func (d *ByteDetector) resolveByte(b byte, tick uint64) (core.VertexID, error) {
	if id := d.byByte[b]; id != core.InvalidVertexID {
		if v, err := d.arena.Vertex(id); err == nil {
			_ = v
			return id, nil
		}
		// The vertex was pruned since last sighting; re-create it below.
	}
	id, err := d.arena.AllocateVertex(tick)
	if err != nil {
		return core.InvalidVertexID, err
	}
	v, _ := d.arena.Vertex(id)
	v.Flags |= core.FlagSensory | core.FlagProtected
	d.byByte[b] = id
	return id, nil
}

func (d *ByteDetector) resolveBigram(key uint64, tick uint64) (core.VertexID, error) {
	if id, ok := d.byBigram[key]; ok {
		if _, err := d.arena.Vertex(id); err == nil {
			return id, nil
		}
	}
	id, err := d.arena.AllocateVertex(tick)
	if err != nil {
		return core.InvalidVertexID, err
	}
	v, _ := d.arena.Vertex(id)
	v.Flags |= core.FlagSensory | core.FlagProtected
	d.byBigram[key] = id
	return id, nil
}
