package sense

import "github.com/katalvlaran/meridian/core"

// DetectorSet maps one input frame to activations on sensory vertices.
// Implementations may allocate vertices on the Arena on first sight of a
// new pattern (spec.md §4.2). Detect returns, for each vertex it wants to
// drive this tick, the activation to assign; if a caller-provided
// implementation reports the same vertex twice in one call it must already
// have resolved that to the maximum, since the core only ever sees one
// value per vertex per tick (spec.md §4.2's "multiple activations targeting
// the same vertex in one tick take the maximum").
type DetectorSet interface {
	Detect(frame []byte, tick uint64) (map[core.VertexID]float64, error)
}

// Apply writes the sensed activations onto their vertices and stamps
// LastActiveTick, overriding whatever the propagator would otherwise have
// computed for them this tick (spec.md §4.3 step 3). Vertices named by acts
// that no longer exist are silently dropped, per spec.md §7's policy that
// InvalidVertex is never fatal.
func Apply(a *core.Arena, tick uint64, acts map[core.VertexID]float64) {
	for id, level := range acts {
		v, err := a.Vertex(id)
		if err != nil {
			continue
		}
		if level < 0 {
			level = 0
		} else if level > 1 {
			level = 1
		}
		v.Activation = level
		v.LastActiveTick = tick
	}
}

// merge folds (id, level) into acts, keeping the maximum per spec.md §4.2.
func merge(acts map[core.VertexID]float64, id core.VertexID, level float64) {
	if cur, ok := acts[id]; !ok || level > cur {
		acts[id] = level
	}
}
