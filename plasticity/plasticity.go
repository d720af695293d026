package plasticity

import (
	"math"
	"sort"

	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/prng"
	"github.com/katalvlaran/meridian/propagate"
)

// Params bundles the constants every plasticity rule reads. None of them
// are mutated here. ActivationFloor and the four rates (NodeCreateRate,
// EdgeCreateRate, PruneRate, LayerRate) are overlaid from the homeostat by
// the engine each tick; the rest are fixed configuration.
type Params struct {
	ActivationFloor float64 // activation above this counts as "active"
	SimFloor        float64 // minimum Hamming similarity for node creation
	CoFreqRef       float64 // reference co-occurrence count
	CoFreqDecay     float64 // decay applied to the co-occurrence table each tick
	NodeCreateRate  float64
	InitialWeight   float64 // w_fast a newly created edge starts at
	SampleK         int     // candidate pairs sampled per tick for node creation

	EdgeCreateRate float64 // base probability once co-occurrence clears the bar

	Gamma          float64 // same w_eff blend propagate.Pass uses
	PruneWeightRef float64
	PruneRate      float64
	StaleRef       float64

	NodeStaleRef    uint64
	NodePruneChance float64 // spec's fixed 0.1

	LayerRate           float64
	DensityRef          float64
	LayerMinSize        float64
	LayerSampleSize     int
}

// State is the cross-tick memory plasticity needs beyond what lives on
// core.Vertex/core.Edge: a decayed pairwise co-occurrence table (feeding
// both node and edge creation) and the previous tick's active-vertex set
// (edge creation fires between a vertex active at t and one active at t+1).
type State struct {
	coFreq     map[pairKey]float64
	prevActive map[core.VertexID]bool
}

// NewState returns an empty State, ready for the first tick.
func NewState() *State {
	return &State{
		coFreq:     make(map[pairKey]float64),
		prevActive: make(map[core.VertexID]bool),
	}
}

type pairKey uint64

func makePairKey(i, j core.VertexID) pairKey {
	if i > j {
		i, j = j, i
	}
	return pairKey(uint64(i))<<32 | pairKey(uint64(j))
}

// Step runs one tick's worth of node creation, edge creation, edge pruning,
// node pruning, and meta-node emergence, in that order (spec.md §4.6 lists
// them without mandating an order; node/edge creation run before pruning so
// a vertex created this tick can still be pruned in a later tick rather than
// the same one it was born in).
func Step(a *core.Arena, tick uint64, energy float64, p Params, st *State, rng *prng.Source) {
	active := collectActive(a, p.ActivationFloor)

	createNodes(a, energy, p, st, rng, active)
	createEdges(a, p, st, rng, active)
	pruneEdges(a, p, rng)
	pruneNodes(a, tick, p, rng)
	emergeLayer(a, energy, p, rng, active)

	st.prevActive = active
}

func collectActive(a *core.Arena, floor float64) map[core.VertexID]bool {
	active := make(map[core.VertexID]bool)
	a.EachLiveVertex(func(v *core.Vertex) {
		if v.Activation > floor {
			active[v.ID] = true
		}
	})
	return active
}

// activeIDs returns active's keys in ascending order. Every caller indexes
// into this slice with the deterministic PRNG, so the order must not depend
// on Go's randomized map iteration (language spec) — otherwise two runs with
// identical seed, capacity, and input would create different vertices/edges
// and pick different layer pivots, breaking spec.md §5/§8's determinism
// guarantee.
func activeIDs(active map[core.VertexID]bool) []core.VertexID {
	ids := make([]core.VertexID, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// createNodes samples p.SampleK random pairs of currently active vertices,
// updates their decayed co-occurrence count, and probabilistically spawns a
// meta-vertex bridging any pair whose similarity and co-occurrence both
// clear their reference thresholds (spec.md §4.6 "Node creation").
func createNodes(a *core.Arena, energy float64, p Params, st *State, rng *prng.Source, active map[core.VertexID]bool) {
	ids := activeIDs(active)
	if len(ids) < 2 {
		return
	}

	for n := 0; n < p.SampleK; n++ {
		i := ids[rng.IntN(len(ids))]
		j := ids[rng.IntN(len(ids))]
		if i == j {
			continue
		}

		key := makePairKey(i, j)
		st.coFreq[key] = p.CoFreqDecay*st.coFreq[key] + 1

		iv, err := a.Vertex(i)
		if err != nil {
			continue
		}
		jv, err := a.Vertex(j)
		if err != nil {
			continue
		}

		similarity := core.HammingSimilarity(iv.Signature, jv.Signature)
		coFreq := st.coFreq[key]
		if similarity < p.SimFloor || coFreq < p.CoFreqRef {
			continue
		}

		novelty := (coFreq / p.CoFreqRef) * similarity
		prob := p.NodeCreateRate * propagate.Sigmoid(10*novelty-5) * (1 + energy)
		if !rng.Chance(prob) {
			continue
		}

		spawnMetaVertex(a, p, []core.VertexID{i, j})
	}
}

// spawnMetaVertex allocates a meta-vertex and links each of srcs to it,
// silently skipping on capacity exhaustion (spec.md §4.6 "Skip on capacity
// failure").
func spawnMetaVertex(a *core.Arena, p Params, srcs []core.VertexID) (core.VertexID, bool) {
	m, err := a.AllocateVertex(0)
	if err != nil {
		return core.InvalidVertexID, false
	}
	mv, _ := a.Vertex(m)
	mv.Flags |= core.FlagMeta

	linked := false
	for _, s := range srcs {
		slot, err := a.AllocateEdge(s, m)
		if err != nil {
			continue
		}
		e, _ := a.Edge(slot)
		e.WFast = p.InitialWeight
		linked = true
	}

	if !linked {
		// Nothing could be linked (every edge allocation failed); free the
		// now-isolated meta-vertex rather than leaving a dangling orphan.
		_ = a.FreeVertex(m)
		return core.InvalidVertexID, false
	}
	return m, true
}

// createEdges links a vertex active at the previous tick to one active this
// tick when no live edge between them exists yet, gated by the same decayed co-occurrence table node creation maintains
// (spec.md §4.6 "Edge creation"). Candidates are sampled rather than
// enumerated as a full cross product, matching the O(k) sampling the spec
// already asks for in node creation.
func createEdges(a *core.Arena, p Params, st *State, rng *prng.Source, active map[core.VertexID]bool) {
	if len(st.prevActive) == 0 || len(active) == 0 {
		return
	}
	prevIDs := activeIDs(st.prevActive)
	curIDs := activeIDs(active)

	for n := 0; n < p.SampleK; n++ {
		i := prevIDs[rng.IntN(len(prevIDs))]
		j := curIDs[rng.IntN(len(curIDs))]
		if i == j {
			continue
		}
		if _, exists := a.FindEdge(i, j); exists {
			continue
		}

		coFreq := st.coFreq[makePairKey(i, j)]
		if coFreq < p.CoFreqRef {
			continue
		}

		prob := p.EdgeCreateRate * math.Min(coFreq/p.CoFreqRef, 1)
		if !rng.Chance(prob) {
			continue
		}

		slot, err := a.AllocateEdge(i, j)
		if err != nil {
			continue
		}
		e, _ := a.Edge(slot)
		e.WFast = p.InitialWeight
	}
}

// pruneEdges deletes each live edge with probability p_prune (spec.md §4.6
// "Edge pruning"). Candidate slots are collected first because FreeEdge must
// not be called from inside EachLiveEdge's callback.
func pruneEdges(a *core.Arena, p Params, rng *prng.Source) {
	var doomed []core.EdgeSlot
	a.EachLiveEdge(func(slot core.EdgeSlot, e *core.Edge) {
		wEff := core.EffectiveWeight(e, p.Gamma)
		pWeak := softBelow(wEff, p.PruneWeightRef)
		pUnused := softBelow(float64(e.UseCount), 10)
		pStale := softAbove(float64(e.StaleTicks), p.StaleRef)
		pPrune := p.PruneRate * pWeak * pUnused * pStale

		if rng.Chance(pPrune) {
			doomed = append(doomed, slot)
		}
	})
	for _, slot := range doomed {
		_ = a.FreeEdge(slot)
	}
}

// pruneNodes deletes isolated, non-sensory, non-meta vertices that have sat
// unused past node_stale_ref, each with the spec's fixed 0.1 probability
// (spec.md §4.6 "Node pruning"). Vertex.LastActiveTick stands in for the
// spec's stale_ticks on a vertex. It is stamped only when the vertex is
// allocated and when sense.Apply drives it, so for a non-sensory vertex the
// measure is ticks since allocation, however active propagation made it.
func pruneNodes(a *core.Arena, tick uint64, p Params, rng *prng.Source) {
	var doomed []core.VertexID
	a.EachLiveVertex(func(v *core.Vertex) {
		if v.Flags.Has(core.FlagSensory) || v.Flags.Has(core.FlagMeta) || v.Flags.Has(core.FlagProtected) {
			return
		}
		if v.InDegree != 0 || v.OutDegree != 0 {
			return
		}
		if tick <= v.LastActiveTick || tick-v.LastActiveTick <= p.NodeStaleRef {
			return
		}
		if rng.Chance(p.NodePruneChance) {
			doomed = append(doomed, v.ID)
		}
	})
	for _, id := range doomed {
		_ = a.FreeVertex(id)
	}
}

// emergeLayer occasionally picks a random active vertex and, if a large
// enough fraction of its outgoing neighbours are also active, spawns a
// meta-vertex summarizing that cluster (spec.md §4.6 "Meta-node (layer)
// emergence"). "Neighbours" is resolved to outgoing neighbours, matching the
// forward direction activation itself propagates in.
func emergeLayer(a *core.Arena, energy float64, p Params, rng *prng.Source, active map[core.VertexID]bool) {
	if !rng.Chance(p.LayerRate * (1 + 0.5*energy)) {
		return
	}
	ids := activeIDs(active)
	if len(ids) == 0 {
		return
	}
	pivot := ids[rng.IntN(len(ids))]

	var neighbours []core.VertexID
	var activeNeighbours int
	a.EachLiveEdge(func(_ core.EdgeSlot, e *core.Edge) {
		if e.Src != pivot {
			return
		}
		neighbours = append(neighbours, e.Dst)
		if active[e.Dst] {
			activeNeighbours++
		}
	})
	if len(neighbours) == 0 {
		return
	}

	density := float64(activeNeighbours) / float64(len(neighbours))
	prob := softAbove(density, p.DensityRef) * softAbove(float64(len(neighbours)), p.LayerMinSize)
	if !rng.Chance(prob) {
		return
	}

	sample := neighbours
	if len(sample) > p.LayerSampleSize && p.LayerSampleSize > 0 {
		rng.Shuffle(len(sample), func(i, j int) { sample[i], sample[j] = sample[j], sample[i] })
		sample = sample[:p.LayerSampleSize]
	}
	spawnMetaVertex(a, p, sample)
}

// softBelow is the spec's 1 - sigmoid((x-r)/r): close to 1 well below the
// reference r, close to 0 well above it.
func softBelow(x, r float64) float64 {
	if r == 0 {
		return 0
	}
	return 1 - propagate.Sigmoid((x-r)/r)
}

// softAbove is softBelow's complement.
func softAbove(x, r float64) float64 {
	return 1 - softBelow(x, r)
}
