package homeostat

import (
	"math"

	"github.com/katalvlaran/meridian/core"
	"gonum.org/v1/gonum/stat"
)

// Targets are the setpoints every proportional-control rule in Adapt steers
// toward. Only TARGET_DENSITY is given a concrete value by spec.md §4.7; the
// rest are named but left unspecified, so DefaultTargets picks values
// consistent with the acceptance criteria in spec.md §8 (±0.05 bands around
// them over stationary input).
type Targets struct {
	Density  float64 // TARGET_DENSITY
	Acc      float64 // TARGET_ACC / TARGET_PREDICTION_ACC
	Activity float64 // TARGET_ACTIVITY
	Settle   float64 // TARGET_SETTLE / TARGET_SETTLE_RATIO
	Depth    float64 // TARGET_DEPTH
}

// DefaultTargets returns the setpoints Adapt steers toward absent operator
// overrides.
func DefaultTargets() Targets {
	return Targets{
		Density:  0.15,
		Acc:      0.9,
		Activity: 0.3,
		Settle:   0.9,
		Depth:    4,
	}
}

// Params holds the fourteen adaptive parameters Adapt mutates in place, plus
// activation_floor, a fixed (non-adaptive) threshold shared with package
// plasticity's "currently active" test so both packages agree on what
// counts as active.
type Params struct {
	PruneRate       float64
	CreateRate      float64
	ActivationScale float64
	EnergyAlpha     float64
	EnergyDecay     float64
	SigmoidK        float64
	EpsilonMax      float64
	EpsilonMin      float64
	LayerRate       float64
	MaxThoughtHops  int
	StabilityEps    float64
	ActivationEps   float64
	TemporalDecay   float64
	SpatialK        float64

	ActivationFloor float64
}

// DefaultParams seeds every adaptive parameter at a value strictly inside
// its clamp range (see the bounds* constants below), so the very first
// Adapt call nudges from an interior starting point rather than an edge.
func DefaultParams() Params {
	return Params{
		PruneRate:       1e-3,
		CreateRate:      1e-2,
		ActivationScale: 32,
		EnergyAlpha:     0.1,
		EnergyDecay:     0.99,
		SigmoidK:        1.0,
		EpsilonMax:      0.3,
		EpsilonMin:      0.06,
		LayerRate:       1e-3,
		MaxThoughtHops:  16,
		StabilityEps:    0.01,
		ActivationEps:   0.02,
		TemporalDecay:   0.1,
		SpatialK:        0.5,
		ActivationFloor: 0.1,
	}
}

// Clamp bounds for each adaptive parameter, spec.md §4.7's table.
const (
	boundsPruneRateLo, boundsPruneRateHi             = 1e-4, 1e-2
	boundsCreateRateLo, boundsCreateRateHi           = 1e-3, 0.1
	boundsActivationScaleLo, boundsActivationScaleHi = 16, 256
	boundsEnergyAlphaLo, boundsEnergyAlphaHi         = 0.01, 0.5
	boundsEnergyDecayLo, boundsEnergyDecayHi         = 0.95, 0.999
	boundsSigmoidKLo, boundsSigmoidKHi               = 0.1, 2.0
	boundsEpsilonMaxLo, boundsEpsilonMaxHi           = 0.2, 0.5
	boundsLayerRateLo, boundsLayerRateHi             = 1e-4, 1e-2
	boundsStabilityEpsLo, boundsStabilityEpsHi       = 1e-3, 5e-2
	boundsActivationEpsLo, boundsActivationEpsHi     = 5e-3, 1e-1
	boundsTemporalDecayLo, boundsTemporalDecayHi     = 0.01, 0.5
	boundsSpatialKLo, boundsSpatialKHi               = 0.1, 2.0

	// MinHops/MaxHopsLimit bound max_thought_hops; spec.md §4.7 names them
	// without values. 2 guarantees at least one propagation beyond the
	// zero-soma seed pass; 64 is generous headroom above the 16-hop default.
	MinHops       = 2
	MaxHopsLimit  = 64
)

// State is the EMA bookkeeping Adapt reads every adapt_period and Observe
// updates every tick (spec.md's settle_ratio, thought_depth_avg, and the
// prediction_acc EMA derived from mean_surprise).
type State struct {
	SettleRatio   float64
	DepthAvg      float64
	PredictionAcc float64
}

// NewState starts every EMA at its optimistic extreme (fully settled,
// shallow, perfectly predicted) so early ticks don't read as a crisis before
// any real data has accumulated.
func NewState() *State {
	return &State{SettleRatio: 1, DepthAvg: 1, PredictionAcc: 1}
}

// Observe folds one tick's thought-loop and learner outcome into the EMAs,
// and must be called every tick regardless of whether this is an adapt
// tick (spec.md §4.7 "settle_ratio = EMA of settled", etc.).
func (s *State) Observe(settled bool, hopsUsed int, meanSurprise float64) {
	settledF := 0.0
	if settled {
		settledF = 1.0
	}
	const emaRate = 0.01
	s.SettleRatio = (1-emaRate)*s.SettleRatio + emaRate*settledF
	s.DepthAvg = (1-emaRate)*s.DepthAvg + emaRate*float64(hopsUsed)
	s.PredictionAcc = (1-emaRate)*s.PredictionAcc + emaRate*(1-meanSurprise)
}

// measurement is the point-in-time sample Adapt computes fresh every
// adapt_period ticks (spec.md §4.7's bulleted list).
type measurement struct {
	density       float64
	activity      float64
	meanTemporal  float64
	meanSpatial   float64
	capacityUsage float64
}

func measure(a *core.Arena, floor float64) measurement {
	stats := a.Stats()
	var m measurement

	n := float64(stats.LiveVertices)
	if n > 1 {
		m.density = float64(stats.LiveEdges) / (n * (n - 1))
	}

	activityCounts := make([]float64, 0, stats.LiveVertices)
	spatial := make([]float64, 0, stats.LiveVertices)
	a.EachLiveVertex(func(v *core.Vertex) {
		active := 0.0
		if v.Activation > floor {
			active = 1.0
		}
		activityCounts = append(activityCounts, active)
		deg := float64(v.InDegree + v.OutDegree)
		spatial = append(spatial, 1+math.Log(1+deg))
	})
	if len(activityCounts) > 0 {
		m.activity = stat.Mean(activityCounts, nil)
		m.meanSpatial = stat.Mean(spatial, nil)
	}

	temporal := make([]float64, 0, stats.LiveEdges)
	a.EachLiveEdge(func(_ core.EdgeSlot, e *core.Edge) {
		temporal = append(temporal, float64(e.StaleTicks))
	})
	if len(temporal) > 0 {
		m.meanTemporal = stat.Mean(temporal, nil)
	}

	vertexUsage := 0.0
	if stats.VertexCap > 0 {
		vertexUsage = float64(stats.LiveVertices) / float64(stats.VertexCap)
	}
	edgeUsage := 0.0
	if stats.EdgeCap > 0 {
		edgeUsage = float64(stats.LiveEdges) / float64(stats.EdgeCap)
	}
	m.capacityUsage = math.Max(vertexUsage, edgeUsage)

	return m
}

// Adapt runs the proportional-control update of spec.md §4.7 if tick is a
// multiple of period (period==0 disables adaptation entirely), mutating p in
// place. It returns whether an update actually happened, so callers can log
// the new parameter snapshot only on adapt ticks.
func Adapt(a *core.Arena, tick uint64, period uint64, adaptRate float64, p *Params, st *State, t Targets) bool {
	if period == 0 || tick%period != 0 {
		return false
	}

	m := measure(a, p.ActivationFloor)
	acc := st.PredictionAcc

	p.PruneRate = clamp(p.PruneRate+adaptRate*(m.density-t.Density), boundsPruneRateLo, boundsPruneRateHi)

	p.CreateRate = clamp(p.CreateRate+(t.Density-m.density)*(1+acc-t.Acc), boundsCreateRateLo, boundsCreateRateHi)

	p.ActivationScale = clamp(p.ActivationScale+100*(m.activity-t.Activity), boundsActivationScaleLo, boundsActivationScaleHi)

	p.EnergyAlpha = clamp(p.EnergyAlpha+0.1*(t.Acc-acc), boundsEnergyAlphaLo, boundsEnergyAlphaHi)

	p.EnergyDecay = clamp(p.EnergyDecay+0.01*(1-math.Abs(t.Acc-acc)-0.5), boundsEnergyDecayLo, boundsEnergyDecayHi)

	sigmoidKStep := -1.0
	if m.activity < 0.05 || m.activity > 0.5 {
		sigmoidKStep = 1.0
	}
	p.SigmoidK = clamp(p.SigmoidK+sigmoidKStep, boundsSigmoidKLo, boundsSigmoidKHi)

	epsStep := -1.0
	if acc < t.Acc {
		epsStep = 1.0
	}
	p.EpsilonMax = clamp(p.EpsilonMax+0.1*epsStep, boundsEpsilonMaxLo, boundsEpsilonMaxHi)
	p.EpsilonMin = 0.2 * p.EpsilonMax

	p.LayerRate = clamp(p.LayerRate+0.01*(m.density*acc-0.1), boundsLayerRateLo, boundsLayerRateHi)

	depthErr := (st.DepthAvg - t.Depth) / t.Depth
	hopsStep := -(st.SettleRatio - t.Settle) - 0.5*depthErr
	newHops := float64(p.MaxThoughtHops) + 10*hopsStep
	p.MaxThoughtHops = int(clamp(math.Round(newHops), MinHops, MaxHopsLimit))

	p.StabilityEps = clamp(p.StabilityEps+0.01*depthErr, boundsStabilityEpsLo, boundsStabilityEpsHi)
	p.ActivationEps = clamp(p.ActivationEps+0.02*depthErr, boundsActivationEpsLo, boundsActivationEpsHi)

	p.TemporalDecay = clamp(p.TemporalDecay+0.1*(m.meanTemporal-10)/10, boundsTemporalDecayLo, boundsTemporalDecayHi)
	p.SpatialK = clamp(p.SpatialK+(m.meanSpatial-2)/2, boundsSpatialKLo, boundsSpatialKHi)

	applyCapacitySafetyValve(m.capacityUsage, p)

	return true
}

// applyCapacitySafetyValve implements the spec's "additionally" clause: on
// each Adapt run (adapt ticks only) where capacity usage is above 0.8, it
// biases toward pruning over creation by one 1.01/0.99 step, on top of what
// the rest of the control loop computed.
func applyCapacitySafetyValve(usage float64, p *Params) {
	if usage <= 0.8 {
		return
	}
	p.PruneRate = clamp(p.PruneRate*1.01, boundsPruneRateLo, boundsPruneRateHi)
	p.CreateRate = clamp(p.CreateRate*0.99, boundsCreateRateLo, boundsCreateRateHi)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
