package engine

import (
	"time"

	"github.com/katalvlaran/meridian/learn"
	"github.com/katalvlaran/meridian/plasticity"
)

// Config bundles every knob Core needs beyond what the homeostat adapts at
// runtime: the handful of CLI-exposed flags from spec.md §6.1, plus the
// static (non-adaptive) constants spec.md §4.5/§4.6 name inline in their
// formulas rather than listing in the homeostat's table of fourteen.
type Config struct {
	VertexCapacity uint32
	EdgeCapacity   uint32
	WeightMax      float64

	Seed            uint64
	StatePath       string
	SelfObservation bool
	TickInterval    time.Duration

	FrameSizeMax       int
	InputRingCapacity  int
	OutputRingCapacity int

	AdaptPeriod    uint64
	AdaptRate      float64
	SnapshotPeriod uint64

	// Gamma blends w_slow/w_fast into w_eff (propagate.Params.Gamma) and
	// u_slow/u_fast into an action score (action.Params.Gamma); it is a
	// fixed mixing constant, not one of the homeostat's adaptive fourteen.
	Gamma float64

	Learn      learn.Params
	Plasticity plasticity.Params
}

// DefaultConfig returns the configuration a bare `meridian` invocation runs
// with: the capacities spec.md §6.1 lists as flag defaults, a fixed Seed of
// 0 (the time-based --seed default is applied by cmd/meridian, not here),
// and static learner/plasticity constants consistent with the homeostat's
// own clamp ranges (spec.md §4.7).
func DefaultConfig() Config {
	return Config{
		VertexCapacity: 8192,
		EdgeCapacity:   65536,
		WeightMax:      255,

		Seed:            0,
		StatePath:       "./graph.state",
		SelfObservation: true,
		TickInterval:    50 * time.Millisecond,

		FrameSizeMax:       4096,
		InputRingCapacity:  4096 * 4,
		OutputRingCapacity: 4096 * 4,

		AdaptPeriod:    10,
		AdaptRate:      0.05,
		SnapshotPeriod: 2000,

		Gamma: 0.5,

		Learn: learn.Params{
			LambdaDecay:      0.9,
			Eps0:             0.01,
			Beta:             0.5,
			LambdaE:          0.8,
			EtaFast:          0.1,
			DeltaMax:         0.2,
			AlphaFast:        0.999,
			ConsolidateEvery: 10,
			ThetaConsolidate: 0.3,
			BaselineDecay:    0.99,
		},

		Plasticity: plasticity.Params{
			SimFloor:        0.6,
			CoFreqRef:       3,
			CoFreqDecay:     0.95,
			InitialWeight:   25.5,
			SampleK:         8,
			PruneWeightRef:  12,
			StaleRef:        50,
			NodeStaleRef:    100,
			NodePruneChance: 0.1,
			DensityRef:      0.5,
			LayerMinSize:    3,
			LayerSampleSize: 6,
		},
	}
}
