package thought

import (
	"math"

	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/propagate"
)

// Result records the per-tick outcome the homeostat and learner consume,
// spec.md §4.4's "hops_used, settled, thought_depth".
type Result struct {
	HopsUsed int
	Settled  bool
}

// Params bundles the convergence thresholds and hop limit, both homeostat-
// adaptive (spec.md §4.7).
type Params struct {
	ActivationEps float64
	StabilityEps  float64
	MaxHops       int
}

// Run iterates propagate.Pass over a until convergence or pp.MaxHops,
// implementing spec.md §4.4.
func Run(a *core.Arena, pass propagate.Params, pp Params) Result {
	maxHops := pp.MaxHops
	if maxHops < 1 {
		maxHops = 1
	}

	prevPredicted := make(map[core.VertexID]float64)
	for hop := 1; hop <= maxHops; hop++ {
		propagate.Pass(a, pass)

		var sumAct, sumStab float64
		var n int
		a.EachLiveVertex(func(v *core.Vertex) {
			sumAct += math.Abs(v.Activation - v.PrevActivation)
			sumStab += math.Abs(v.Predicted - prevPredicted[v.ID])
			prevPredicted[v.ID] = v.Predicted
			n++
		})

		if n == 0 {
			return Result{HopsUsed: hop, Settled: true}
		}
		if sumAct/float64(n) < pp.ActivationEps && sumStab/float64(n) < pp.StabilityEps {
			return Result{HopsUsed: hop, Settled: true}
		}
	}
	return Result{HopsUsed: maxHops, Settled: false}
}
