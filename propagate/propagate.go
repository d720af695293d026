package propagate

import (
	"math"

	"github.com/katalvlaran/meridian/core"
)

// Params bundles the scalars propagate.Pass needs. TemporalDecay, SpatialK
// and ActivationScale are adjusted by package homeostat every adapt_period
// ticks (spec.md §4.7); Gamma is a fixed mixing constant. Pass itself never
// modifies them.
type Params struct {
	Gamma           float64 // w_eff = Gamma*w_slow + (1-Gamma)*w_fast
	TemporalDecay   float64 // spec.md §4.3 temporal_weight
	SpatialK        float64 // spec.md §4.3 spatial_weight
	ActivationScale float64 // sigmoid((soma-theta)/ActivationScale)
}

// Sigmoid is the standard logistic function, 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Pass runs one propagation pass over every live vertex and edge in a,
// implementing spec.md §4.3 steps 1-3.
func Pass(a *core.Arena, p Params) {
	a.EachLiveVertex(func(v *core.Vertex) {
		v.Soma = 0
	})

	a.EachLiveEdge(func(_ core.EdgeSlot, e *core.Edge) {
		sv, err := a.Vertex(e.Src)
		if err != nil || sv.Activation <= 0 {
			return
		}
		dv, err := a.Vertex(e.Dst)
		if err != nil {
			return
		}

		wEff := core.EffectiveWeight(e, p.Gamma)
		temporal := 1.0 / (1.0 + float64(e.StaleTicks)*p.TemporalDecay)
		spatial := 1.0 / (1.0 + p.SpatialK*math.Log(1+float64(sv.OutDegree)+float64(dv.InDegree)))

		dv.Soma += wEff * sv.Activation * temporal * spatial
	})

	scale := p.ActivationScale
	if scale == 0 {
		scale = 1 // guard against a degenerate homeostat clamp of zero
	}

	a.EachLiveVertex(func(v *core.Vertex) {
		predicted := Sigmoid((v.Soma - v.Theta) / scale)
		v.PrevActivation = v.Activation
		v.Predicted = predicted
		if !v.Flags.Has(core.FlagSensory) {
			v.Activation = predicted
		}
	})
}
