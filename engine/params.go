package engine

import (
	"github.com/katalvlaran/meridian/action"
	"github.com/katalvlaran/meridian/homeostat"
	"github.com/katalvlaran/meridian/learn"
	"github.com/katalvlaran/meridian/plasticity"
	"github.com/katalvlaran/meridian/propagate"
	"github.com/katalvlaran/meridian/thought"
)

// propagateParams builds this tick's propagate.Params from the homeostat's
// current adaptive values and Core's fixed Gamma.
func propagateParams(gamma float64, h homeostat.Params) propagate.Params {
	return propagate.Params{
		Gamma:           gamma,
		TemporalDecay:   h.TemporalDecay,
		SpatialK:        h.SpatialK,
		ActivationScale: h.ActivationScale,
	}
}

// thoughtParams builds this tick's thought.Params from the homeostat.
func thoughtParams(h homeostat.Params) thought.Params {
	return thought.Params{
		ActivationEps: h.ActivationEps,
		StabilityEps:  h.StabilityEps,
		MaxHops:       h.MaxThoughtHops,
	}
}

// learnParams overlays the homeostat's five energy/epsilon-related
// adaptive values onto base's static constants (lambda_decay, beta, eta,
// etc., none of which the homeostat's table of fourteen covers).
func learnParams(base learn.Params, h homeostat.Params) learn.Params {
	p := base
	p.EnergyDecay = h.EnergyDecay
	p.EnergyAlpha = h.EnergyAlpha
	p.SigmoidK = h.SigmoidK
	p.EpsilonMin = h.EpsilonMin
	p.EpsilonMax = h.EpsilonMax
	return p
}

// plasticityParams overlays the homeostat's prune_rate/create_rate/
// layer_rate/activation_floor onto base's static structural constants.
// spec.md §4.6 names a single create_rate; this implementation applies it
// to both node creation and edge creation (see DESIGN.md).
func plasticityParams(base plasticity.Params, gamma float64, h homeostat.Params) plasticity.Params {
	p := base
	p.ActivationFloor = h.ActivationFloor
	p.NodeCreateRate = h.CreateRate
	p.EdgeCreateRate = h.CreateRate
	p.PruneRate = h.PruneRate
	p.LayerRate = h.LayerRate
	p.Gamma = gamma
	return p
}

// actionParams builds this tick's action.Params from Core's fixed Gamma and
// the learner's current exploration rate.
func actionParams(gamma float64, epsilon float64) action.Params {
	return action.Params{Gamma: gamma, Epsilon: epsilon}
}
