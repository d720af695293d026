package learn

import (
	"math"

	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/propagate"
)

// Params bundles the constants the learning rule reads. None of them are
// mutated here. The energy/epsilon fields (EnergyDecay through EpsilonMax)
// are overlaid from the homeostat's adaptive values each tick by the
// engine; the rest are fixed configuration.
type Params struct {
	LambdaDecay float64 // decay applied to C11/C10 each tick
	Eps0        float64 // smoothing term in p_cond's denominator

	Beta float64 // U = Beta*lift + (1-Beta)*credit_instant

	LambdaE  float64 // eligibility trace decay
	EtaFast  float64 // fast-weight learning rate
	DeltaMax float64 // soft-clamp bound applied to a single tick's delta
	AlphaFast float64 // multiplicative decay nudging w_fast toward zero

	ConsolidateEvery uint64  // ticks between slow-weight consolidation checks
	ThetaConsolidate float64 // |avg_U| threshold that moves w_slow by one unit

	BaselineDecay float64 // EMA rate for the per-destination p_base tracker

	EnergyDecay float64 // mean_surprise^2 EMA decay
	EnergyAlpha float64 // mean_surprise^2 EMA gain
	SigmoidK    float64 // steepness of the energy->epsilon mapping
	EpsilonMin  float64
	EpsilonMax  float64
}

// Global carries the process-wide state the learner updates each tick:
// the running estimate of how surprised the network is (Energy) and the
// exploration rate it implies (Epsilon), plus the per-destination activation
// baseline predictive lift is measured against.
type Global struct {
	Energy      float64
	Epsilon     float64
	MeanSurprise float64

	baseline map[core.VertexID]float64
}

// NewGlobal returns a Global with Epsilon seeded at the midpoint of its
// configured range; Energy starts at zero (the network has observed
// nothing yet, so there is nothing to be surprised about).
func NewGlobal(p Params) *Global {
	return &Global{
		Epsilon:  (p.EpsilonMin + p.EpsilonMax) / 2,
		baseline: make(map[core.VertexID]float64),
	}
}

// Baseline returns a copy of the per-destination activation baseline, for
// package snapshot to persist.
func (g *Global) Baseline() map[core.VertexID]float64 {
	cp := make(map[core.VertexID]float64, len(g.baseline))
	for k, v := range g.baseline {
		cp[k] = v
	}
	return cp
}

// RestoreBaseline replaces g's per-destination baseline wholesale, for
// package snapshot to restore from a loaded file.
func (g *Global) RestoreBaseline(m map[core.VertexID]float64) {
	g.baseline = make(map[core.VertexID]float64, len(m))
	for k, v := range m {
		g.baseline[k] = v
	}
}

// SnapshotPredicted captures the Predicted value every live vertex currently
// holds. Call it immediately before thought.Run so the resulting map still
// reflects the previous tick's forecast once the thought loop has overwritten
// the live values with this tick's own.
func SnapshotPredicted(a *core.Arena) map[core.VertexID]float64 {
	snap := make(map[core.VertexID]float64)
	a.EachLiveVertex(func(v *core.Vertex) {
		snap[v.ID] = v.Predicted
	})
	return snap
}

// Step applies one tick's worth of plasticity. prevPredicted must be the
// result of SnapshotPredicted taken before the thought loop ran; tick is the
// current tick counter, used to gate slow-weight consolidation.
func Step(a *core.Arena, tick uint64, prevPredicted map[core.VertexID]float64, p Params, g *Global) {
	var sumSurprise float64
	var nVert int

	a.EachLiveVertex(func(v *core.Vertex) {
		surprise := math.Abs(v.Activation - prevPredicted[v.ID])
		sumSurprise += surprise
		nVert++

		g.baseline[v.ID] = p.BaselineDecay*g.baseline[v.ID] + (1-p.BaselineDecay)*v.Activation
	})

	consolidate := p.ConsolidateEvery > 0 && tick%p.ConsolidateEvery == 0

	a.EachLiveEdge(func(_ core.EdgeSlot, e *core.Edge) {
		sv, err := a.Vertex(e.Src)
		if err != nil || sv.Activation <= 0 {
			e.StaleTicks++
			return
		}
		dv, err := a.Vertex(e.Dst)
		if err != nil {
			e.StaleTicks++
			return
		}

		actS, actD := sv.Activation, dv.Activation

		e.C11 = p.LambdaDecay*e.C11 + actS*actD
		e.C10 = p.LambdaDecay*e.C10 + actS*(1-actD)

		pCond := e.C11 / (e.C11 + e.C10 + p.Eps0)
		pBase := g.baseline[e.Dst]
		lift := pCond - pBase

		creditInstant := clampSigned(actS*(actD-dv.Predicted), -1, 1)
		u := p.Beta*lift + (1-p.Beta)*creditInstant

		e.Eligibility = clampSigned(p.LambdaE*e.Eligibility+actS, 0, 1)

		delta := p.EtaFast * u * e.Eligibility
		if p.DeltaMax > 0 {
			delta = p.DeltaMax * math.Tanh(delta/p.DeltaMax)
		}
		wMax := a.WeightMax()
		e.WFast = clampSigned(e.WFast+delta, 0, wMax) * p.AlphaFast

		if consolidate {
			e.AvgU = 0.95*e.AvgU + 0.05*u
			switch {
			case e.AvgU > p.ThetaConsolidate:
				e.WSlow = math.Min(e.WSlow+1, wMax)
			case e.AvgU < -p.ThetaConsolidate:
				e.WSlow = math.Max(e.WSlow-1, 0)
			}
		}

		e.Credit = creditSignStep(e.Credit, u)
		e.UseCount++
		e.StaleTicks = 0
	})

	if nVert == 0 {
		return
	}

	g.MeanSurprise = sumSurprise / float64(nVert)
	g.Energy = p.EnergyDecay*g.Energy + p.EnergyAlpha*g.MeanSurprise*g.MeanSurprise
	span := p.EpsilonMax - p.EpsilonMin
	g.Epsilon = p.EpsilonMin + span*propagate.Sigmoid((g.Energy-0.5)*p.SigmoidK*10)
}

func clampSigned(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// creditSignStep nudges credit by the sign of u, clamped to
// [-core.CreditMax, core.CreditMax]; it is a one-unit-per-tick integrator
// rather than an additive accumulator of u itself, so that steady light use
// and a single enormous U contribute the same single step.
func creditSignStep(credit, u float64) float64 {
	switch {
	case u > 0:
		credit++
	case u < 0:
		credit--
	}
	return clampSigned(credit, -core.CreditMax, core.CreditMax)
}
