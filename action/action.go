package action

import (
	"math"

	"github.com/katalvlaran/meridian/macro"
	"github.com/katalvlaran/meridian/prng"
)

// Params bundles the two scalars Select needs beyond the table itself:
// Gamma, the same u_slow/u_fast blend weight propagate.Params.Gamma names
// for edge weights, and Epsilon, the explore probability learn.Global
// derives from energy each tick.
type Params struct {
	Gamma   float64
	Epsilon float64
}

// Select runs spec.md §4.8's rule and returns the chosen macro's index, or
// -1 if t is empty. With probability Epsilon it explores uniformly;
// otherwise it exploits, picking the macro with the highest blended
// utility (ties keep the lowest index, matching a plain left-to-right scan).
func Select(t macro.Table, p Params, rng *prng.Source) int {
	n := t.Len()
	if n == 0 {
		return -1
	}
	if rng.Chance(p.Epsilon) {
		return rng.IntN(n)
	}

	best := 0
	bestScore := math.Inf(-1)
	for i := 0; i < n; i++ {
		m := t.At(i)
		score := p.Gamma*m.USlow + (1-p.Gamma)*m.UFast
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// Reward applies spec.md §4.8's post-observation update to the macro at idx
// (the value Select returned when it was chosen last tick). It is a no-op
// for an out-of-range idx, which lets callers pass through the sentinel -1
// Select returns for an empty table without a separate guard.
func Reward(t macro.Table, idx int, meanSurprise float64, tick uint64) {
	if idx < 0 || idx >= t.Len() {
		return
	}
	m := t.At(idx)
	reward := 1 - meanSurprise

	m.UFast = 0.95*m.UFast + 0.05*reward
	m.USlow = 0.999*m.USlow + 0.001*reward
	m.UseCount++
	m.LastUsedTick = tick
}
