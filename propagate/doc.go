// Package propagate implements one pass of weighted activation spreading
// with a continuous sigmoidal nonlinearity, spec.md §4.3. A pass is two
// phases — accumulate every vertex's soma from the activations at the start
// of the pass, then commit every vertex's new activation — so the result is
// independent of edge or vertex iteration order, which is what makes the
// engine's replay determinism (spec.md §5) possible.
package propagate
