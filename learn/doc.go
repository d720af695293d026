// Package learn implements the per-edge plasticity rule of spec.md §4.5:
// decayed co-occurrence counts, predictive lift against a per-destination
// baseline, instantaneous credit from the one-step prediction error, a
// blended usefulness score, an eligibility trace, the fast/slow weight
// update, and the global energy/epsilon bookkeeping the homeostat and
// action selector read.
//
// Step must run once per tick, after the thought loop has settled, and
// needs the prediction each live vertex held at the end of the *previous*
// tick (the graph's forecast of what this tick's observation would be).
// Since propagate.Pass overwrites Vertex.Predicted on every hop of the
// current tick's thought loop, that snapshot has to be captured by the
// caller before running thought.Run; SnapshotPredicted does that capture.
package learn
