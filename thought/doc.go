// Package thought implements the thought loop of spec.md §4.4: repeatedly
// calling propagate.Pass until the network settles (activation and
// prediction deltas both fall under their epsilons) or the hop limit is
// reached. Its result feeds both the learner (needs the settled state) and
// the homeostat (needs hops_used/settled to adapt max_thought_hops).
package thought
