// Package plasticity implements the five probabilistic structural
// operations of spec.md §4.6: co-activation-driven node creation, edge
// creation between vertices that fire in consecutive ticks, edge pruning by
// weight/use/staleness, node pruning of isolated vertices, and meta-node
// (layer) emergence over a dense active neighbourhood.
//
// Every draw goes through an explicit *prng.Source (spec.md §9); nothing in
// this package reads math/rand directly. State carries the small amount of
// cross-tick memory the rules need (a decayed co-occurrence table and the
// previous tick's active-vertex set) that does not belong on core.Vertex or
// core.Edge themselves.
package plasticity
