// Package engine assembles every other package into the single-threaded
// cooperative tick driver spec.md §4.10 and §5 describe: Core owns the
// arena, the input and self-observation ring buffers, the PRNG, the
// fourteen adaptive parameters, and the macro table, and Step runs exactly
// one tick's worth of sense → think → learn → plasticity → homeostat →
// act → snapshot in that fixed order. Run wraps Step in the I/O loop that
// reads stdin non-blockingly and writes stdout, terminating on EOF with an
// empty self-observation ring, an external shutdown signal, or Step's
// detection of irrecoverable capacity exhaustion.
package engine
