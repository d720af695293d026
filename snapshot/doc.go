// Package snapshot implements the mapping-file codec of spec.md §4.9/§6.3:
// a header (magic, version, tick, capacities, PRNG state, the
// fourteen adaptive parameters, energy, and per-destination baselines),
// followed by the vertex table, the edge table, and a trailing CRC32 over
// everything before it. Save writes atomically via write-to-temp-then-
// rename; Load rejects a corrupt or version-mismatched file rather than
// risk handing back a half-loaded arena, per spec.md §4.9's "never
// half-loaded state".
package snapshot
