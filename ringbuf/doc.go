// Package ringbuf implements the fixed-capacity byte ring buffers spec.md
// §3 and §4.10 describe: the input ring stdin is drained into, and the
// self-observation ring the action selector's emitted bytes feed back
// into. Both directions are non-blocking by construction (spec.md §5) —
// Write silently drops bytes that don't fit rather than stalling the tick
// driver, and Read returns whatever is available, even zero bytes.
package ringbuf
