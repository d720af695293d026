// Package homeostat implements the proportional controller of spec.md §4.7:
// every adapt_period ticks it samples graph-wide statistics and nudges the
// fourteen adaptive parameters that package propagate, thought, learn, and
// plasticity all read, each toward its target band, each independently
// clamped.
//
// Measurements are plain means over per-vertex/per-edge samples, computed
// with gonum/stat rather than hand-rolled summation loops, matching how the
// pack's statistics-heavy repos compute aggregate graph metrics.
package homeostat
