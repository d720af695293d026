// Package sense implements the DetectorSet contract of spec.md §4.2/§6.4
// and a concrete, minimal detector (ByteDetector) so the engine is runnable
// end to end without an external detector library. Richer pattern
// libraries (n-gram, numeric-token, operator-token detectors mentioned in
// spec.md §9) remain an external, out-of-scope concern per spec.md §1; any
// implementation of DetectorSet plugs into the same tick-driver call site.
package sense
