// Package engine implements the exemplar-based window compression engine for
// per-device sensor telemetry.
//
// A compression session slices one device's time-ordered samples into fixed
// length windows, compares each window against a bounded pool of previously
// stored exemplar windows, and emits one record per window: a Reference when
// the nearest exemplar is within the current acceptance threshold, or a
// NewExemplar carrying the raw values otherwise. An adaptive controller
// nudges the threshold after every window to steer the session toward a
// target compression gain without blowing the reconstruction error budget.
//
// Decompression replays the record sequence against an independently
// maintained pool. Because pool eviction is a deterministic function of the
// record history alone (LRU by logical sequence, ties by insertion order),
// the decompressor reproduces the exact slot trajectory of the compressor and
// can resolve every Reference without ever seeing the raw values of matched
// windows.
//
// Sessions are strictly per device. State is never shared between devices,
// so distinct devices compress in parallel with no locking; within one device
// the window order is causal and sequential.
package engine
