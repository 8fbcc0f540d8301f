// Package section defines the fixed-size binary sections of the windowpack
// record stream format.
//
// A record stream is a stream header followed by zero or more record frames:
//
//	+---------------+----------------+----------------+------
//	| StreamHeader  | RecordHeader 1 | payload 1      | ...
//	| (32 bytes)    | (20 bytes)     | (variable)     |
//	+---------------+----------------+----------------+------
//
// The stream header carries the device identity and every engine setting the
// decompressor needs to replay the pool trajectory: window size, pool
// capacity, sample arity, payload compression and trailing-window mode.
// Record frames carry one compressed window decision each; reference frames
// have no payload.
//
// All multi-byte fields honor the endianness flag in the stream header, except
// the flag field itself which is always little-endian so that readers can
// bootstrap.
package section
