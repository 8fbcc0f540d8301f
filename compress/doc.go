// Package compress provides compression and decompression codecs for windowpack
// exemplar payloads.
//
// New-exemplar records carry the full raw window payload; references carry none.
// Compression is applied at the payload level after the window values have been
// serialized, so the choice of algorithm never affects which records are emitted,
// only how many bytes a new-exemplar record occupies on the wire.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
//   - None: No compression (fastest, largest)
//   - Zstd: Excellent compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// Window payloads are short (window size × arity float64 values), so the fast
// block APIs are used throughout; no streaming compression is needed.
//
// Use CodecFor to map a format.CompressionType from a stream header to the
// matching codec. Both sides of a record stream must use the same codec; the
// type is recorded in the stream header so the reader resolves it automatically.
package compress
