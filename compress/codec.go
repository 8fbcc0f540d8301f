package compress

import (
	"fmt"

	"github.com/sensorstream/windowpack/format"
)

// Compressor compresses serialized window payloads.
//
// The input is a complete new-exemplar payload (the window's raw float64
// values in wire byte order). Payloads are typically a few hundred bytes to
// a few kilobytes, so implementations favor block APIs over streaming ones.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a window payload previously produced by the matching
// Compressor.
//
// The decompressor validates the data format and returns an error if the data
// is corrupted or was compressed with an incompatible algorithm. It never
// returns partially decompressed data.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
//
// Compression and decompression of a record stream always use the same
// algorithm, so the engine holds a single Codec per session.
type Codec interface {
	Compressor
	Decompressor
}

// CodecFor returns the codec matching the given compression type.
//
// The compression type is stored in the stream header, so readers resolve
// the codec from the header alone without out-of-band configuration.
//
// Returns:
//   - Codec: The matching codec instance
//   - error: ErrInvalidCompressionType semantics via fmt error for unknown types
func CodecFor(typ format.CompressionType) (Codec, error) {
	switch typ {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", typ)
	}
}
