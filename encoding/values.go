// Package encoding serializes window values for the record wire format.
//
// Window payloads are flat float64 slices (row-major, window length × sample
// arity). Values are stored in their native IEEE 754 binary representation
// using the configured endianness; any pattern-level redundancy is handled by
// the payload compression codec, not by the value encoding.
package encoding

import (
	"fmt"
	"math"

	"github.com/sensorstream/windowpack/endian"
)

// AppendValues appends the binary representation of values to dst and returns
// the extended slice.
//
// Each float64 occupies exactly 8 bytes, so the encoded size is predictable:
// len(values) × 8 bytes. The destination slice grows as needed.
//
// Parameters:
//   - dst: Destination slice (may be nil)
//   - values: Flat window values to encode
//   - engine: Endian engine for byte order
//
// Returns:
//   - []byte: dst with the encoded values appended
func AppendValues(dst []byte, values []float64, engine endian.EndianEngine) []byte {
	for _, v := range values {
		dst = engine.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// DecodeValues decodes count float64 values from data.
//
// Parameters:
//   - data: Encoded payload bytes (must be at least count × 8 bytes)
//   - count: Number of float64 values to decode
//   - engine: Endian engine for byte order
//
// Returns:
//   - []float64: Decoded values (newly allocated, owned by the caller)
//   - error: Size error if data is shorter than count × 8 bytes
func DecodeValues(data []byte, count int, engine endian.EndianEngine) ([]float64, error) {
	if len(data) < count*8 {
		return nil, fmt.Errorf("value payload too short: need %d bytes, have %d", count*8, len(data))
	}

	values := make([]float64, count)
	for i := range count {
		values[i] = math.Float64frombits(engine.Uint64(data[i*8 : i*8+8]))
	}

	return values, nil
}

// ValuesSize returns the encoded byte size of a flat value slice.
func ValuesSize(count int) int {
	return count * 8
}
