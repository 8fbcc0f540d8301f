package section

import (
	"fmt"
	"unsafe"

	"github.com/sensorstream/windowpack/errs"
)

// StreamHeader represents the fixed-size header section at the start of a
// device's record stream.
//
// The header carries every setting the decompressor needs to replay the
// compression-side pool trajectory deterministically; the record frames alone
// are not self-describing.
type StreamHeader struct {
	// DeviceID is the unsigned 64-bit device id or the xxHash64 hash of the
	// device name string.
	DeviceID uint64 // byte offset 4-11

	// WindowSize is the configured window length W in samples.
	WindowSize uint16 // byte offset 12-13

	// PoolCapacity is the configured exemplar pool capacity.
	PoolCapacity uint16 // byte offset 14-15

	// Arity is the per-sample value vector width.
	Arity uint16 // byte offset 16-17, offset 18-19 reserved

	// RecordCount is the number of record frames in the stream.
	// Zero for open-ended streaming sessions; set on Finish for batch runs.
	RecordCount uint32 // byte offset 20-23

	// StartTime is the start timestamp of the first window, the unix
	// timestamp in microseconds. Zero until the first window is emitted.
	StartTime int64 // byte offset 24-31

	// Flag is a packed field for various flags and magic number.
	Flag StreamFlag // byte offset 0-3
}

// NewStreamHeader creates a new StreamHeader for the given device and
// session shape. RecordCount and StartTime are filled in when the stream
// writer finishes.
func NewStreamHeader(deviceID uint64, windowSize, poolCapacity, arity int) (*StreamHeader, error) {
	if windowSize <= 0 || windowSize > MaxWindowSize {
		return nil, fmt.Errorf("%w: window size %d out of range [1, %d]", errs.ErrInvalidConfig, windowSize, MaxWindowSize)
	}
	if poolCapacity <= 0 || poolCapacity > MaxPoolCapacity {
		return nil, fmt.Errorf("%w: pool capacity %d out of range [1, %d]", errs.ErrInvalidConfig, poolCapacity, MaxPoolCapacity)
	}
	if arity <= 0 || arity > MaxArity {
		return nil, fmt.Errorf("%w: arity %d out of range [1, %d]", errs.ErrInvalidConfig, arity, MaxArity)
	}

	return &StreamHeader{
		Flag:         NewStreamFlag(),
		DeviceID:     deviceID,
		WindowSize:   uint16(windowSize),
		PoolCapacity: uint16(poolCapacity),
		Arity:        uint16(arity),
	}, nil
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, or flag validation errors
func (h *StreamHeader) Parse(data []byte) error {
	if len(data) != StreamHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// Parse flag first to determine endianness (always little-endian for the
	// options field itself)
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.CompressionType = data[2]
	h.Flag.TrailingMode = data[3]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()

	h.DeviceID = engine.Uint64(data[4:12])
	h.WindowSize = engine.Uint16(data[12:14])
	h.PoolCapacity = engine.Uint16(data[14:16])
	h.Arity = engine.Uint16(data[16:18])
	h.RecordCount = engine.Uint32(data[20:24])

	// Use unsafe pointer conversion to interpret bytes as signed int64
	startTimeUint := engine.Uint64(data[24:32])
	h.StartTime = *(*int64)(unsafe.Pointer(&startTimeUint))

	return nil
}

// Bytes serializes the StreamHeader into a byte slice.
func (h *StreamHeader) Bytes() []byte {
	b := make([]byte, StreamHeaderSize)

	engine := h.Flag.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.CompressionType
	b[3] = h.Flag.TrailingMode
	engine.PutUint64(b[4:12], h.DeviceID)
	engine.PutUint16(b[12:14], h.WindowSize)
	engine.PutUint16(b[14:16], h.PoolCapacity)
	engine.PutUint16(b[16:18], h.Arity)
	engine.PutUint32(b[20:24], h.RecordCount)
	// Timestamps are stored as-is in binary; bitwise conversion avoids overflow warnings
	engine.PutUint64(b[24:32], *(*uint64)(unsafe.Pointer(&h.StartTime)))

	return b
}

// ParseStreamHeader parses a StreamHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 32 bytes)
//
// Returns:
//   - StreamHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or flag validation errors
func ParseStreamHeader(data []byte) (StreamHeader, error) {
	if len(data) < StreamHeaderSize {
		return StreamHeader{}, errs.ErrInvalidHeaderSize
	}

	var header StreamHeader
	if err := header.Parse(data[:StreamHeaderSize]); err != nil {
		return StreamHeader{}, err
	}

	return header, nil
}
