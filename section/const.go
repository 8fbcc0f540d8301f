package section

import "math"

const (
	// Bit masks for the stream flag options field.
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2, 3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicStreamV1Opt is the version 1 magic number for the record stream format.
	MagicStreamV1Opt = 0xEC10
)

// Section sizes and limits of the record stream format.
const (
	StreamHeaderSize = 32 // fixed stream header size in bytes
	RecordHeaderSize = 20 // fixed record frame header size in bytes

	// MaxWindowSize bounds the per-window sample count so it fits the uint16
	// count field of a record frame.
	MaxWindowSize = math.MaxUint16

	// MaxPoolCapacity bounds the exemplar pool so slot indexes fit the uint16
	// slot field of a record frame.
	MaxPoolCapacity = math.MaxUint16

	// MaxArity bounds the per-sample vector width.
	MaxArity = math.MaxUint16
)
