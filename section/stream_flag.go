package section

import (
	"fmt"

	"github.com/sensorstream/windowpack/endian"
	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
)

// StreamFlag represents the packed flag field at the start of a stream header.
type StreamFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is reserved, must be set to 0.
	// Bit 1 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bit 2-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are magic number to identify the stream format:
	//   - 0xEC10 (0b1110_1100_0001_0000): Record stream format v1
	Options uint16

	// CompressionType is the payload compression applied to new-exemplar frames.
	CompressionType uint8

	// TrailingMode is the trailing partial-window policy the stream was
	// produced with.
	TrailingMode uint8
}

var validCompressions = map[uint8]struct{}{
	uint8(format.CompressionNone): {},
	uint8(format.CompressionZstd): {},
	uint8(format.CompressionS2):   {},
	uint8(format.CompressionLZ4):  {},
}

var validTrailingModes = map[uint8]struct{}{
	uint8(format.TrailingFlush):  {},
	uint8(format.TrailingBuffer): {},
}

// NewStreamFlag creates a new StreamFlag with default settings:
// little-endian, no payload compression, batch trailing mode.
func NewStreamFlag() StreamFlag {
	flag := StreamFlag{
		Options:         MagicStreamV1Opt,
		CompressionType: uint8(format.CompressionNone),
		TrailingMode:    uint8(format.TrailingFlush),
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the stream data is little-endian.
func (f StreamFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// WithLittleEndian sets the endianness to little-endian.
func (f *StreamFlag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// WithBigEndian sets the endianness to big-endian.
func (f *StreamFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetEndianEngine returns the endian engine matching the endianness flag.
func (f StreamFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// Compression returns the payload compression type.
func (f StreamFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the payload compression type.
func (f *StreamFlag) SetCompression(typ format.CompressionType) {
	f.CompressionType = uint8(typ)
}

// Trailing returns the trailing-window mode.
func (f StreamFlag) Trailing() format.TrailingMode {
	return format.TrailingMode(f.TrailingMode)
}

// SetTrailing sets the trailing-window mode.
func (f *StreamFlag) SetTrailing(mode format.TrailingMode) {
	f.TrailingMode = uint8(mode)
}

// Validate checks the magic number and enum fields.
func (f StreamFlag) Validate() error {
	if f.Options&MagicNumberMask != MagicStreamV1Opt {
		return fmt.Errorf("%w: options 0x%04x", errs.ErrInvalidMagic, f.Options)
	}

	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved bits set in options 0x%04x", errs.ErrInvalidMagic, f.Options)
	}

	if _, ok := validCompressions[f.CompressionType]; !ok {
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompressionType, f.CompressionType)
	}

	if _, ok := validTrailingModes[f.TrailingMode]; !ok {
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidTrailingMode, f.TrailingMode)
	}

	return nil
}
