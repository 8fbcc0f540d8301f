package section

import (
	"fmt"
	"unsafe"

	"github.com/sensorstream/windowpack/endian"
	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
)

// RecordHeader is the fixed-size frame header preceding each compressed
// record in a stream. It is 20 bytes on the wire.
//
// Reference frames carry no payload (PayloadLen is 0); new-exemplar frames
// are followed by PayloadLen bytes of (possibly compressed) window values.
type RecordHeader struct {
	// Kind is the record kind tag (reference or new exemplar).
	//
	// Offset: 0, Size: 1 byte
	Kind format.RecordKind

	// Slot is the exemplar pool slot the record references or inserts into.
	//
	// Offset: 2, Size: 2 bytes
	Slot uint16

	// Count is the number of samples in the window. Equal to the stream's
	// window size except for a short trailing window.
	//
	// Offset: 4, Size: 2 bytes
	Count uint16

	// WindowStart is the window start timestamp, unix microseconds.
	//
	// Offset: 8, Size: 8 bytes
	WindowStart int64

	// PayloadLen is the byte length of the payload following this header.
	// Always 0 for reference frames.
	//
	// Offset: 16, Size: 4 bytes
	PayloadLen uint32
}

// Parse parses a record header from a byte slice using the given engine.
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is shorter than 20 bytes,
//     ErrInvalidRecordKind for an unknown kind tag, or a payload-length
//     violation for reference frames
func (r *RecordHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < RecordHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	r.Kind = format.RecordKind(data[0])
	r.Slot = engine.Uint16(data[2:4])
	r.Count = engine.Uint16(data[4:6])

	windowStartUint := engine.Uint64(data[8:16])
	r.WindowStart = *(*int64)(unsafe.Pointer(&windowStartUint))

	r.PayloadLen = engine.Uint32(data[16:20])

	if r.Count == 0 {
		return errs.ErrEmptyWindow
	}

	switch r.Kind {
	case format.KindReference:
		if r.PayloadLen != 0 {
			return fmt.Errorf("%w: reference frame with %d payload bytes", errs.ErrInvalidRecordKind, r.PayloadLen)
		}
	case format.KindNewExemplar:
		// payload length validated against stream bounds by the reader
	default:
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidRecordKind, uint8(r.Kind))
	}

	return nil
}

// WriteToSlice serializes the record header into data at the given offset.
// The caller must ensure data has at least RecordHeaderSize bytes available
// at offset.
func (r RecordHeader) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) {
	b := data[offset : offset+RecordHeaderSize]

	b[0] = byte(r.Kind)
	b[1] = 0 // reserved
	engine.PutUint16(b[2:4], r.Slot)
	engine.PutUint16(b[4:6], r.Count)
	engine.PutUint16(b[6:8], 0) // reserved
	engine.PutUint64(b[8:16], *(*uint64)(unsafe.Pointer(&r.WindowStart)))
	engine.PutUint32(b[16:20], r.PayloadLen)
}

// Bytes serializes the record header into a new byte slice.
func (r RecordHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, RecordHeaderSize)
	r.WriteToSlice(b, 0, engine)

	return b
}
