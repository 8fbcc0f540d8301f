package engine

import (
	"fmt"
	"math"

	"github.com/sensorstream/windowpack/compress"
	"github.com/sensorstream/windowpack/encoding"
	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
	"github.com/sensorstream/windowpack/internal/pool"
	"github.com/sensorstream/windowpack/section"
)

// StreamWriter serializes a device's record sequence into the binary stream
// format: a 32-byte stream header followed by one frame per record. It
// implements RecordSink, so it plugs directly into a Compressor.
//
// New-exemplar payloads are encoded as wire-order float64 values and run
// through the stream's payload codec; reference frames are header-only.
type StreamWriter struct {
	header *section.StreamHeader
	codec  compress.Codec

	body     *pool.ByteBuffer
	scratch  []byte
	finished bool
}

// NewStreamWriter creates a writer for one device stream. The header fixes
// the session shape (window size, pool capacity, arity) and the stream
// options (endianness, payload compression, trailing mode); use
// section.NewStreamHeader to build it.
func NewStreamWriter(header *section.StreamHeader) (*StreamWriter, error) {
	if err := header.Flag.Validate(); err != nil {
		return nil, err
	}

	codec, err := compress.CodecFor(header.Flag.Compression())
	if err != nil {
		return nil, err
	}

	return &StreamWriter{
		header: header,
		codec:  codec,
		body:   pool.GetStreamBuffer(),
	}, nil
}

// Append serializes one record frame. Records must arrive in window order;
// the writer does not reorder.
func (sw *StreamWriter) Append(rec Record) error {
	if sw.finished {
		return fmt.Errorf("%w: stream already finished", errs.ErrSessionClosed)
	}

	engine := sw.header.Flag.GetEndianEngine()

	var payload []byte
	hdr := section.RecordHeader{
		Kind:        rec.Kind(),
		WindowStart: rec.Start(),
	}

	switch r := rec.(type) {
	case *Reference:
		hdr.Slot = uint16(r.Slot)
		hdr.Count = uint16(r.Count)

	case *NewExemplar:
		hdr.Slot = uint16(r.Slot)
		hdr.Count = uint16(r.Window.Count)

		sw.scratch = encoding.AppendValues(sw.scratch[:0], r.Window.Values, engine)
		compressed, err := sw.codec.Compress(sw.scratch)
		if err != nil {
			return fmt.Errorf("compress record %d payload: %w", sw.header.RecordCount, err)
		}
		if uint64(len(compressed)) > math.MaxUint32 {
			return fmt.Errorf("%w: payload %d bytes exceeds frame limit", errs.ErrTruncatedRecord, len(compressed))
		}
		payload = compressed
		hdr.PayloadLen = uint32(len(compressed))
	}

	if sw.header.RecordCount == 0 {
		sw.header.StartTime = rec.Start()
	}

	sw.body.MustWrite(hdr.Bytes(engine))
	if len(payload) > 0 {
		sw.body.MustWrite(payload)
	}
	sw.header.RecordCount++

	return nil
}

// Bytes finalizes the stream and returns the full serialized form, header
// included. The writer is finished afterwards; further appends fail.
func (sw *StreamWriter) Bytes() []byte {
	sw.finished = true

	out := make([]byte, 0, section.StreamHeaderSize+sw.body.Len())
	out = append(out, sw.header.Bytes()...)
	out = append(out, sw.body.Bytes()...)

	return out
}

// Close releases the writer's pooled buffer. Call after Bytes.
func (sw *StreamWriter) Close() {
	if sw.body != nil {
		pool.PutStreamBuffer(sw.body)
		sw.body = nil
	}
}

// StreamReader decodes a serialized record stream. It is re-readable: Reset
// rewinds to the first record, which is how the decompressor side satisfies
// the order-preserving re-readable source contract.
type StreamReader struct {
	header section.StreamHeader
	codec  compress.Codec
	data   []byte // frame section, header stripped

	offset int
	index  uint32
}

// NewStreamReader parses and validates the stream header and positions the
// reader at the first record.
func NewStreamReader(data []byte) (*StreamReader, error) {
	header, err := section.ParseStreamHeader(data)
	if err != nil {
		return nil, err
	}

	codec, err := compress.CodecFor(header.Flag.Compression())
	if err != nil {
		return nil, err
	}

	return &StreamReader{
		header: header,
		codec:  codec,
		data:   data[section.StreamHeaderSize:],
	}, nil
}

// Header returns the parsed stream header.
func (sr *StreamReader) Header() section.StreamHeader { return sr.header }

// Next decodes the next record. Returns (nil, nil) after the last record;
// corruption or truncation fails with ErrTruncatedRecord naming the record
// index.
func (sr *StreamReader) Next() (Record, error) {
	if sr.offset >= len(sr.data) {
		if sr.header.RecordCount != 0 && sr.index < sr.header.RecordCount {
			return nil, fmt.Errorf("%w: stream ends after %d of %d records",
				errs.ErrTruncatedRecord, sr.index, sr.header.RecordCount)
		}
		return nil, nil
	}

	engine := sr.header.Flag.GetEndianEngine()

	if len(sr.data)-sr.offset < section.RecordHeaderSize {
		return nil, fmt.Errorf("%w: record %d header truncated", errs.ErrTruncatedRecord, sr.index)
	}

	var hdr section.RecordHeader
	if err := hdr.Parse(sr.data[sr.offset:sr.offset+section.RecordHeaderSize], engine); err != nil {
		return nil, fmt.Errorf("record %d: %w", sr.index, err)
	}
	sr.offset += section.RecordHeaderSize

	switch hdr.Kind {
	case format.KindReference:
		sr.index++
		return &Reference{
			Slot:        int(hdr.Slot),
			WindowStart: hdr.WindowStart,
			Count:       int(hdr.Count),
		}, nil

	case format.KindNewExemplar:
		if len(sr.data)-sr.offset < int(hdr.PayloadLen) {
			return nil, fmt.Errorf("%w: record %d payload truncated", errs.ErrTruncatedRecord, sr.index)
		}
		payload := sr.data[sr.offset : sr.offset+int(hdr.PayloadLen)]
		sr.offset += int(hdr.PayloadLen)

		raw, err := sr.codec.Decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("decompress record %d payload: %w", sr.index, err)
		}

		count := int(hdr.Count) * int(sr.header.Arity)
		values, err := encoding.DecodeValues(raw, count, engine)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", sr.index, err)
		}

		sr.index++
		return &NewExemplar{
			Slot:        int(hdr.Slot),
			WindowStart: hdr.WindowStart,
			Window: Window{
				Device:    sr.header.DeviceID,
				StartTime: hdr.WindowStart,
				Count:     int(hdr.Count),
				Arity:     int(sr.header.Arity),
				Values:    values,
			},
		}, nil

	default:
		return nil, fmt.Errorf("record %d: %w: 0x%02x", sr.index, errs.ErrInvalidRecordKind, uint8(hdr.Kind))
	}
}

// Records decodes all remaining records.
func (sr *StreamReader) Records() ([]Record, error) {
	var records []Record
	for {
		rec, err := sr.Next()
		if err != nil {
			return records, err
		}
		if rec == nil {
			return records, nil
		}
		records = append(records, rec)
	}
}

// Reset rewinds the reader to the first record.
func (sr *StreamReader) Reset() {
	sr.offset = 0
	sr.index = 0
}
