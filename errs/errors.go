// Package errs defines sentinel errors shared across windowpack packages.
//
// All errors are exported as sentinel values so callers can match them with
// errors.Is even when they have been wrapped with additional context such as
// the device ID or window index.
package errs

import "errors"

// Session and input errors.
var (
	// ErrMalformedInputOrder indicates a device's sample stream violated the
	// strictly-increasing timestamp requirement (out-of-order or duplicate
	// timestamps). Fatal to the affected session.
	ErrMalformedInputOrder = errors.New("malformed input order")

	// ErrPoolInsertFailure indicates the exemplar pool was configured with
	// zero capacity. Detected at session start, before any window is processed.
	ErrPoolInsertFailure = errors.New("exemplar pool insert failure")

	// ErrSessionConflict indicates a second concurrent session was opened for
	// a device that already has a live session. The caller may retry after the
	// prior session closes.
	ErrSessionConflict = errors.New("session conflict")

	// ErrSessionClosed indicates an operation was attempted on a session that
	// has already been finished or discarded.
	ErrSessionClosed = errors.New("session closed")

	// ErrEmptyWindow indicates a zero-length window was handed to the engine.
	ErrEmptyWindow = errors.New("empty window")

	// ErrArityMismatch indicates a sample's value vector length does not match
	// the session's configured arity.
	ErrArityMismatch = errors.New("sample arity mismatch")
)

// Pool errors.
var (
	// ErrSlotNotFound indicates a slot index does not identify a live exemplar.
	ErrSlotNotFound = errors.New("exemplar slot not found")
)

// Decompression errors.
var (
	// ErrDanglingReference indicates a reference record points at a slot that
	// was evicted or never inserted. Signals a corrupted or reordered record
	// stream; the decompressor never substitutes a nearby exemplar.
	ErrDanglingReference = errors.New("dangling exemplar reference")

	// ErrSlotMismatch indicates a new-exemplar record declared a slot index
	// that differs from the slot the replayed pool trajectory assigns. The
	// record stream is corrupted or was produced with different settings.
	ErrSlotMismatch = errors.New("exemplar slot mismatch")
)

// Stream format errors.
var (
	// ErrInvalidMagic indicates the stream header does not start with the
	// windowpack magic number.
	ErrInvalidMagic = errors.New("invalid stream magic")

	// ErrInvalidHeaderSize indicates a header byte slice has the wrong length.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidRecordKind indicates a record header carries an unknown kind.
	ErrInvalidRecordKind = errors.New("invalid record kind")

	// ErrTruncatedRecord indicates the stream ended in the middle of a record.
	ErrTruncatedRecord = errors.New("truncated record")

	// ErrInvalidCompressionType indicates an unknown payload compression type.
	ErrInvalidCompressionType = errors.New("invalid compression type")

	// ErrInvalidTrailingMode indicates an unknown trailing-window mode.
	ErrInvalidTrailingMode = errors.New("invalid trailing mode")
)

// Configuration errors.
var (
	// ErrInvalidConfig indicates an engine or runner option is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)
