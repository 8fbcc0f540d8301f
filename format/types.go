package format

type (
	RecordKind      uint8
	CompressionType uint8
	TrailingMode    uint8
)

const (
	// KindReference represents a record pointing at an existing exemplar slot.
	KindReference RecordKind = 0x1
	// KindNewExemplar represents a record carrying a full raw window payload.
	KindNewExemplar RecordKind = 0x2

	CompressionNone CompressionType = 0x1 // CompressionNone represents no payload compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	// TrailingFlush emits a trailing partial window as a short final window
	// when the session drains (batch/backlog mode).
	TrailingFlush TrailingMode = 0x1
	// TrailingBuffer keeps a trailing partial window buffered for a future
	// push (streaming mode). The retained tail is never emitted by Finish;
	// callers observe it and may carry it into a later session.
	TrailingBuffer TrailingMode = 0x2
)

func (k RecordKind) String() string {
	switch k {
	case KindReference:
		return "Reference"
	case KindNewExemplar:
		return "NewExemplar"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (m TrailingMode) String() string {
	switch m {
	case TrailingFlush:
		return "Flush"
	case TrailingBuffer:
		return "Buffer"
	default:
		return "Unknown"
	}
}
