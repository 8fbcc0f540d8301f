package compress

// ZstdCompressor provides Zstandard compression for exemplar payloads.
//
// This codec is designed for scenarios where compression ratio is more
// important than compression speed, making it ideal for:
//   - Backlog (batch) compression runs feeding cold storage
//   - Long-term retention of compressed record streams
//   - Network transmission where bandwidth is limited
//
// Two implementations are selected at build time:
//   - cgo builds use valyala/gozstd (libzstd bindings, best throughput)
//   - pure-Go builds fall back to klauspost/compress/zstd
//
// Both produce standard Zstandard frames and interoperate freely.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
