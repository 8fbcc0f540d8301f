package compress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensorstream/windowpack/format"
)

func testPayload() []byte {
	// Serialized float64 window payload shape: repetitive byte patterns with
	// small variations, similar to slowly varying sensor values.
	data := make([]byte, 0, 64*8)
	for i := 0; i < 64; i++ {
		data = append(data, byte(i), 0, 0, 0, 0, 0, byte(40+i%3), 64)
	}

	return data
}

func TestCodecRoundTrip(t *testing.T) {
	codecs := map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"Zstd": NewZstdCompressor(),
		"S2":   NewS2Compressor(),
		"LZ4":  NewLZ4Compressor(),
	}

	payload := testPayload()

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, payload, restored)
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	codecs := []Codec{
		NewZstdCompressor(),
		NewS2Compressor(),
		NewLZ4Compressor(),
	}

	for _, codec := range codecs {
		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		restored, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, restored)
	}
}

func TestCodecFor(t *testing.T) {
	t.Run("KnownTypes", func(t *testing.T) {
		for _, typ := range []format.CompressionType{
			format.CompressionNone,
			format.CompressionZstd,
			format.CompressionS2,
			format.CompressionLZ4,
		} {
			codec, err := CodecFor(typ)
			require.NoError(t, err)
			require.NotNil(t, codec)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := CodecFor(format.CompressionType(0xFF))
		require.Error(t, err)
	})
}

func TestLZ4IncompressibleRoundTrip(t *testing.T) {
	// a pseudo-random payload lz4 cannot shrink still round-trips via the
	// raw block tag
	payload := make([]byte, 256)
	state := uint64(0x9E3779B97F4A7C15)
	for i := range payload {
		state = state*6364136223846793005 + 1442695040888963407
		payload[i] = byte(state >> 56)
	}

	codec := NewLZ4Compressor()
	compressed, err := codec.Compress(payload)
	require.NoError(t, err)

	restored, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, payload, restored)
}

func TestCompressibleDataShrinks(t *testing.T) {
	payload := testPayload()

	for name, codec := range map[string]Codec{
		"Zstd": NewZstdCompressor(),
		"S2":   NewS2Compressor(),
	} {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(payload))
		})
	}
}
