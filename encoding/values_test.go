package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensorstream/windowpack/endian"
)

func TestAppendDecodeValues(t *testing.T) {
	engines := map[string]endian.EndianEngine{
		"LittleEndian": endian.GetLittleEndianEngine(),
		"BigEndian":    endian.GetBigEndianEngine(),
	}

	values := []float64{0, 1.5, -273.15, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1)}

	for name, engine := range engines {
		t.Run(name, func(t *testing.T) {
			encoded := AppendValues(nil, values, engine)
			require.Len(t, encoded, ValuesSize(len(values)))

			decoded, err := DecodeValues(encoded, len(values), engine)
			require.NoError(t, err)
			require.Equal(t, values, decoded)
		})
	}
}

func TestDecodeValuesShortPayload(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	encoded := AppendValues(nil, []float64{1, 2, 3}, engine)
	_, err := DecodeValues(encoded[:16], 3, engine)
	require.Error(t, err)
}

func TestAppendValuesPreservesNaN(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	encoded := AppendValues(nil, []float64{math.NaN()}, engine)
	decoded, err := DecodeValues(encoded, 1, engine)
	require.NoError(t, err)
	require.True(t, math.IsNaN(decoded[0]))
}
