package vector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	in := []float32{0.5, -1.25, 3, 0}
	buf := Encode(in)
	require.Len(t, buf, 16)

	out, err := Decode(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, 0)
	assert.True(t, errors.Is(err, ErrMalformedBlob))

	_, err = Decode(nil, 0)
	assert.True(t, errors.Is(err, ErrMalformedBlob))

	_, err = Decode(Encode([]float32{1, 2}), 3)
	assert.True(t, errors.Is(err, ErrMalformedBlob))
}

func TestCosine(t *testing.T) {
	s, ok := Cosine([]float32{1, 0}, []float32{1, 0})
	require.True(t, ok)
	assert.InDelta(t, 1.0, s, 1e-9)

	s, ok = Cosine([]float32{1, 0}, []float32{0, 2})
	require.True(t, ok)
	assert.InDelta(t, 0.0, s, 1e-9)

	s, ok = Cosine([]float32{1, 1}, []float32{-1, -1})
	require.True(t, ok)
	assert.InDelta(t, -1.0, s, 1e-9)

	_, ok = Cosine([]float32{1, 0}, []float32{1, 0, 0})
	assert.False(t, ok)

	_, ok = Cosine([]float32{0, 0}, []float32{1, 0})
	assert.False(t, ok)
}

func TestNormalizeAndMean(t *testing.T) {
	n := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, n[0], 1e-6)
	assert.InDelta(t, 0.8, n[1], 1e-6)
	assert.InDelta(t, 1.0, Norm(n), 1e-6)

	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))

	m := Mean([][]float32{{1, 3}, {3, 5}, {1, 2, 3}})
	assert.Equal(t, []float32{2, 4}, m)
	assert.Nil(t, Mean(nil))
}
