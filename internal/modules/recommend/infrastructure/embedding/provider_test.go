package embedding

import (
	"context"
	"testing"

	"ShopRec/internal/config"
	"ShopRec/pkg/vector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	em := NewHashEmbedder(64)
	a, err := Compute(context.Background(), em, "Wireless noise cancelling headphones")
	require.NoError(t, err)
	b, err := Compute(context.Background(), em, "wireless NOISE cancelling headphones!")
	require.NoError(t, err)

	require.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, vector.Norm(a), 1e-5)
}

func TestHashEmbedder_SimilarTextScoresHigher(t *testing.T) {
	em := NewHashEmbedder(256)
	ctx := context.Background()
	q, _ := Compute(ctx, em, "running shoes for trail")
	near, _ := Compute(ctx, em, "trail running shoes")
	far, _ := Compute(ctx, em, "stainless steel kitchen knife")

	sNear, ok := vector.Cosine(q, near)
	require.True(t, ok)
	sFar, ok := vector.Cosine(q, far)
	require.True(t, ok)
	assert.Greater(t, sNear, sFar)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	out, err := NewHashEmbedder(8).EmbedStrings(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 8), out[0])
}

func TestNewEmbedderFromConfig(t *testing.T) {
	conf := &config.Config{}
	conf.ApplyDefaults()

	em, meta, err := NewEmbedderFromConfig(context.Background(), conf)
	require.NoError(t, err)
	assert.IsType(t, &HashEmbedder{}, em)
	assert.Equal(t, "hash", meta.Provider)
	assert.Equal(t, 384, meta.Dim)
	assert.Equal(t, "hash/hash-bow", meta.Name())

	conf.AIConfig.Embedding.Provider = "nope"
	_, _, err = NewEmbedderFromConfig(context.Background(), conf)
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"usb", "c", "cable", "2m"}, Tokenize("USB-C cable, 2m"))
}
