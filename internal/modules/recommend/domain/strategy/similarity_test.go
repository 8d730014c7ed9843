package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankBySimilarity(t *testing.T) {
	candidates := []Candidate{
		{ProductID: 1, Vector: []float32{1, 0, 0}},
		{ProductID: 2, Vector: []float32{0.9, 0.1, 0}},
		{ProductID: 3, Vector: []float32{0, 1, 0}},
		{ProductID: 4, Vector: []float32{1, 0}},    // 维度不符
		{ProductID: 5, Vector: []float32{0, 0, 0}}, // 零向量
		{ProductID: 6, Vector: []float32{2, 0, 0}},
	}

	got := RankBySimilarity([]float32{1, 0, 0}, candidates, 3, nil)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 6, 2}, IDs(got))
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, 1.0, got[1].Score, 1e-9)

	got = RankBySimilarity([]float32{1, 0, 0}, candidates, 10, ExcludeSet(1))
	assert.Equal(t, []int64{6, 2, 3}, IDs(got))
}

func TestRankBySimilarity_EdgeCases(t *testing.T) {
	c := []Candidate{{ProductID: 1, Vector: []float32{1}}}
	assert.Empty(t, RankBySimilarity(nil, c, 5, nil))
	assert.Empty(t, RankBySimilarity([]float32{1}, nil, 5, nil))
	assert.Empty(t, RankBySimilarity([]float32{1}, c, 0, nil))
}

func TestBuildCartContext(t *testing.T) {
	lines := []CartLine{
		{CartID: 3, ProductID: 7, Category: "shoes", Price: 100},
		{CartID: 1, ProductID: 5, Category: "books", Price: 20},
		{CartID: 2, ProductID: 7, Category: "shoes", Price: 100},
	}
	ctx, ok := BuildCartContext(lines, 0.2)
	require.True(t, ok)
	assert.Equal(t, "shoes", ctx.Category)
	assert.InDelta(t, 80.0, ctx.MinPrice, 1e-9)
	assert.InDelta(t, 120.0, ctx.MaxPrice, 1e-9)
	assert.ElementsMatch(t, []int64{7, 5}, ctx.ExcludeIDs)

	_, ok = BuildCartContext(nil, 0.2)
	assert.False(t, ok)
}

func TestBuildCartContext_InclusiveEdges(t *testing.T) {
	// 3*0.8 在浮点下略大于 2.4，3*1.2 略小于 3.6
	ctx, ok := BuildCartContext([]CartLine{{CartID: 1, ProductID: 1, Category: "stationery", Price: 3}}, 0.2)
	require.True(t, ok)
	assert.LessOrEqual(t, ctx.MinPrice, 2.4)
	assert.GreaterOrEqual(t, ctx.MaxPrice, 3.6)
	assert.Greater(t, ctx.MinPrice, 2.39)
	assert.Less(t, ctx.MaxPrice, 3.61)
}
