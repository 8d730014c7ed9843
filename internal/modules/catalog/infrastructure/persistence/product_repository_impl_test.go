package persistence

import (
	"context"
	"testing"

	"ShopRec/internal/initial"
	"ShopRec/internal/modules/catalog/domain/entity"
	"ShopRec/internal/modules/catalog/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts(t *testing.T) (repository.ProductRepository, repository.EmbeddingRepository) {
	t.Helper()
	db, err := initial.OpenSQLite(":memory:")
	require.NoError(t, err)
	products := NewProductRepository(db)
	ctx := context.Background()
	for _, p := range []entity.Product{
		{Name: "Laptop", Category: "Electronics", Price: 1000, Description: "fast laptop"},
		{Name: "Tablet", Category: "Electronics", Price: 850, Description: "light tablet"},
		{Name: "Phone", Category: "Electronics", Price: 1150, Description: "smart phone"},
		{Name: "TV", Category: "Electronics", Price: 2000, Description: "big screen"},
		{Name: "Novel", Category: "Books", Price: 20, Description: "a story"},
	} {
		p := p
		require.NoError(t, products.CreateProduct(ctx, &p))
	}
	return products, NewEmbeddingRepository(db)
}

func TestProductRepository_GetProductsByIDsKeepsOrder(t *testing.T) {
	products, _ := seedProducts(t)
	rows, err := products.GetProductsByIDs(context.Background(), []int64{3, 1, 99, 3, 2})
	require.NoError(t, err)

	ids := make([]int64, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ProductId)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)

	empty, err := products.GetProductsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepository_ListAndCategories(t *testing.T) {
	products, _ := seedProducts(t)
	ctx := context.Background()

	rows, total, err := products.ListProducts(ctx, entity.ProductFilter{Category: "Electronics", Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Tablet", rows[0].Name)
	assert.Equal(t, "Phone", rows[1].Name)

	cats, err := products.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Electronics"}, cats)
}

func TestProductRepository_FindInPriceBand(t *testing.T) {
	products, _ := seedProducts(t)
	rows, err := products.FindInPriceBand(context.Background(), entity.PriceBandFilter{
		Category:   "Electronics",
		MinPrice:   800,
		MaxPrice:   1200,
		ExcludeIDs: []int64{1},
		Limit:      5,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Tablet", rows[0].Name)
	assert.Equal(t, "Phone", rows[1].Name)
}

func TestEmbeddingRepository(t *testing.T) {
	products, embeddings := seedProducts(t)
	ctx := context.Background()

	ok, err := embeddings.ExistsEmbedding(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, embeddings.SaveEmbedding(ctx, entity.NewProductEmbedding(1, []float32{1, 0, 0}, "hash/test")))
	require.NoError(t, embeddings.SaveEmbedding(ctx, entity.NewProductEmbedding(3, []float32{0, 1, 0}, "hash/test")))

	ok, err = embeddings.ExistsEmbedding(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	row, err := embeddings.GetEmbedding(ctx, 3)
	require.NoError(t, err)
	vec, err := row.Vector()
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, vec)
	assert.Equal(t, "hash/test", row.Model)

	all, err := embeddings.ListEmbeddings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := embeddings.GetEmbeddingsByProductIDs(ctx, []int64{3, 4})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.EqualValues(t, 3, some[0].ProductId)

	missing, err := products.ListProductsWithoutEmbedding(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(missing))
	for _, p := range missing {
		ids = append(ids, p.ProductId)
	}
	assert.Equal(t, []int64{2, 4, 5}, ids)
}
