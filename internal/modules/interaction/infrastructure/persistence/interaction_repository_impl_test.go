package persistence

import (
	"context"
	"testing"

	"ShopRec/internal/initial"
	catalogEntity "ShopRec/internal/modules/catalog/domain/entity"
	"ShopRec/internal/modules/interaction/domain/entity"
	"ShopRec/internal/modules/interaction/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) repository.InteractionRepository {
	t.Helper()
	db, err := initial.OpenSQLite(":memory:")
	require.NoError(t, err)
	for _, p := range []catalogEntity.Product{
		{Name: "Laptop", Category: "Electronics", Price: 1000},
		{Name: "Tablet", Category: "Electronics", Price: 850},
		{Name: "Novel", Category: "Books", Price: 20},
	} {
		p := p
		require.NoError(t, db.Create(&p).Error)
	}
	return NewInteractionRepository(db)
}

func TestInteractionRepository_Cart(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateCart(ctx, &entity.UserCart{UserId: 1, ProductId: 1}))
	require.NoError(t, repo.CreateCart(ctx, &entity.UserCart{UserId: 1, ProductId: 2, Quantity: 2}))
	require.NoError(t, repo.CreateCart(ctx, &entity.UserCart{UserId: 1, ProductId: 1}))
	require.NoError(t, repo.CreateCart(ctx, &entity.UserCart{UserId: 2, ProductId: 3}))

	items, err := repo.ListCartItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Laptop", items[0].Name)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "Electronics", items[1].Category)
	assert.Equal(t, 850.0, items[1].Price)

	// 重复加购的两行合并为最新一行
	found, err := repo.SetCartQuantity(ctx, 1, 1, 4)
	require.NoError(t, err)
	assert.True(t, found)
	items, err = repo.ListCartItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, items[0].ProductId)
	assert.EqualValues(t, 1, items[1].ProductId)
	assert.Equal(t, 4, items[1].Quantity)

	found, err = repo.SetCartQuantity(ctx, 1, 3, 1)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.SetCartQuantity(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.True(t, found)

	n, err := repo.RemoveCartProduct(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	items, err = repo.ListCartItems(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	pairs, err := repo.ListCartPairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.EqualValues(t, 2, pairs[0].UserId)
	assert.EqualValues(t, 3, pairs[0].ProductId)
}

func TestInteractionRepository_RecentViews(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, pid := range []int64{1, 2, 1, 3} {
		require.NoError(t, repo.CreateView(ctx, &entity.UserView{UserId: 7, ProductId: pid}))
	}
	require.NoError(t, repo.CreateView(ctx, &entity.UserView{UserId: 8, ProductId: 2}))

	ids, err := repo.RecentViewedProductIDs(ctx, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	ids, err = repo.RecentViewedProductIDs(ctx, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids)

	ids, err = repo.RecentViewedProductIDs(ctx, 99, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInteractionRepository_PopularProducts(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	// 浏览权重 1，加购权重 3*数量
	for _, pid := range []int64{1, 1, 2, 3} {
		require.NoError(t, repo.CreateView(ctx, &entity.UserView{UserId: 1, ProductId: pid}))
	}
	require.NoError(t, repo.CreateCart(ctx, &entity.UserCart{UserId: 1, ProductId: 3, Quantity: 2}))
	require.NoError(t, repo.CreateSearch(ctx, &entity.UserSearch{UserId: 1, SearchText: "laptop"}))

	top, err := repo.PopularProducts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.EqualValues(t, 3, top[0].ProductId)
	assert.Equal(t, 7.0, top[0].Score)
	assert.EqualValues(t, 1, top[1].ProductId)
	assert.Equal(t, 2.0, top[1].Score)
}
