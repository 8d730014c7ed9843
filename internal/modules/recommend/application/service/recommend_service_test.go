package service

import (
	"context"
	"errors"
	"testing"

	"ShopRec/internal/initial"
	catalogService "ShopRec/internal/modules/catalog/application/service"
	catalogEntity "ShopRec/internal/modules/catalog/domain/entity"
	catalogRepository "ShopRec/internal/modules/catalog/domain/repository"
	catalogPersistence "ShopRec/internal/modules/catalog/infrastructure/persistence"
	interactionEntity "ShopRec/internal/modules/interaction/domain/entity"
	"ShopRec/internal/modules/interaction/domain/event"
	interactionRepository "ShopRec/internal/modules/interaction/domain/repository"
	interactionPersistence "ShopRec/internal/modules/interaction/infrastructure/persistence"
	"ShopRec/internal/modules/recommend/application/dto/respond"
	"ShopRec/internal/modules/recommend/domain/repository"
	"ShopRec/internal/modules/recommend/infrastructure/embedding"
	"ShopRec/internal/modules/recommend/infrastructure/popularity"
	"ShopRec/internal/modules/recommend/infrastructure/vectordb"
	"ShopRec/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc          RecommendService
	interactions interactionRepository.InteractionRepository
	products     catalogRepository.ProductRepository
}

func newFixture(t *testing.T, pop repository.PopularityStore) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := initial.OpenSQLite(":memory:")
	require.NoError(t, err)

	products := catalogPersistence.NewProductRepository(db)
	embeddings := catalogPersistence.NewEmbeddingRepository(db)
	interactions := interactionPersistence.NewInteractionRepository(db)
	catalog := catalogService.NewCatalogService(products, embeddings, embedding.NewHashEmbedder(384),
		embedding.EmbedderMeta{Provider: "hash", Model: "test", Dim: 384}, nil)

	for _, p := range []catalogEntity.Product{
		{Name: "Laptop", Category: "Electronics", Price: 1000, Description: "lightweight laptop with fast processor"},
		{Name: "Ultrabook", Category: "Electronics", Price: 1100, Description: "lightweight laptop with long battery"},
		{Name: "Tablet", Category: "Electronics", Price: 900, Description: "tablet with stylus"},
		{Name: "TV", Category: "Electronics", Price: 2000, Description: "large television screen"},
		{Name: "Novel", Category: "Books", Price: 15, Description: "mystery novel paperback"},
		{Name: "Cookbook", Category: "Books", Price: 25, Description: "italian recipes cookbook"},
	} {
		p := p
		require.NoError(t, products.CreateProduct(ctx, &p))
	}
	_, err = catalog.BackfillEmbeddings(ctx)
	require.NoError(t, err)

	if pop == nil {
		pop = popularity.NewSQLStore(interactions)
	}
	svc := NewRecommendService(products, embeddings, catalog, interactions, vectordb.NewDatabaseIndex(catalog), pop, Options{
		TopN:       5,
		PriceBand:  0.2,
		MinSupport: 0.2,
		MinLift:    1.1,
	})
	return &fixture{svc: svc, interactions: interactions, products: products}
}

func ids(items []respond.ProductBrief) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.Id)
	}
	return out
}

func TestRecommendService_SimilarToProduct(t *testing.T) {
	f := newFixture(t, nil)
	items, err := f.svc.SimilarToProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.EqualValues(t, 2, items[0].Id)
	assert.Equal(t, "Ultrabook", items[0].Name)
	assert.NotContains(t, ids(items), int64(1))

	_, err = f.svc.SimilarToProduct(context.Background(), 404)
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))
}

func TestRecommendService_Search(t *testing.T) {
	f := newFixture(t, nil)
	items, err := f.svc.Search(context.Background(), "tablet with stylus")
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.EqualValues(t, 3, items[0].Id)

	_, err = f.svc.Search(context.Background(), "   ")
	assert.Equal(t, xerr.BadRequest, xerr.CodeOf(err))
}

func TestRecommendService_CartContext(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	out, err := f.svc.CartContext(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, out)

	require.NoError(t, f.interactions.CreateCart(ctx, &interactionEntity.UserCart{UserId: 1, ProductId: 5}))
	require.NoError(t, f.interactions.CreateCart(ctx, &interactionEntity.UserCart{UserId: 1, ProductId: 1}))

	// 以最后加购的 Laptop(1000) 为准：Electronics 800~1200
	out, err = f.svc.CartContext(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.EqualValues(t, 2, out[0].ProductId)
	assert.EqualValues(t, 3, out[1].ProductId)
	assert.Equal(t, "Electronics", out[1].Category)
}

func TestRecommendService_CartContextInclusiveBand(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var anchor int64
	for _, p := range []catalogEntity.Product{
		{Name: "Pen", Category: "Stationery", Price: 3},
		{Name: "Pencil", Category: "Stationery", Price: 2.4},
		{Name: "Marker", Category: "Stationery", Price: 3.6},
		{Name: "Crayon", Category: "Stationery", Price: 2.39},
		{Name: "Stapler", Category: "Stationery", Price: 3.61},
	} {
		p := p
		require.NoError(t, f.products.CreateProduct(ctx, &p))
		if p.Name == "Pen" {
			anchor = p.ProductId
		}
	}
	require.NoError(t, f.interactions.CreateCart(ctx, &interactionEntity.UserCart{UserId: 1, ProductId: anchor}))

	// 3 上下浮动 20%：2.4 与 3.6 恰在端点上
	out, err := f.svc.CartContext(ctx, 1)
	require.NoError(t, err)
	names := make([]string, 0, len(out))
	for _, r := range out {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Pencil", "Marker"}, names)
}

func TestRecommendService_TopPicks(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	picks, err := f.svc.TopPicks(ctx)
	require.NoError(t, err)
	assert.Empty(t, picks)

	carts := map[int64][]int64{
		1: {1, 2},
		2: {1, 2},
		3: {1, 2, 3},
		4: {3, 4},
		5: {4},
	}
	for u := int64(1); u <= 5; u++ {
		for _, p := range carts[u] {
			require.NoError(t, f.interactions.CreateCart(ctx, &interactionEntity.UserCart{UserId: u, ProductId: p}))
		}
	}

	picks, err = f.svc.TopPicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 3, 4}, ids(picks))
	assert.Equal(t, "Ultrabook", picks[0].Name)
}

func TestRecommendService_ForUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// 无任何行为时退到 top_picks
	out, err := f.svc.ForUser(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, StrategyTopPicks, out.Strategy)
	assert.Empty(t, out.Items)

	require.NoError(t, f.interactions.CreateView(ctx, &interactionEntity.UserView{UserId: 7, ProductId: 4}))
	require.NoError(t, f.interactions.CreateView(ctx, &interactionEntity.UserView{UserId: 7, ProductId: 4}))
	require.NoError(t, f.interactions.CreateView(ctx, &interactionEntity.UserView{UserId: 7, ProductId: 6}))

	out, err = f.svc.ForUser(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, StrategyPopular, out.Strategy)
	assert.Equal(t, []int64{4, 6}, ids(out.Items))

	out, err = f.svc.ForUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StrategyContent, out.Strategy)
	assert.NotEmpty(t, out.Items)
	assert.NotContains(t, ids(out.Items), int64(4))
	assert.NotContains(t, ids(out.Items), int64(6))
}

type memoryStore struct {
	scores   map[int64]float64
	seen     map[string]bool
	failNext int
}

func (m *memoryStore) Incr(ctx context.Context, productID int64, weight float64) error {
	if m.failNext > 0 {
		m.failNext--
		return errors.New("popularity store unavailable")
	}
	m.scores[productID] += weight
	return nil
}

func (m *memoryStore) Top(ctx context.Context, n int) ([]interactionEntity.ProductScore, error) {
	out := make([]interactionEntity.ProductScore, 0, len(m.scores))
	for id, s := range m.scores {
		out = append(out, interactionEntity.ProductScore{ProductId: id, Score: s})
	}
	return out, nil
}

func (m *memoryStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func (m *memoryStore) Unmark(ctx context.Context, eventID string) error {
	delete(m.seen, eventID)
	return nil
}

func TestRecommendService_ApplyEvent(t *testing.T) {
	store := &memoryStore{scores: map[int64]float64{}, seen: map[string]bool{}}
	f := newFixture(t, store)
	ctx := context.Background()

	cart := event.New(event.TypeCart, 1, 3)
	cart.Quantity = 2
	require.NoError(t, f.svc.ApplyEvent(ctx, cart))
	// 重复投递
	require.NoError(t, f.svc.ApplyEvent(ctx, cart))
	require.NoError(t, f.svc.ApplyEvent(ctx, event.New(event.TypeView, 1, 3)))
	require.NoError(t, f.svc.ApplyEvent(ctx, event.New(event.TypeSearch, 1, 0)))

	assert.Equal(t, map[int64]float64{3: 7}, store.scores)

	popular, err := f.svc.Popular(ctx, 0)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "Tablet", popular[0].Name)
	assert.Equal(t, 7.0, popular[0].Score)
}

func TestRecommendService_ApplyEventRedeliveredAfterFailure(t *testing.T) {
	store := &memoryStore{scores: map[int64]float64{}, seen: map[string]bool{}, failNext: 1}
	f := newFixture(t, store)
	ctx := context.Background()

	view := event.New(event.TypeView, 1, 3)
	assert.Error(t, f.svc.ApplyEvent(ctx, view))
	assert.Empty(t, store.scores)

	// 消费端未提交位点，同一事件重投
	require.NoError(t, f.svc.ApplyEvent(ctx, view))
	require.NoError(t, f.svc.ApplyEvent(ctx, view))
	assert.Equal(t, map[int64]float64{3: 1}, store.scores)
}
