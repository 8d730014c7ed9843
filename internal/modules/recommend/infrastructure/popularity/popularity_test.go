package popularity

import (
	"context"
	"os"
	"testing"

	"ShopRec/internal/initial"
	"ShopRec/internal/modules/interaction/domain/entity"
	"ShopRec/internal/modules/interaction/infrastructure/persistence"
	"ShopRec/pkg/redis"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStore(t *testing.T) {
	db, err := initial.OpenSQLite(":memory:")
	require.NoError(t, err)
	repo := persistence.NewInteractionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateView(ctx, &entity.UserView{UserId: 1, ProductId: 10}))
	require.NoError(t, repo.CreateCart(ctx, &entity.UserCart{UserId: 1, ProductId: 20}))

	store := NewSQLStore(repo)
	// Incr 不改变聚合结果
	require.NoError(t, store.Incr(ctx, 10, 100))

	top, err := store.Top(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []entity.ProductScore{
		{ProductId: 20, Score: 3},
		{ProductId: 10, Score: 1},
	}, top)
}

// SHOPREC_TEST_REDIS=127.0.0.1:6379 时运行
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SHOPREC_TEST_REDIS")
	if addr == "" {
		t.Skip("SHOPREC_TEST_REDIS not set")
	}
	cli := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx := context.Background()
	require.NoError(t, cli.Ping(ctx).Err())
	redis.SetClient(cli)
	t.Cleanup(func() { _ = redis.Close() })

	prefix := "shoprec-test:" + uuid.NewString() + ":"
	store := NewRedisStore(prefix)
	t.Cleanup(func() { cli.Del(context.Background(), prefix+"popularity") })

	require.NoError(t, store.Incr(ctx, 1, 1))
	require.NoError(t, store.Incr(ctx, 2, 6))
	require.NoError(t, store.Incr(ctx, 1, 1))

	top, err := store.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []entity.ProductScore{
		{ProductId: 2, Score: 6},
		{ProductId: 1, Score: 2},
	}, top)

	// 扣减到 0 的商品移出榜单
	require.NoError(t, store.Incr(ctx, 2, -6))
	top, err = store.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []entity.ProductScore{{ProductId: 1, Score: 2}}, top)

	fresh, err := store.MarkProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, fresh)
	fresh, err = store.MarkProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, fresh)

	require.NoError(t, store.Unmark(ctx, "evt-1"))
	fresh, err = store.MarkProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, fresh)
	require.NoError(t, store.Unmark(ctx, "evt-1"))
}
