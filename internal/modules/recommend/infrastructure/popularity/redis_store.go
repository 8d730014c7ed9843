package popularity

import (
	"context"
	"strconv"
	"time"

	"ShopRec/internal/modules/interaction/domain/entity"
	"ShopRec/internal/modules/recommend/domain/repository"
	"ShopRec/pkg/redis"
	"ShopRec/pkg/zlog"

	"go.uber.org/zap"
)

const dedupeTTL = 24 * time.Hour

// RedisStore 热度存在 ZSET <prefix>popularity 中
type RedisStore struct {
	key    string
	prefix string
}

var _ repository.PopularityStore = (*RedisStore)(nil)

func NewRedisStore(prefix string) *RedisStore {
	return &RedisStore{key: prefix + "popularity", prefix: prefix}
}

func (s *RedisStore) Incr(ctx context.Context, productID int64, weight float64) error {
	if weight == 0 {
		return nil
	}
	member := strconv.FormatInt(productID, 10)
	score, err := redis.ZIncrBy(ctx, s.key, weight, member)
	if err != nil {
		return err
	}
	// 购物车清空后热度回到 0，移出榜单
	if score <= 0 {
		_, err = redis.ZRem(ctx, s.key, member)
	}
	return err
}

func (s *RedisStore) Top(ctx context.Context, n int) ([]entity.ProductScore, error) {
	if n <= 0 {
		return []entity.ProductScore{}, nil
	}
	zs, err := redis.ZRevRangeWithScores(ctx, s.key, 0, int64(n-1))
	if err != nil {
		return nil, err
	}
	out := make([]entity.ProductScore, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			zlog.Warn("skip malformed popularity member", zap.Any("member", z.Member))
			continue
		}
		out = append(out, entity.ProductScore{ProductId: id, Score: z.Score})
	}
	return out, nil
}

// MarkProcessed 事件至少投递一次，用 SETNX 去重；返回 false 表示已处理过
func (s *RedisStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return true, nil
	}
	return redis.SetNX(ctx, s.eventKey(eventID), 1, dedupeTTL)
}

// Unmark 删除去重标记，Incr 失败后让重投的事件仍能计入
func (s *RedisStore) Unmark(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	_, err := redis.Del(ctx, s.eventKey(eventID))
	return err
}

func (s *RedisStore) eventKey(eventID string) string {
	return s.prefix + "event:" + eventID
}
