package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// SetClient 设置 Redis 客户端（由 internal/initial 调用）
func SetClient(c *redis.Client) {
	client = c
}

// Close 关闭 Redis 连接
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// IsConnected 检查 Redis 是否已连接
func IsConnected() bool {
	return client != nil
}

// GetClient 获取原始 Redis 客户端（高级用法）
func GetClient() *redis.Client {
	return client
}

func checkClient() error {
	if client == nil {
		return fmt.Errorf("Redis 未连接")
	}
	return nil
}

// SetNX 仅在 key 不存在时设置值
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if err := checkClient(); err != nil {
		return false, err
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}

func Del(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Del(ctx, keys...).Result()
}

// ==================== Sorted Set 操作 ====================

func ZIncrBy(ctx context.Context, key string, increment float64, member string) (float64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.ZIncrBy(ctx, key, increment, member).Result()
}

// ZRevRangeWithScores 分数从高到低
func ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error) {
	if err := checkClient(); err != nil {
		return nil, err
	}
	return client.ZRevRangeWithScores(ctx, key, start, stop).Result()
}

func ZRem(ctx context.Context, key string, members ...interface{}) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.ZRem(ctx, key, members...).Result()
}

func ZScore(ctx context.Context, key, member string) (float64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.ZScore(ctx, key, member).Result()
}

// ==================== 分布式锁 ====================

func Lock(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return SetNX(ctx, key, "1", expiration)
}

func Unlock(ctx context.Context, key string) error {
	_, err := Del(ctx, key)
	return err
}
