package repository

import (
	"context"

	"ShopRec/internal/modules/recommend/domain/strategy"
)

// VectorIndex 商品向量检索。数据库中的 blob 是唯一可信来源，索引只做加速。
type VectorIndex interface {
	Upsert(ctx context.Context, productID int64, vec []float32) error
	// Search 余弦相似度降序，exclude 中的商品不返回
	Search(ctx context.Context, query []float32, topK int, exclude map[int64]struct{}) ([]strategy.ScoredItem, error)
}
