package vectordb

import (
	"context"

	"ShopRec/internal/modules/recommend/domain/repository"
	"ShopRec/internal/modules/recommend/domain/strategy"
)

// EmbeddingSource 返回全部已解码的商品向量
type EmbeddingSource interface {
	LoadAllEmbeddings(ctx context.Context) ([]int64, [][]float32, error)
}

// DatabaseIndex 每次检索都从数据库重新加载全部向量后线性扫描
type DatabaseIndex struct {
	src EmbeddingSource
}

var _ repository.VectorIndex = (*DatabaseIndex)(nil)

func NewDatabaseIndex(src EmbeddingSource) *DatabaseIndex {
	return &DatabaseIndex{src: src}
}

// Upsert 向量已经落库，无需额外写入
func (d *DatabaseIndex) Upsert(ctx context.Context, productID int64, vec []float32) error {
	return nil
}

func (d *DatabaseIndex) Search(ctx context.Context, query []float32, topK int, exclude map[int64]struct{}) ([]strategy.ScoredItem, error) {
	ids, vecs, err := d.src.LoadAllEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]strategy.Candidate, 0, len(ids))
	for i, id := range ids {
		candidates = append(candidates, strategy.Candidate{ProductID: id, Vector: vecs[i]})
	}
	return strategy.RankBySimilarity(query, candidates, topK, exclude), nil
}
