package vectordb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ShopRec/internal/modules/recommend/domain/repository"
	"ShopRec/internal/modules/recommend/domain/strategy"
	"ShopRec/pkg/vector"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusIndex COSINE AUTOINDEX 集合，主键 product_id
type MilvusIndex struct {
	cli         mclient.Client
	collection  string
	idField     string
	vectorField string
	vectorDim   int
	searchParam entity.SearchParam
}

var _ repository.VectorIndex = (*MilvusIndex)(nil)

func NewMilvusIndex(cli mclient.Client, collection, idField, vectorField string, vectorDim int) (*MilvusIndex, error) {
	if cli == nil {
		return nil, errors.New("milvus client is nil")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("collection is empty")
	}
	if strings.TrimSpace(idField) == "" || strings.TrimSpace(vectorField) == "" {
		return nil, errors.New("field name is empty")
	}
	if vectorDim <= 0 {
		return nil, fmt.Errorf("invalid vectorDim: %d", vectorDim)
	}
	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, err
	}
	return &MilvusIndex{
		cli:         cli,
		collection:  collection,
		idField:     idField,
		vectorField: vectorField,
		vectorDim:   vectorDim,
		searchParam: sp,
	}, nil
}

func (m *MilvusIndex) Upsert(ctx context.Context, productID int64, vec []float32) error {
	if len(vec) != m.vectorDim {
		return fmt.Errorf("vector dim mismatch for product_id=%d, got=%d want=%d", productID, len(vec), m.vectorDim)
	}
	_, err := m.cli.Upsert(
		ctx,
		m.collection,
		"",
		entity.NewColumnInt64(m.idField, []int64{productID}),
		entity.NewColumnFloatVector(m.vectorField, m.vectorDim, [][]float32{vector.Normalize(vec)}),
	)
	return err
}

// Rebuild 用数据库中的全部向量重建索引
func (m *MilvusIndex) Rebuild(ctx context.Context, src EmbeddingSource) (int, error) {
	ids, vecs, err := src.LoadAllEmbeddings(ctx)
	if err != nil {
		return 0, err
	}
	keepIDs := make([]int64, 0, len(ids))
	keepVecs := make([][]float32, 0, len(ids))
	for i, id := range ids {
		if len(vecs[i]) != m.vectorDim {
			continue
		}
		keepIDs = append(keepIDs, id)
		keepVecs = append(keepVecs, vector.Normalize(vecs[i]))
	}
	if len(keepIDs) == 0 {
		return 0, nil
	}
	_, err = m.cli.Upsert(
		ctx,
		m.collection,
		"",
		entity.NewColumnInt64(m.idField, keepIDs),
		entity.NewColumnFloatVector(m.vectorField, m.vectorDim, keepVecs),
	)
	if err != nil {
		return 0, err
	}
	return len(keepIDs), nil
}

func (m *MilvusIndex) Search(ctx context.Context, query []float32, topK int, exclude map[int64]struct{}) ([]strategy.ScoredItem, error) {
	if len(query) != m.vectorDim || vector.Norm(query) == 0 {
		return []strategy.ScoredItem{}, nil
	}
	if topK <= 0 {
		topK = 5
	}
	res, err := m.cli.Search(
		ctx,
		m.collection,
		[]string{},
		m.excludeExpr(exclude),
		[]string{},
		[]entity.Vector{entity.FloatVector(vector.Normalize(query))},
		m.vectorField,
		entity.COSINE,
		topK,
		m.searchParam,
	)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return []strategy.ScoredItem{}, nil
	}
	return parseSearchResult(res[0], exclude)
}

func (m *MilvusIndex) excludeExpr(exclude map[int64]struct{}) string {
	if len(exclude) == 0 {
		return ""
	}
	ids := make([]int64, 0, len(exclude))
	for id := range exclude {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("%s not in [%s]", m.idField, strings.Join(parts, ","))
}

func parseSearchResult(sr mclient.SearchResult, exclude map[int64]struct{}) ([]strategy.ScoredItem, error) {
	if sr.Err != nil {
		return nil, sr.Err
	}
	out := make([]strategy.ScoredItem, 0, sr.ResultCount)
	if sr.IDs == nil {
		return out, nil
	}
	for i := 0; i < sr.ResultCount; i++ {
		id, err := sr.IDs.GetAsInt64(i)
		if err != nil {
			return nil, err
		}
		if _, skip := exclude[id]; skip {
			continue
		}
		score := float64(0)
		if i < len(sr.Scores) {
			score = float64(sr.Scores[i])
		}
		out = append(out, strategy.ScoredItem{ProductID: id, Score: score})
	}
	strategy.SortScored(out)
	return out, nil
}
