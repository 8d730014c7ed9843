package strategy

import (
	"sort"

	"ShopRec/pkg/vector"
)

// Candidate 参与相似度排序的商品向量
type Candidate struct {
	ProductID int64
	Vector    []float32
}

type ScoredItem struct {
	ProductID int64   `json:"product_id"`
	Score     float64 `json:"score"`
}

// RankBySimilarity 计算 query 与全部候选的余弦相似度，按分数降序取前 topN。
// 维度不一致或零向量的候选直接跳过；分数相同按 product_id 升序。
func RankBySimilarity(query []float32, candidates []Candidate, topN int, exclude map[int64]struct{}) []ScoredItem {
	if len(query) == 0 || len(candidates) == 0 || topN <= 0 {
		return []ScoredItem{}
	}

	scored := make([]ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := exclude[c.ProductID]; skip {
			continue
		}
		s, ok := vector.Cosine(query, c.Vector)
		if !ok {
			continue
		}
		scored = append(scored, ScoredItem{ProductID: c.ProductID, Score: s})
	}

	SortScored(scored)
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

func SortScored(items []ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ProductID < items[j].ProductID
	})
}

func IDs(items []ScoredItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductID)
	}
	return out
}

func ExcludeSet(ids ...int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
