package popularity

import (
	"context"

	"ShopRec/internal/modules/interaction/domain/entity"
	interactionRepo "ShopRec/internal/modules/interaction/domain/repository"
	"ShopRec/internal/modules/recommend/domain/repository"
)

// SQLStore 直接在交互表上聚合，Incr 为空操作
type SQLStore struct {
	repo interactionRepo.InteractionRepository
}

var _ repository.PopularityStore = (*SQLStore)(nil)

func NewSQLStore(repo interactionRepo.InteractionRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Incr(ctx context.Context, productID int64, weight float64) error {
	return nil
}

func (s *SQLStore) Top(ctx context.Context, n int) ([]entity.ProductScore, error) {
	return s.repo.PopularProducts(ctx, n)
}
