package repository

import (
	"context"

	"ShopRec/internal/modules/interaction/domain/entity"
)

// PopularityStore 商品热度
type PopularityStore interface {
	Incr(ctx context.Context, productID int64, weight float64) error
	Top(ctx context.Context, n int) ([]entity.ProductScore, error)
}
