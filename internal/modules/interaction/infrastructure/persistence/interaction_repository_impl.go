package persistence

import (
	"context"
	"sort"

	"ShopRec/internal/modules/interaction/domain/entity"
	"ShopRec/internal/modules/interaction/domain/repository"

	"gorm.io/gorm"
)

type interactionRepositoryImpl struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) repository.InteractionRepository {
	return &interactionRepositoryImpl{db: db}
}

func (r *interactionRepositoryImpl) CreateView(ctx context.Context, v *entity.UserView) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *interactionRepositoryImpl) CreateSearch(ctx context.Context, s *entity.UserSearch) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *interactionRepositoryImpl) CreateCart(ctx context.Context, c *entity.UserCart) error {
	if c.Quantity <= 0 {
		c.Quantity = 1
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *interactionRepositoryImpl) ListCartItems(ctx context.Context, userID int64) ([]entity.CartItem, error) {
	var rows []entity.CartItem
	err := r.db.WithContext(ctx).
		Table("user_cart AS c").
		Select("c.cart_id, c.product_id, c.quantity, p.name, p.category, p.price").
		Joins("JOIN products p ON p.product_id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.cart_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interactionRepositoryImpl) SetCartQuantity(ctx context.Context, userID, productID int64, quantity int) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []entity.UserCart
		if err := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Order("cart_id DESC").Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		found = true

		if quantity <= 0 {
			return tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&entity.UserCart{}).Error
		}

		// 保留最新的一行，其余合并掉
		keep := rows[0].CartId
		if len(rows) > 1 {
			if err := tx.Where("user_id = ? AND product_id = ? AND cart_id <> ?", userID, productID, keep).
				Delete(&entity.UserCart{}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&entity.UserCart{}).Where("cart_id = ?", keep).Update("quantity", quantity).Error
	})
	return found, err
}

func (r *interactionRepositoryImpl) RemoveCartProduct(ctx context.Context, userID, productID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&entity.UserCart{})
	return res.RowsAffected, res.Error
}

func (r *interactionRepositoryImpl) ListCartPairs(ctx context.Context) ([]entity.UserCart, error) {
	var rows []entity.UserCart
	err := r.db.WithContext(ctx).
		Select("user_id", "product_id").
		Order("user_id ASC, product_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interactionRepositoryImpl) RecentViewedProductIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	type row struct {
		ProductId int64 `gorm:"column:product_id"`
		LastView  int64 `gorm:"column:last_view"`
	}
	var rows []row
	q := r.db.WithContext(ctx).
		Model(&entity.UserView{}).
		Select("product_id, MAX(view_id) AS last_view").
		Where("user_id = ?", userID).
		Group("product_id").
		Order("last_view DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, it := range rows {
		ids = append(ids, it.ProductId)
	}
	return ids, nil
}

func (r *interactionRepositoryImpl) PopularProducts(ctx context.Context, limit int) ([]entity.ProductScore, error) {
	var views, carts []entity.ProductScore
	db := r.db.WithContext(ctx)
	if err := db.Model(&entity.UserView{}).
		Select("product_id, COUNT(*) AS score").
		Group("product_id").
		Scan(&views).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.UserCart{}).
		Select("product_id, SUM(3 * quantity) AS score").
		Group("product_id").
		Scan(&carts).Error; err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(views)+len(carts))
	for _, s := range views {
		scores[s.ProductId] += s.Score
	}
	for _, s := range carts {
		scores[s.ProductId] += s.Score
	}
	out := make([]entity.ProductScore, 0, len(scores))
	for id, s := range scores {
		out = append(out, entity.ProductScore{ProductId: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProductId < out[j].ProductId
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
