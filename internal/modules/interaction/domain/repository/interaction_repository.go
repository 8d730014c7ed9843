package repository

import (
	"context"

	"ShopRec/internal/modules/interaction/domain/entity"
)

type InteractionRepository interface {
	CreateView(ctx context.Context, v *entity.UserView) error
	CreateSearch(ctx context.Context, s *entity.UserSearch) error
	CreateCart(ctx context.Context, c *entity.UserCart) error

	// ListCartItems 按 cart_id 升序返回用户购物车行（含商品类目、价格）
	ListCartItems(ctx context.Context, userID int64) ([]entity.CartItem, error)
	// SetCartQuantity 把用户某商品的全部购物车行合并成一行；quantity<=0 时删除
	SetCartQuantity(ctx context.Context, userID, productID int64, quantity int) (bool, error)
	RemoveCartProduct(ctx context.Context, userID, productID int64) (int64, error)
	// ListCartPairs 全表 (user_id, product_id)，用于购物篮挖掘
	ListCartPairs(ctx context.Context) ([]entity.UserCart, error)

	// RecentViewedProductIDs 去重后按最近浏览时间倒序
	RecentViewedProductIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
	// PopularProducts 浏览计 1，加购计 3*quantity
	PopularProducts(ctx context.Context, limit int) ([]entity.ProductScore, error)
}
