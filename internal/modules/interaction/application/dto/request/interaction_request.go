package request

type ViewProductRequest struct {
	UserId    int64 `json:"user_id" binding:"required"`
	ProductId int64 `json:"product_id" binding:"required"`
}

type AddToCartRequest struct {
	UserId    int64 `json:"user_id"`
	ProductId int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type SearchProductRequest struct {
	UserId     int64  `json:"user_id"`
	SearchText string `json:"search_text"`
}

// CartItemRequest /cart/update 与 /cart/remove 共用
type CartItemRequest struct {
	ProductId int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type RecentlyViewedRequest struct {
	ProductId int64 `json:"product_id" binding:"required"`
}
