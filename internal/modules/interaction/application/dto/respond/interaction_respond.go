package respond

type CartLineRespond struct {
	CartId    int64   `json:"cart_id"`
	ProductId int64   `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CartRespond struct {
	Items      []CartLineRespond `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

type RecentlyViewedItem struct {
	Id       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type RecentlyViewedRespond struct {
	Items []RecentlyViewedItem `json:"items"`
}
