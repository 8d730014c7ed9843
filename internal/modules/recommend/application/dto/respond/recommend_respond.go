package respond

// ProductBrief 推荐列表中的商品
type ProductBrief struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type CartRecommendation struct {
	ProductId int64  `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
}

type PopularItem struct {
	Id    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type ViewProductRespond struct {
	RecommendedProducts []ProductBrief `json:"recommended_products"`
}

type CartRecommendationsRespond struct {
	CartRecommendations []CartRecommendation `json:"cart_recommendations"`
}

type SearchRespond struct {
	SearchResults []ProductBrief `json:"search_results"`
}

type TopPicksRespond struct {
	TopPicks []ProductBrief `json:"top_picks"`
}

type PopularRespond struct {
	Items []PopularItem `json:"items"`
}

// PersonalRespond strategy 为实际生效的策略：content | popular | top_picks
type PersonalRespond struct {
	Strategy string         `json:"strategy"`
	Items    []ProductBrief `json:"items"`
}
