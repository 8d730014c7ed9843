package respond

type AddProductRespond struct {
	Message          string `json:"message"`
	ProductId        int64  `json:"product_id"`
	EmbeddingPending bool   `json:"embedding_pending,omitempty"`
}

type ProductRespond struct {
	ProductId   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type ProductListRespond struct {
	Items    []ProductRespond `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type CategoriesRespond struct {
	Categories []string `json:"categories"`
}

// BackfillRespond 补算向量的结果统计
type BackfillRespond struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
