package entity

import (
	"time"

	"ShopRec/pkg/vector"
)

type Product struct {
	ProductId   int64   `gorm:"column:product_id;primaryKey;autoIncrement"`
	Name        string  `gorm:"column:name;type:varchar(100)"`
	Category    string  `gorm:"column:category;type:varchar(50);index:idx_products_category"`
	Price       float64 `gorm:"column:price;type:double"`
	Description string  `gorm:"column:description;type:varchar(500)"`
}

func (Product) TableName() string { return "products" }

// ProductEmbedding 每个商品至多一行，主键即 product_id
type ProductEmbedding struct {
	ProductId int64     `gorm:"column:product_id;primaryKey;autoIncrement:false"`
	Embedding []byte    `gorm:"column:embedding;type:blob"`
	Model     string    `gorm:"column:model;type:varchar(64)"`
	Dim       int       `gorm:"column:dim;type:int"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime"`
	Product   Product   `gorm:"foreignKey:ProductId;references:ProductId;constraint:OnDelete:CASCADE"`
}

func (ProductEmbedding) TableName() string { return "product_embeddings" }

func NewProductEmbedding(productID int64, vec []float32, model string) *ProductEmbedding {
	return &ProductEmbedding{
		ProductId: productID,
		Embedding: vector.Encode(vec),
		Model:     model,
		Dim:       len(vec),
		CreatedAt: time.Now(),
	}
}

// Vector 解码存储的向量
func (e *ProductEmbedding) Vector() ([]float32, error) {
	return vector.Decode(e.Embedding, e.Dim)
}

// ProductFilter 商品列表查询条件
type ProductFilter struct {
	Category string
	Offset   int
	Limit    int
}

// PriceBandFilter 同类目价格区间筛选条件
type PriceBandFilter struct {
	Category   string
	MinPrice   float64
	MaxPrice   float64
	ExcludeIDs []int64
	Limit      int
}
