package repository

import (
	"ShopRec/internal/modules/catalog/domain/entity"
	"context"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *entity.Product) error
	GetProductById(ctx context.Context, id int64) (*entity.Product, error)
	// GetProductsByIDs 结果顺序与 ids 一致，缺失的 id 被跳过
	GetProductsByIDs(ctx context.Context, ids []int64) ([]entity.Product, error)
	ListProducts(ctx context.Context, f entity.ProductFilter) ([]entity.Product, int64, error)
	ListCategories(ctx context.Context) ([]string, error)
	FindInPriceBand(ctx context.Context, f entity.PriceBandFilter) ([]entity.Product, error)
	ListProductsWithoutEmbedding(ctx context.Context) ([]entity.Product, error)
}

type EmbeddingRepository interface {
	ExistsEmbedding(ctx context.Context, productID int64) (bool, error)
	SaveEmbedding(ctx context.Context, e *entity.ProductEmbedding) error
	GetEmbedding(ctx context.Context, productID int64) (*entity.ProductEmbedding, error)
	GetEmbeddingsByProductIDs(ctx context.Context, productIDs []int64) ([]entity.ProductEmbedding, error)
	ListEmbeddings(ctx context.Context) ([]entity.ProductEmbedding, error)
}
