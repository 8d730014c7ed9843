package persistence

import (
	"context"
	"strings"

	"ShopRec/internal/modules/catalog/domain/entity"
	"ShopRec/internal/modules/catalog/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepositoryImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepositoryImpl{db: db}
}

func (r *productRepositoryImpl) CreateProduct(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepositoryImpl) GetProductById(ctx context.Context, id int64) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).Where("product_id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepositoryImpl) GetProductsByIDs(ctx context.Context, ids []int64) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var rows []entity.Product
	err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// IN 查询不保证顺序，按入参重排
	byID := make(map[int64]entity.Product, len(rows))
	for _, p := range rows {
		byID[p.ProductId] = p
	}
	out := make([]entity.Product, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *productRepositoryImpl) ListProducts(ctx context.Context, f entity.ProductFilter) ([]entity.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Product{})
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []entity.Product
	q = q.Order("product_id ASC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *productRepositoryImpl) ListCategories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// FindInPriceBand 全部条件走参数绑定
func (r *productRepositoryImpl) FindInPriceBand(ctx context.Context, f entity.PriceBandFilter) ([]entity.Product, error) {
	q := r.db.WithContext(ctx).
		Where("category = ?", f.Category).
		Where("price BETWEEN ? AND ?", f.MinPrice, f.MaxPrice)
	if len(f.ExcludeIDs) > 0 {
		q = q.Where("product_id NOT IN ?", f.ExcludeIDs)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []entity.Product
	if err := q.Order("product_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productRepositoryImpl) ListProductsWithoutEmbedding(ctx context.Context) ([]entity.Product, error) {
	var rows []entity.Product
	err := r.db.WithContext(ctx).
		Where("product_id NOT IN (?)", r.db.Model(&entity.ProductEmbedding{}).Select("product_id")).
		Order("product_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type embeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) repository.EmbeddingRepository {
	return &embeddingRepositoryImpl{db: db}
}

func (r *embeddingRepositoryImpl) ExistsEmbedding(ctx context.Context, productID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.ProductEmbedding{}).Where("product_id = ?", productID).Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *embeddingRepositoryImpl) SaveEmbedding(ctx context.Context, e *entity.ProductEmbedding) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

func (r *embeddingRepositoryImpl) GetEmbedding(ctx context.Context, productID int64) (*entity.ProductEmbedding, error) {
	var e entity.ProductEmbedding
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *embeddingRepositoryImpl) GetEmbeddingsByProductIDs(ctx context.Context, productIDs []int64) ([]entity.ProductEmbedding, error) {
	if len(productIDs) == 0 {
		return []entity.ProductEmbedding{}, nil
	}
	var rows []entity.ProductEmbedding
	err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Order("product_id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *embeddingRepositoryImpl) ListEmbeddings(ctx context.Context) ([]entity.ProductEmbedding, error) {
	var rows []entity.ProductEmbedding
	err := r.db.WithContext(ctx).Order("product_id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
