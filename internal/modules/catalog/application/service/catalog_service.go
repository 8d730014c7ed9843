package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"ShopRec/internal/middleware/metrics"
	"ShopRec/internal/modules/catalog/application/dto/request"
	"ShopRec/internal/modules/catalog/application/dto/respond"
	"ShopRec/internal/modules/catalog/domain/entity"
	"ShopRec/internal/modules/catalog/domain/repository"
	recRepository "ShopRec/internal/modules/recommend/domain/repository"
	"ShopRec/internal/modules/recommend/infrastructure/embedding"
	"ShopRec/pkg/util"
	"ShopRec/pkg/xerr"
	"ShopRec/pkg/zlog"

	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CatalogService interface {
	AddProduct(ctx context.Context, req request.AddProductRequest) (*respond.AddProductRespond, error)
	GetProduct(ctx context.Context, id int64) (*respond.ProductRespond, error)
	ListProducts(ctx context.Context, req request.ListProductsRequest) (*respond.ProductListRespond, error)
	ListCategories(ctx context.Context) (*respond.CategoriesRespond, error)

	// EmbedText 计算任意文本的向量
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// ProductVector 优先使用已存向量，缺失或损坏时按描述现算
	ProductVector(ctx context.Context, p *entity.Product) ([]float32, error)
	BackfillEmbeddings(ctx context.Context) (*respond.BackfillRespond, error)
	// LoadAllEmbeddings 返回全部可解码的向量，损坏的行跳过并告警
	LoadAllEmbeddings(ctx context.Context) ([]int64, [][]float32, error)
}

type catalogServiceImpl struct {
	products   repository.ProductRepository
	embeddings repository.EmbeddingRepository
	embedder   einoEmbedding.Embedder
	meta       embedding.EmbedderMeta
	index      recRepository.VectorIndex
}

// NewCatalogService index 为写穿索引，只用数据库扫描时传 nil
func NewCatalogService(
	products repository.ProductRepository,
	embeddings repository.EmbeddingRepository,
	embedder einoEmbedding.Embedder,
	meta embedding.EmbedderMeta,
	index recRepository.VectorIndex,
) CatalogService {
	return &catalogServiceImpl{
		products:   products,
		embeddings: embeddings,
		embedder:   embedder,
		meta:       meta,
		index:      index,
	}
}

func (s *catalogServiceImpl) AddProduct(ctx context.Context, req request.AddProductRequest) (*respond.AddProductRespond, error) {
	p := entity.Product{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Description: strings.TrimSpace(req.Description),
	}
	if p.Name == "" || p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return nil, xerr.ErrParam
	}
	if err := s.products.CreateProduct(ctx, &p); err != nil {
		zlog.Error("create product failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	out := &respond.AddProductRespond{Message: "Product added", ProductId: p.ProductId}
	if _, err := s.ensureEmbedding(ctx, &p); err != nil {
		// 商品保留，向量由 backfill 补齐
		zlog.Warn("embed product failed, left pending", zap.Int64("product_id", p.ProductId), zap.Error(err))
		out.EmbeddingPending = true
	}
	return out, nil
}

// ensureEmbedding 已存在时不重复写入，返回是否新建
func (s *catalogServiceImpl) ensureEmbedding(ctx context.Context, p *entity.Product) (bool, error) {
	exists, err := s.embeddings.ExistsEmbedding(ctx, p.ProductId)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	vec, err := s.EmbedText(ctx, embeddingText(p))
	if err != nil {
		return false, err
	}
	if err := s.embeddings.SaveEmbedding(ctx, entity.NewProductEmbedding(p.ProductId, vec, s.meta.Name())); err != nil {
		return false, fmt.Errorf("save embedding: %w", err)
	}
	if s.index != nil {
		if err := s.index.Upsert(ctx, p.ProductId, vec); err != nil {
			zlog.Warn("vector index upsert failed", zap.Int64("product_id", p.ProductId), zap.Error(err))
		}
	}
	return true, nil
}

// embeddingText 用描述生成向量，描述为空时退回商品名
func embeddingText(p *entity.Product) string {
	if strings.TrimSpace(p.Description) != "" {
		return p.Description
	}
	return p.Name
}

func (s *catalogServiceImpl) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := embedding.Compute(ctx, s.embedder, text)
	if err != nil {
		metrics.EmbeddingTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.EmbeddingTotal.WithLabelValues("ok").Inc()
	return vec, nil
}

func (s *catalogServiceImpl) ProductVector(ctx context.Context, p *entity.Product) ([]float32, error) {
	row, err := s.embeddings.GetEmbedding(ctx, p.ProductId)
	switch {
	case err == nil:
		vec, derr := row.Vector()
		if derr == nil {
			return vec, nil
		}
		zlog.Warn("stored embedding malformed, recomputing", zap.Int64("product_id", p.ProductId), zap.Error(derr))
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return s.EmbedText(ctx, embeddingText(p))
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id int64) (*respond.ProductRespond, error) {
	if id <= 0 {
		return nil, xerr.ErrParam
	}
	p, err := s.products.GetProductById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.NotFound, "商品不存在")
		}
		zlog.Error("get product failed", zap.Int64("product_id", id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := ToProductRespond(p)
	return &out, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, req request.ListProductsRequest) (*respond.ProductListRespond, error) {
	page, size := util.NormalizePage(req.Page, req.PageSize, 100)
	rows, total, err := s.products.ListProducts(ctx, entity.ProductFilter{
		Category: req.Category,
		Offset:   (page - 1) * size,
		Limit:    size,
	})
	if err != nil {
		zlog.Error("list products failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	items := make([]respond.ProductRespond, 0, len(rows))
	for i := range rows {
		items = append(items, ToProductRespond(&rows[i]))
	}
	return &respond.ProductListRespond{Items: items, Total: total, Page: page, PageSize: size}, nil
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) (*respond.CategoriesRespond, error) {
	cats, err := s.products.ListCategories(ctx)
	if err != nil {
		zlog.Error("list categories failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if cats == nil {
		cats = []string{}
	}
	return &respond.CategoriesRespond{Categories: cats}, nil
}

func (s *catalogServiceImpl) BackfillEmbeddings(ctx context.Context) (*respond.BackfillRespond, error) {
	missing, err := s.products.ListProductsWithoutEmbedding(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products without embedding: %w", err)
	}

	out := &respond.BackfillRespond{}
	for i := range missing {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p := &missing[i]
		created, err := s.ensureEmbedding(ctx, p)
		switch {
		case err != nil:
			out.Failed++
			zlog.Warn("backfill embedding failed", zap.Int64("product_id", p.ProductId), zap.Error(err))
		case created:
			out.Created++
		default:
			out.Skipped++
		}
	}
	zlog.Info("backfill embeddings done",
		zap.Int("created", out.Created),
		zap.Int("skipped", out.Skipped),
		zap.Int("failed", out.Failed))
	return out, nil
}

func (s *catalogServiceImpl) LoadAllEmbeddings(ctx context.Context) ([]int64, [][]float32, error) {
	rows, err := s.embeddings.ListEmbeddings(ctx)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int64, 0, len(rows))
	vecs := make([][]float32, 0, len(rows))
	for i := range rows {
		vec, err := rows[i].Vector()
		if err != nil {
			zlog.Warn("skip malformed embedding", zap.Int64("product_id", rows[i].ProductId), zap.Error(err))
			continue
		}
		ids = append(ids, rows[i].ProductId)
		vecs = append(vecs, vec)
	}
	return ids, vecs, nil
}

func ToProductRespond(p *entity.Product) respond.ProductRespond {
	return respond.ProductRespond{
		ProductId:   p.ProductId,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
	}
}
