package service

import (
	"context"
	"errors"
	"strings"

	"ShopRec/internal/middleware/metrics"
	catalogService "ShopRec/internal/modules/catalog/application/service"
	catalogEntity "ShopRec/internal/modules/catalog/domain/entity"
	catalogRepository "ShopRec/internal/modules/catalog/domain/repository"
	"ShopRec/internal/modules/interaction/domain/event"
	interactionRepository "ShopRec/internal/modules/interaction/domain/repository"
	"ShopRec/internal/modules/recommend/application/dto/respond"
	"ShopRec/internal/modules/recommend/domain/repository"
	"ShopRec/internal/modules/recommend/domain/strategy"
	"ShopRec/pkg/vector"
	"ShopRec/pkg/xerr"
	"ShopRec/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StrategyContent  = "content"
	StrategySearch   = "search"
	StrategyCart     = "cart"
	StrategyTopPicks = "top_picks"
	StrategyPopular  = "popular"
)

type Options struct {
	TopN        int
	PriceBand   float64
	MinSupport  float64
	MinLift     float64
	RecentViews int
}

type RecommendService interface {
	// SimilarToProduct 与该商品描述最相似的商品，不含自身
	SimilarToProduct(ctx context.Context, productID int64) ([]respond.ProductBrief, error)
	Search(ctx context.Context, text string) ([]respond.ProductBrief, error)
	// CartContext 最后加购商品同类目、价格 ±band 内、不在购物车中的商品
	CartContext(ctx context.Context, userID int64) ([]respond.CartRecommendation, error)
	TopPicks(ctx context.Context) ([]respond.ProductBrief, error)
	ForUser(ctx context.Context, userID int64) (*respond.PersonalRespond, error)
	Popular(ctx context.Context, n int) ([]respond.PopularItem, error)
	// ApplyEvent 交互事件累加到热度
	ApplyEvent(ctx context.Context, e event.InteractionEvent) error
}

type recommendServiceImpl struct {
	products     catalogRepository.ProductRepository
	embeddings   catalogRepository.EmbeddingRepository
	catalog      catalogService.CatalogService
	interactions interactionRepository.InteractionRepository
	index        repository.VectorIndex
	popularity   repository.PopularityStore
	opts         Options
}

func NewRecommendService(
	products catalogRepository.ProductRepository,
	embeddings catalogRepository.EmbeddingRepository,
	catalog catalogService.CatalogService,
	interactions interactionRepository.InteractionRepository,
	index repository.VectorIndex,
	popularity repository.PopularityStore,
	opts Options,
) RecommendService {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.RecentViews <= 0 {
		opts.RecentViews = 20
	}
	return &recommendServiceImpl{
		products:     products,
		embeddings:   embeddings,
		catalog:      catalog,
		interactions: interactions,
		index:        index,
		popularity:   popularity,
		opts:         opts,
	}
}

func (s *recommendServiceImpl) SimilarToProduct(ctx context.Context, productID int64) ([]respond.ProductBrief, error) {
	p, err := s.products.GetProductById(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.NotFound, "商品不存在")
		}
		zlog.Error("get product failed", zap.Int64("product_id", productID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	vec, err := s.catalog.ProductVector(ctx, p)
	if err != nil {
		zlog.Error("product vector failed", zap.Int64("product_id", productID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	items, err := s.rank(ctx, StrategyContent, vec, strategy.ExcludeSet(productID))
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *recommendServiceImpl) Search(ctx context.Context, text string) ([]respond.ProductBrief, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, xerr.ErrParam
	}
	vec, err := s.catalog.EmbedText(ctx, text)
	if err != nil {
		zlog.Error("embed search text failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return s.rank(ctx, StrategySearch, vec, nil)
}

// rank 向量检索后按检索顺序回表
func (s *recommendServiceImpl) rank(ctx context.Context, name string, vec []float32, exclude map[int64]struct{}) ([]respond.ProductBrief, error) {
	scored, err := s.index.Search(ctx, vec, s.opts.TopN, exclude)
	if err != nil {
		zlog.Error("vector search failed", zap.String("strategy", name), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	items, err := s.briefs(ctx, strategy.IDs(scored))
	if err != nil {
		return nil, err
	}
	metrics.ObserveRecommendation(name, len(items))
	return items, nil
}

func (s *recommendServiceImpl) briefs(ctx context.Context, ids []int64) ([]respond.ProductBrief, error) {
	rows, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		zlog.Error("load products failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := make([]respond.ProductBrief, 0, len(rows))
	for _, p := range rows {
		out = append(out, respond.ProductBrief{Id: p.ProductId, Name: p.Name})
	}
	return out, nil
}

func (s *recommendServiceImpl) CartContext(ctx context.Context, userID int64) ([]respond.CartRecommendation, error) {
	items, err := s.interactions.ListCartItems(ctx, userID)
	if err != nil {
		zlog.Error("list cart items failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	lines := make([]strategy.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, strategy.CartLine{
			CartID:    it.CartId,
			ProductID: it.ProductId,
			Category:  it.Category,
			Price:     it.Price,
		})
	}

	out := make([]respond.CartRecommendation, 0)
	cc, ok := strategy.BuildCartContext(lines, s.opts.PriceBand)
	if !ok {
		metrics.ObserveRecommendation(StrategyCart, 0)
		return out, nil
	}
	rows, err := s.products.FindInPriceBand(ctx, catalogEntity.PriceBandFilter{
		Category:   cc.Category,
		MinPrice:   cc.MinPrice,
		MaxPrice:   cc.MaxPrice,
		ExcludeIDs: cc.ExcludeIDs,
		Limit:      s.opts.TopN,
	})
	if err != nil {
		zlog.Error("find products in price band failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	for _, p := range rows {
		out = append(out, respond.CartRecommendation{ProductId: p.ProductId, Name: p.Name, Category: p.Category})
	}
	metrics.ObserveRecommendation(StrategyCart, len(out))
	return out, nil
}

func (s *recommendServiceImpl) TopPicks(ctx context.Context) ([]respond.ProductBrief, error) {
	pairs, err := s.interactions.ListCartPairs(ctx)
	if err != nil {
		zlog.Error("list cart pairs failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	bp := make([]strategy.BasketPair, 0, len(pairs))
	for _, p := range pairs {
		bp = append(bp, strategy.BasketPair{UserID: p.UserId, ProductID: p.ProductId})
	}

	baskets := strategy.BuildBaskets(bp)
	itemsets := strategy.Apriori(baskets, s.opts.MinSupport, 0)
	rules := strategy.AssociationRules(itemsets, len(baskets), s.opts.MinLift)
	ids := strategy.TopConsequents(rules)
	zlog.Debug("top picks mined",
		zap.Int("baskets", len(baskets)),
		zap.Int("itemsets", len(itemsets)),
		zap.Int("rules", len(rules)))

	items, err := s.briefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRecommendation(StrategyTopPicks, len(items))
	return items, nil
}

func (s *recommendServiceImpl) ForUser(ctx context.Context, userID int64) (*respond.PersonalRespond, error) {
	viewed, err := s.interactions.RecentViewedProductIDs(ctx, userID, s.opts.RecentViews)
	if err != nil {
		zlog.Error("recent views failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	exclude := strategy.ExcludeSet(viewed...)

	if len(viewed) > 0 {
		if profile := s.userProfile(ctx, viewed); profile != nil {
			items, err := s.rank(ctx, StrategyContent, profile, exclude)
			if err != nil {
				return nil, err
			}
			if len(items) > 0 {
				return &respond.PersonalRespond{Strategy: StrategyContent, Items: items}, nil
			}
		}
	}

	popular, err := s.Popular(ctx, s.opts.TopN+len(exclude))
	if err != nil {
		return nil, err
	}
	items := make([]respond.ProductBrief, 0, s.opts.TopN)
	for _, p := range popular {
		if _, skip := exclude[p.Id]; skip {
			continue
		}
		items = append(items, respond.ProductBrief{Id: p.Id, Name: p.Name})
		if len(items) == s.opts.TopN {
			break
		}
	}
	if len(items) > 0 {
		return &respond.PersonalRespond{Strategy: StrategyPopular, Items: items}, nil
	}

	picks, err := s.TopPicks(ctx)
	if err != nil {
		return nil, err
	}
	if len(picks) > s.opts.TopN {
		picks = picks[:s.opts.TopN]
	}
	return &respond.PersonalRespond{Strategy: StrategyTopPicks, Items: picks}, nil
}

// userProfile 最近浏览商品向量的均值
func (s *recommendServiceImpl) userProfile(ctx context.Context, productIDs []int64) []float32 {
	rows, err := s.embeddings.GetEmbeddingsByProductIDs(ctx, productIDs)
	if err != nil {
		zlog.Warn("load viewed embeddings failed", zap.Error(err))
		return nil
	}
	vecs := make([][]float32, 0, len(rows))
	for i := range rows {
		v, err := rows[i].Vector()
		if err != nil {
			continue
		}
		vecs = append(vecs, v)
	}
	return vector.Mean(vecs)
}

func (s *recommendServiceImpl) Popular(ctx context.Context, n int) ([]respond.PopularItem, error) {
	if n <= 0 {
		n = s.opts.TopN
	}
	scores, err := s.popularity.Top(ctx, n)
	if err != nil {
		zlog.Error("popularity top failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	ids := make([]int64, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.ProductId)
	}
	rows, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		zlog.Error("load products failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	names := make(map[int64]string, len(rows))
	for _, p := range rows {
		names[p.ProductId] = p.Name
	}
	out := make([]respond.PopularItem, 0, len(scores))
	for _, sc := range scores {
		name, ok := names[sc.ProductId]
		if !ok {
			continue
		}
		out = append(out, respond.PopularItem{Id: sc.ProductId, Name: name, Score: sc.Score})
	}
	metrics.ObserveRecommendation(StrategyPopular, len(out))
	return out, nil
}

// eventDeduper 热度存储可选实现，用于丢弃重复投递的事件
type eventDeduper interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	Unmark(ctx context.Context, eventID string) error
}

func (s *recommendServiceImpl) ApplyEvent(ctx context.Context, e event.InteractionEvent) error {
	w := e.Weight()
	if w == 0 || e.ProductID <= 0 {
		return nil
	}
	d, dedupe := s.popularity.(eventDeduper)
	if dedupe {
		fresh, err := d.MarkProcessed(ctx, e.EventID)
		if err != nil {
			return err
		}
		if !fresh {
			metrics.EventsTotal.WithLabelValues(string(e.Type), "duplicate").Inc()
			return nil
		}
	}
	if err := s.popularity.Incr(ctx, e.ProductID, w); err != nil {
		metrics.EventsTotal.WithLabelValues(string(e.Type), "error").Inc()
		// 撤销去重标记，重投时才能再次计入
		if dedupe {
			if uerr := d.Unmark(ctx, e.EventID); uerr != nil {
				zlog.Warn("unmark event failed", zap.String("event_id", e.EventID), zap.Error(uerr))
			}
		}
		return err
	}
	metrics.EventsTotal.WithLabelValues(string(e.Type), "applied").Inc()
	return nil
}
