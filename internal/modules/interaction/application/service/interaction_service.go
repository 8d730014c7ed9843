package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	catalogRepository "ShopRec/internal/modules/catalog/domain/repository"
	"ShopRec/internal/modules/interaction/application/dto/request"
	"ShopRec/internal/modules/interaction/application/dto/respond"
	"ShopRec/internal/modules/interaction/domain/entity"
	"ShopRec/internal/modules/interaction/domain/event"
	"ShopRec/internal/modules/interaction/domain/repository"
	recRespond "ShopRec/internal/modules/recommend/application/dto/respond"
	recService "ShopRec/internal/modules/recommend/application/service"
	userRepository "ShopRec/internal/modules/user/domain/repository"
	"ShopRec/pkg/xerr"
	"ShopRec/pkg/zlog"

	"go.uber.org/zap"
)

// Notifier 把最新推荐推送给在线用户
type Notifier interface {
	Notify(userID int64, strategy string, items interface{})
}

type InteractionService interface {
	ViewProduct(ctx context.Context, req request.ViewProductRequest) (*recRespond.ViewProductRespond, error)
	AddToCart(ctx context.Context, req request.AddToCartRequest) (*recRespond.CartRecommendationsRespond, error)
	// SearchProduct userID 为 0 时不记录搜索
	SearchProduct(ctx context.Context, req request.SearchProductRequest) (*recRespond.SearchRespond, error)

	GetCart(ctx context.Context, userID int64) (*respond.CartRespond, error)
	UpdateCart(ctx context.Context, userID int64, req request.CartItemRequest) (*respond.CartRespond, error)
	RemoveFromCart(ctx context.Context, userID int64, productID int64) (*respond.CartRespond, error)

	RecentlyViewed(ctx context.Context, userID int64) (*respond.RecentlyViewedRespond, error)
	AddRecentlyViewed(ctx context.Context, userID int64, productID int64) (*respond.RecentlyViewedRespond, error)
}

type interactionServiceImpl struct {
	repo        repository.InteractionRepository
	users       userRepository.UserRepository
	products    catalogRepository.ProductRepository
	rec         recService.RecommendService
	sink        event.Sink
	notifier    Notifier
	recentLimit int
}

// NewInteractionService sink 为 nil 时丢弃事件，notifier 可为 nil
func NewInteractionService(
	repo repository.InteractionRepository,
	users userRepository.UserRepository,
	products catalogRepository.ProductRepository,
	rec recService.RecommendService,
	sink event.Sink,
	notifier Notifier,
	recentLimit int,
) InteractionService {
	if sink == nil {
		sink = event.Discard
	}
	if recentLimit <= 0 {
		recentLimit = 20
	}
	return &interactionServiceImpl{
		repo:        repo,
		users:       users,
		products:    products,
		rec:         rec,
		sink:        sink,
		notifier:    notifier,
		recentLimit: recentLimit,
	}
}

func (s *interactionServiceImpl) ViewProduct(ctx context.Context, req request.ViewProductRequest) (*recRespond.ViewProductRespond, error) {
	if err := s.checkRefs(ctx, req.UserId, req.ProductId); err != nil {
		return nil, err
	}
	if err := s.recordView(ctx, req.UserId, req.ProductId); err != nil {
		return nil, err
	}

	items, err := s.rec.SimilarToProduct(ctx, req.ProductId)
	if err != nil {
		return nil, err
	}
	s.notify(req.UserId, recService.StrategyContent, items)
	return &recRespond.ViewProductRespond{RecommendedProducts: items}, nil
}

func (s *interactionServiceImpl) recordView(ctx context.Context, userID, productID int64) error {
	v := entity.UserView{UserId: userID, ProductId: productID, CreatedAt: time.Now()}
	if err := s.repo.CreateView(ctx, &v); err != nil {
		zlog.Error("record view failed", zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Error(err))
		return xerr.ErrServerError
	}
	s.emit(ctx, event.New(event.TypeView, userID, productID))
	return nil
}

func (s *interactionServiceImpl) AddToCart(ctx context.Context, req request.AddToCartRequest) (*recRespond.CartRecommendationsRespond, error) {
	if err := s.checkRefs(ctx, req.UserId, req.ProductId); err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, xerr.ErrParam
	}

	row := entity.UserCart{UserId: req.UserId, ProductId: req.ProductId, Quantity: qty, CreatedAt: time.Now()}
	if err := s.repo.CreateCart(ctx, &row); err != nil {
		zlog.Error("add to cart failed", zap.Int64("user_id", req.UserId), zap.Int64("product_id", req.ProductId), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	ev := event.New(event.TypeCart, req.UserId, req.ProductId)
	ev.Quantity = qty
	s.emit(ctx, ev)

	items, err := s.rec.CartContext(ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	s.notify(req.UserId, recService.StrategyCart, items)
	return &recRespond.CartRecommendationsRespond{CartRecommendations: items}, nil
}

func (s *interactionServiceImpl) SearchProduct(ctx context.Context, req request.SearchProductRequest) (*recRespond.SearchRespond, error) {
	text := strings.TrimSpace(req.SearchText)
	if text == "" {
		return nil, xerr.ErrParam
	}
	if utf8.RuneCountInString(text) > 255 {
		return nil, xerr.New(xerr.BadRequest, "搜索内容过长")
	}

	if req.UserId > 0 {
		if err := s.checkUser(ctx, req.UserId); err != nil {
			return nil, err
		}
		row := entity.UserSearch{UserId: req.UserId, SearchText: text, CreatedAt: time.Now()}
		if err := s.repo.CreateSearch(ctx, &row); err != nil {
			zlog.Error("record search failed", zap.Int64("user_id", req.UserId), zap.Error(err))
			return nil, xerr.ErrServerError
		}
		ev := event.New(event.TypeSearch, req.UserId, 0)
		ev.Text = text
		s.emit(ctx, ev)
	}

	items, err := s.rec.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	return &recRespond.SearchRespond{SearchResults: items}, nil
}

func (s *interactionServiceImpl) GetCart(ctx context.Context, userID int64) (*respond.CartRespond, error) {
	rows, err := s.repo.ListCartItems(ctx, userID)
	if err != nil {
		zlog.Error("list cart failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := &respond.CartRespond{Items: make([]respond.CartLineRespond, 0, len(rows))}
	for _, r := range rows {
		out.Items = append(out.Items, respond.CartLineRespond{
			CartId:    r.CartId,
			ProductId: r.ProductId,
			Name:      r.Name,
			Category:  r.Category,
			Price:     r.Price,
			Quantity:  r.Quantity,
		})
		out.TotalItems += r.Quantity
		out.TotalPrice += r.Price * float64(r.Quantity)
	}
	return out, nil
}

func (s *interactionServiceImpl) UpdateCart(ctx context.Context, userID int64, req request.CartItemRequest) (*respond.CartRespond, error) {
	before, err := s.cartQuantity(ctx, userID, req.ProductId)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.SetCartQuantity(ctx, userID, req.ProductId, req.Quantity)
	if err != nil {
		zlog.Error("update cart failed", zap.Int64("user_id", userID), zap.Int64("product_id", req.ProductId), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if !found {
		return nil, xerr.New(xerr.NotFound, "购物车中没有该商品")
	}
	s.emitCartDelta(ctx, userID, req.ProductId, max(req.Quantity, 0)-before)
	return s.GetCart(ctx, userID)
}

func (s *interactionServiceImpl) RemoveFromCart(ctx context.Context, userID int64, productID int64) (*respond.CartRespond, error) {
	before, err := s.cartQuantity(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.RemoveCartProduct(ctx, userID, productID)
	if err != nil {
		zlog.Error("remove from cart failed", zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if n == 0 {
		return nil, xerr.New(xerr.NotFound, "购物车中没有该商品")
	}
	s.emitCartDelta(ctx, userID, productID, -before)
	return s.GetCart(ctx, userID)
}

// cartQuantity 用户购物车中某商品的总数量
func (s *interactionServiceImpl) cartQuantity(ctx context.Context, userID, productID int64) (int, error) {
	rows, err := s.repo.ListCartItems(ctx, userID)
	if err != nil {
		zlog.Error("list cart failed", zap.Int64("user_id", userID), zap.Error(err))
		return 0, xerr.ErrServerError
	}
	n := 0
	for _, r := range rows {
		if r.ProductId == productID {
			n += r.Quantity
		}
	}
	return n, nil
}

// emitCartDelta 数量变化以加购事件的差值发出，热度 ZSET 与购物车当前数量保持一致
func (s *interactionServiceImpl) emitCartDelta(ctx context.Context, userID, productID int64, delta int) {
	if delta == 0 {
		return
	}
	ev := event.New(event.TypeCart, userID, productID)
	ev.Quantity = delta
	s.emit(ctx, ev)
}

func (s *interactionServiceImpl) RecentlyViewed(ctx context.Context, userID int64) (*respond.RecentlyViewedRespond, error) {
	ids, err := s.repo.RecentViewedProductIDs(ctx, userID, s.recentLimit)
	if err != nil {
		zlog.Error("recent views failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	rows, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		zlog.Error("load products failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := &respond.RecentlyViewedRespond{Items: make([]respond.RecentlyViewedItem, 0, len(rows))}
	for _, p := range rows {
		out.Items = append(out.Items, respond.RecentlyViewedItem{Id: p.ProductId, Name: p.Name, Category: p.Category, Price: p.Price})
	}
	return out, nil
}

func (s *interactionServiceImpl) AddRecentlyViewed(ctx context.Context, userID int64, productID int64) (*respond.RecentlyViewedRespond, error) {
	if err := s.checkRefs(ctx, userID, productID); err != nil {
		return nil, err
	}
	if err := s.recordView(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.RecentlyViewed(ctx, userID)
}

// checkRefs 用户与商品必须存在
func (s *interactionServiceImpl) checkRefs(ctx context.Context, userID, productID int64) error {
	if userID <= 0 || productID <= 0 {
		return xerr.ErrParam
	}
	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}
	ok, err := s.productExists(ctx, productID)
	if err != nil {
		zlog.Error("check product failed", zap.Int64("product_id", productID), zap.Error(err))
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.New(xerr.NotFound, "商品不存在")
	}
	return nil
}

func (s *interactionServiceImpl) checkUser(ctx context.Context, userID int64) error {
	ok, err := s.users.ExistsUser(ctx, userID)
	if err != nil {
		zlog.Error("check user failed", zap.Int64("user_id", userID), zap.Error(err))
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.New(xerr.NotFound, "用户不存在")
	}
	return nil
}

func (s *interactionServiceImpl) productExists(ctx context.Context, productID int64) (bool, error) {
	rows, err := s.products.GetProductsByIDs(ctx, []int64{productID})
	if err != nil {
		return false, err
	}
	return len(rows) == 1, nil
}

// emit 行为已落库，事件失败只告警
func (s *interactionServiceImpl) emit(ctx context.Context, e event.InteractionEvent) {
	if err := s.sink.Emit(ctx, e); err != nil {
		zlog.Warn("emit interaction event failed",
			zap.String("event_id", e.EventID),
			zap.String("type", string(e.Type)),
			zap.Int64("user_id", e.UserID),
			zap.Error(err))
	}
}

func (s *interactionServiceImpl) notify(userID int64, strategy string, items interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(userID, strategy, items)
	}
}
