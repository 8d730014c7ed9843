package handler

import (
	jwtMiddleware "ShopRec/internal/middleware/jwt"
	"ShopRec/internal/modules/interaction/application/dto/request"
	"ShopRec/internal/modules/interaction/application/service"
	"ShopRec/pkg/back"
	"ShopRec/pkg/xerr"
	"ShopRec/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InteractionHandler struct {
	svc service.InteractionService
}

func NewInteractionHandler(svc service.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: svc}
}

// ViewProduct POST /view_product
func (h *InteractionHandler) ViewProduct(c *gin.Context) {
	var req request.ViewProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind view_product request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.ViewProduct(c.Request.Context(), req)
	back.Result(c, data, err)
}

// AddToCart POST /add_to_cart，user_id 取自请求体
func (h *InteractionHandler) AddToCart(c *gin.Context) {
	var req request.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind add_to_cart request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.AddToCart(c.Request.Context(), req)
	back.Result(c, data, err)
}

// SearchProduct POST /search_product
func (h *InteractionHandler) SearchProduct(c *gin.Context) {
	var req request.SearchProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind search_product request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if req.UserId <= 0 {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.SearchProduct(c.Request.Context(), req)
	back.Result(c, data, err)
}

// SearchQuery GET /products/search?q=，登录用户的搜索会被记录
func (h *InteractionHandler) SearchQuery(c *gin.Context) {
	req := request.SearchProductRequest{
		UserId:     c.GetInt64(jwtMiddleware.CtxUserID),
		SearchText: c.Query("q"),
	}
	data, err := h.svc.SearchProduct(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *InteractionHandler) RecentlyViewed(c *gin.Context) {
	data, err := h.svc.RecentlyViewed(c.Request.Context(), c.GetInt64(jwtMiddleware.CtxUserID))
	back.Result(c, data, err)
}

func (h *InteractionHandler) AddRecentlyViewed(c *gin.Context) {
	var req request.RecentlyViewedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.AddRecentlyViewed(c.Request.Context(), c.GetInt64(jwtMiddleware.CtxUserID), req.ProductId)
	back.Result(c, data, err)
}
