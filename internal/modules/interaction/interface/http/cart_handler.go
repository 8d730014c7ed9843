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

// CartHandler /cart 系列接口，用户取自 JWT
type CartHandler struct {
	svc service.InteractionService
}

func NewCartHandler(svc service.InteractionService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	data, err := h.svc.GetCart(c.Request.Context(), c.GetInt64(jwtMiddleware.CtxUserID))
	back.Result(c, data, err)
}

func (h *CartHandler) Add(c *gin.Context) {
	var req request.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind cart add request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	req.UserId = c.GetInt64(jwtMiddleware.CtxUserID)
	data, err := h.svc.AddToCart(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *CartHandler) Update(c *gin.Context) {
	var req request.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.UpdateCart(c.Request.Context(), c.GetInt64(jwtMiddleware.CtxUserID), req)
	back.Result(c, data, err)
}

func (h *CartHandler) Remove(c *gin.Context) {
	var req request.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.RemoveFromCart(c.Request.Context(), c.GetInt64(jwtMiddleware.CtxUserID), req.ProductId)
	back.Result(c, data, err)
}
