package handler

import (
	"strconv"

	jwtMiddleware "ShopRec/internal/middleware/jwt"
	"ShopRec/internal/modules/recommend/application/dto/respond"
	"ShopRec/internal/modules/recommend/application/service"
	"ShopRec/pkg/back"
	"ShopRec/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type RecommendHandler struct {
	svc service.RecommendService
}

func NewRecommendHandler(svc service.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: svc}
}

// TopPicks GET /top_picks
func (h *RecommendHandler) TopPicks(c *gin.Context) {
	items, err := h.svc.TopPicks(c.Request.Context())
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.TopPicksRespond{TopPicks: items})
}

// Recommendations GET /products/recommendations?user_id=，缺省取登录用户
func (h *RecommendHandler) Recommendations(c *gin.Context) {
	userID := c.GetInt64(jwtMiddleware.CtxUserID)
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
			return
		}
		userID = id
	}
	data, err := h.svc.ForUser(c.Request.Context(), userID)
	back.Result(c, data, err)
}

// Popular GET /products/popular?limit=
func (h *RecommendHandler) Popular(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
			return
		}
		limit = n
	}
	items, err := h.svc.Popular(c.Request.Context(), limit)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, respond.PopularRespond{Items: items})
}
