package handler

import (
	jwtMiddleware "ShopRec/internal/middleware/jwt"
	"ShopRec/internal/modules/user/application/dto/request"
	"ShopRec/internal/modules/user/application/service"
	"ShopRec/pkg/back"
	"ShopRec/pkg/xerr"
	"ShopRec/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// AddUser POST /add_user
func (h *UserHandler) AddUser(c *gin.Context) {
	var req request.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind add_user request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.AddUser(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind register request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Register(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind login request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Login(c.Request.Context(), req)
	back.Result(c, data, err)
}

// Logout token 无状态，客户端丢弃即可
func (h *UserHandler) Logout(c *gin.Context) {
	back.Success(c, gin.H{"message": "Logged out"})
}

func (h *UserHandler) Profile(c *gin.Context) {
	data, err := h.svc.Profile(c.Request.Context(), c.GetInt64(jwtMiddleware.CtxUserID))
	back.Result(c, data, err)
}
