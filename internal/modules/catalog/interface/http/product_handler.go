package handler

import (
	"strconv"

	"ShopRec/internal/modules/catalog/application/dto/request"
	"ShopRec/internal/modules/catalog/application/service"
	"ShopRec/pkg/back"
	"ShopRec/pkg/xerr"
	"ShopRec/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	svc service.CatalogService
}

func NewProductHandler(svc service.CatalogService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// AddProduct POST /add_product
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var req request.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind add_product request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.AddProduct(c.Request.Context(), req)
	back.Result(c, data, err)
}

// GetProduct GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.GetProduct(c.Request.Context(), id)
	back.Result(c, data, err)
}

// ListProducts GET /products?category=&page=&page_size=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req request.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.ListProducts(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	data, err := h.svc.ListCategories(c.Request.Context())
	back.Result(c, data, err)
}
