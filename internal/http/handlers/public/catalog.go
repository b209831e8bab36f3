package public

import (
	"strings"

	"github.com/dujiao-next/checkout/internal/http/handlers/shared"
	"github.com/dujiao-next/checkout/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ProductSearch 商品查询条件
type ProductSearch struct {
	ID string `json:"id"`
}

// GetProducts 获取商品列表，find_id 可按商品ID或变体ID过滤
func (h *Handler) GetProducts(c *gin.Context) {
	findID := strings.TrimSpace(c.Query("find_id"))
	products, err := h.CatalogService.ListProducts(c.Request.Context(), findID)
	if err != nil {
		shared.RespondError(c, response.Internal(err))
		return
	}
	if findID == "" {
		response.List(c, nil, products)
		return
	}
	response.List(c, ProductSearch{ID: findID}, products)
}

// GetCarts 获取购物车列表
func (h *Handler) GetCarts(c *gin.Context) {
	carts, err := h.CatalogService.ListCarts(c.Request.Context())
	if err != nil {
		shared.RespondError(c, response.Internal(err))
		return
	}
	response.List(c, nil, carts)
}

// GetOrders 获取订单列表
func (h *Handler) GetOrders(c *gin.Context) {
	orders, err := h.CatalogService.ListOrders(c.Request.Context())
	if err != nil {
		shared.RespondError(c, response.Internal(err))
		return
	}
	response.List(c, nil, orders)
}
