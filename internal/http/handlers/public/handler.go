package public

import "github.com/dujiao-next/checkout/internal/provider"

// Handler 公开查询接口处理器入口
// 说明：该处理器用于商品目录与购物车/订单的只读列表。
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
