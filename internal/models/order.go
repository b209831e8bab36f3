package models

import "time"

// Order 订单快照，完成结账时由购物车生成
// 创建后仅 FinancialStatus / FulfillmentStatus / CaptureID 会被支付对账修改。
type Order struct {
	ID                  string          `json:"id"`                              // 订单ID（order_ 前缀）
	CustomerEmail       string          `json:"customer_email"`                  // 购买人邮箱
	CustomerPhone       string          `json:"customer_phone,omitempty"`        // 购买人电话
	LineItems           []LineItem      `json:"line_items"`                      // 行项目（独立副本）
	Discounts           []OrderDiscount `json:"discounts"`                       // 优惠明细
	SubtotalPrice       int64           `json:"subtotal_price"`                  // 商品小计
	TotalShippingPrice  int64           `json:"total_shipping_price"`            // 运费
	TotalTax            int64           `json:"total_tax"`                       // 税费
	TotalPrice          int64           `json:"total_price"`                     // 合计
	Currency            string          `json:"currency"`                        // 币种
	Status              string          `json:"status"`                          // 订单状态
	CartID              string          `json:"cart_id"`                         // 来源购物车
	Payment             Payment         `json:"payment"`                         // 委托支付记录
	FinancialStatus     string          `json:"financial_status"`                // 资金状态
	FulfillmentStatus   string          `json:"fulfillment_status"`              // 交付状态
	BillingAddress      *Address        `json:"billing_address,omitempty"`       // 账单地址
	ShippingAddress     *Address        `json:"shipping_address,omitempty"`      // 收货地址
	FulfillmentOptionID string          `json:"fulfillment_option_id,omitempty"` // 交付方式
	CaptureID           string          `json:"capture_id,omitempty"`            // 支付扣款ID
	ProcessedAt         time.Time       `json:"processed_at"`                    // 处理时间
	PaidAt              *time.Time      `json:"paid_at,omitempty"`               // 支付时间
	CanceledAt          *time.Time      `json:"canceled_at,omitempty"`           // 取消时间
}

// OrderDiscount 订单优惠
type OrderDiscount struct {
	Target string `json:"target"` // line_item / shipping
	Value  int64  `json:"value"`
}
