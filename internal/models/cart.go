package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dujiao-next/checkout/internal/constants"
)

// Cart 购物车（对外即结账会话）
// 金额均为最小货币单位的整数，全部由行项目与交付方式推导而来。
type Cart struct {
	ID                  string       `json:"id"`                              // 购物车ID（cart_ 前缀）
	Customer            *Customer    `json:"customer,omitempty"`              // 购买人
	Items               []LineItem   `json:"items"`                           // 行项目
	Status              string       `json:"status"`                          // 状态（shopping/checkout/completed/cancelled）
	Currency            string       `json:"currency"`                        // 币种
	FulfillmentAddress  *Address     `json:"fulfillment_address,omitempty"`   // 交付地址
	FulfillmentOptionID string       `json:"fulfillment_option_id,omitempty"` // 已选交付方式
	SubtotalPrice       int64        `json:"subtotal_price"`                  // 商品小计
	TotalDiscount       int64        `json:"total_discount"`                  // 优惠
	TotalShippingPrice  int64        `json:"total_shipping_price"`            // 运费
	TotalTax            int64        `json:"total_tax"`                       // 税费（含运费税）
	TotalPrice          int64        `json:"total_price"`                     // 合计
	Messages            CartMessages `json:"messages"`                        // 提示/阻断消息
	CreatedAt           time.Time    `json:"created_at"`                      // 创建时间
	UpdatedAt           time.Time    `json:"updated_at"`                      // 更新时间
	CompletedAt         *time.Time   `json:"completed_at,omitempty"`          // 完成时间
	CancelledAt         *time.Time   `json:"cancelled_at,omitempty"`          // 取消时间
}

// LineItem 行项目，购物车变更时对商品变体的定价快照
type LineItem struct {
	VariantID       string `json:"variant_id"`
	Quantity        int    `json:"quantity"`
	FulfillmentType string `json:"fulfillment_type"`
	Title           string `json:"title"`
	OriginalPrice   int64  `json:"original_price"`
	Taxable         bool   `json:"taxable"`
	TotalDiscount   int64  `json:"total_discount"`
	SubtotalPrice   int64  `json:"subtotal_price"`
	TotalTax        int64  `json:"total_tax"`
	TotalPrice      int64  `json:"total_price"`
}

// IsTerminal 是否处于终态
func (c *Cart) IsTerminal() bool {
	return c != nil && (c.Status == constants.CartStatusCompleted || c.Status == constants.CartStatusCancelled)
}

// Clone 深拷贝购物车
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Customer = c.Customer.Clone()
	cp.FulfillmentAddress = c.FulfillmentAddress.Clone()
	cp.Items = CloneLineItems(c.Items)
	cp.Messages = append(CartMessages(nil), c.Messages...)
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		cp.CompletedAt = &t
	}
	if c.CancelledAt != nil {
		t := *c.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}

// CloneLineItems 复制行项目切片
func CloneLineItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// CartMessage 购物车消息（封闭的标签联合类型）
type CartMessage interface {
	Kind() string
	cartMessage()
}

// OutOfStockMessage 缺货（阻断）
type OutOfStockMessage struct {
	VariantID string
	ItemIndex int
}

// QuantityNotAvailableMessage 库存不足（阻断）
type QuantityNotAvailableMessage struct {
	VariantID   string
	ItemIndex   int
	MaxQuantity int
}

// MissingFulfillmentAddressMessage 缺少交付地址（提示）
type MissingFulfillmentAddressMessage struct{}

// PaymentDeclinedMessage 支付被拒（提示）
type PaymentDeclinedMessage struct {
	Reason string
}

func (OutOfStockMessage) Kind() string { return constants.CartMessageOutOfStock }
func (QuantityNotAvailableMessage) Kind() string {
	return constants.CartMessageQuantityNotAvailable
}
func (MissingFulfillmentAddressMessage) Kind() string {
	return constants.CartMessageMissingFulfillmentAddress
}
func (PaymentDeclinedMessage) Kind() string { return constants.CartMessagePaymentDeclined }

func (OutOfStockMessage) cartMessage()                {}
func (QuantityNotAvailableMessage) cartMessage()      {}
func (MissingFulfillmentAddressMessage) cartMessage() {}
func (PaymentDeclinedMessage) cartMessage()           {}

// IsBlockingMessage 判断消息是否阻止进入 checkout 状态
func IsBlockingMessage(msg CartMessage) bool {
	switch msg.(type) {
	case OutOfStockMessage, QuantityNotAvailableMessage:
		return true
	default:
		return false
	}
}

// CartMessages 消息列表，负责标签联合类型的 JSON 编解码
type CartMessages []CartMessage

// HasBlocking 是否包含阻断消息
func (m CartMessages) HasBlocking() bool {
	for _, msg := range m {
		if IsBlockingMessage(msg) {
			return true
		}
	}
	return false
}

// Blocking 返回全部阻断消息
func (m CartMessages) Blocking() CartMessages {
	out := CartMessages{}
	for _, msg := range m {
		if IsBlockingMessage(msg) {
			out = append(out, msg)
		}
	}
	return out
}

type cartMessageRecord struct {
	Kind        string `json:"kind"`
	VariantID   string `json:"variant_id,omitempty"`
	ItemIndex   *int   `json:"item_index,omitempty"`
	MaxQuantity *int   `json:"max_quantity,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// MarshalJSON 按 kind 字段编码
func (m CartMessages) MarshalJSON() ([]byte, error) {
	records := make([]cartMessageRecord, 0, len(m))
	for _, msg := range m {
		switch v := msg.(type) {
		case OutOfStockMessage:
			idx := v.ItemIndex
			records = append(records, cartMessageRecord{Kind: v.Kind(), VariantID: v.VariantID, ItemIndex: &idx})
		case QuantityNotAvailableMessage:
			idx, maxQty := v.ItemIndex, v.MaxQuantity
			records = append(records, cartMessageRecord{Kind: v.Kind(), VariantID: v.VariantID, ItemIndex: &idx, MaxQuantity: &maxQty})
		case MissingFulfillmentAddressMessage:
			records = append(records, cartMessageRecord{Kind: v.Kind()})
		case PaymentDeclinedMessage:
			records = append(records, cartMessageRecord{Kind: v.Kind(), Reason: v.Reason})
		default:
			return nil, fmt.Errorf("unknown cart message type %T", msg)
		}
	}
	return json.Marshal(records)
}

// UnmarshalJSON 按 kind 字段解码
func (m *CartMessages) UnmarshalJSON(b []byte) error {
	var records []cartMessageRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return err
	}
	out := make(CartMessages, 0, len(records))
	for _, r := range records {
		switch r.Kind {
		case constants.CartMessageOutOfStock:
			out = append(out, OutOfStockMessage{VariantID: r.VariantID, ItemIndex: derefInt(r.ItemIndex)})
		case constants.CartMessageQuantityNotAvailable:
			out = append(out, QuantityNotAvailableMessage{
				VariantID:   r.VariantID,
				ItemIndex:   derefInt(r.ItemIndex),
				MaxQuantity: derefInt(r.MaxQuantity),
			})
		case constants.CartMessageMissingFulfillmentAddress:
			out = append(out, MissingFulfillmentAddressMessage{})
		case constants.CartMessagePaymentDeclined:
			out = append(out, PaymentDeclinedMessage{Reason: r.Reason})
		default:
			return fmt.Errorf("unknown cart message kind %q", r.Kind)
		}
	}
	*m = out
	return nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
