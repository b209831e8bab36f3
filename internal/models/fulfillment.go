package models

import "github.com/dujiao-next/checkout/internal/constants"

// FulfillmentOption 交付方式（shipping / digital 标签联合）
// Shipping 仅在 Type 为 shipping 时非空。
type FulfillmentOption struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Subtitle  string         `json:"subtitle"`
	Currency  string         `json:"currency,omitempty"`
	BasePrice int64          `json:"base_price"`
	Shipping  *ShippingTerms `json:"shipping,omitempty"`
}

// ShippingTerms 物流交付条款
type ShippingTerms struct {
	Carrier string `json:"carrier"`
	MinDays int    `json:"min_days"`
	MaxDays int    `json:"max_days"`
}

// IsShipping 是否为物流交付
func (o FulfillmentOption) IsShipping() bool {
	return o.Type == constants.FulfillmentTypeShipping && o.Shipping != nil
}
