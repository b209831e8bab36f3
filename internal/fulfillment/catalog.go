package fulfillment

import (
	"sort"

	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/models"
)

// 交付方式ID
const (
	OptionWorldwideShipping = "ful_IoOTbrNr7NGs8TKgaZ982"
	OptionExpressShipping   = "ful_ElsqLNhSVEwlCWcC5SI43"
	OptionDigitalDownload   = "ful_MEhBAHAHb6FW3Odr6oqJr"
)

// Resolver 根据地址与行项目给出可用交付方式
type Resolver interface {
	Resolve(address *models.Address, items []models.LineItem) []models.FulfillmentOption
}

// StaticResolver 固定交付方式表
type StaticResolver struct {
	options []models.FulfillmentOption
}

// NewStaticResolver 使用给定表创建，nil 时使用默认表
func NewStaticResolver(options []models.FulfillmentOption) *StaticResolver {
	if options == nil {
		options = DefaultOptions()
	}
	return &StaticResolver{options: options}
}

// DefaultOptions 默认交付方式表，价格为最小货币单位
func DefaultOptions() []models.FulfillmentOption {
	return []models.FulfillmentOption{
		{
			ID:        OptionWorldwideShipping,
			Type:      constants.FulfillmentTypeShipping,
			Title:     "Worldwide Shipping",
			Subtitle:  "Get your order delivered to your door worldwide.",
			Currency:  constants.DefaultCurrency,
			BasePrice: 600,
			Shipping:  &models.ShippingTerms{Carrier: "FedEx", MinDays: 3, MaxDays: 14},
		},
		{
			ID:        OptionExpressShipping,
			Type:      constants.FulfillmentTypeShipping,
			Title:     "Express Worldwide Shipping",
			Subtitle:  "Get your order delivered to your door worldwide in 1-2 days.",
			Currency:  constants.DefaultCurrency,
			BasePrice: 3000,
			Shipping:  &models.ShippingTerms{Carrier: "DHL Express", MinDays: 1, MaxDays: 2},
		},
		{
			ID:        OptionDigitalDownload,
			Type:      constants.FulfillmentTypeDigital,
			Title:     "Digital Download",
			Subtitle:  "Download your order instantly.",
			BasePrice: 0,
		},
	}
}

// Resolve 无地址返回空集；全数字商品仅返回数字交付，否则仅返回物流交付
func (r *StaticResolver) Resolve(address *models.Address, items []models.LineItem) []models.FulfillmentOption {
	if address == nil {
		return []models.FulfillmentOption{}
	}
	want := constants.FulfillmentTypeShipping
	if AllDigital(items) {
		want = constants.FulfillmentTypeDigital
	}
	out := make([]models.FulfillmentOption, 0, len(r.options))
	for _, option := range r.options {
		if option.Type == want {
			out = append(out, option)
		}
	}
	return out
}

// AllDigital 行项目是否全部为数字交付（空列表视为 true）
func AllDigital(items []models.LineItem) bool {
	for _, item := range items {
		if item.FulfillmentType != constants.FulfillmentTypeDigital {
			return false
		}
	}
	return true
}

// Find 在候选集中查找指定ID
func Find(options []models.FulfillmentOption, id string) (models.FulfillmentOption, bool) {
	if id == "" {
		return models.FulfillmentOption{}, false
	}
	for _, option := range options {
		if option.ID == id {
			return option, true
		}
	}
	return models.FulfillmentOption{}, false
}

// Cheapest 返回最便宜的交付方式，价格相同时保持表内顺序
func Cheapest(options []models.FulfillmentOption) (models.FulfillmentOption, bool) {
	if len(options) == 0 {
		return models.FulfillmentOption{}, false
	}
	sorted := append([]models.FulfillmentOption(nil), options...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BasePrice < sorted[j].BasePrice
	})
	return sorted[0], true
}
