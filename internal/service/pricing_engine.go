package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/fulfillment"
	"github.com/dujiao-next/checkout/internal/models"
	"github.com/dujiao-next/checkout/internal/pricing"
	"github.com/dujiao-next/checkout/internal/repository"

	"github.com/shopspring/decimal"
)

// ItemInput 请求中的行项目（商品或变体ID + 数量）
type ItemInput struct {
	ID       string
	Quantity int
}

// Mutation 购物车变更，nil/空值字段表示未提供
type Mutation struct {
	Items               []ItemInput
	Customer            *models.Customer
	Address             *models.Address
	FulfillmentOptionID string
}

// Priced 重新定价后的购物车
type Priced struct {
	Cart    *models.Cart
	Options []models.FulfillmentOption
	TaxRate decimal.Decimal
}

// PricingEngine 购物车定价引擎
type PricingEngine struct {
	catalog     repository.CatalogRepository
	taxes       pricing.TaxResolver
	fulfillment fulfillment.Resolver
	now         func() time.Time
}

// NewPricingEngine 创建定价引擎
func NewPricingEngine(catalog repository.CatalogRepository, taxes pricing.TaxResolver, resolver fulfillment.Resolver) *PricingEngine {
	if taxes == nil {
		taxes = pricing.NewTaxResolver()
	}
	if resolver == nil {
		resolver = fulfillment.NewStaticResolver(nil)
	}
	return &PricingEngine{
		catalog:     catalog,
		taxes:       taxes,
		fulfillment: resolver,
		now:         time.Now,
	}
}

// Recompute 在副本上应用变更并重新计算派生字段
// 商品或交付方式无效时返回 Rejection，原购物车不被修改。
func (e *PricingEngine) Recompute(ctx context.Context, cart *models.Cart, m Mutation) (*Priced, *Rejection, error) {
	next := cart.Clone()
	if m.Customer != nil {
		next.Customer = m.Customer.Clone()
	}
	if m.Address != nil {
		next.FulfillmentAddress = m.Address.Clone()
	}
	rate := e.taxes.Resolve(next.FulfillmentAddress)

	var (
		lines    []models.LineItem
		messages models.CartMessages
	)
	if m.Items != nil {
		var (
			currency  string
			rejection *Rejection
			err       error
		)
		lines, messages, currency, rejection, err = e.priceItems(ctx, m.Items, rate)
		if err != nil || rejection != nil {
			return nil, rejection, err
		}
		if currency != "" {
			next.Currency = currency
		}
	} else {
		lines = retax(next.Items, rate)
		messages = cart.Messages.Blocking()
	}

	options := e.fulfillment.Resolve(next.FulfillmentAddress, lines)
	if m.FulfillmentOptionID != "" {
		if _, ok := fulfillment.Find(options, m.FulfillmentOptionID); !ok {
			return nil, &Rejection{Kind: KindInvalidFulfillmentChoiceID, ID: m.FulfillmentOptionID}, nil
		}
	}

	chosen, ok := chooseOption(options, m.FulfillmentOptionID, cart.FulfillmentOptionID)
	var shipping int64
	if ok {
		next.FulfillmentOptionID = chosen.ID
		shipping = chosen.BasePrice
	} else {
		next.FulfillmentOptionID = ""
		messages = append(messages, models.MissingFulfillmentAddressMessage{})
	}

	amounts := make([]pricing.Amounts, len(lines))
	for i := range lines {
		amounts[i] = pricing.Amounts{Subtotal: lines[i].SubtotalPrice, Tax: lines[i].TotalTax, Total: lines[i].TotalPrice}
	}
	totals := pricing.SumCart(amounts, shipping, rate)

	next.Items = lines
	next.Messages = messages
	next.SubtotalPrice = totals.Subtotal
	next.TotalDiscount = totals.Discount
	next.TotalShippingPrice = totals.Shipping
	next.TotalTax = totals.Tax
	next.TotalPrice = totals.Total
	next.Status = DeriveStatus(next)
	next.UpdatedAt = e.now()

	return &Priced{Cart: next, Options: options, TaxRate: rate}, nil, nil
}

// Options 读时重新计算交付方式与税率，不修改购物车
func (e *PricingEngine) Options(cart *models.Cart) ([]models.FulfillmentOption, decimal.Decimal) {
	if cart == nil {
		return []models.FulfillmentOption{}, decimal.Zero
	}
	return e.fulfillment.Resolve(cart.FulfillmentAddress, cart.Items), e.taxes.Resolve(cart.FulfillmentAddress)
}

// priceItems 逐项解析变体并定价，币种取第一个商品
func (e *PricingEngine) priceItems(ctx context.Context, items []ItemInput, rate decimal.Decimal) ([]models.LineItem, models.CartMessages, string, *Rejection, error) {
	lines := make([]models.LineItem, 0, len(items))
	messages := models.CartMessages{}
	currency := ""
	for i, item := range items {
		product, err := e.catalog.FindProduct(ctx, item.ID)
		if err != nil {
			return nil, nil, "", nil, err
		}
		variant, ok := product.FindVariant(item.ID)
		if product == nil || !ok {
			return nil, nil, "", &Rejection{Kind: KindInvalidProductID, ItemIndex: i, ID: item.ID}, nil
		}
		if i == 0 {
			currency = strings.ToUpper(strings.TrimSpace(product.Currency))
		}

		switch {
		case !variant.AvailableForSale || variant.QuantityAvailable <= 0:
			messages = append(messages, models.OutOfStockMessage{VariantID: variant.ID, ItemIndex: i})
		case variant.QuantityAvailable < item.Quantity:
			messages = append(messages, models.QuantityNotAvailableMessage{
				VariantID:   variant.ID,
				ItemIndex:   i,
				MaxQuantity: variant.QuantityAvailable,
			})
		}

		amounts := pricing.LineAmounts(variant.Price, item.Quantity, variant.Taxable, rate)
		lines = append(lines, models.LineItem{
			VariantID:       variant.ID,
			Quantity:        item.Quantity,
			FulfillmentType: product.ResolveFulfillmentType(variant),
			Title:           lineTitle(product, variant),
			OriginalPrice:   variant.Price,
			Taxable:         variant.Taxable,
			SubtotalPrice:   amounts.Subtotal,
			TotalTax:        amounts.Tax,
			TotalPrice:      amounts.Total,
		})
	}
	return lines, messages, currency, nil, nil
}

// retax 保留价格与数量快照，按新税率重新计算行项目
func retax(items []models.LineItem, rate decimal.Decimal) []models.LineItem {
	lines := models.CloneLineItems(items)
	for i := range lines {
		amounts := pricing.LineAmounts(lines[i].OriginalPrice, lines[i].Quantity, lines[i].Taxable, rate)
		lines[i].SubtotalPrice = amounts.Subtotal
		lines[i].TotalTax = amounts.Tax
		lines[i].TotalPrice = amounts.Total
	}
	return lines
}

// chooseOption 优先级：显式选择 → 仍有效的已存选择 → 最便宜的有效选项
func chooseOption(options []models.FulfillmentOption, requested, stored string) (models.FulfillmentOption, bool) {
	if requested != "" {
		if option, ok := fulfillment.Find(options, requested); ok {
			return option, true
		}
	}
	if stored != "" {
		if option, ok := fulfillment.Find(options, stored); ok {
			return option, true
		}
	}
	return fulfillment.Cheapest(options)
}

func lineTitle(product *models.Product, variant *models.ProductVariant) string {
	title := strings.TrimSpace(variant.Title)
	if len(product.Variants) <= 1 || title == "" {
		return product.Title
	}
	return product.Title + " - " + title
}
