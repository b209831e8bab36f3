package acp

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/fulfillment"
	"github.com/dujiao-next/checkout/internal/models"
	"github.com/dujiao-next/checkout/internal/pricing"
	"github.com/dujiao-next/checkout/internal/service"

	"github.com/shopspring/decimal"
)

// 会话对外状态映射
var statusMap = map[string]string{
	constants.CartStatusShopping:  constants.SessionStatusNotReadyForPayment,
	constants.CartStatusCheckout:  constants.SessionStatusReadyForPayment,
	constants.CartStatusCompleted: constants.SessionStatusCompleted,
	constants.CartStatusCancelled: constants.SessionStatusCanceled,
}

// Mapper 内部模型与协议结构的双向转换
type Mapper struct {
	estimator *fulfillment.Estimator
	baseURL   *url.URL
}

// NewMapper 创建转换器，publicBaseURL 用于生成会话链接
func NewMapper(estimator *fulfillment.Estimator, publicBaseURL string) *Mapper {
	if estimator == nil {
		estimator = fulfillment.NewEstimator(nil, 0, 0, 0)
	}
	m := &Mapper{estimator: estimator}
	if base, err := url.Parse(strings.TrimSpace(publicBaseURL)); err == nil && base.Scheme != "" && base.Host != "" {
		m.baseURL = base
	}
	return m
}

// Session 编码结账会话
func (m *Mapper) Session(s *service.Session) (*CheckoutSession, error) {
	if s == nil || s.Cart == nil {
		return nil, fmt.Errorf("empty checkout session")
	}
	cart := s.Cart
	status, ok := statusMap[cart.Status]
	if !ok {
		return nil, fmt.Errorf("unknown cart status %q", cart.Status)
	}
	messages, err := mapMessages(cart.Messages)
	if err != nil {
		return nil, err
	}

	methods := append([]string{}, s.PaymentProvider.SupportedMethods...)
	return &CheckoutSession{
		ID:    cart.ID,
		Buyer: buyerFromCustomer(cart.Customer),
		PaymentProvider: PaymentProvider{
			Provider:                s.PaymentProvider.Provider,
			SupportedPaymentMethods: methods,
		},
		Status:              status,
		Currency:            cart.Currency,
		LineItems:           mapLineItems(cart.Items),
		FulfillmentAddress:  addressFromModel(cart.FulfillmentAddress),
		FulfillmentOptions:  m.mapOptions(s.FulfillmentOptions, s.TaxRate),
		FulfillmentOptionID: cart.FulfillmentOptionID,
		Totals:              mapTotals(cart),
		Messages:            messages,
		Links:               m.links(),
	}, nil
}

// CompletedSession 编码完成后的会话，附带订单引用
func (m *Mapper) CompletedSession(result service.CompleteResult) (*CheckoutSession, error) {
	session, err := m.Session(result.Session)
	if err != nil {
		return nil, err
	}
	if result.Order != nil {
		session.Order = &Order{
			ID:                result.Order.ID,
			CheckoutSessionID: session.ID,
			PermalinkURL:      m.resolve("/orders/" + url.PathEscape(result.Order.ID)),
		}
	}
	return session, nil
}

func mapLineItems(items []models.LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, LineItem{
			ID:         item.VariantID,
			Item:       LineItemRef{ID: item.VariantID, Quantity: item.Quantity},
			BaseAmount: item.OriginalPrice,
			Discount:   item.TotalDiscount,
			Subtotal:   item.SubtotalPrice,
			Tax:        item.TotalTax,
			Total:      item.TotalPrice,
		})
	}
	return out
}

func mapTotals(cart *models.Cart) []Total {
	var itemsBase int64
	for _, item := range cart.Items {
		itemsBase += item.OriginalPrice * int64(item.Quantity)
	}
	return []Total{
		{Type: "items_base_amount", DisplayText: "Item(s) total", Amount: itemsBase},
		{Type: "discount", DisplayText: "Discount", Amount: cart.TotalDiscount},
		{Type: "subtotal", DisplayText: "Subtotal", Amount: cart.SubtotalPrice},
		{Type: "fulfillment", DisplayText: "Shipping", Amount: cart.TotalShippingPrice},
		{Type: "tax", DisplayText: "Tax", Amount: cart.TotalTax},
		{Type: "total", DisplayText: "Total", Amount: cart.TotalPrice},
	}
}

func (m *Mapper) mapOptions(options []models.FulfillmentOption, rate decimal.Decimal) []FulfillmentOption {
	out := make([]FulfillmentOption, 0, len(options))
	for _, option := range options {
		tax := pricing.TaxOn(option.BasePrice, rate)
		wire := FulfillmentOption{
			Type:     option.Type,
			ID:       option.ID,
			Title:    option.Title,
			Subtitle: option.Subtitle,
			Subtotal: option.BasePrice,
			Tax:      tax,
			Total:    option.BasePrice + tax,
		}
		if option.IsShipping() {
			window := m.estimator.Estimate(*option.Shipping)
			wire.CarrierInfo = option.Shipping.Carrier
			wire.EarliestDeliveryTime = window.Earliest.UTC().Format(time.RFC3339)
			wire.LatestDeliveryTime = window.Latest.UTC().Format(time.RFC3339)
		}
		out = append(out, wire)
	}
	return out
}

// mapMessages 消息映射必须覆盖全部类型，未知类型视为内部错误
func mapMessages(messages models.CartMessages) ([]Message, error) {
	out := make([]Message, 0, len(messages))
	for _, msg := range messages {
		switch v := msg.(type) {
		case models.MissingFulfillmentAddressMessage:
			out = append(out, Message{
				Type:        "info",
				Param:       "$.fulfillment_address",
				ContentType: "plain",
				Content:     "Please provide a fulfillment address to continue with the checkout.",
			})
		case models.OutOfStockMessage:
			out = append(out, Message{
				Type:        "error",
				Code:        "out_of_stock",
				Param:       fmt.Sprintf("$.line_items[%d].id", v.ItemIndex),
				ContentType: "plain",
				Content:     fmt.Sprintf("Product '%s' is currently out of stock.", v.VariantID),
			})
		case models.QuantityNotAvailableMessage:
			out = append(out, Message{
				Type:        "error",
				Code:        "invalid",
				Param:       fmt.Sprintf("$.line_items[%d].id", v.ItemIndex),
				ContentType: "plain",
				Content: fmt.Sprintf("Product '%s' is not available in the requested quantity. Please adjust the quantity to %d or less",
					v.VariantID, v.MaxQuantity),
			})
		case models.PaymentDeclinedMessage:
			content := "Payment was declined"
			if reason := strings.TrimSpace(v.Reason); reason != "" {
				content += ": " + reason
			}
			out = append(out, Message{
				Type:        "error",
				Code:        "payment_declined",
				Param:       "$.payment_data",
				ContentType: "plain",
				Content:     content,
			})
		default:
			return nil, fmt.Errorf("unknown cart message %T", msg)
		}
	}
	return out, nil
}

func (m *Mapper) links() []Link {
	if m.baseURL == nil {
		return []Link{}
	}
	return []Link{
		{Type: "terms_of_use", Value: m.resolve("/terms-of-use")},
		{Type: "privacy_policy", Value: m.resolve("/privacy-policy")},
		{Type: "seller_shop_policies", Value: m.resolve("/seller-shop-policies")},
	}
}

func (m *Mapper) resolve(path string) string {
	if m.baseURL == nil {
		return path
	}
	return m.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

func buyerFromCustomer(c *models.Customer) *Buyer {
	if c == nil {
		return nil
	}
	return &Buyer{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.Phone,
	}
}

func customerFromBuyer(b *Buyer) *models.Customer {
	if b == nil {
		return nil
	}
	return &models.Customer{
		FirstName: strings.TrimSpace(b.FirstName),
		LastName:  strings.TrimSpace(b.LastName),
		Email:     strings.TrimSpace(b.Email),
		Phone:     strings.TrimSpace(b.PhoneNumber),
	}
}

func addressFromModel(a *models.Address) *Address {
	if a == nil {
		return nil
	}
	return &Address{
		Name:        a.Name,
		LineOne:     a.Address1,
		LineTwo:     a.Address2,
		City:        a.City,
		State:       a.State,
		Country:     a.Country,
		PostalCode:  a.Zip,
		PhoneNumber: a.Phone,
	}
}

func addressToModel(a *Address) *models.Address {
	if a == nil {
		return nil
	}
	return &models.Address{
		Name:     a.Name,
		Address1: a.LineOne,
		Address2: a.LineTwo,
		City:     a.City,
		State:    a.State,
		Country:  strings.ToUpper(strings.TrimSpace(a.Country)),
		Zip:      a.PostalCode,
		Phone:    a.PhoneNumber,
	}
}

func itemsToInput(items []Item) []service.ItemInput {
	if items == nil {
		return nil
	}
	out := make([]service.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, service.ItemInput{ID: strings.TrimSpace(item.ID), Quantity: item.Quantity})
	}
	return out
}

// ToCreateInput 解码创建请求
func ToCreateInput(req CreateRequest) service.CreateInput {
	return service.CreateInput{
		Items:    itemsToInput(req.Items),
		Customer: customerFromBuyer(req.Buyer),
		Address:  addressToModel(req.FulfillmentAddress),
	}
}

// ToMutation 解码更新请求
func ToMutation(req UpdateRequest) service.Mutation {
	return service.Mutation{
		Items:               itemsToInput(req.Items),
		Customer:            customerFromBuyer(req.Buyer),
		Address:             addressToModel(req.FulfillmentAddress),
		FulfillmentOptionID: strings.TrimSpace(req.FulfillmentOptionID),
	}
}

// ToCompleteInput 解码完成请求，支付类型固定为委托支付
func ToCompleteInput(req CompleteRequest) service.CompleteInput {
	return service.CompleteInput{
		Customer: customerFromBuyer(req.Buyer),
		Payment: models.Payment{
			Type:           constants.PaymentTypeDelegated,
			Provider:       req.PaymentData.Provider,
			Token:          req.PaymentData.Token,
			BillingAddress: addressToModel(req.PaymentData.BillingAddress),
		},
	}
}
