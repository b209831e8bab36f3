package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/models"
)

// OrderFactory 完成结账时由购物车生成订单快照
type OrderFactory struct {
	newID func() string
	now   func() time.Time
}

// NewOrderFactory 创建订单工厂
func NewOrderFactory() *OrderFactory {
	return &OrderFactory{
		newID: func() string { return models.NewID(constants.IDPrefixOrder) },
		now:   time.Now,
	}
}

// Build 生成订单，行项目与地址均为独立副本
// 请求中的购买人优先于购物车中保存的购买人。
func (f *OrderFactory) Build(cart *models.Cart, payment models.Payment, customer *models.Customer) *models.Order {
	buyer := cart.Customer
	if customer != nil {
		buyer = customer
	}
	var email, phone string
	if buyer != nil {
		email = strings.TrimSpace(buyer.Email)
		phone = strings.TrimSpace(buyer.Phone)
	}
	if payment.Type == "" {
		payment.Type = constants.PaymentTypeDelegated
	}
	payment.BillingAddress = payment.BillingAddress.Clone()

	return &models.Order{
		ID:                  f.newID(),
		CustomerEmail:       email,
		CustomerPhone:       phone,
		LineItems:           models.CloneLineItems(cart.Items),
		Discounts:           []models.OrderDiscount{},
		SubtotalPrice:       cart.SubtotalPrice,
		TotalShippingPrice:  cart.TotalShippingPrice,
		TotalTax:            cart.TotalTax,
		TotalPrice:          cart.TotalPrice,
		Currency:            cart.Currency,
		Status:              constants.OrderStatusCreated,
		CartID:              cart.ID,
		Payment:             payment,
		FinancialStatus:     constants.FinancialStatusPending,
		FulfillmentStatus:   constants.FulfillmentStatusPending,
		BillingAddress:      payment.BillingAddress.Clone(),
		ShippingAddress:     cart.FulfillmentAddress.Clone(),
		FulfillmentOptionID: cart.FulfillmentOptionID,
		ProcessedAt:         f.now(),
	}
}

// MarkPaid 支付成功对账
func MarkPaid(order *models.Order, captureID string, at time.Time) {
	order.FinancialStatus = constants.FinancialStatusPaid
	if captureID != "" {
		order.CaptureID = captureID
	}
	paidAt := at
	order.PaidAt = &paidAt
}

// MarkPending 支付未完成对账，保持 pending
func MarkPending(order *models.Order, captureID string) {
	order.FinancialStatus = constants.FinancialStatusPending
	if captureID != "" {
		order.CaptureID = captureID
	}
}
