package service

import (
	"testing"
	"time"

	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/models"
)

func readyCart() *models.Cart {
	return &models.Cart{
		ID:                  "cart_ready",
		Status:              constants.CartStatusShopping,
		Items:               []models.LineItem{{VariantID: "var_mug_white", Quantity: 1}},
		FulfillmentAddress:  &models.Address{Country: "US"},
		FulfillmentOptionID: "ful_IoOTbrNr7NGs8TKgaZ982",
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *models.Cart)
		want   string
	}{
		{name: "ready", mutate: func(c *models.Cart) {}, want: constants.CartStatusCheckout},
		{name: "no items", mutate: func(c *models.Cart) { c.Items = nil }, want: constants.CartStatusShopping},
		{name: "no option", mutate: func(c *models.Cart) { c.FulfillmentOptionID = "" }, want: constants.CartStatusShopping},
		{name: "no address", mutate: func(c *models.Cart) { c.FulfillmentAddress = nil }, want: constants.CartStatusShopping},
		{name: "out of stock", mutate: func(c *models.Cart) {
			c.Messages = models.CartMessages{models.OutOfStockMessage{VariantID: "var_mug_white"}}
		}, want: constants.CartStatusShopping},
		{name: "quantity", mutate: func(c *models.Cart) {
			c.Messages = models.CartMessages{models.QuantityNotAvailableMessage{VariantID: "var_mug_white", MaxQuantity: 1}}
		}, want: constants.CartStatusShopping},
		{name: "advisory only", mutate: func(c *models.Cart) {
			c.Messages = models.CartMessages{models.PaymentDeclinedMessage{Reason: "x"}}
		}, want: constants.CartStatusCheckout},
		{name: "completed stays", mutate: func(c *models.Cart) {
			c.Status = constants.CartStatusCompleted
			c.Items = nil
		}, want: constants.CartStatusCompleted},
		{name: "cancelled stays", mutate: func(c *models.Cart) { c.Status = constants.CartStatusCancelled }, want: constants.CartStatusCancelled},
	}
	for _, tc := range cases {
		cart := readyCart()
		tc.mutate(cart)
		if got := DeriveStatus(cart); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestGuards(t *testing.T) {
	statuses := []string{
		constants.CartStatusShopping,
		constants.CartStatusCheckout,
		constants.CartStatusCompleted,
		constants.CartStatusCancelled,
	}
	wantUpdate := []ResultKind{"", "", KindCompletedCannotUpdate, KindCancelledCannotUpdate}
	wantComplete := []ResultKind{KindNotReadyForCompletion, "", KindAlreadyCompleted, KindCancelledCannotComplete}
	wantCancel := []ResultKind{"", "", KindCompletedCannotCancel, KindAlreadyCancelled}

	for i, status := range statuses {
		cart := &models.Cart{Status: status}
		if got := guardUpdate(cart); got != wantUpdate[i] {
			t.Fatalf("update on %s: got %q want %q", status, got, wantUpdate[i])
		}
		if got := guardComplete(cart); got != wantComplete[i] {
			t.Fatalf("complete on %s: got %q want %q", status, got, wantComplete[i])
		}
		if got := guardCancel(cart); got != wantCancel[i] {
			t.Fatalf("cancel on %s: got %q want %q", status, got, wantCancel[i])
		}
	}
	if guardUpdate(nil) != KindNotFound || guardComplete(nil) != KindNotFound || guardCancel(nil) != KindNotFound {
		t.Fatalf("missing cart must be not found")
	}
}

func TestOrderFactoryCopiesCart(t *testing.T) {
	factory := NewOrderFactory()
	cart := readyCart()
	cart.Customer = &models.Customer{Email: "stored@example.com", Phone: "+1 555 0100"}
	cart.Items[0].TotalPrice = 1260
	cart.SubtotalPrice, cart.TotalShippingPrice, cart.TotalTax, cart.TotalPrice = 1200, 600, 90, 1890
	cart.Currency = "USD"
	billing := &models.Address{Name: "Billing", Country: "US"}

	order := factory.Build(cart, models.Payment{Provider: constants.PaymentProviderArcPay, Token: "tok", BillingAddress: billing}, &models.Customer{Email: "buyer@example.com"})

	if order.CustomerEmail != "buyer@example.com" || order.CustomerPhone != "" {
		t.Fatalf("request buyer must override stored customer: %+v", order)
	}
	if order.Payment.Type != constants.PaymentTypeDelegated {
		t.Fatalf("unexpected payment type: %s", order.Payment.Type)
	}
	if order.FinancialStatus != constants.FinancialStatusPending || order.FulfillmentStatus != constants.FulfillmentStatusPending {
		t.Fatalf("unexpected statuses: %s %s", order.FinancialStatus, order.FulfillmentStatus)
	}
	if order.TotalPrice != 1890 || order.CartID != cart.ID || order.Status != constants.OrderStatusCreated {
		t.Fatalf("unexpected order snapshot: %+v", order)
	}

	cart.Items[0].Quantity = 99
	cart.FulfillmentAddress.Country = "CZ"
	billing.Name = "Changed"
	if order.LineItems[0].Quantity != 1 || order.ShippingAddress.Country != "US" || order.BillingAddress.Name != "Billing" {
		t.Fatalf("order must not share references with cart: %+v", order)
	}
}

func TestMarkPaid(t *testing.T) {
	order := &models.Order{FinancialStatus: constants.FinancialStatusPending}
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	MarkPaid(order, "cap_1", at)
	if order.FinancialStatus != constants.FinancialStatusPaid || order.CaptureID != "cap_1" || order.PaidAt == nil || !order.PaidAt.Equal(at) {
		t.Fatalf("unexpected paid order: %+v", order)
	}
}
