package service

import (
	"context"
	"testing"

	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/models"
)

func createSession(t *testing.T, env *checkoutTestEnv, input CreateInput) *Session {
	t.Helper()
	result, err := env.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if result.Kind != KindUpdated {
		t.Fatalf("unexpected result kind: %s", result.Kind)
	}
	return result.Session
}

func assertTotalInvariant(t *testing.T, cart *models.Cart) {
	t.Helper()
	if cart.SubtotalPrice < 0 || cart.TotalShippingPrice < 0 || cart.TotalTax < 0 {
		t.Fatalf("negative component: %+v", cart)
	}
	if cart.TotalPrice != cart.SubtotalPrice+cart.TotalShippingPrice+cart.TotalTax {
		t.Fatalf("total %d != %d + %d + %d", cart.TotalPrice, cart.SubtotalPrice, cart.TotalShippingPrice, cart.TotalTax)
	}
}

func TestRecomputeTaxableDigitalItem(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	session := createSession(t, env, CreateInput{
		Items:   []ItemInput{{ID: "var_sticker", Quantity: 2}},
		Address: usAddress(),
	})
	cart := session.Cart

	if len(cart.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(cart.Items))
	}
	line := cart.Items[0]
	if line.SubtotalPrice != 2000 || line.TotalTax != 100 || line.TotalPrice != 2100 {
		t.Fatalf("unexpected line amounts: %+v", line)
	}
	if cart.SubtotalPrice != 2000 || cart.TotalShippingPrice != 0 || cart.TotalTax != 100 || cart.TotalPrice != 2100 {
		t.Fatalf("unexpected cart totals: %+v", cart)
	}
	if line.Title != "Sticker Pack" || line.FulfillmentType != constants.FulfillmentTypeDigital {
		t.Fatalf("unexpected line snapshot: %+v", line)
	}
	assertTotalInvariant(t, cart)
}

func TestRecomputeWithoutAddress(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	session := createSession(t, env, CreateInput{Items: []ItemInput{{ID: "var_mug_white", Quantity: 1}}})
	cart := session.Cart

	if cart.Status != constants.CartStatusShopping {
		t.Fatalf("expected shopping, got %s", cart.Status)
	}
	if cart.FulfillmentOptionID != "" || len(session.FulfillmentOptions) != 0 {
		t.Fatalf("expected no fulfillment option, got %q %+v", cart.FulfillmentOptionID, session.FulfillmentOptions)
	}
	if len(cart.Messages) != 1 || cart.Messages[0].Kind() != constants.CartMessageMissingFulfillmentAddress {
		t.Fatalf("expected missing address message, got %+v", cart.Messages)
	}
	if cart.TotalTax != 360 || cart.TotalPrice != 1560 {
		t.Fatalf("expected placeholder rate applied, got tax=%d total=%d", cart.TotalTax, cart.TotalPrice)
	}
	assertTotalInvariant(t, cart)
}

func TestRecomputeRetaxesStoredItemsOnAddressChange(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	ctx := context.Background()
	session := createSession(t, env, CreateInput{Items: []ItemInput{{ID: "var_mug_white", Quantity: 1}}})

	result, err := env.svc.Update(ctx, session.Cart.ID, Mutation{Address: usAddress()})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	cart := result.Session.Cart
	if cart.Status != constants.CartStatusCheckout {
		t.Fatalf("expected checkout, got %s (%+v)", cart.Status, cart.Messages)
	}
	if cart.FulfillmentOptionID != "ful_IoOTbrNr7NGs8TKgaZ982" {
		t.Fatalf("expected cheapest shipping option, got %s", cart.FulfillmentOptionID)
	}
	if cart.Items[0].TotalTax != 60 {
		t.Fatalf("expected line retaxed at 0.05, got %d", cart.Items[0].TotalTax)
	}
	if cart.TotalShippingPrice != 600 || cart.TotalTax != 90 || cart.TotalPrice != 1890 {
		t.Fatalf("unexpected totals: shipping=%d tax=%d total=%d", cart.TotalShippingPrice, cart.TotalTax, cart.TotalPrice)
	}
	assertTotalInvariant(t, cart)
}

func TestRecomputeKeepsStoredChoiceWhileValid(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	ctx := context.Background()
	session := createSession(t, env, CreateInput{
		Items:   []ItemInput{{ID: "var_mug_white", Quantity: 1}},
		Address: usAddress(),
	})

	express := "ful_ElsqLNhSVEwlCWcC5SI43"
	result, err := env.svc.Update(ctx, session.Cart.ID, Mutation{FulfillmentOptionID: express})
	if err != nil || result.Kind != KindUpdated {
		t.Fatalf("select express failed: %v %s", err, result.Kind)
	}
	if result.Session.Cart.TotalShippingPrice != 3000 {
		t.Fatalf("expected express price, got %d", result.Session.Cart.TotalShippingPrice)
	}

	result, err = env.svc.Update(ctx, session.Cart.ID, Mutation{Items: []ItemInput{{ID: "var_mug_white", Quantity: 2}}})
	if err != nil || result.Kind != KindUpdated {
		t.Fatalf("update items failed: %v %s", err, result.Kind)
	}
	if result.Session.Cart.FulfillmentOptionID != express {
		t.Fatalf("expected stored choice kept, got %s", result.Session.Cart.FulfillmentOptionID)
	}

	result, err = env.svc.Update(ctx, session.Cart.ID, Mutation{Items: []ItemInput{{ID: "var_ebook", Quantity: 1}}})
	if err != nil || result.Kind != KindUpdated {
		t.Fatalf("switch to digital failed: %v %s", err, result.Kind)
	}
	if result.Session.Cart.FulfillmentOptionID != "ful_MEhBAHAHb6FW3Odr6oqJr" {
		t.Fatalf("expected fallback to digital option, got %s", result.Session.Cart.FulfillmentOptionID)
	}
}

func TestRecomputeStockMessages(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	session := createSession(t, env, CreateInput{
		Items:   []ItemInput{{ID: "var_tshirt_l", Quantity: 1}, {ID: "var_tshirt_m", Quantity: 5}},
		Address: usAddress(),
	})
	cart := session.Cart

	if cart.Status != constants.CartStatusShopping {
		t.Fatalf("blocking messages must keep cart in shopping, got %s", cart.Status)
	}
	if len(cart.Messages) != 2 {
		t.Fatalf("expected two stock messages, got %+v", cart.Messages)
	}
	if msg, ok := cart.Messages[0].(models.OutOfStockMessage); !ok || msg.VariantID != "var_tshirt_l" || msg.ItemIndex != 0 {
		t.Fatalf("unexpected first message: %+v", cart.Messages[0])
	}
	msg, ok := cart.Messages[1].(models.QuantityNotAvailableMessage)
	if !ok || msg.ItemIndex != 1 || msg.MaxQuantity != 3 {
		t.Fatalf("unexpected second message: %+v", cart.Messages[1])
	}
	if cart.Items[1].Quantity != 5 {
		t.Fatalf("line must keep requested quantity, got %d", cart.Items[1].Quantity)
	}
	if cart.Items[0].Title != "Classic Cotton T-Shirt - L / Black" {
		t.Fatalf("unexpected variant title: %s", cart.Items[0].Title)
	}
	assertTotalInvariant(t, cart)
}

func TestRecomputeCarriesBlockingMessagesWithoutItems(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	ctx := context.Background()
	session := createSession(t, env, CreateInput{Items: []ItemInput{{ID: "var_tshirt_l", Quantity: 1}}})

	result, err := env.svc.Update(ctx, session.Cart.ID, Mutation{Address: usAddress()})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	cart := result.Session.Cart
	if cart.Status != constants.CartStatusShopping {
		t.Fatalf("expected shopping, got %s", cart.Status)
	}
	if !cart.Messages.HasBlocking() {
		t.Fatalf("expected blocking message carried forward, got %+v", cart.Messages)
	}
	for _, msg := range cart.Messages {
		if msg.Kind() == constants.CartMessageMissingFulfillmentAddress {
			t.Fatalf("missing address message must be rebuilt, got %+v", cart.Messages)
		}
	}
}

func TestDigitalOnlyCartsSeeOnlyDigitalOptions(t *testing.T) {
	env := setupCheckoutServiceTest(t)

	digital := createSession(t, env, CreateInput{
		Items:   []ItemInput{{ID: "var_ebook", Quantity: 1}, {ID: "prod_giftcard", Quantity: 1}},
		Address: usAddress(),
	})
	for _, option := range digital.FulfillmentOptions {
		if option.Type != constants.FulfillmentTypeDigital {
			t.Fatalf("digital cart got %s option", option.Type)
		}
	}
	if digital.Cart.Items[1].TotalTax != 0 {
		t.Fatalf("gift card must not be taxed, got %d", digital.Cart.Items[1].TotalTax)
	}

	mixed := createSession(t, env, CreateInput{
		Items:   []ItemInput{{ID: "var_ebook", Quantity: 1}, {ID: "var_mug_white", Quantity: 1}},
		Address: usAddress(),
	})
	if len(mixed.FulfillmentOptions) == 0 {
		t.Fatalf("expected shipping options")
	}
	for _, option := range mixed.FulfillmentOptions {
		if option.Type != constants.FulfillmentTypeShipping {
			t.Fatalf("mixed cart got %s option", option.Type)
		}
	}
}
