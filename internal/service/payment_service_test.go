package service

import (
	"context"
	"testing"

	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/models"
	"github.com/dujiao-next/checkout/internal/payment/arcpay"
	"github.com/dujiao-next/checkout/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completePending(t *testing.T, env *checkoutTestEnv) (*models.Cart, *models.Order) {
	t.Helper()
	env.capture.result = &arcpay.CaptureResult{
		Capture:  &arcpay.PaymentCapture{ID: "cap_slow", Status: constants.CaptureStatusProcessing},
		TimedOut: true,
	}
	cart := createReadyCart(t, env)
	result, err := env.svc.Complete(context.Background(), cart.ID, CompleteInput{Payment: arcPayPayment()})
	require.NoError(t, err)
	require.Equal(t, PaymentPending, result.Payment.Kind)
	require.Len(t, env.scheduler.payloads, 1)
	env.scheduler.payloads = nil
	return result.Session.Cart, result.Order
}

func TestProcessMissingOrderIsDeclined(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	outcome, err := env.payments.Process(context.Background(), "order_missing")
	require.NoError(t, err)
	assert.Equal(t, PaymentDeclined, outcome.Kind)
	assert.Equal(t, "order not found", outcome.Reason)
}

func TestReconcileMarksPaid(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	ctx := context.Background()
	cart, order := completePending(t, env)
	env.capture.get = &arcpay.PaymentCapture{ID: "cap_slow", Status: constants.CaptureStatusSucceeded}

	err := env.payments.Reconcile(ctx, queue.CaptureReconcilePayload{OrderID: order.ID, CartID: cart.ID, CaptureID: "cap_slow", Attempt: 1})
	require.NoError(t, err)

	stored, err := env.orders.Load(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.FinancialStatusPaid, stored.FinancialStatus)
	assert.NotNil(t, stored.PaidAt)
	assert.Empty(t, env.scheduler.payloads)
}

func TestReconcileDeclinedAnnotatesCompletedCart(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	ctx := context.Background()
	cart, order := completePending(t, env)
	env.capture.get = &arcpay.PaymentCapture{ID: "cap_slow", Status: constants.CaptureStatusCancelled, CancellationReason: "mandate revoked"}

	err := env.payments.Reconcile(ctx, queue.CaptureReconcilePayload{OrderID: order.ID, CartID: cart.ID, CaptureID: "cap_slow", Attempt: 2})
	require.NoError(t, err)

	stored, err := env.carts.Load(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.CartStatusCompleted, stored.Status)
	require.Len(t, stored.Messages, 1)
	assert.Equal(t, models.PaymentDeclinedMessage{Reason: "mandate revoked"}, stored.Messages[0])

	storedOrder, err := env.orders.Load(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.FinancialStatusPending, storedOrder.FinancialStatus)
}

func TestReconcileStillPendingReschedules(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	ctx := context.Background()
	cart, order := completePending(t, env)
	env.capture.get = &arcpay.PaymentCapture{ID: "cap_slow", Status: constants.CaptureStatusProcessing}

	payload := queue.CaptureReconcilePayload{OrderID: order.ID, CartID: cart.ID, CaptureID: "cap_slow", Attempt: 1}
	require.NoError(t, env.payments.Reconcile(ctx, payload))
	require.Len(t, env.scheduler.payloads, 1)
	assert.Equal(t, 2, env.scheduler.payloads[0].Attempt)

	payload.Attempt = 3
	require.NoError(t, env.payments.Reconcile(ctx, payload))
	assert.Len(t, env.scheduler.payloads, 1, "max attempts reached, no further task expected")
}

func TestReconcileSkipsSettledOrder(t *testing.T) {
	env := setupCheckoutServiceTest(t)
	ctx := context.Background()
	cart := createReadyCart(t, env)
	result, err := env.svc.Complete(ctx, cart.ID, CompleteInput{Payment: arcPayPayment()})
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, result.Payment.Kind)

	err = env.payments.Reconcile(ctx, queue.CaptureReconcilePayload{OrderID: result.Order.ID, CaptureID: "cap_1", Attempt: 1})
	require.NoError(t, err)
	assert.Empty(t, env.capture.lookups)

	require.NoError(t, env.payments.Reconcile(ctx, queue.CaptureReconcilePayload{OrderID: "order_missing", CaptureID: "cap_x", Attempt: 1}))
}
