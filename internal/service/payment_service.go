package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/cache"
	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/logger"
	"github.com/dujiao-next/checkout/internal/models"
	"github.com/dujiao-next/checkout/internal/payment/arcpay"
	"github.com/dujiao-next/checkout/internal/queue"
	"github.com/dujiao-next/checkout/internal/repository"
)

// CaptureClient 扣款服务接口
type CaptureClient interface {
	Capture(ctx context.Context, req arcpay.CaptureRequest, idempotencyKey string, opts arcpay.PollOptions) (*arcpay.CaptureResult, error)
	GetCapture(ctx context.Context, captureID string) (*arcpay.PaymentCapture, error)
}

// ReconcileScheduler 扣款对账任务调度
type ReconcileScheduler interface {
	EnqueueCaptureReconcile(payload queue.CaptureReconcilePayload, delay time.Duration) error
}

// CartLocker 购物车互斥锁
type CartLocker interface {
	Acquire(ctx context.Context, name string) (cache.ReleaseFunc, error)
}

// PaymentOptions 支付处理配置
type PaymentOptions struct {
	Poll                 arcpay.PollOptions
	ReconcileDelay       time.Duration
	ReconcileMaxAttempts int
}

// PaymentService 支付扣款与对账服务
type PaymentService struct {
	orders    repository.OrderStore
	carts     repository.CartStore
	capture   CaptureClient
	scheduler ReconcileScheduler
	locker    CartLocker
	opts      PaymentOptions
	now       func() time.Time
}

// NewPaymentService 创建支付服务，capture 为空时所有扣款按拒绝处理
func NewPaymentService(orders repository.OrderStore, carts repository.CartStore, capture CaptureClient, scheduler ReconcileScheduler, locker CartLocker, opts PaymentOptions) *PaymentService {
	if opts.ReconcileMaxAttempts <= 0 {
		opts.ReconcileMaxAttempts = 10
	}
	if opts.ReconcileDelay <= 0 {
		opts.ReconcileDelay = 30 * time.Second
	}
	return &PaymentService{
		orders:    orders,
		carts:     carts,
		capture:   capture,
		scheduler: scheduler,
		locker:    locker,
		opts:      opts,
		now:       time.Now,
	}
}

// Process 对订单发起扣款并写回订单资金状态
// 扣款失败不返回错误，由调用方根据结果在购物车上追加 payment_declined 消息。
// 返回错误时 outcome 仍是扣款本身的结果（订单写回失败等），零值表示未发起扣款。
func (s *PaymentService) Process(ctx context.Context, orderID string) (PaymentOutcome, error) {
	log := logger.FromContext(ctx).With("order_id", orderID)
	order, err := s.orders.Load(ctx, orderID)
	if err != nil {
		return PaymentOutcome{}, err
	}
	if order == nil {
		log.Warnw("payment_order_not_found")
		return PaymentOutcome{Kind: PaymentDeclined, Reason: "order not found"}, nil
	}
	if order.Payment.Provider != constants.PaymentProviderArcPay {
		log.Warnw("payment_provider_not_supported", "provider", order.Payment.Provider)
		return PaymentOutcome{Kind: PaymentUnsupported}, nil
	}
	if s.capture == nil {
		log.Errorw("payment_capture_client_missing")
		return PaymentOutcome{Kind: PaymentDeclined, Reason: "payment provider unavailable"}, nil
	}

	req := arcpay.CaptureRequest{
		Amount:               arcpay.FormatAmount(order.TotalPrice),
		Currency:             arcpay.StablecoinCurrency(order.Currency),
		GrantedMandateSecret: order.Payment.Token,
		Metadata:             map[string]string{"order_id": order.ID, "cart_id": order.CartID},
	}
	result, err := s.capture.Capture(ctx, req, order.ID, s.opts.Poll)

	// 扣款发起后的写回不受调用方取消影响
	persistCtx := context.WithoutCancel(ctx)
	if err != nil {
		log.Warnw("payment_capture_failed", "error", err)
		return PaymentOutcome{Kind: PaymentDeclined, Reason: declineReason(err)}, s.saveOrder(persistCtx, order, func(o *models.Order) {
			MarkPending(o, "")
		})
	}

	capture := result.Capture
	outcome := classifyCapture(capture)
	switch outcome.Kind {
	case PaymentPaid:
		log.Infow("payment_capture_succeeded", "capture_id", capture.ID)
		err = s.saveOrder(persistCtx, order, func(o *models.Order) {
			MarkPaid(o, capture.ID, s.now())
		})
	case PaymentDeclined:
		log.Warnw("payment_capture_declined", "capture_id", capture.ID, "status", capture.Status, "reason", outcome.Reason)
		err = s.saveOrder(persistCtx, order, func(o *models.Order) {
			MarkPending(o, capture.ID)
		})
	default:
		log.Warnw("payment_capture_pending",
			"capture_id", capture.ID,
			"status", capture.Status,
			"timed_out", result.TimedOut,
			"interrupted", result.Interrupted,
		)
		err = s.saveOrder(persistCtx, order, func(o *models.Order) {
			MarkPending(o, capture.ID)
		})
		if err == nil {
			s.scheduleReconcile(persistCtx, queue.CaptureReconcilePayload{
				OrderID:   order.ID,
				CartID:    order.CartID,
				CaptureID: capture.ID,
				Attempt:   1,
			})
		}
	}
	return outcome, err
}

// Reconcile 轮询超时后的延迟对账
func (s *PaymentService) Reconcile(ctx context.Context, payload queue.CaptureReconcilePayload) error {
	log := logger.FromContext(ctx).With("order_id", payload.OrderID, "capture_id", payload.CaptureID, "attempt", payload.Attempt)
	order, err := s.orders.Load(ctx, payload.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		log.Warnw("capture_reconcile_order_missing")
		return nil
	}
	if order.FinancialStatus != constants.FinancialStatusPending {
		log.Debugw("capture_reconcile_skip_settled", "financial_status", order.FinancialStatus)
		return nil
	}
	if s.capture == nil {
		return ErrCaptureUnavailable
	}

	capture, err := s.capture.GetCapture(ctx, payload.CaptureID)
	if err != nil {
		log.Warnw("capture_reconcile_lookup_failed", "error", err)
		s.rescheduleOrGiveUp(ctx, payload)
		return nil
	}

	outcome := classifyCapture(capture)
	switch outcome.Kind {
	case PaymentPaid:
		log.Infow("capture_reconcile_paid")
		return s.saveOrder(ctx, order, func(o *models.Order) {
			MarkPaid(o, capture.ID, s.now())
		})
	case PaymentDeclined:
		log.Warnw("capture_reconcile_declined", "status", capture.Status, "reason", outcome.Reason)
		cartID := payload.CartID
		if cartID == "" {
			cartID = order.CartID
		}
		return s.annotateDeclined(ctx, cartID, outcome.Reason)
	default:
		s.rescheduleOrGiveUp(ctx, payload)
		return nil
	}
}

// annotateDeclined 在已完成的购物车上追加 payment_declined 消息
func (s *PaymentService) annotateDeclined(ctx context.Context, cartID, reason string) error {
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, cartLockName(cartID))
		if err != nil {
			if errors.Is(err, cache.ErrLockNotAcquired) {
				return ErrCartBusy
			}
			return err
		}
		defer releaseLock(ctx, release, cartID)
	}
	cart, err := s.carts.Load(ctx, cartID)
	if err != nil {
		return err
	}
	if cart == nil {
		logger.FromContext(ctx).Warnw("capture_reconcile_cart_missing", "cart_id", cartID)
		return nil
	}
	cart.Messages = append(cart.Messages, models.PaymentDeclinedMessage{Reason: reason})
	cart.UpdatedAt = s.now()
	return s.carts.Save(ctx, cart)
}

func (s *PaymentService) rescheduleOrGiveUp(ctx context.Context, payload queue.CaptureReconcilePayload) {
	if payload.Attempt >= s.opts.ReconcileMaxAttempts {
		logger.FromContext(ctx).Warnw("capture_reconcile_gave_up",
			"order_id", payload.OrderID,
			"capture_id", payload.CaptureID,
			"attempts", payload.Attempt,
		)
		return
	}
	payload.Attempt++
	s.scheduleReconcile(ctx, payload)
}

func (s *PaymentService) scheduleReconcile(ctx context.Context, payload queue.CaptureReconcilePayload) {
	if s.scheduler == nil {
		logger.FromContext(ctx).Warnw("capture_reconcile_scheduler_missing", "order_id", payload.OrderID)
		return
	}
	if err := s.scheduler.EnqueueCaptureReconcile(payload, s.opts.ReconcileDelay); err != nil {
		logger.FromContext(ctx).Warnw("capture_reconcile_enqueue_failed",
			"order_id", payload.OrderID,
			"capture_id", payload.CaptureID,
			"error", err,
		)
	}
}

// saveOrder 应用对账结果并写入
func (s *PaymentService) saveOrder(ctx context.Context, order *models.Order, apply func(o *models.Order)) error {
	apply(order)
	return s.orders.Save(ctx, order)
}

func classifyCapture(capture *arcpay.PaymentCapture) PaymentOutcome {
	if capture == nil {
		return PaymentOutcome{Kind: PaymentDeclined, Reason: "empty capture response"}
	}
	switch capture.Status {
	case constants.CaptureStatusSucceeded:
		return PaymentOutcome{Kind: PaymentPaid, CaptureID: capture.ID}
	case constants.CaptureStatusFailed, constants.CaptureStatusCancelled:
		return PaymentOutcome{Kind: PaymentDeclined, Reason: capture.Reason(), CaptureID: capture.ID}
	default:
		return PaymentOutcome{Kind: PaymentPending, CaptureID: capture.ID}
	}
}

func declineReason(err error) string {
	var apiErr *arcpay.APIError
	if errors.As(err, &apiErr) {
		reason := strings.TrimSpace(apiErr.Title)
		if detail := strings.TrimSpace(apiErr.Detail); detail != "" {
			reason += " - " + detail
		}
		return reason
	}
	if errors.Is(err, arcpay.ErrCircuitOpen) {
		return "payment provider temporarily unavailable"
	}
	return ""
}
