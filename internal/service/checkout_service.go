package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/cache"
	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/logger"
	"github.com/dujiao-next/checkout/internal/models"
	"github.com/dujiao-next/checkout/internal/repository"
)

// CheckoutOptions 结账会话配置
type CheckoutOptions struct {
	DefaultCurrency string
	PaymentProvider models.PaymentProvider
}

// CreateInput 创建会话输入
type CreateInput struct {
	Items    []ItemInput
	Customer *models.Customer
	Address  *models.Address
}

// CompleteInput 完成会话输入
type CompleteInput struct {
	Customer *models.Customer
	Payment  models.Payment
}

// CheckoutService 结账会话服务（状态机 + 定价引擎 + 订单生成 + 支付）
type CheckoutService struct {
	carts    repository.CartStore
	orders   repository.OrderStore
	engine   *PricingEngine
	factory  *OrderFactory
	payments *PaymentService
	locker   CartLocker
	opts     CheckoutOptions
	now      func() time.Time
}

// NewCheckoutService 创建结账会话服务
func NewCheckoutService(
	carts repository.CartStore,
	orders repository.OrderStore,
	engine *PricingEngine,
	factory *OrderFactory,
	payments *PaymentService,
	locker CartLocker,
	opts CheckoutOptions,
) *CheckoutService {
	opts.DefaultCurrency = strings.ToUpper(strings.TrimSpace(opts.DefaultCurrency))
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = constants.DefaultCurrency
	}
	if opts.PaymentProvider.Provider == "" {
		opts.PaymentProvider = models.PaymentProvider{
			Provider:         constants.DefaultPaymentProvider,
			SupportedMethods: []string{constants.PaymentMethodWallet},
		}
	}
	if factory == nil {
		factory = NewOrderFactory()
	}
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		engine:   engine,
		factory:  factory,
		payments: payments,
		locker:   locker,
		opts:     opts,
		now:      time.Now,
	}
}

// Create 创建新的结账会话
func (s *CheckoutService) Create(ctx context.Context, input CreateInput) (UpdateResult, error) {
	if len(input.Items) == 0 {
		return UpdateResult{}, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	now := s.now()
	cart := &models.Cart{
		ID:        models.NewID(constants.IDPrefixCart),
		Items:     []models.LineItem{},
		Status:    constants.CartStatusShopping,
		Currency:  s.opts.DefaultCurrency,
		Messages:  models.CartMessages{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := s.apply(ctx, cart, Mutation{
		Items:    input.Items,
		Customer: input.Customer,
		Address:  input.Address,
	})
	if err != nil || result.Kind != KindUpdated {
		return result, err
	}
	logger.FromContext(ctx).Infow("checkout_session_created",
		"cart_id", result.Session.Cart.ID,
		"status", result.Session.Cart.Status,
		"items", len(result.Session.Cart.Items),
	)
	return result, nil
}

// Get 读取结账会话，不存在返回 nil
func (s *CheckoutService) Get(ctx context.Context, id string) (*Session, error) {
	cart, err := s.carts.Load(ctx, id)
	if err != nil || cart == nil {
		return nil, err
	}
	return s.session(cart), nil
}

// Update 更新结账会话
func (s *CheckoutService) Update(ctx context.Context, id string, m Mutation) (UpdateResult, error) {
	if m.Items != nil && len(m.Items) == 0 {
		return UpdateResult{}, fmt.Errorf("%w: items must not be empty", ErrInvalidInput)
	}
	release, err := s.lock(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}
	defer releaseLock(ctx, release, id)

	cart, err := s.carts.Load(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}
	if kind := guardUpdate(cart); kind != "" {
		return UpdateResult{Kind: kind}, nil
	}
	result, err := s.apply(ctx, cart, m)
	if err != nil || result.Kind != KindUpdated {
		return result, err
	}
	logger.FromContext(ctx).Infow("checkout_session_updated",
		"cart_id", id,
		"status", result.Session.Cart.Status,
		"fulfillment_option_id", result.Session.Cart.FulfillmentOptionID,
	)
	return result, nil
}

// Complete 完成结账：生成订单、发起扣款并对账
// 扣款失败不影响完成结果，仅在购物车上追加 payment_declined 消息。
func (s *CheckoutService) Complete(ctx context.Context, id string, input CompleteInput) (CompleteResult, error) {
	release, err := s.lock(ctx, id)
	if err != nil {
		return CompleteResult{}, err
	}
	defer releaseLock(ctx, release, id)

	cart, err := s.carts.Load(ctx, id)
	if err != nil {
		return CompleteResult{}, err
	}
	if kind := guardComplete(cart); kind != "" {
		return CompleteResult{Kind: kind}, nil
	}

	log := logger.FromContext(ctx).With("cart_id", id)
	order := s.factory.Build(cart, input.Payment, input.Customer)
	if err := s.orders.Save(ctx, order); err != nil {
		return CompleteResult{}, err
	}

	completed := cart.Clone()
	if input.Customer != nil {
		completed.Customer = input.Customer.Clone()
	}
	now := s.now()
	completed.Status = constants.CartStatusCompleted
	completed.CompletedAt = &now
	completed.UpdatedAt = now
	if err := s.carts.Save(ctx, completed); err != nil {
		return CompleteResult{}, err
	}
	log.Infow("checkout_session_completed", "order_id", order.ID, "total", order.TotalPrice, "currency", order.Currency)

	// 购物车已提交，之后的扣款与写回不随请求取消
	committedCtx := context.WithoutCancel(ctx)
	outcome := PaymentOutcome{Kind: PaymentUnsupported}
	if s.payments != nil {
		outcome, err = s.payments.Process(committedCtx, order.ID)
		if err != nil {
			log.Errorw("checkout_payment_process_failed", "order_id", order.ID, "payment_outcome", outcome.Kind, "error", err)
			if outcome.Kind == "" {
				outcome = PaymentOutcome{Kind: PaymentDeclined}
			}
		}
	}
	if outcome.Kind == PaymentDeclined {
		completed.Messages = append(completed.Messages, models.PaymentDeclinedMessage{Reason: outcome.Reason})
		completed.UpdatedAt = s.now()
		if err := s.carts.Save(committedCtx, completed); err != nil {
			log.Errorw("checkout_declined_message_save_failed", "order_id", order.ID, "error", err)
		}
	}

	if reloaded, err := s.orders.Load(committedCtx, order.ID); err == nil && reloaded != nil {
		order = reloaded
	}
	return CompleteResult{
		Kind:    KindCompleted,
		Session: s.session(completed),
		Order:   order,
		Payment: outcome,
	}, nil
}

// Cancel 取消结账会话
func (s *CheckoutService) Cancel(ctx context.Context, id string) (CancelResult, error) {
	release, err := s.lock(ctx, id)
	if err != nil {
		return CancelResult{}, err
	}
	defer releaseLock(ctx, release, id)

	cart, err := s.carts.Load(ctx, id)
	if err != nil {
		return CancelResult{}, err
	}
	if kind := guardCancel(cart); kind != "" {
		return CancelResult{Kind: kind}, nil
	}

	cancelled := cart.Clone()
	now := s.now()
	cancelled.Status = constants.CartStatusCancelled
	cancelled.CancelledAt = &now
	cancelled.UpdatedAt = now
	if err := s.carts.Save(ctx, cancelled); err != nil {
		return CancelResult{}, err
	}
	logger.FromContext(ctx).Infow("checkout_session_cancelled", "cart_id", id)
	return CancelResult{Kind: KindCancelled, Session: s.session(cancelled)}, nil
}

// apply 重新定价并持久化，领域输入错误时不写入
func (s *CheckoutService) apply(ctx context.Context, cart *models.Cart, m Mutation) (UpdateResult, error) {
	priced, rejection, err := s.engine.Recompute(ctx, cart, m)
	if err != nil {
		return UpdateResult{}, err
	}
	if rejection != nil {
		logger.FromContext(ctx).Infow("checkout_session_rejected",
			"cart_id", cart.ID,
			"kind", string(rejection.Kind),
			"id", rejection.ID,
			"item_index", rejection.ItemIndex,
		)
		return UpdateResult{Kind: rejection.Kind, Rejection: rejection}, nil
	}
	if err := s.carts.Save(ctx, priced.Cart); err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{
		Kind: KindUpdated,
		Session: &Session{
			Cart:               priced.Cart,
			FulfillmentOptions: priced.Options,
			TaxRate:            priced.TaxRate,
			PaymentProvider:    s.opts.PaymentProvider,
		},
	}, nil
}

func (s *CheckoutService) session(cart *models.Cart) *Session {
	options, rate := s.engine.Options(cart)
	return &Session{
		Cart:               cart,
		FulfillmentOptions: options,
		TaxRate:            rate,
		PaymentProvider:    s.opts.PaymentProvider,
	}
}

func (s *CheckoutService) lock(ctx context.Context, cartID string) (cache.ReleaseFunc, error) {
	if s.locker == nil {
		return nil, nil
	}
	release, err := s.locker.Acquire(ctx, cartLockName(cartID))
	if errors.Is(err, cache.ErrLockNotAcquired) {
		return nil, fmt.Errorf("%w: %s", ErrCartBusy, cartID)
	}
	return release, err
}

func cartLockName(cartID string) string {
	return "cart:" + cartID
}

func releaseLock(ctx context.Context, release cache.ReleaseFunc, cartID string) {
	if release == nil {
		return
	}
	if err := release(context.WithoutCancel(ctx)); err != nil {
		logger.FromContext(ctx).Warnw("cart_lock_release_failed", "cart_id", cartID, "error", err)
	}
}
