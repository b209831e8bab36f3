package service

import (
	"github.com/dujiao-next/checkout/internal/models"

	"github.com/shopspring/decimal"
)

// ResultKind 核心操作结果类型
type ResultKind string

const (
	KindUpdated                    ResultKind = "updated"
	KindCompleted                  ResultKind = "completed"
	KindCancelled                  ResultKind = "cancelled"
	KindNotFound                   ResultKind = "not_found"
	KindCompletedCannotUpdate      ResultKind = "completed_cannot_update"
	KindCancelledCannotUpdate      ResultKind = "cancelled_cannot_update"
	KindInvalidProductID           ResultKind = "invalid_product_id"
	KindInvalidFulfillmentChoiceID ResultKind = "invalid_fulfillment_choice_id"
	KindCancelledCannotComplete    ResultKind = "cancelled_cannot_complete"
	KindAlreadyCompleted           ResultKind = "already_completed"
	KindNotReadyForCompletion      ResultKind = "not_ready_for_completion"
	KindCompletedCannotCancel      ResultKind = "completed_cannot_cancel"
	KindAlreadyCancelled           ResultKind = "already_cancelled"
)

// Session 结账会话视图：购物车 + 读时重新计算的交付方式与税率
type Session struct {
	Cart               *models.Cart
	FulfillmentOptions []models.FulfillmentOption
	TaxRate            decimal.Decimal
	PaymentProvider    models.PaymentProvider
}

// Rejection 领域输入错误详情
type Rejection struct {
	Kind      ResultKind
	ItemIndex int
	ID        string
}

// UpdateResult 创建/更新结果，Kind 为 KindUpdated 时 Session 非空
type UpdateResult struct {
	Kind      ResultKind
	Session   *Session
	Rejection *Rejection
}

// CompleteResult 完成结果，Kind 为 KindCompleted 时 Session/Order 非空
type CompleteResult struct {
	Kind    ResultKind
	Session *Session
	Order   *models.Order
	Payment PaymentOutcome
}

// CancelResult 取消结果
type CancelResult struct {
	Kind    ResultKind
	Session *Session
}

// PaymentOutcomeKind 支付处理结果
type PaymentOutcomeKind string

const (
	PaymentPaid        PaymentOutcomeKind = "paid"
	PaymentDeclined    PaymentOutcomeKind = "declined"
	PaymentPending     PaymentOutcomeKind = "pending"
	PaymentUnsupported PaymentOutcomeKind = "unsupported"
)

// PaymentOutcome 支付处理结果详情
type PaymentOutcome struct {
	Kind      PaymentOutcomeKind
	Reason    string
	CaptureID string
}
