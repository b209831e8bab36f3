package constants

// 购物车（结账会话）内部状态常量
const (
	CartStatusShopping  = "shopping"
	CartStatusCheckout  = "checkout"
	CartStatusCompleted = "completed"
	CartStatusCancelled = "cancelled"
)

// 结账会话对外状态常量
const (
	SessionStatusNotReadyForPayment = "not_ready_for_payment"
	SessionStatusReadyForPayment    = "ready_for_payment"
	SessionStatusCompleted          = "completed"
	SessionStatusCanceled           = "canceled"
)

// 购物车消息类型常量
const (
	CartMessageOutOfStock                = "out_of_stock"
	CartMessageQuantityNotAvailable      = "quantity_not_available"
	CartMessageMissingFulfillmentAddress = "missing_fulfillment_address"
	CartMessagePaymentDeclined           = "payment_declined"
)

// 交付类型常量
const (
	FulfillmentTypeShipping = "shipping"
	FulfillmentTypeDigital  = "digital"
)

// 订单状态常量
const (
	OrderStatusCreated   = "created"
	OrderStatusFulfilled = "fulfilled"
	OrderStatusCanceled  = "canceled"
)

// 订单资金状态常量
const (
	FinancialStatusPending = "pending"
	FinancialStatusPaid    = "paid"
)

// 订单交付状态常量
const (
	FulfillmentStatusPending = "pending_fulfillment"
)

// 支付类型与提供方常量
const (
	PaymentTypeDelegated   = "delegated_payment"
	PaymentProviderStripe  = "stripe"
	PaymentProviderArcPay  = "arc_pay"
	PaymentMethodCard      = "card"
	PaymentMethodWallet    = "wallet"
	DefaultPaymentProvider = PaymentProviderArcPay
)

// 支付扣款（capture）状态常量
const (
	CaptureStatusRequiresCapture = "requires_capture"
	CaptureStatusProcessing      = "processing"
	CaptureStatusSucceeded       = "succeeded"
	CaptureStatusFailed          = "failed"
	CaptureStatusCancelled       = "cancelled"
)

// ID 前缀常量
const (
	IDPrefixCart  = "cart"
	IDPrefixOrder = "order"
)

// 默认币种
const DefaultCurrency = "USD"

// 队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskCaptureReconcile = "payment:capture_reconcile"
)
