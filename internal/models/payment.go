package models

// Payment 委托支付记录
type Payment struct {
	Type           string   `json:"type"`                      // 固定为 delegated_payment
	Provider       string   `json:"provider"`                  // 支付提供方（stripe/arc_pay）
	Token          string   `json:"token"`                     // 不透明支付凭证
	BillingAddress *Address `json:"billing_address,omitempty"` // 账单地址
}

// PaymentProvider 商户声明的支付提供方
type PaymentProvider struct {
	Provider         string   `json:"provider"`
	SupportedMethods []string `json:"supported_methods"`
}
