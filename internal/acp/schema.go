package acp

// 请求结构使用 gin binding 标签，由 validator/v10 校验

// Item 请求行项目
type Item struct {
	ID       string `json:"id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// Address 协议地址
type Address struct {
	Name        string `json:"name" binding:"required,max=256"`
	LineOne     string `json:"line_one" binding:"required,max=60"`
	LineTwo     string `json:"line_two,omitempty" binding:"omitempty,max=60"`
	City        string `json:"city" binding:"required,max=60"`
	State       string `json:"state" binding:"required,max=60"`
	Country     string `json:"country" binding:"required,len=2,alpha"`
	PostalCode  string `json:"postal_code" binding:"required,max=20"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Buyer 购买人
type Buyer struct {
	FirstName   string `json:"first_name" binding:"required,max=256"`
	LastName    string `json:"last_name" binding:"required,max=256"`
	Email       string `json:"email" binding:"required,email,max=256"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// PaymentData 支付数据
type PaymentData struct {
	Token          string   `json:"token" binding:"required"`
	Provider       string   `json:"provider" binding:"required,oneof=stripe arc_pay"`
	BillingAddress *Address `json:"billing_address,omitempty" binding:"omitempty"`
}

// CreateRequest 创建结账会话
type CreateRequest struct {
	Items              []Item   `json:"items" binding:"required,min=1,dive"`
	Buyer              *Buyer   `json:"buyer,omitempty" binding:"omitempty"`
	FulfillmentAddress *Address `json:"fulfillment_address,omitempty" binding:"omitempty"`
}

// UpdateRequest 更新结账会话，未提供的字段保持不变
type UpdateRequest struct {
	Items               []Item   `json:"items,omitempty" binding:"omitempty,min=1,dive"`
	Buyer               *Buyer   `json:"buyer,omitempty" binding:"omitempty"`
	FulfillmentAddress  *Address `json:"fulfillment_address,omitempty" binding:"omitempty"`
	FulfillmentOptionID string   `json:"fulfillment_option_id,omitempty"`
}

// CompleteRequest 完成结账会话
type CompleteRequest struct {
	Buyer       *Buyer      `json:"buyer,omitempty" binding:"omitempty"`
	PaymentData PaymentData `json:"payment_data" binding:"required"`
}

// PaymentProvider 支付提供方
type PaymentProvider struct {
	Provider                string   `json:"provider"`
	SupportedPaymentMethods []string `json:"supported_payment_methods"`
}

// LineItemRef 行项目引用的商品
type LineItemRef struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// LineItem 会话行项目
type LineItem struct {
	ID         string      `json:"id"`
	Item       LineItemRef `json:"item"`
	BaseAmount int64       `json:"base_amount"`
	Discount   int64       `json:"discount"`
	Subtotal   int64       `json:"subtotal"`
	Tax        int64       `json:"tax"`
	Total      int64       `json:"total"`
}

// Total 汇总项
type Total struct {
	Type        string `json:"type"`
	DisplayText string `json:"display_text"`
	Amount      int64  `json:"amount"`
}

// FulfillmentOption 交付方式，shipping 额外携带承运商与送达时间
type FulfillmentOption struct {
	Type                 string `json:"type"`
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Subtitle             string `json:"subtitle,omitempty"`
	CarrierInfo          string `json:"carrier_info,omitempty"`
	EarliestDeliveryTime string `json:"earliest_delivery_time,omitempty"`
	LatestDeliveryTime   string `json:"latest_delivery_time,omitempty"`
	Subtotal             int64  `json:"subtotal"`
	Tax                  int64  `json:"tax"`
	Total                int64  `json:"total"`
}

// Message 会话消息（info / error）
type Message struct {
	Type        string `json:"type"`
	Code        string `json:"code,omitempty"`
	Param       string `json:"param,omitempty"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// Link 会话链接
type Link struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Order 完成后生成的订单引用
type Order struct {
	ID                string `json:"id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	PermalinkURL      string `json:"permalink_url"`
}

// CheckoutSession 结账会话
type CheckoutSession struct {
	ID                  string              `json:"id"`
	Buyer               *Buyer              `json:"buyer,omitempty"`
	PaymentProvider     PaymentProvider     `json:"payment_provider"`
	Status              string              `json:"status"`
	Currency            string              `json:"currency"`
	LineItems           []LineItem          `json:"line_items"`
	FulfillmentAddress  *Address            `json:"fulfillment_address,omitempty"`
	FulfillmentOptions  []FulfillmentOption `json:"fulfillment_options"`
	FulfillmentOptionID string              `json:"fulfillment_option_id,omitempty"`
	Totals              []Total             `json:"totals"`
	Messages            []Message           `json:"messages"`
	Links               []Link              `json:"links"`
	Order               *Order              `json:"order,omitempty"`
}
