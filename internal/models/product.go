package models

import (
	"time"

	"github.com/dujiao-next/checkout/internal/constants"
)

// Product 目录商品表
type Product struct {
	ID               string    `gorm:"primarykey;type:varchar(64)" json:"id"`                                 // 商品ID
	Title            string    `gorm:"type:varchar(255);not null" json:"title"`                               // 标题
	Description      string    `gorm:"type:text" json:"description"`                                          // 描述
	Brand            string    `gorm:"type:varchar(128)" json:"brand"`                                        // 品牌
	Category         string    `gorm:"type:varchar(128);index" json:"category"`                               // 分类
	Currency         string    `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`                // 币种
	FulfillmentType  string    `gorm:"type:varchar(20);not null;default:'shipping'" json:"fulfillment_type"` // 交付类型（shipping/digital）
	DefaultVariantID string    `gorm:"type:varchar(64)" json:"default_variant_id"`                           // 默认变体
	CreatedAt        time.Time `json:"created_at"`                                                            // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                            // 更新时间

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"` // 变体列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "catalog_products"
}

// ProductVariant 商品变体表（价格 + 库存维度）
type ProductVariant struct {
	ID                string    `gorm:"primarykey;type:varchar(64)" json:"id"`                  // 变体ID
	ProductID         string    `gorm:"type:varchar(64);not null;index" json:"product_id"`      // 商品ID
	Title             string    `gorm:"type:varchar(255);not null" json:"title"`                // 标题（如 “M / Blue”）
	SKU               string    `gorm:"column:sku;type:varchar(64);index" json:"sku"`           // SKU 编码
	Price             int64     `gorm:"not null;default:0" json:"price"`                        // 单价（最小货币单位）
	Currency          string    `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"` // 币种
	AvailableForSale  bool      `gorm:"not null" json:"available_for_sale"`                     // 是否可售
	QuantityAvailable int       `gorm:"not null;default:0" json:"quantity_available"`           // 可用库存
	Taxable           bool      `gorm:"not null" json:"taxable"`                                // 是否计税
	FulfillmentType   string    `gorm:"type:varchar(20)" json:"fulfillment_type,omitempty"`     // 交付类型（为空时沿用商品）
	CreatedAt         time.Time `json:"created_at"`                                             // 创建时间
	UpdatedAt         time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "catalog_variants"
}

// FindVariant 按变体ID查找，未命中时回退到默认变体
func (p *Product) FindVariant(variantID string) (*ProductVariant, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i], true
		}
	}
	for i := range p.Variants {
		if p.Variants[i].ID == p.DefaultVariantID {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// ResolveFulfillmentType 变体交付类型，缺省沿用商品配置
func (p *Product) ResolveFulfillmentType(v *ProductVariant) string {
	if v != nil && v.FulfillmentType != "" {
		return v.FulfillmentType
	}
	if p != nil && p.FulfillmentType != "" {
		return p.FulfillmentType
	}
	return constants.FulfillmentTypeShipping
}
