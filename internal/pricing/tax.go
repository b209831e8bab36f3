package pricing

import (
	"strings"

	"github.com/dujiao-next/checkout/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// UnknownJurisdictionRate 无地址时的占位税率
	UnknownJurisdictionRate = decimal.RequireFromString("0.3")

	countryRates = map[string]decimal.Decimal{
		"US": decimal.RequireFromString("0.05"),
		"CZ": decimal.RequireFromString("0.21"),
	}
)

// TaxResolver 地址到税率的映射
type TaxResolver interface {
	Resolve(address *models.Address) decimal.Decimal
}

// TableTaxResolver 固定税率表
type TableTaxResolver struct {
	fallback decimal.Decimal
	rates    map[string]decimal.Decimal
}

// NewTaxResolver 创建默认税率表
func NewTaxResolver() *TableTaxResolver {
	return &TableTaxResolver{fallback: UnknownJurisdictionRate, rates: countryRates}
}

// Resolve 无地址返回占位税率，未知国家返回 0
func (r *TableTaxResolver) Resolve(address *models.Address) decimal.Decimal {
	if address == nil {
		return r.fallback
	}
	if rate, ok := r.rates[strings.ToUpper(strings.TrimSpace(address.Country))]; ok {
		return rate
	}
	return decimal.Zero
}
