package pricing

import (
	"github.com/shopspring/decimal"
)

// Amounts 单项金额（最小货币单位）
type Amounts struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// Round 四舍五入到最小货币单位（.5 向上）
// 金额恒为非负，decimal 的远离零舍入即为向上。
func Round(value decimal.Decimal) int64 {
	return value.Round(0).IntPart()
}

// TaxOn 对金额按税率计税并取整
func TaxOn(amount int64, rate decimal.Decimal) int64 {
	if amount <= 0 || rate.Sign() <= 0 {
		return 0
	}
	return Round(decimal.NewFromInt(amount).Mul(rate))
}

// LineAmounts 计算行项目小计、税费与合计
func LineAmounts(unitPrice int64, quantity int, taxable bool, rate decimal.Decimal) Amounts {
	if unitPrice < 0 {
		unitPrice = 0
	}
	if quantity < 0 {
		quantity = 0
	}
	subtotal := Round(decimal.NewFromInt(unitPrice).Mul(decimal.NewFromInt(int64(quantity))))
	var tax int64
	if taxable {
		tax = TaxOn(subtotal, rate)
	}
	return Amounts{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

// CartTotals 购物车汇总金额
type CartTotals struct {
	Subtotal int64
	Discount int64
	Shipping int64
	Tax      int64
	Total    int64
}

// SumCart 汇总已取整的行项目与运费，不再二次取整
func SumCart(lines []Amounts, shipping int64, rate decimal.Decimal) CartTotals {
	var totals CartTotals
	for _, line := range lines {
		totals.Subtotal += line.Subtotal
		totals.Tax += line.Tax
	}
	if shipping > 0 {
		totals.Shipping = shipping
		totals.Tax += TaxOn(shipping, rate)
	}
	totals.Total = totals.Subtotal + totals.Shipping + totals.Tax - totals.Discount
	return totals
}
