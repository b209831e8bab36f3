package pricing

import (
	"testing"

	"github.com/dujiao-next/checkout/internal/models"

	"github.com/shopspring/decimal"
)

func TestLineAmountsTaxable(t *testing.T) {
	got := LineAmounts(1000, 2, true, decimal.RequireFromString("0.05"))
	if got.Subtotal != 2000 || got.Tax != 100 || got.Total != 2100 {
		t.Fatalf("unexpected amounts: %+v", got)
	}
}

func TestLineAmountsNotTaxable(t *testing.T) {
	got := LineAmounts(5000, 1, false, decimal.RequireFromString("0.21"))
	if got.Tax != 0 || got.Total != 5000 {
		t.Fatalf("non taxable line should carry no tax: %+v", got)
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		amount int64
		rate   string
		want   int64
	}{
		{amount: 10, rate: "0.05", want: 1},   // 0.5 -> 1
		{amount: 30, rate: "0.05", want: 2},   // 1.5 -> 2
		{amount: 29, rate: "0.05", want: 1},   // 1.45 -> 1
		{amount: 2500, rate: "0.21", want: 525},
		{amount: 1999, rate: "0.3", want: 600}, // 599.7
	}
	for _, tc := range cases {
		if got := TaxOn(tc.amount, decimal.RequireFromString(tc.rate)); got != tc.want {
			t.Fatalf("TaxOn(%d, %s) want %d got %d", tc.amount, tc.rate, tc.want, got)
		}
	}
}

func TestSumCartAddsRoundedParts(t *testing.T) {
	rate := decimal.RequireFromString("0.05")
	lines := []Amounts{
		LineAmounts(10, 1, true, rate), // tax 0.5 -> 1
		LineAmounts(10, 1, true, rate), // tax 0.5 -> 1
	}
	totals := SumCart(lines, 600, rate)
	if totals.Subtotal != 20 {
		t.Fatalf("subtotal want 20 got %d", totals.Subtotal)
	}
	// 行税 1+1，运费税 30
	if totals.Tax != 32 {
		t.Fatalf("tax want 32 got %d", totals.Tax)
	}
	if totals.Total != totals.Subtotal+totals.Shipping+totals.Tax {
		t.Fatalf("total invariant broken: %+v", totals)
	}
}

func TestSumCartWithoutShipping(t *testing.T) {
	rate := decimal.RequireFromString("0.05")
	totals := SumCart([]Amounts{LineAmounts(1000, 2, true, rate)}, 0, rate)
	if totals.Subtotal != 2000 || totals.Tax != 100 || totals.Total != 2100 || totals.Shipping != 0 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestTaxResolver(t *testing.T) {
	resolver := NewTaxResolver()
	cases := []struct {
		name    string
		address *models.Address
		want    string
	}{
		{name: "no address", address: nil, want: "0.3"},
		{name: "us", address: &models.Address{Country: "US"}, want: "0.05"},
		{name: "cz lowercase", address: &models.Address{Country: "cz"}, want: "0.21"},
		{name: "unknown", address: &models.Address{Country: "DE"}, want: "0"},
		{name: "empty country", address: &models.Address{}, want: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolver.Resolve(tc.address)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("rate want %s got %s", tc.want, got)
			}
		})
	}
}
