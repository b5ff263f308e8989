package pricing

import (
	"fmt"
	"strings"

	"quickcart/internal/domain/model"

	"github.com/shopspring/decimal"
)

// カートページとチェックアウトで共有する料金ルール
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFee:           decimal.RequireFromString("5.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// 明細から計算した合計（保存しない）
type Totals struct {
	ItemCount int
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	// 送料無料までの残り（無料なら0）
	Remaining decimal.Decimal
}

func Subtotal(items []model.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(LineTotal(it))
	}
	return sum
}

func LineTotal(it model.CartItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func ItemCount(items []model.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// subtotal >= threshold で送料無料
func (p Policy) FreeShipping(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(p.FreeShippingThreshold)
}

func (p Policy) Totals(items []model.CartItem) Totals {
	subtotal := Subtotal(items)

	shipping := p.ShippingFee
	remaining := p.FreeShippingThreshold.Sub(subtotal)
	if p.FreeShipping(subtotal) {
		shipping = decimal.Zero
		remaining = decimal.Zero
	}

	tax := subtotal.Mul(p.TaxRate)

	return Totals{
		ItemCount: ItemCount(items),
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal.Add(shipping).Add(tax),
		Remaining: remaining,
	}
}

// 画面表示用のサマリー
type Summary struct {
	ItemCount       int     `json:"item_count"`
	ItemCountLabel  string  `json:"item_count_label"`
	Subtotal        float64 `json:"subtotal"`
	Shipping        float64 `json:"shipping"`
	Tax             float64 `json:"tax"`
	Total           float64 `json:"total"`
	SubtotalLabel   string  `json:"subtotal_label"`
	ShippingLabel   string  `json:"shipping_label"`
	TaxLabel        string  `json:"tax_label"`
	TotalLabel      string  `json:"total_label"`
	FreeShipping    bool    `json:"free_shipping"`
	ShippingMessage string  `json:"shipping_message"`
	CheckoutEnabled bool    `json:"checkout_enabled"`
}

func (t Totals) Summary() Summary {
	free := t.Shipping.IsZero()

	shippingLabel := FormatCurrency(t.Shipping)
	msg := fmt.Sprintf("Add %s more for free shipping", FormatCurrency(t.Remaining))
	if free {
		shippingLabel = "FREE"
		msg = "You qualify for free shipping!"
	}

	return Summary{
		ItemCount:       t.ItemCount,
		ItemCountLabel:  ItemCountLabel(t.ItemCount),
		Subtotal:        Cents(t.Subtotal),
		Shipping:        Cents(t.Shipping),
		Tax:             Cents(t.Tax),
		Total:           Cents(t.Total),
		SubtotalLabel:   FormatCurrency(t.Subtotal),
		ShippingLabel:   shippingLabel,
		TaxLabel:        FormatCurrency(t.Tax),
		TotalLabel:      FormatCurrency(t.Total),
		FreeShipping:    free,
		ShippingMessage: msg,
		CheckoutEnabled: t.ItemCount > 0,
	}
}

func ItemCountLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// セント単位に丸めたfloat
func Cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// en-USのドル表記（$1,234.56）
func FormatCurrency(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + "$" + b.String() + "." + frac
}
