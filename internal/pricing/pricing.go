// Package pricing implements the line-item arithmetic for quotations.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/antstech/quotation-service/internal/model"
)

// MinorUnits returns the number of decimal places amounts carry for the
// given ISO 4217 currency code.
func MinorUnits(currency string) int32 {
	switch strings.ToUpper(currency) {
	case "JPY", "KRW", "VND", "CLP":
		return 0
	case "BHD", "KWD", "OMR":
		return 3
	default:
		return 2
	}
}

// Subtotal multiplies quantity by unit price, rounding half to even at the
// currency's minor unit.
func Subtotal(qty, unitPrice decimal.Decimal, currency string) decimal.Decimal {
	return qty.Mul(unitPrice).RoundBank(MinorUnits(currency))
}

// Recalculate fills in the derived Subtotal of every item.
func Recalculate(items []model.QuotationItem, currency string) {
	for i := range items {
		items[i].Subtotal = Subtotal(items[i].Quantity, items[i].UnitPrice, currency)
	}
}

// GrandTotal sums the rounded subtotals of the items.
func GrandTotal(items []model.QuotationItem, currency string) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(Subtotal(item.Quantity, item.UnitPrice, currency))
	}
	return total
}

// Renumber reassigns contiguous 1-based item numbers in slice order.
func Renumber(items []model.QuotationItem) {
	for i := range items {
		items[i].Number = i + 1
	}
}

// RemoveItem returns the items without the numbered one, renumbered so the
// sequence stays contiguous.
func RemoveItem(items []model.QuotationItem, number int) []model.QuotationItem {
	out := make([]model.QuotationItem, 0, len(items))
	for _, item := range items {
		if item.Number == number {
			continue
		}
		out = append(out, item)
	}
	Renumber(out)
	return out
}

// ComputeTotals derives the document totals. VAT is charged on the full
// subtotal and the discount is subtracted after tax.
func ComputeTotals(items []model.QuotationItem, terms model.Terms, vatRate decimal.Decimal, currency string) model.Totals {
	exp := MinorUnits(currency)
	subtotal := GrandTotal(items, currency)
	vat := subtotal.Mul(vatRate.Shift(-2)).RoundBank(exp)
	discount := terms.Discount.RoundBank(exp)
	return model.Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		VATRate:   vatRate,
		VAT:       vat,
		AmountDue: subtotal.Add(vat).Sub(discount),
	}
}
