package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/antstech/quotation-service/internal/model"
	"github.com/antstech/quotation-service/internal/pricing"
)

const fontName = "Helvetica"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(doc model.QuotationDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 8, doc.Company.Name, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "I", 10)
	pdf.CellFormat(0, 5, doc.Company.Tagline, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, "PRICE QUOTE", "", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Project: %s", doc.Quotation.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", doc.GeneratedAt.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Item", "Part Number", "Description", "Qty", "Unit", "Unit Price", "Subtotal"}
	colWidths := []float64{12, 26, 60, 16, 14, 26, 26}
	drawTableRow(pdf, headers, colWidths, true)

	exp := pricing.MinorUnits(doc.Currency)
	for _, item := range doc.Quotation.Items {
		row := []string{
			fmt.Sprintf("%d", item.Number),
			truncate(item.PartNumber, 16),
			truncate(item.Description, 36),
			item.Quantity.String(),
			item.Unit,
			formatAmount(item.UnitPrice, exp),
			formatAmount(item.Subtotal, exp),
		}
		drawTableRow(pdf, row, colWidths, false)
	}
	if len(doc.Quotation.Items) == 0 {
		pdf.SetFont(fontName, "I", 9)
		pdf.CellFormat(0, 8, "No line items.", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Subtotal: %s", formatMoney(doc.Currency, doc.Totals.Subtotal)), "", 1, "R", false, 0, "")
	if doc.Totals.Discount.IsPositive() {
		pdf.CellFormat(0, 6, fmt.Sprintf("Less discount: %s", formatMoney(doc.Currency, doc.Totals.Discount)), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("VAT (%s%%): %s", doc.Totals.VATRate.String(), formatMoney(doc.Currency, doc.Totals.VAT)), "", 1, "R", false, 0, "")
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("TOTAL: %s", formatMoney(doc.Currency, doc.Totals.AmountDue)), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "TERMS AND CONDITIONS", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	terms := doc.Quotation.Terms
	lines := []string{
		fmt.Sprintf("Terms of Payment: %s", safeValue(terms.TermsOfPayment)),
		fmt.Sprintf("Delivery: %s", safeValue(terms.Delivery)),
		fmt.Sprintf("Warranty: %s", safeValue(terms.Warranty)),
		fmt.Sprintf("Price Validity: %s", safeValue(terms.PriceValidity)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(90, 6, "Prepared by: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 6, "Conforme: ______________________", "", 1, "L", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont(fontName, "I", 10)
	pdf.CellFormat(0, 6, "Thank you for doing business with us!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i == 0 {
			align = "C"
		}
		if i == 3 || i >= 5 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}

// Core fonts cover cp1252 only, so amounts carry the currency code
// instead of a symbol.
func formatMoney(currency string, value decimal.Decimal) string {
	return fmt.Sprintf("%s %s", currency, formatAmount(value, pricing.MinorUnits(currency)))
}

func formatAmount(value decimal.Decimal, exp int32) string {
	raw := value.StringFixed(exp)
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(raw, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + fracPart
	}
	return out
}
