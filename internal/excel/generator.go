package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/antstech/quotation-service/internal/model"
	"github.com/antstech/quotation-service/internal/pricing"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(doc model.QuotationDocument) ([]byte, error) {
	file := excelize.NewFile()

	sheet := buildSheetName(doc.Quotation.Name)
	file.SetSheetName("Sheet1", sheet)

	if err := g.write(file, sheet, doc); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) write(file *excelize.File, sheet string, doc model.QuotationDocument) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	set("A1", doc.Company.Name)
	set("A2", doc.Company.Tagline)
	set("A4", "PRICE QUOTE")
	set("A5", "Project")
	set("B5", doc.Quotation.Name)
	set("A6", "Date")
	set("B6", doc.GeneratedAt.Format("2006-01-02"))
	_ = file.SetCellStyle(sheet, "A1", "A1", bold)
	_ = file.SetCellStyle(sheet, "A4", "A4", bold)

	tableRow := 8
	headers := []string{"Item", "Part Number", "Description", "Quantity", "Unit", "Unit Price", "Subtotal"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}
	headerFirst, _ := excelize.CoordinatesToCellName(1, tableRow)
	headerLast, _ := excelize.CoordinatesToCellName(len(headers), tableRow)
	_ = file.SetCellStyle(sheet, headerFirst, headerLast, bold)

	exp := pricing.MinorUnits(doc.Currency)
	for i, item := range doc.Quotation.Items {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), item.Number)
		set(fmt.Sprintf("B%d", row), item.PartNumber)
		set(fmt.Sprintf("C%d", row), item.Description)
		set(fmt.Sprintf("D%d", row), item.Quantity.String())
		set(fmt.Sprintf("E%d", row), item.Unit)
		set(fmt.Sprintf("F%d", row), item.UnitPrice.StringFixed(exp))
		set(fmt.Sprintf("G%d", row), item.Subtotal.StringFixed(exp))
	}

	totalsRow := tableRow + len(doc.Quotation.Items) + 2
	set(fmt.Sprintf("F%d", totalsRow), "Subtotal")
	set(fmt.Sprintf("G%d", totalsRow), doc.Totals.Subtotal.StringFixed(exp))
	set(fmt.Sprintf("F%d", totalsRow+1), "Discount")
	set(fmt.Sprintf("G%d", totalsRow+1), doc.Totals.Discount.StringFixed(exp))
	set(fmt.Sprintf("F%d", totalsRow+2), fmt.Sprintf("VAT (%s%%)", doc.Totals.VATRate.String()))
	set(fmt.Sprintf("G%d", totalsRow+2), doc.Totals.VAT.StringFixed(exp))
	set(fmt.Sprintf("F%d", totalsRow+3), fmt.Sprintf("TOTAL (%s)", doc.Currency))
	set(fmt.Sprintf("G%d", totalsRow+3), doc.Totals.AmountDue.StringFixed(exp))
	_ = file.SetCellStyle(sheet, fmt.Sprintf("F%d", totalsRow+3), fmt.Sprintf("G%d", totalsRow+3), bold)

	termsRow := totalsRow + 5
	set(fmt.Sprintf("A%d", termsRow), "TERMS AND CONDITIONS")
	_ = file.SetCellStyle(sheet, fmt.Sprintf("A%d", termsRow), fmt.Sprintf("A%d", termsRow), bold)

	terms := doc.Quotation.Terms
	pairs := []struct {
		label string
		value string
	}{
		{"Terms of Payment", terms.TermsOfPayment},
		{"Delivery", terms.Delivery},
		{"Warranty", terms.Warranty},
		{"Price Validity", terms.PriceValidity},
	}
	for i, pair := range pairs {
		row := termsRow + 1 + i
		set(fmt.Sprintf("A%d", row), pair.label)
		set(fmt.Sprintf("B%d", row), pair.value)
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "B", 20)
	_ = file.SetColWidth(sheet, "C", "C", 40)
	_ = file.SetColWidth(sheet, "D", "E", 10)
	_ = file.SetColWidth(sheet, "F", "G", 14)
	return nil
}

func buildSheetName(name string) string {
	base := sanitizeSheetName(name)
	if len(base) > 31 {
		base = base[:31]
	}
	return base
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Quotation"
	}
	return value
}
