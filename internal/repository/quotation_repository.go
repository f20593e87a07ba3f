package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/antstech/quotation-service/internal/model"
	"github.com/antstech/quotation-service/internal/sheet"
)

// Each quotation lives on its own sheet. The item table occupies the
// first seven columns; the terms block sits in the cell plane to its
// right so row edits never disturb it.
var itemHeader = []string{"Item", "Part Number", "Description", "Quantity", "Unit", "Unit Price", "Subtotal"}

const (
	refTermsOfPayment = "J2"
	refDelivery       = "J3"
	refWarranty       = "J4"
	refPriceValidity  = "J5"
	refDiscount       = "J8"
)

var termLabels = []struct {
	ref   string
	label string
}{
	{"I2", "Terms of payment"},
	{"I3", "Delivery"},
	{"I4", "Warranty"},
	{"I5", "Price Validity"},
	{"I8", "Discount"},
}

var (
	ErrMalformedRow = errors.New("malformed row")
	ErrRowsChanged  = errors.New("rows changed since load")
)

type QuotationRepository struct {
	wb sheet.Workbook
}

func NewQuotationRepository(wb sheet.Workbook) *QuotationRepository {
	return &QuotationRepository{wb: wb}
}

func (r *QuotationRepository) List(ctx context.Context) ([]string, error) {
	return r.wb.Sheets(ctx)
}

// Create provisions an empty quotation sheet with the item header and the
// terms labels.
func (r *QuotationRepository) Create(ctx context.Context, name string) error {
	if err := r.wb.CreateSheet(ctx, name); err != nil {
		return err
	}
	if err := r.wb.AppendRow(ctx, name, itemHeader); err != nil {
		return err
	}
	for _, tl := range termLabels {
		if err := r.wb.WriteCell(ctx, name, tl.ref, tl.label); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the quotation back from its sheet. Item numbers are
// reassigned from row order, so gaps left by outside edits disappear.
func (r *QuotationRepository) Load(ctx context.Context, name string) (*model.Quotation, error) {
	rows, err := r.wb.ReadRows(ctx, name)
	if err != nil {
		return nil, err
	}

	q := &model.Quotation{Name: name}
	if len(rows) > 1 {
		q.Items = make([]model.QuotationItem, 0, len(rows)-1)
		for i, row := range rows[1:] {
			item, err := parseItemRow(row)
			if err != nil {
				return nil, fmt.Errorf("%w %d: %v", ErrMalformedRow, i+1, err)
			}
			item.Number = i + 1
			q.Items = append(q.Items, item)
		}
	}
	q.Revision = len(q.Items)

	terms, err := r.readTerms(ctx, name)
	if err != nil {
		return nil, err
	}
	q.Terms = terms
	return q, nil
}

// Save writes the items through the row operations: changed rows are
// updated in place, new rows appended, surplus rows trimmed from the
// bottom. When expectedRows is non-negative it must match the stored item
// row count or the save is rejected with ErrRowsChanged.
func (r *QuotationRepository) Save(ctx context.Context, q model.Quotation, expectedRows int) error {
	rows, err := r.wb.ReadRows(ctx, q.Name)
	if err != nil {
		return err
	}

	current := 0
	if len(rows) > 0 {
		current = len(rows) - 1
	}
	if expectedRows >= 0 && current != expectedRows {
		return fmt.Errorf("%w: have %d item rows, expected %d", ErrRowsChanged, current, expectedRows)
	}

	if len(rows) == 0 {
		if err := r.wb.AppendRow(ctx, q.Name, itemHeader); err != nil {
			return err
		}
		rows = [][]string{itemHeader}
	}

	for i, item := range q.Items {
		row := serializeItem(item)
		index := i + 1
		if index < len(rows) {
			if rowsEqual(rows[index], row) {
				continue
			}
			if err := r.wb.UpdateRow(ctx, q.Name, index, row); err != nil {
				return err
			}
			continue
		}
		if err := r.wb.AppendRow(ctx, q.Name, row); err != nil {
			return err
		}
	}
	for index := len(rows) - 1; index > len(q.Items); index-- {
		if err := r.wb.DeleteRow(ctx, q.Name, index); err != nil {
			return err
		}
	}

	return r.SaveTerms(ctx, q.Name, q.Terms)
}

// SaveTerms rewrites the terms block, labels included.
func (r *QuotationRepository) SaveTerms(ctx context.Context, name string, terms model.Terms) error {
	for _, tl := range termLabels {
		if err := r.wb.WriteCell(ctx, name, tl.ref, tl.label); err != nil {
			return err
		}
	}
	values := []struct {
		ref   string
		value string
	}{
		{refTermsOfPayment, terms.TermsOfPayment},
		{refDelivery, terms.Delivery},
		{refWarranty, terms.Warranty},
		{refPriceValidity, terms.PriceValidity},
		{refDiscount, terms.Discount.String()},
	}
	for _, v := range values {
		if err := r.wb.WriteCell(ctx, name, v.ref, v.value); err != nil {
			return err
		}
	}
	return nil
}

func (r *QuotationRepository) Delete(ctx context.Context, name string) error {
	return r.wb.DeleteSheet(ctx, name)
}

func (r *QuotationRepository) readTerms(ctx context.Context, name string) (model.Terms, error) {
	read := func(ref string) (string, error) {
		value, err := r.wb.ReadCell(ctx, name, ref)
		return strings.TrimSpace(value), err
	}

	var terms model.Terms
	var err error
	if terms.TermsOfPayment, err = read(refTermsOfPayment); err != nil {
		return terms, err
	}
	if terms.Delivery, err = read(refDelivery); err != nil {
		return terms, err
	}
	if terms.Warranty, err = read(refWarranty); err != nil {
		return terms, err
	}
	if terms.PriceValidity, err = read(refPriceValidity); err != nil {
		return terms, err
	}
	raw, err := read(refDiscount)
	if err != nil {
		return terms, err
	}
	discount, err := parseAmount(raw)
	if err != nil {
		return terms, fmt.Errorf("%w: discount: %v", ErrMalformedRow, err)
	}
	terms.Discount = discount
	return terms, nil
}

func parseItemRow(row []string) (model.QuotationItem, error) {
	item := model.QuotationItem{
		PartNumber:  cellAt(row, 1),
		Description: cellAt(row, 2),
		Unit:        cellAt(row, 4),
	}

	qty, err := parseAmount(cellAt(row, 3))
	if err != nil {
		return item, fmt.Errorf("quantity: %v", err)
	}
	price, err := parseAmount(cellAt(row, 5))
	if err != nil {
		return item, fmt.Errorf("unit price: %v", err)
	}
	item.Quantity = qty
	item.UnitPrice = price
	return item, nil
}

// parseAmount reads a numeric cell. Blank means zero; anything else must
// parse as a non-negative decimal.
func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative value: %q", raw)
	}
	return d, nil
}

func serializeItem(item model.QuotationItem) []string {
	return []string{
		strconv.Itoa(item.Number),
		item.PartNumber,
		item.Description,
		item.Quantity.String(),
		item.Unit,
		item.UnitPrice.String(),
		item.Subtotal.String(),
	}
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func rowsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}
