package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/antstech/quotation-service/internal/model"
	"github.com/antstech/quotation-service/internal/sheet"
	"github.com/antstech/quotation-service/internal/sheet/xlsx"
)

func newTestRepo(t *testing.T) (*QuotationRepository, sheet.Workbook) {
	t.Helper()
	wb, err := xlsx.Open(filepath.Join(t.TempDir(), "quotes.xlsx"))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	return NewQuotationRepository(wb), wb
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleQuotation(name string) model.Quotation {
	return model.Quotation{
		Name: name,
		Items: []model.QuotationItem{
			{
				Number:      1,
				PartNumber:  "PN-100",
				Description: "Industrial bolts",
				Quantity:    d("2"),
				Unit:        "box",
				UnitPrice:   d("10.00"),
				Subtotal:    d("20.00"),
			},
			{
				Number:      2,
				PartNumber:  "PN-200",
				Description: "Hex nuts",
				Quantity:    d("1"),
				Unit:        "box",
				UnitPrice:   d("5.50"),
				Subtotal:    d("5.50"),
			},
		},
		Terms: model.Terms{
			TermsOfPayment: "30 days",
			Delivery:       "2 weeks",
			Warranty:       "1 year",
			PriceValidity:  "60 days",
			Discount:       d("5.00"),
		},
	}
}

func TestCreateAndLoadEmpty(t *testing.T) {
	ctx := context.Background()
	repo, wb := newTestRepo(t)

	if err := repo.Create(ctx, "Boiler Upgrade"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	q, err := repo.Load(ctx, "Boiler Upgrade")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(q.Items) != 0 {
		t.Errorf("new quotation has %d items, want 0", len(q.Items))
	}
	if q.Revision != 0 {
		t.Errorf("Revision = %d, want 0", q.Revision)
	}

	label, err := wb.ReadCell(ctx, "Boiler Upgrade", "I2")
	if err != nil {
		t.Fatalf("ReadCell failed: %v", err)
	}
	if label != "Terms of payment" {
		t.Errorf("I2 = %q, want the terms label", label)
	}
}

func TestCreateExistingSheet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.Create(ctx, "Boiler Upgrade"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, "Boiler Upgrade"); !errors.Is(err, sheet.ErrSheetExists) {
		t.Errorf("second Create = %v, want ErrSheetExists", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.Create(ctx, "Boiler Upgrade"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	want := sampleQuotation("Boiler Upgrade")
	if err := repo.Save(ctx, want, -1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx, "Boiler Upgrade")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Items) != len(want.Items) {
		t.Fatalf("loaded %d items, want %d", len(got.Items), len(want.Items))
	}
	for i, item := range got.Items {
		wantItem := want.Items[i]
		if item.Number != wantItem.Number {
			t.Errorf("items[%d].Number = %d, want %d", i, item.Number, wantItem.Number)
		}
		if item.PartNumber != wantItem.PartNumber {
			t.Errorf("items[%d].PartNumber = %q, want %q", i, item.PartNumber, wantItem.PartNumber)
		}
		if item.Description != wantItem.Description {
			t.Errorf("items[%d].Description = %q, want %q", i, item.Description, wantItem.Description)
		}
		if !item.Quantity.Equal(wantItem.Quantity) {
			t.Errorf("items[%d].Quantity = %s, want %s", i, item.Quantity, wantItem.Quantity)
		}
		if item.Unit != wantItem.Unit {
			t.Errorf("items[%d].Unit = %q, want %q", i, item.Unit, wantItem.Unit)
		}
		if !item.UnitPrice.Equal(wantItem.UnitPrice) {
			t.Errorf("items[%d].UnitPrice = %s, want %s", i, item.UnitPrice, wantItem.UnitPrice)
		}
	}
	if got.Revision != 2 {
		t.Errorf("Revision = %d, want 2", got.Revision)
	}
	if got.Terms.TermsOfPayment != "30 days" || got.Terms.Delivery != "2 weeks" {
		t.Errorf("terms not round-tripped: %+v", got.Terms)
	}
	if !got.Terms.Discount.Equal(d("5.00")) {
		t.Errorf("Discount = %s, want 5.00", got.Terms.Discount)
	}
}

func TestLoadRenumbersFromRowOrder(t *testing.T) {
	ctx := context.Background()
	repo, wb := newTestRepo(t)

	if err := repo.Create(ctx, "Boiler Upgrade"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rows := [][]string{
		{"7", "PN-1", "first", "1", "pc", "2.00", ""},
		{"9", "PN-2", "second", "1", "pc", "3.00", ""},
	}
	for _, row := range rows {
		if err := wb.AppendRow(ctx, "Boiler Upgrade", row); err != nil {
			t.Fatalf("AppendRow failed: %v", err)
		}
	}

	q, err := repo.Load(ctx, "Boiler Upgrade")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, item := range q.Items {
		if item.Number != i+1 {
			t.Errorf("items[%d].Number = %d, want %d", i, item.Number, i+1)
		}
	}
}

func TestLoadMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		row  []string
	}{
		{"unparseable quantity", []string{"1", "PN", "desc", "abc", "pc", "2.00", ""}},
		{"unparseable price", []string{"1", "PN", "desc", "1", "pc", "cheap", ""}},
		{"negative quantity", []string{"1", "PN", "desc", "-1", "pc", "2.00", ""}},
		{"negative price", []string{"1", "PN", "desc", "1", "pc", "-2.00", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo, wb := newTestRepo(t)
			if err := repo.Create(ctx, "Q"); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if err := wb.AppendRow(ctx, "Q", tt.row); err != nil {
				t.Fatalf("AppendRow failed: %v", err)
			}

			if _, err := repo.Load(ctx, "Q"); !errors.Is(err, ErrMalformedRow) {
				t.Errorf("Load = %v, want ErrMalformedRow", err)
			}
		})
	}
}

func TestLoadBlankNumbersAreZero(t *testing.T) {
	ctx := context.Background()
	repo, wb := newTestRepo(t)

	if err := repo.Create(ctx, "Q"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := wb.AppendRow(ctx, "Q", []string{"1", "PN", "desc", "", "pc", "", ""}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}

	q, err := repo.Load(ctx, "Q")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(q.Items) != 1 {
		t.Fatalf("loaded %d items, want 1", len(q.Items))
	}
	if !q.Items[0].Quantity.IsZero() || !q.Items[0].UnitPrice.IsZero() {
		t.Errorf("blank cells parsed as %s and %s, want zero", q.Items[0].Quantity, q.Items[0].UnitPrice)
	}
}

func TestSaveShrinksItemRows(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.Create(ctx, "Q"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	q := sampleQuotation("Q")
	if err := repo.Save(ctx, q, -1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	q.Items = q.Items[:1]
	if err := repo.Save(ctx, q, 2); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := repo.Load(ctx, "Q")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("loaded %d items, want 1", len(got.Items))
	}
	if got.Items[0].PartNumber != "PN-100" {
		t.Errorf("remaining item = %q, want PN-100", got.Items[0].PartNumber)
	}
	// Terms must survive the row trim.
	if got.Terms.TermsOfPayment != "30 days" {
		t.Errorf("TermsOfPayment = %q, want %q", got.Terms.TermsOfPayment, "30 days")
	}
}

func TestSaveRowCountConflict(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.Create(ctx, "Q"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	q := sampleQuotation("Q")
	if err := repo.Save(ctx, q, -1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := repo.Save(ctx, q, 5); !errors.Is(err, ErrRowsChanged) {
		t.Errorf("Save with stale row count = %v, want ErrRowsChanged", err)
	}
	if err := repo.Save(ctx, q, -1); err != nil {
		t.Errorf("Save without row count check = %v, want nil", err)
	}
}

func TestSaveMissingSheet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	err := repo.Save(ctx, sampleQuotation("Ghost"), -1)
	if !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("Save = %v, want ErrSheetNotFound", err)
	}
}

func TestSaveTerms(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.Create(ctx, "Q"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	terms := model.Terms{
		TermsOfPayment: "50% down payment",
		Delivery:       "3 weeks",
		Warranty:       "6 months",
		PriceValidity:  "until end of quarter",
		Discount:       d("150.75"),
	}
	if err := repo.SaveTerms(ctx, "Q", terms); err != nil {
		t.Fatalf("SaveTerms failed: %v", err)
	}

	q, err := repo.Load(ctx, "Q")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if q.Terms.TermsOfPayment != terms.TermsOfPayment ||
		q.Terms.Delivery != terms.Delivery ||
		q.Terms.Warranty != terms.Warranty ||
		q.Terms.PriceValidity != terms.PriceValidity {
		t.Errorf("loaded terms = %+v, want %+v", q.Terms, terms)
	}
	if !q.Terms.Discount.Equal(terms.Discount) {
		t.Errorf("Discount = %s, want %s", q.Terms.Discount, terms.Discount)
	}
}

func TestDeleteQuotation(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if err := repo.Create(ctx, "Q"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Delete(ctx, "Q"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Load(ctx, "Q"); !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("Load after delete = %v, want ErrSheetNotFound", err)
	}
	if err := repo.Delete(ctx, "Q"); !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("second Delete = %v, want ErrSheetNotFound", err)
	}
}

func TestLoadMalformedDiscount(t *testing.T) {
	ctx := context.Background()
	repo, wb := newTestRepo(t)

	if err := repo.Create(ctx, "Q"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := wb.WriteCell(ctx, "Q", "J8", "free"); err != nil {
		t.Fatalf("WriteCell failed: %v", err)
	}

	if _, err := repo.Load(ctx, "Q"); !errors.Is(err, ErrMalformedRow) {
		t.Errorf("Load = %v, want ErrMalformedRow", err)
	}
}
