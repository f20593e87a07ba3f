package xlsx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/antstech/quotation-service/internal/sheet"
)

func openTemp(t *testing.T) *Workbook {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.xlsx")
	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return wb
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.xlsx")
	if _, err := Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("workbook file was not created: %v", err)
	}
}

func TestCreateAndListSheets(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	for _, name := range []string{"Alpha", "Beta"} {
		if err := wb.CreateSheet(ctx, name); err != nil {
			t.Fatalf("CreateSheet(%q) failed: %v", name, err)
		}
	}

	names, err := wb.Sheets(ctx)
	if err != nil {
		t.Fatalf("Sheets failed: %v", err)
	}
	want := []string{"Sheet1", "Alpha", "Beta"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Sheets = %v, want %v", names, want)
	}
}

func TestCreateSheetExists(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if err := wb.CreateSheet(ctx, "Alpha"); err != nil {
		t.Fatalf("CreateSheet failed: %v", err)
	}
	if err := wb.CreateSheet(ctx, "Alpha"); !errors.Is(err, sheet.ErrSheetExists) {
		t.Errorf("CreateSheet on existing sheet = %v, want ErrSheetExists", err)
	}
}

func TestDeleteSheet(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if err := wb.CreateSheet(ctx, "Alpha"); err != nil {
		t.Fatalf("CreateSheet failed: %v", err)
	}
	if err := wb.DeleteSheet(ctx, "Alpha"); err != nil {
		t.Fatalf("DeleteSheet failed: %v", err)
	}
	if _, err := wb.ReadRows(ctx, "Alpha"); !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("ReadRows after delete = %v, want ErrSheetNotFound", err)
	}
	if err := wb.DeleteSheet(ctx, "Alpha"); !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("DeleteSheet on missing sheet = %v, want ErrSheetNotFound", err)
	}
}

func TestDeleteLastSheetKeepsWorkbookUsable(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if err := wb.DeleteSheet(ctx, "Sheet1"); err != nil {
		t.Fatalf("DeleteSheet failed: %v", err)
	}
	names, err := wb.Sheets(ctx)
	if err != nil {
		t.Fatalf("Sheets failed: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("Sheets = %v, want a single replacement sheet", names)
	}
	if err := wb.CreateSheet(ctx, "Alpha"); err != nil {
		t.Errorf("CreateSheet after deleting last sheet failed: %v", err)
	}
}

func TestRowRoundTrip(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	rows := [][]string{
		{"Item", "Description", "Qty"},
		{"1", "bolts", "10"},
		{"2", "nuts", "20"},
	}
	for _, row := range rows {
		if err := wb.AppendRow(ctx, "Sheet1", row); err != nil {
			t.Fatalf("AppendRow failed: %v", err)
		}
	}

	got, err := wb.ReadRows(ctx, "Sheet1")
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("ReadRows = %v, want %v", got, rows)
	}
}

func TestUpdateRow(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if err := wb.AppendRow(ctx, "Sheet1", []string{"a", "b"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if err := wb.UpdateRow(ctx, "Sheet1", 0, []string{"x", "y"}); err != nil {
		t.Fatalf("UpdateRow failed: %v", err)
	}

	got, err := wb.ReadRows(ctx, "Sheet1")
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	want := [][]string{{"x", "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadRows = %v, want %v", got, want)
	}
}

func TestUpdateRowExtendsTable(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if err := wb.AppendRow(ctx, "Sheet1", []string{"h1", "h2"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if err := wb.UpdateRow(ctx, "Sheet1", 2, []string{"late", "row"}); err != nil {
		t.Fatalf("UpdateRow failed: %v", err)
	}

	got, err := wb.ReadRows(ctx, "Sheet1")
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	want := [][]string{{"h1", "h2"}, {"", ""}, {"late", "row"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadRows = %v, want %v", got, want)
	}
}

func TestDeleteRowShiftsTableOnly(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	rows := [][]string{
		{"h1", "h2"},
		{"first", "1"},
		{"second", "2"},
		{"third", "3"},
	}
	for _, row := range rows {
		if err := wb.AppendRow(ctx, "Sheet1", row); err != nil {
			t.Fatalf("AppendRow failed: %v", err)
		}
	}
	// Cell plane content to the right of the table must not move.
	if err := wb.WriteCell(ctx, "Sheet1", "J3", "stays"); err != nil {
		t.Fatalf("WriteCell failed: %v", err)
	}

	if err := wb.DeleteRow(ctx, "Sheet1", 1); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}

	got, err := wb.ReadRows(ctx, "Sheet1")
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	want := [][]string{
		{"h1", "h2"},
		{"second", "2"},
		{"third", "3"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadRows = %v, want %v", got, want)
	}

	cell, err := wb.ReadCell(ctx, "Sheet1", "J3")
	if err != nil {
		t.Fatalf("ReadCell failed: %v", err)
	}
	if cell != "stays" {
		t.Errorf("ReadCell(J3) = %q, want %q", cell, "stays")
	}
}

func TestDeleteRowOutOfRange(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if err := wb.AppendRow(ctx, "Sheet1", []string{"h"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if err := wb.DeleteRow(ctx, "Sheet1", 5); err != nil {
		t.Errorf("DeleteRow past the end = %v, want nil", err)
	}
}

func TestCellPlaneIgnoredByReadRows(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if err := wb.AppendRow(ctx, "Sheet1", []string{"h1", "h2", "h3"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if err := wb.WriteCell(ctx, "Sheet1", "I2", "Terms of payment"); err != nil {
		t.Fatalf("WriteCell failed: %v", err)
	}
	if err := wb.WriteCell(ctx, "Sheet1", "J8", "100"); err != nil {
		t.Fatalf("WriteCell failed: %v", err)
	}

	got, err := wb.ReadRows(ctx, "Sheet1")
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	want := [][]string{{"h1", "h2", "h3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadRows = %v, want %v", got, want)
	}
}

func TestReadCellEmpty(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	cell, err := wb.ReadCell(ctx, "Sheet1", "J2")
	if err != nil {
		t.Fatalf("ReadCell failed: %v", err)
	}
	if cell != "" {
		t.Errorf("ReadCell on blank cell = %q, want empty", cell)
	}
}

func TestMissingSheetErrors(t *testing.T) {
	ctx := context.Background()
	wb := openTemp(t)

	if _, err := wb.ReadRows(ctx, "Nope"); !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("ReadRows = %v, want ErrSheetNotFound", err)
	}
	if err := wb.AppendRow(ctx, "Nope", []string{"a"}); !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("AppendRow = %v, want ErrSheetNotFound", err)
	}
	if err := wb.WriteCell(ctx, "Nope", "A1", "x"); !errors.Is(err, sheet.ErrSheetNotFound) {
		t.Errorf("WriteCell = %v, want ErrSheetNotFound", err)
	}
}

func TestChangesVisibleAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.xlsx")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.CreateSheet(ctx, "Alpha"); err != nil {
		t.Fatalf("CreateSheet failed: %v", err)
	}
	if err := first.AppendRow(ctx, "Alpha", []string{"h"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	rows, err := second.ReadRows(ctx, "Alpha")
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "h" {
		t.Errorf("ReadRows = %v, want the row written by the first instance", rows)
	}
}
