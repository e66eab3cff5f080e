package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/officeflow/officeflow/internal/db"
	"github.com/officeflow/officeflow/internal/store"
)

// seedInventory fills a database with one row chain through every table.
func seedInventory(t *testing.T, ctx context.Context, d *sql.DB) {
	t.Helper()

	for _, table := range []string{"brands", "categories", "sectors", "statuses", "conditions", "employees", "suppliers"} {
		if _, err := store.CreateLookup(ctx, d, table, "Test "+table); err != nil {
			t.Fatalf("seeding %s: %v", table, err)
		}
	}

	m, err := store.CreateModel(ctx, d, "Latitude 5440", 1, 1)
	if err != nil {
		t.Fatalf("seeding model: %v", err)
	}

	value := 899.99
	asset, err := store.CreateAsset(ctx, d, "SN-001", m.ID, 1, 1, 1, nil, &value, nil)
	if err != nil {
		t.Fatalf("seeding asset: %v", err)
	}
	if _, err := store.CreateAsset(ctx, d, "SN-002", m.ID, 1, 1, 1, nil, nil, nil); err != nil {
		t.Fatalf("seeding second asset: %v", err)
	}

	employeeID := int64(1)
	if _, err := store.MoveAsset(ctx, d, asset.ID, &employeeID, 1, 1, "initial assignment", nil); err != nil {
		t.Fatalf("seeding movement: %v", err)
	}

	unit := 450.5
	_, err = store.RegisterPurchase(ctx, d, store.PurchaseInput{
		PurchasedAt:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		InvoiceNumber: "123456",
		SupplierID:    1,
		Buyer:         "procurement",
		ModelID:       m.ID,
		Serials:       []string{"SN-100", "SN-101"},
		StatusID:      1,
		ConditionID:   1,
		SectorID:      1,
		UnitValue:     &unit,
	})
	if err != nil {
		t.Fatalf("seeding purchase: %v", err)
	}

	if _, err := store.OpenMaintenance(ctx, d, asset.ID, "TechFix", "broken hinge", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), nil); err != nil {
		t.Fatalf("seeding maintenance: %v", err)
	}
}

func countRows(t *testing.T, ctx context.Context, d *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func TestExportRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := db.NewTestDB(t)
	seedInventory(t, ctx, source)

	var buf bytes.Buffer
	total, err := Export(ctx, source, &buf)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if total == 0 {
		t.Fatal("expected exported rows, got 0")
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}

	target := db.NewTestDB(t)
	counts, err := Restore(ctx, target, zr, false)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	restored := 0
	for _, c := range counts {
		restored += c.Rows
	}
	if restored != total {
		t.Errorf("expected %d restored rows, got %d", total, restored)
	}

	for _, table := range Tables {
		want := countRows(t, ctx, source, table)
		got := countRows(t, ctx, target, table)
		if got != want {
			t.Errorf("table %s: expected %d rows, got %d", table, want, got)
		}
	}

	asset, err := store.GetAssetBySerial(ctx, target, "SN-001")
	if err != nil {
		t.Fatalf("getting restored asset: %v", err)
	}
	if asset == nil {
		t.Fatal("restored asset not found")
	}
	if asset.Value == nil || *asset.Value != 899.99 {
		t.Errorf("expected restored value 899.99, got %v", asset.Value)
	}
	if asset.EmployeeID == nil || *asset.EmployeeID != 1 {
		t.Errorf("expected restored employee id 1, got %v", asset.EmployeeID)
	}

	bare, err := store.GetAssetBySerial(ctx, target, "SN-002")
	if err != nil {
		t.Fatalf("getting second restored asset: %v", err)
	}
	if bare.Value != nil {
		t.Errorf("expected nil value after restore, got %v", *bare.Value)
	}

	var invoice string
	err = target.QueryRowContext(ctx, `SELECT invoice_number FROM purchases`).Scan(&invoice)
	if err != nil {
		t.Fatalf("getting restored invoice: %v", err)
	}
	if invoice != "000.123.456" {
		t.Errorf("expected invoice 000.123.456, got %q", invoice)
	}
}

func TestRestoreCarriesAuditTrailAcrossAccounts(t *testing.T) {
	ctx := context.Background()
	source := db.NewTestDB(t)
	seedInventory(t, ctx, source)

	// Attribute a movement to an account that only exists in the source.
	// Accounts are not part of the snapshot, so the restored history must
	// still load into a database that has none of them.
	mover, err := store.CreateUser(ctx, source, "mover", "hash", "manager")
	if err != nil {
		t.Fatalf("creating account: %v", err)
	}
	employeeID := int64(1)
	if _, err := store.MoveAsset(ctx, source, 2, &employeeID, 1, 1, "handover", &mover.ID); err != nil {
		t.Fatalf("moving asset: %v", err)
	}

	var buf bytes.Buffer
	if _, err := Export(ctx, source, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}

	target := db.NewTestDB(t)
	if _, err := Restore(ctx, target, zr, false); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if want, got := countRows(t, ctx, source, "movements"), countRows(t, ctx, target, "movements"); got != want {
		t.Errorf("expected %d movements, got %d", want, got)
	}

	var movedBy sql.NullInt64
	err = target.QueryRowContext(ctx, `SELECT moved_by FROM movements WHERE note = 'handover'`).Scan(&movedBy)
	if err != nil {
		t.Fatalf("getting restored movement: %v", err)
	}
	if !movedBy.Valid || movedBy.Int64 != mover.ID {
		t.Errorf("expected moved_by %d, got %+v", mover.ID, movedBy)
	}
}

func TestExportSkipsEmptyTables(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)

	if _, err := store.CreateLookup(ctx, d, "brands", "Dell"); err != nil {
		t.Fatalf("creating brand: %v", err)
	}

	var buf bytes.Buffer
	total, err := Export(ctx, d, &buf)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 exported row, got %d", total)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("expected 1 archive entry, got %d", len(zr.File))
	}
	if zr.File[0].Name != "brands.csv" {
		t.Errorf("expected entry brands.csv, got %s", zr.File[0].Name)
	}
}

func TestExportTableFormat(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)

	if _, err := store.CreateLookup(ctx, d, "brands", "Dell"); err != nil {
		t.Fatalf("creating brand: %v", err)
	}

	var buf bytes.Buffer
	if _, err := ExportTable(ctx, d, "brands", &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, utf8BOM) {
		t.Error("expected UTF-8 BOM prefix")
	}

	lines := strings.Split(strings.TrimPrefix(out, utf8BOM), "\n")
	if lines[0] != "id;name" {
		t.Errorf("expected header id;name, got %q", lines[0])
	}
	if lines[1] != "1;Dell" {
		t.Errorf("expected row 1;Dell, got %q", lines[1])
	}
}

func TestExportTableUnknown(t *testing.T) {
	var buf bytes.Buffer
	if _, err := ExportTable(context.Background(), db.NewTestDB(t), "users", &buf); err == nil {
		t.Error("expected error for non-backup table")
	}
}

func TestDecodeCSVNumericNarrowing(t *testing.T) {
	data := []byte(utf8BOM + "id;value;cost\n1,0;10,5;3,0\n2,0;;1,0\n3,0;NaN;2,0\n")

	cols, rows, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(cols) != 3 || len(rows) != 3 {
		t.Fatalf("expected 3 columns and 3 rows, got %d and %d", len(cols), len(rows))
	}

	// Whole-number floats narrow to integers across the whole column.
	if got, ok := rows[0][0].(int64); !ok || got != 1 {
		t.Errorf("expected id int64(1), got %#v", rows[0][0])
	}
	if got, ok := rows[2][2].(int64); !ok || got != 2 {
		t.Errorf("expected cost int64(2), got %#v", rows[2][2])
	}

	// A single fractional value keeps the column floating point.
	if got, ok := rows[0][1].(float64); !ok || got != 10.5 {
		t.Errorf("expected value float64(10.5), got %#v", rows[0][1])
	}

	// Empty and NaN cells become NULL.
	if rows[1][1] != nil {
		t.Errorf("expected nil for empty cell, got %#v", rows[1][1])
	}
	if rows[2][1] != nil {
		t.Errorf("expected nil for NaN cell, got %#v", rows[2][1])
	}
}

func TestDecodeCSVCommaFallback(t *testing.T) {
	data := []byte("id,name,value\n1,Dell,10.5\n")

	cols, rows, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}
	if got, ok := rows[0][0].(int64); !ok || got != 1 {
		t.Errorf("expected int64(1), got %#v", rows[0][0])
	}
	if rows[0][1] != "Dell" {
		t.Errorf("expected Dell, got %#v", rows[0][1])
	}
	if got, ok := rows[0][2].(float64); !ok || got != 10.5 {
		t.Errorf("expected float64(10.5), got %#v", rows[0][2])
	}
}

func TestDecodeCSVKeepsCodesAsText(t *testing.T) {
	data := []byte("invoice\n000.123.456\n")

	_, rows, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if rows[0][0] != "000.123.456" {
		t.Errorf("expected invoice kept as text, got %#v", rows[0][0])
	}
}

func TestRestoreUpsertsExistingRows(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)

	if _, err := store.CreateLookup(ctx, d, "brands", "Old Name"); err != nil {
		t.Fatalf("creating brand: %v", err)
	}

	zr := buildArchive(t, map[string]string{
		"brands.csv": "id;name\n1;New Name\n",
	})

	counts, err := Restore(ctx, d, zr, false)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if len(counts) != 1 || counts[0].Rows != 1 {
		t.Fatalf("expected 1 restored row, got %+v", counts)
	}

	brand, err := store.GetLookup(ctx, d, "brands", 1)
	if err != nil {
		t.Fatalf("getting brand: %v", err)
	}
	if brand.Name != "New Name" {
		t.Errorf("expected New Name, got %q", brand.Name)
	}
	if n := countRows(t, ctx, d, "brands"); n != 1 {
		t.Errorf("expected 1 brand, got %d", n)
	}
}

func TestRestoreResetWipesFirst(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)

	if _, err := store.CreateLookup(ctx, d, "brands", "Dell"); err != nil {
		t.Fatalf("creating brand: %v", err)
	}
	if _, err := store.CreateLookup(ctx, d, "brands", "Lenovo"); err != nil {
		t.Fatalf("creating brand: %v", err)
	}

	zr := buildArchive(t, map[string]string{
		"brands.csv": "id;name\n5;HP\n",
	})

	if _, err := Restore(ctx, d, zr, true); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if n := countRows(t, ctx, d, "brands"); n != 1 {
		t.Errorf("expected 1 brand after reset restore, got %d", n)
	}
	brand, err := store.GetLookup(ctx, d, "brands", 5)
	if err != nil {
		t.Fatalf("getting brand: %v", err)
	}
	if brand == nil || brand.Name != "HP" {
		t.Errorf("expected brand HP with id 5, got %+v", brand)
	}
}

func TestRestoreFailureRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)

	if _, err := store.CreateLookup(ctx, d, "brands", "Dell"); err != nil {
		t.Fatalf("creating brand: %v", err)
	}

	// categories.csv references a column that does not exist, failing the
	// restore after brands already loaded.
	zr := buildArchive(t, map[string]string{
		"brands.csv":     "id;name\n10;HP\n",
		"categories.csv": "id;label\n1;Laptop\n",
	})

	if _, err := Restore(ctx, d, zr, true); err == nil {
		t.Fatal("expected restore to fail")
	}

	// The wipe and the brands load must both have rolled back.
	brand, err := store.GetLookup(ctx, d, "brands", 1)
	if err != nil {
		t.Fatalf("getting brand: %v", err)
	}
	if brand == nil || brand.Name != "Dell" {
		t.Errorf("expected original brand intact, got %+v", brand)
	}
	if n := countRows(t, ctx, d, "brands"); n != 1 {
		t.Errorf("expected 1 brand, got %d", n)
	}
}

func TestImportTableRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)

	if _, err := store.CreateLookup(ctx, d, "brands", "Dell"); err != nil {
		t.Fatalf("creating brand: %v", err)
	}

	_, err := ImportTable(ctx, d, "brands", []byte("id;name\n1;HP\n"))
	if err == nil {
		t.Fatal("expected import to fail on id collision")
	}

	brand, err := store.GetLookup(ctx, d, "brands", 1)
	if err != nil {
		t.Fatalf("getting brand: %v", err)
	}
	if brand.Name != "Dell" {
		t.Errorf("expected original brand intact, got %q", brand.Name)
	}
}

func TestImportTableInsertsRows(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)

	n, err := ImportTable(ctx, d, "brands", []byte("name\nDell\nLenovo\n"))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported rows, got %d", n)
	}
	if got := countRows(t, context.Background(), d, "brands"); got != 2 {
		t.Errorf("expected 2 brands, got %d", got)
	}
}

func buildArchive(t *testing.T, entries map[string]string) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(utf8BOM + content)); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	return zr
}
