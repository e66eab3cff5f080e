package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/officeflow/officeflow/internal/db"
)

// seedCatalog fills the lookup tables and one model so assets can be created.
// IDs are deterministic: sectors are 1=IT 2=Finance, statuses 1=In Stock
// 2=Assigned, employees 1=Alice 2=Bob.
func seedCatalog(t *testing.T, database *sql.DB) {
	t.Helper()
	ctx := context.Background()

	seed := map[string][]string{
		"brands":     {"Dell"},
		"categories": {"Laptop"},
		"sectors":    {"IT", "Finance"},
		"statuses":   {"In Stock", "Assigned"},
		"conditions": {"New"},
		"employees":  {"Alice", "Bob"},
		"suppliers":  {"TechSupply"},
	}
	for _, table := range []string{"brands", "categories", "sectors", "statuses", "conditions", "employees", "suppliers"} {
		for _, name := range seed[table] {
			if _, err := CreateLookup(ctx, database, table, name); err != nil {
				t.Fatalf("seeding %s: %v", table, err)
			}
		}
	}
	if _, err := CreateModel(ctx, database, "Latitude 5440", 1, 1); err != nil {
		t.Fatalf("seeding model: %v", err)
	}
}

func TestMoveAssetRecordsHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	asset, err := CreateAsset(ctx, database, "SN-1", 1, 1, 1, 1, nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	alice := int64(1)
	moved, err := MoveAsset(ctx, database, asset.ID, &alice, 2, 2, "handed to alice", nil)
	if err != nil {
		t.Fatalf("MoveAsset: %v", err)
	}

	if moved.EmployeeID == nil || *moved.EmployeeID != alice {
		t.Errorf("expected employee 1, got %v", moved.EmployeeID)
	}
	if moved.SectorID == nil || *moved.SectorID != 2 {
		t.Errorf("expected sector 2, got %v", moved.SectorID)
	}
	if moved.StatusID == nil || *moved.StatusID != 2 {
		t.Errorf("expected status 2, got %v", moved.StatusID)
	}

	// The latest history entry must equal the asset's new state.
	last, err := LatestMovement(ctx, database, asset.ID)
	if err != nil {
		t.Fatalf("LatestMovement: %v", err)
	}
	if last == nil {
		t.Fatal("expected a movement record")
	}
	if last.EmployeeID == nil || *last.EmployeeID != alice {
		t.Errorf("expected movement employee 1, got %v", last.EmployeeID)
	}
	if last.SectorID == nil || *last.SectorID != 2 {
		t.Errorf("expected movement sector 2, got %v", last.SectorID)
	}
	if last.StatusID == nil || *last.StatusID != 2 {
		t.Errorf("expected movement status 2, got %v", last.StatusID)
	}
	if last.Note != "handed to alice" {
		t.Errorf("expected note, got %q", last.Note)
	}
}

func TestMoveAssetUnassigns(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	alice := int64(1)
	asset, err := CreateAsset(ctx, database, "SN-1", 1, 2, 1, 2, &alice, nil, nil)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	// nil employee means return to stock.
	moved, err := MoveAsset(ctx, database, asset.ID, nil, 1, 1, "returned", nil)
	if err != nil {
		t.Fatalf("MoveAsset: %v", err)
	}
	if moved.EmployeeID != nil {
		t.Errorf("expected unassigned asset, got employee %v", *moved.EmployeeID)
	}

	last, err := LatestMovement(ctx, database, asset.ID)
	if err != nil {
		t.Fatalf("LatestMovement: %v", err)
	}
	if last.EmployeeID != nil {
		t.Errorf("expected movement without employee, got %v", *last.EmployeeID)
	}
}

func TestMoveAssetNotFound(t *testing.T) {
	database := db.NewTestDB(t)
	seedCatalog(t, database)

	if _, err := MoveAsset(context.Background(), database, 999, nil, 1, 1, "", nil); err == nil {
		t.Error("expected error for missing asset")
	}
}

func TestMoveAssetBatchKeepCurrentResolvesPerAsset(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	first, err := CreateAsset(ctx, database, "SN-1", 1, 1, 1, 1, nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	second, err := CreateAsset(ctx, database, "SN-2", 1, 1, 1, 2, nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	// Keep each asset's own sector while flipping both to status 2.
	status := int64(2)
	result, err := MoveAssetBatch(ctx, database, []int64{first.ID, second.ID},
		MoveDest{KeepEmployee: true, KeepSector: true, StatusID: &status}, "bulk status change", nil)
	if err != nil {
		t.Fatalf("MoveAssetBatch: %v", err)
	}
	if result.Moved != 2 || len(result.Errors) != 0 {
		t.Fatalf("expected 2 moved with no errors, got %+v", result)
	}

	a, _ := GetAsset(ctx, database, first.ID)
	b, _ := GetAsset(ctx, database, second.ID)
	if a.SectorID == nil || *a.SectorID != 1 {
		t.Errorf("expected first asset to keep sector 1, got %v", a.SectorID)
	}
	if b.SectorID == nil || *b.SectorID != 2 {
		t.Errorf("expected second asset to keep sector 2, got %v", b.SectorID)
	}
	if *a.StatusID != 2 || *b.StatusID != 2 {
		t.Error("expected both assets flipped to status 2")
	}
}

func TestMoveAssetBatchKeepCurrentWithoutValue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	// An incomplete row, as bulk imports produce: no status at all.
	res, err := database.ExecContext(ctx,
		`INSERT INTO assets (serial, model_id, sector_id) VALUES ('RAW-1', 1, 1)`)
	if err != nil {
		t.Fatalf("inserting bare asset: %v", err)
	}
	bareID, _ := res.LastInsertId()

	complete, err := CreateAsset(ctx, database, "SN-1", 1, 1, 1, 1, nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	sector := int64(2)
	result, err := MoveAssetBatch(ctx, database, []int64{bareID, complete.ID},
		MoveDest{KeepEmployee: true, SectorID: &sector, KeepStatus: true}, "", nil)
	if err != nil {
		t.Fatalf("MoveAssetBatch: %v", err)
	}

	// The bare asset has no status to keep and must fail; the complete one
	// still moves.
	if result.Moved != 1 {
		t.Errorf("expected 1 moved, got %d", result.Moved)
	}
	if len(result.Errors) != 1 || result.Errors[0].AssetID != bareID {
		t.Fatalf("expected one error for the bare asset, got %+v", result.Errors)
	}

	bare, _ := GetAsset(ctx, database, bareID)
	if bare.SectorID == nil || *bare.SectorID != 1 {
		t.Errorf("expected failed asset untouched, got sector %v", bare.SectorID)
	}
}

func TestMoveAssetBatchDuplicateIDsMoveTwice(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	asset, err := CreateAsset(ctx, database, "SN-1", 1, 1, 1, 1, nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	sector, status := int64(2), int64(2)
	result, err := MoveAssetBatch(ctx, database, []int64{asset.ID, asset.ID},
		MoveDest{SectorID: &sector, StatusID: &status}, "", nil)
	if err != nil {
		t.Fatalf("MoveAssetBatch: %v", err)
	}
	if result.Moved != 2 {
		t.Errorf("expected duplicate id processed twice, got %d", result.Moved)
	}

	movements, err := ListMovements(ctx, database, asset.ID)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(movements) != 2 {
		t.Errorf("expected 2 movement records, got %d", len(movements))
	}
}

func TestMoveAssetBatchContinuesPastFailures(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	asset, err := CreateAsset(ctx, database, "SN-1", 1, 1, 1, 1, nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	sector, status := int64(1), int64(2)
	result, err := MoveAssetBatch(ctx, database, []int64{999, asset.ID},
		MoveDest{SectorID: &sector, StatusID: &status}, "", nil)
	if err != nil {
		t.Fatalf("MoveAssetBatch: %v", err)
	}
	if result.Moved != 1 {
		t.Errorf("expected 1 moved, got %d", result.Moved)
	}
	if len(result.Errors) != 1 || result.Errors[0].AssetID != 999 {
		t.Errorf("expected error for asset 999, got %+v", result.Errors)
	}
}

func TestMoveAssetBatchValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	if _, err := MoveAssetBatch(ctx, database, nil, MoveDest{KeepSector: true, KeepStatus: true}, "", nil); err == nil {
		t.Error("expected error for empty batch")
	}

	status := int64(1)
	if _, err := MoveAssetBatch(ctx, database, []int64{1}, MoveDest{StatusID: &status}, "", nil); err == nil {
		t.Error("expected error for missing destination sector")
	}
}

func TestListMovements(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	first, _ := CreateAsset(ctx, database, "SN-1", 1, 1, 1, 1, nil, nil, nil)
	second, _ := CreateAsset(ctx, database, "SN-2", 1, 1, 1, 1, nil, nil, nil)

	alice := int64(1)
	if _, err := MoveAsset(ctx, database, first.ID, &alice, 1, 2, "", nil); err != nil {
		t.Fatalf("MoveAsset: %v", err)
	}
	if _, err := MoveAsset(ctx, database, second.ID, nil, 2, 1, "", nil); err != nil {
		t.Fatalf("MoveAsset: %v", err)
	}

	all, err := ListMovements(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(all))
	}
	// Newest first.
	if all[0].AssetID != second.ID {
		t.Errorf("expected newest movement first, got asset %d", all[0].AssetID)
	}
	if all[1].EmployeeName != "Alice" {
		t.Errorf("expected employee name Alice, got %q", all[1].EmployeeName)
	}
	if all[1].AssetSerial != "SN-1" {
		t.Errorf("expected serial SN-1, got %q", all[1].AssetSerial)
	}

	one, err := ListMovements(ctx, database, first.ID)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(one) != 1 || one[0].AssetID != first.ID {
		t.Errorf("expected only first asset's movements, got %+v", one)
	}
}
