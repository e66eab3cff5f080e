package store

import (
	"context"
	"testing"
	"time"

	"github.com/officeflow/officeflow/internal/db"
)

func purchaseInput(serials ...string) PurchaseInput {
	unit := 450.5
	return PurchaseInput{
		PurchasedAt:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		InvoiceNumber: "123456",
		SupplierID:    1,
		Buyer:         "procurement",
		ModelID:       1,
		Serials:       serials,
		StatusID:      1,
		ConditionID:   1,
		SectorID:      1,
		UnitValue:     &unit,
	}
}

func TestRegisterPurchaseFansOutAssets(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	purchase, err := RegisterPurchase(ctx, database, purchaseInput("SN-1", "SN-2", "SN-3"))
	if err != nil {
		t.Fatalf("RegisterPurchase: %v", err)
	}
	if purchase.InvoiceNumber != "000.123.456" {
		t.Errorf("expected canonical invoice number, got %q", purchase.InvoiceNumber)
	}
	if purchase.SupplierName != "TechSupply" {
		t.Errorf("expected supplier name joined, got %q", purchase.SupplierName)
	}

	assets, err := ListAssetsByPurchase(ctx, database, purchase.ID)
	if err != nil {
		t.Fatalf("ListAssetsByPurchase: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}
	for _, a := range assets {
		if a.ModelID != 1 {
			t.Errorf("asset %s: expected model 1, got %d", a.Serial, a.ModelID)
		}
		if a.PurchaseID == nil || *a.PurchaseID != purchase.ID {
			t.Errorf("asset %s: expected purchase link, got %v", a.Serial, a.PurchaseID)
		}
		if a.Value == nil || *a.Value != 450.5 {
			t.Errorf("asset %s: expected unit value 450.5, got %v", a.Serial, a.Value)
		}
	}
}

func TestRegisterPurchaseTrimsSerials(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	purchase, err := RegisterPurchase(ctx, database, purchaseInput("  SN-1  "))
	if err != nil {
		t.Fatalf("RegisterPurchase: %v", err)
	}

	assets, _ := ListAssetsByPurchase(ctx, database, purchase.ID)
	if len(assets) != 1 || assets[0].Serial != "SN-1" {
		t.Errorf("expected trimmed serial SN-1, got %+v", assets)
	}
}

func TestRegisterPurchaseRejectsDuplicateSerials(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	if _, err := RegisterPurchase(ctx, database, purchaseInput("SN-1", "SN-1")); err == nil {
		t.Fatal("expected error for duplicate serial")
	}

	// Validation happens before any write.
	var purchases, assets int
	database.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&purchases)
	database.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&assets)
	if purchases != 0 || assets != 0 {
		t.Errorf("expected no rows written, got %d purchases and %d assets", purchases, assets)
	}
}

func TestRegisterPurchaseRejectsBlankSerial(t *testing.T) {
	database := db.NewTestDB(t)
	seedCatalog(t, database)

	if _, err := RegisterPurchase(context.Background(), database, purchaseInput("SN-1", "   ")); err == nil {
		t.Error("expected error for blank serial")
	}
}

func TestRegisterPurchaseRejectsEmptyBatch(t *testing.T) {
	database := db.NewTestDB(t)
	seedCatalog(t, database)

	if _, err := RegisterPurchase(context.Background(), database, purchaseInput()); err == nil {
		t.Error("expected error for empty serial list")
	}
}

func TestRegisterPurchaseRejectsBadInvoice(t *testing.T) {
	database := db.NewTestDB(t)
	seedCatalog(t, database)

	in := purchaseInput("SN-1")
	in.InvoiceNumber = "12AB56"
	if _, err := RegisterPurchase(context.Background(), database, in); err == nil {
		t.Error("expected error for non-numeric invoice")
	}
}

func TestRegisterPurchaseRollsBackOnSerialConflict(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	if _, err := CreateAsset(ctx, database, "SN-2", 1, 1, 1, 1, nil, nil, nil); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	// SN-2 already exists, so the insert fails mid-batch and the purchase
	// plus SN-1 must both roll back.
	if _, err := RegisterPurchase(ctx, database, purchaseInput("SN-1", "SN-2")); err == nil {
		t.Fatal("expected error for conflicting serial")
	}

	var purchases int
	database.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&purchases)
	if purchases != 0 {
		t.Errorf("expected purchase rolled back, got %d rows", purchases)
	}
	if a, _ := GetAssetBySerial(ctx, database, "SN-1"); a != nil {
		t.Error("expected SN-1 rolled back")
	}
}

func TestListPurchases(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seedCatalog(t, database)

	first := purchaseInput("SN-1")
	first.PurchasedAt = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if _, err := RegisterPurchase(ctx, database, first); err != nil {
		t.Fatalf("RegisterPurchase: %v", err)
	}

	second := purchaseInput("SN-2")
	second.PurchasedAt = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	second.InvoiceNumber = "777"
	if _, err := RegisterPurchase(ctx, database, second); err != nil {
		t.Fatalf("RegisterPurchase: %v", err)
	}

	purchases, err := ListPurchases(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListPurchases: %v", err)
	}
	if len(purchases) != 2 {
		t.Fatalf("expected 2 purchases, got %d", len(purchases))
	}
	if purchases[0].InvoiceNumber != "000.000.777" {
		t.Errorf("expected newest purchase first, got %q", purchases[0].InvoiceNumber)
	}

	limited, err := ListPurchases(ctx, database, 1)
	if err != nil {
		t.Fatalf("ListPurchases: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 purchase with limit, got %d", len(limited))
	}
}
