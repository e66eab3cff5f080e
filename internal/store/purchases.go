package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/officeflow/officeflow/internal/model"
)

// PurchaseInput carries everything needed to register a purchase and the
// batch of assets it creates. All assets share the purchased model, status,
// condition, sector, and unit value; serials are caller-supplied and must be
// unique.
type PurchaseInput struct {
	PurchasedAt   time.Time
	InvoiceNumber string
	SupplierID    int64
	Buyer         string
	ModelID       int64
	TotalValue    *float64
	AttachmentKey *string

	Serials     []string
	StatusID    int64
	ConditionID int64
	SectorID    int64
	UnitValue   *float64
}

// RegisterPurchase inserts a purchase and fans it out into one asset per
// serial, all in a single transaction. Validation failures (missing invoice,
// blank or duplicate serials) are detected before any write.
func RegisterPurchase(ctx context.Context, db *sql.DB, in PurchaseInput) (*model.Purchase, error) {
	invoice, err := model.FormatInvoiceNumber(in.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice number: %w", err)
	}
	if len(in.Serials) == 0 {
		return nil, fmt.Errorf("at least one serial required")
	}

	seen := make(map[string]bool, len(in.Serials))
	for i, raw := range in.Serials {
		serial := strings.TrimSpace(raw)
		if serial == "" {
			return nil, fmt.Errorf("serial %d is blank", i+1)
		}
		if seen[serial] {
			return nil, fmt.Errorf("duplicate serial %q in batch", serial)
		}
		seen[serial] = true
		in.Serials[i] = serial
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (purchased_at, invoice_number, supplier_id, buyer, model_id, total_value, attachment_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.PurchasedAt, invoice, in.SupplierID, in.Buyer, in.ModelID, in.TotalValue, in.AttachmentKey,
	)
	if err != nil {
		return nil, fmt.Errorf("creating purchase: %w", err)
	}

	purchaseID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting purchase id: %w", err)
	}

	for _, serial := range in.Serials {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO assets (serial, model_id, status_id, condition_id, sector_id, value, purchase_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			serial, in.ModelID, in.StatusID, in.ConditionID, in.SectorID, in.UnitValue, purchaseID,
		)
		if err != nil {
			return nil, fmt.Errorf("creating asset %q: %w", serial, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing purchase: %w", err)
	}

	return GetPurchase(ctx, db, purchaseID)
}

// GetPurchase returns a purchase by ID with supplier and model names joined.
func GetPurchase(ctx context.Context, db *sql.DB, id int64) (*model.Purchase, error) {
	p := &model.Purchase{}
	var buyer sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT p.id, p.purchased_at, p.invoice_number, p.supplier_id, p.buyer,
		        p.model_id, p.total_value, p.attachment_key, p.created_at,
		        COALESCE(s.name, ''), COALESCE(m.name, '')
		 FROM purchases p
		 LEFT JOIN suppliers s ON s.id = p.supplier_id
		 LEFT JOIN models m ON m.id = p.model_id
		 WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.PurchasedAt, &p.InvoiceNumber, &p.SupplierID, &buyer,
		&p.ModelID, &p.TotalValue, &p.AttachmentKey, &p.CreatedAt,
		&p.SupplierName, &p.ModelName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting purchase: %w", err)
	}
	p.Buyer = buyer.String
	return p, nil
}

// ListPurchases returns purchases newest first, limited to limit rows
// (0 means no limit), with supplier and model names joined.
func ListPurchases(ctx context.Context, db *sql.DB, limit int) ([]model.Purchase, error) {
	query := `SELECT p.id, p.purchased_at, p.invoice_number, p.supplier_id, p.buyer,
	                 p.model_id, p.total_value, p.attachment_key, p.created_at,
	                 COALESCE(s.name, ''), COALESCE(m.name, '')
	          FROM purchases p
	          LEFT JOIN suppliers s ON s.id = p.supplier_id
	          LEFT JOIN models m ON m.id = p.model_id
	          ORDER BY p.purchased_at DESC, p.id DESC`
	var args []any

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		var p model.Purchase
		var buyer sql.NullString
		if err := rows.Scan(&p.ID, &p.PurchasedAt, &p.InvoiceNumber, &p.SupplierID, &buyer,
			&p.ModelID, &p.TotalValue, &p.AttachmentKey, &p.CreatedAt,
			&p.SupplierName, &p.ModelName); err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}
		p.Buyer = buyer.String
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
