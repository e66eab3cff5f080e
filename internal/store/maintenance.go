package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/officeflow/officeflow/internal/model"
)

// OpenMaintenance creates an open repair ticket for an asset. If
// repairStatusID is non-nil, the asset's status is flipped to it in the same
// transaction (e.g. to an "in repair" status).
func OpenMaintenance(ctx context.Context, db *sql.DB, assetID int64, vendor, defect string, openedAt time.Time, repairStatusID *int64) (*model.Maintenance, error) {
	if vendor == "" {
		return nil, fmt.Errorf("vendor required")
	}
	if defect == "" {
		return nil, fmt.Errorf("defect description required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets WHERE id = ?`, assetID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking asset: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("asset not found")
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO maintenances (asset_id, vendor, defect, opened_at) VALUES (?, ?, ?, ?)`,
		assetID, vendor, defect, openedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating maintenance ticket: %w", err)
	}

	if repairStatusID != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE assets SET status_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			*repairStatusID, assetID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating asset status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing maintenance ticket: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetMaintenance(ctx, db, id)
}

// CloseMaintenance closes a ticket by setting its close date and cost. If
// stockStatusID is non-nil, the asset's status is flipped back to it (e.g.
// an "in stock" status) in the same transaction.
func CloseMaintenance(ctx context.Context, db *sql.DB, id int64, closedAt time.Time, cost float64, stockStatusID *int64) (*model.Maintenance, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var assetID int64
	var alreadyClosed sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT asset_id, closed_at FROM maintenances WHERE id = ?`, id,
	).Scan(&assetID, &alreadyClosed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("maintenance ticket not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting maintenance ticket: %w", err)
	}
	if alreadyClosed.Valid {
		return nil, fmt.Errorf("maintenance ticket already closed")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE maintenances SET closed_at = ?, cost = ? WHERE id = ?`,
		closedAt, cost, id,
	)
	if err != nil {
		return nil, fmt.Errorf("closing maintenance ticket: %w", err)
	}

	if stockStatusID != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE assets SET status_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			*stockStatusID, assetID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating asset status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing ticket close: %w", err)
	}

	return GetMaintenance(ctx, db, id)
}

// GetMaintenance returns a ticket by ID with the asset serial joined.
func GetMaintenance(ctx context.Context, db *sql.DB, id int64) (*model.Maintenance, error) {
	m := &model.Maintenance{}
	err := db.QueryRowContext(ctx,
		`SELECT mt.id, mt.asset_id, mt.vendor, mt.defect, mt.opened_at, mt.closed_at, mt.cost, a.serial
		 FROM maintenances mt
		 JOIN assets a ON a.id = mt.asset_id
		 WHERE mt.id = ?`, id,
	).Scan(&m.ID, &m.AssetID, &m.Vendor, &m.Defect, &m.OpenedAt, &m.ClosedAt, &m.Cost, &m.AssetSerial)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting maintenance ticket: %w", err)
	}
	return m, nil
}

// ListMaintenances returns tickets newest first, optionally only open ones.
func ListMaintenances(ctx context.Context, db *sql.DB, openOnly bool) ([]model.Maintenance, error) {
	query := `SELECT mt.id, mt.asset_id, mt.vendor, mt.defect, mt.opened_at, mt.closed_at, mt.cost, a.serial
	          FROM maintenances mt
	          JOIN assets a ON a.id = mt.asset_id`

	if openOnly {
		query += ` WHERE mt.closed_at IS NULL`
	}

	query += ` ORDER BY mt.opened_at DESC, mt.id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.Maintenance
	for rows.Next() {
		var m model.Maintenance
		if err := rows.Scan(&m.ID, &m.AssetID, &m.Vendor, &m.Defect, &m.OpenedAt, &m.ClosedAt, &m.Cost, &m.AssetSerial); err != nil {
			return nil, fmt.Errorf("scanning maintenance ticket: %w", err)
		}
		tickets = append(tickets, m)
	}
	return tickets, rows.Err()
}
