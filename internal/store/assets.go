package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/officeflow/officeflow/internal/model"
)

const assetColumns = `id, serial, model_id, status_id, condition_id, sector_id,
	employee_id, value, purchase_id, created_at, updated_at`

// assetDetailQuery joins an asset with the names behind its foreign keys,
// including the two-level model → brand join.
const assetDetailQuery = `
	SELECT a.id, a.serial, a.model_id, a.status_id, a.condition_id, a.sector_id,
	       a.employee_id, a.value, a.purchase_id, a.created_at, a.updated_at,
	       m.name, b.name, c.name,
	       COALESCE(st.name, ''), COALESCE(co.name, ''),
	       COALESCE(se.name, ''), COALESCE(e.name, '')
	FROM assets a
	JOIN models m ON m.id = a.model_id
	JOIN brands b ON b.id = m.brand_id
	JOIN categories c ON c.id = m.category_id
	LEFT JOIN statuses st ON st.id = a.status_id
	LEFT JOIN conditions co ON co.id = a.condition_id
	LEFT JOIN sectors se ON se.id = a.sector_id
	LEFT JOIN employees e ON e.id = a.employee_id`

// CreateAsset creates a new asset. Serial, model, status, condition, and
// sector are required; employee is optional (nil means in stock).
func CreateAsset(ctx context.Context, db *sql.DB, serial string, modelID, statusID, conditionID, sectorID int64, employeeID *int64, value *float64, purchaseID *int64) (*model.Asset, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO assets (serial, model_id, status_id, condition_id, sector_id, employee_id, value, purchase_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		serial, modelID, statusID, conditionID, sectorID, employeeID, value, purchaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting asset id: %w", err)
	}

	return GetAsset(ctx, db, id)
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, db *sql.DB, id int64) (*model.Asset, error) {
	a := &model.Asset{}
	err := db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id,
	).Scan(&a.ID, &a.Serial, &a.ModelID, &a.StatusID, &a.ConditionID, &a.SectorID,
		&a.EmployeeID, &a.Value, &a.PurchaseID, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// GetAssetBySerial returns an asset by its serial number.
func GetAssetBySerial(ctx context.Context, db *sql.DB, serial string) (*model.Asset, error) {
	a := &model.Asset{}
	err := db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE serial = ?`, serial,
	).Scan(&a.ID, &a.Serial, &a.ModelID, &a.StatusID, &a.ConditionID, &a.SectorID,
		&a.EmployeeID, &a.Value, &a.PurchaseID, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset by serial: %w", err)
	}
	return a, nil
}

// GetAssetDetail returns an asset with all referenced names resolved.
func GetAssetDetail(ctx context.Context, db *sql.DB, id int64) (*model.AssetDetail, error) {
	d := &model.AssetDetail{}
	err := db.QueryRowContext(ctx, assetDetailQuery+` WHERE a.id = ?`, id).Scan(
		&d.ID, &d.Serial, &d.ModelID, &d.StatusID, &d.ConditionID, &d.SectorID,
		&d.EmployeeID, &d.Value, &d.PurchaseID, &d.CreatedAt, &d.UpdatedAt,
		&d.ModelName, &d.BrandName, &d.CategoryName,
		&d.StatusName, &d.ConditionName, &d.SectorName, &d.EmployeeName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset detail: %w", err)
	}
	return d, nil
}

// ListAssets returns all assets with resolved names, optionally filtered by
// category and/or status.
func ListAssets(ctx context.Context, db *sql.DB, categoryID, statusID int64) ([]model.AssetDetail, error) {
	query := assetDetailQuery + ` WHERE 1=1`
	var args []any

	if categoryID > 0 {
		query += ` AND m.category_id = ?`
		args = append(args, categoryID)
	}
	if statusID > 0 {
		query += ` AND a.status_id = ?`
		args = append(args, statusID)
	}

	query += ` ORDER BY a.serial`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.AssetDetail
	for rows.Next() {
		var d model.AssetDetail
		if err := rows.Scan(
			&d.ID, &d.Serial, &d.ModelID, &d.StatusID, &d.ConditionID, &d.SectorID,
			&d.EmployeeID, &d.Value, &d.PurchaseID, &d.CreatedAt, &d.UpdatedAt,
			&d.ModelName, &d.BrandName, &d.CategoryName,
			&d.StatusName, &d.ConditionName, &d.SectorName, &d.EmployeeName,
		); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, d)
	}
	return assets, rows.Err()
}

// ListAssetsByPurchase returns the assets created by a purchase.
func ListAssetsByPurchase(ctx context.Context, db *sql.DB, purchaseID int64) ([]model.Asset, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE purchase_id = ? ORDER BY serial`,
		purchaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing purchase assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Serial, &a.ModelID, &a.StatusID, &a.ConditionID, &a.SectorID,
			&a.EmployeeID, &a.Value, &a.PurchaseID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// UpdateAsset updates an asset's metadata. Assignment fields (employee,
// sector, status) are changed through MoveAsset so that history stays in sync.
func UpdateAsset(ctx context.Context, db *sql.DB, id, modelID int64, conditionID *int64, value *float64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE assets SET model_id = ?, condition_id = ?, value = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		modelID, conditionID, value, id,
	)
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset not found")
	}
	return nil
}

// DeleteAsset removes an asset. Fails if movements or maintenances still
// reference it (history is never cascaded).
func DeleteAsset(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM assets WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset not found")
	}
	return nil
}
