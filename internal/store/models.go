package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/officeflow/officeflow/internal/model"
)

// CreateModel creates a new asset model.
func CreateModel(ctx context.Context, db *sql.DB, name string, brandID, categoryID int64) (*model.AssetModel, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO models (name, brand_id, category_id) VALUES (?, ?, ?)`,
		name, brandID, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating model: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting model id: %w", err)
	}

	return GetModel(ctx, db, id)
}

// GetModel returns a model by ID with its brand and category names.
func GetModel(ctx context.Context, db *sql.DB, id int64) (*model.AssetModel, error) {
	m := &model.AssetModel{}
	err := db.QueryRowContext(ctx,
		`SELECT m.id, m.name, m.brand_id, m.category_id, b.name, c.name
		 FROM models m
		 JOIN brands b ON b.id = m.brand_id
		 JOIN categories c ON c.id = m.category_id
		 WHERE m.id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.BrandID, &m.CategoryID, &m.BrandName, &m.CategoryName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting model: %w", err)
	}
	return m, nil
}

// ListModels returns all models, optionally filtered by category.
func ListModels(ctx context.Context, db *sql.DB, categoryID int64) ([]model.AssetModel, error) {
	query := `SELECT m.id, m.name, m.brand_id, m.category_id, b.name, c.name
	          FROM models m
	          JOIN brands b ON b.id = m.brand_id
	          JOIN categories c ON c.id = m.category_id`
	var args []any

	if categoryID > 0 {
		query += ` WHERE m.category_id = ?`
		args = append(args, categoryID)
	}

	query += ` ORDER BY b.name, m.name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer rows.Close()

	var models []model.AssetModel
	for rows.Next() {
		var m model.AssetModel
		if err := rows.Scan(&m.ID, &m.Name, &m.BrandID, &m.CategoryID, &m.BrandName, &m.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// UpdateModel updates a model's name, brand, and category.
func UpdateModel(ctx context.Context, db *sql.DB, id int64, name string, brandID, categoryID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE models SET name = ?, brand_id = ?, category_id = ? WHERE id = ?`,
		name, brandID, categoryID, id,
	)
	if err != nil {
		return fmt.Errorf("updating model: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("model not found")
	}
	return nil
}

// DeleteModel removes a model. Fails if assets still reference it.
func DeleteModel(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM models WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting model: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("model not found")
	}
	return nil
}
