package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/officeflow/officeflow/internal/model"
)

// lookupTables whitelists the reference tables reachable through the generic
// lookup CRUD. All share the same (id, name) shape.
var lookupTables = map[string]bool{
	"brands":     true,
	"categories": true,
	"sectors":    true,
	"statuses":   true,
	"conditions": true,
	"employees":  true,
	"suppliers":  true,
}

// IsLookupTable reports whether name is one of the managed lookup tables.
func IsLookupTable(name string) bool {
	return lookupTables[name]
}

func checkLookupTable(table string) error {
	if !lookupTables[table] {
		return fmt.Errorf("unknown lookup table %q", table)
	}
	return nil
}

// CreateLookup inserts a new row into the given lookup table.
func CreateLookup(ctx context.Context, db *sql.DB, table, name string) (*model.Lookup, error) {
	if err := checkLookupTable(table); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name) VALUES (?)`, table), name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s entry: %w", table, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting %s id: %w", table, err)
	}

	return GetLookup(ctx, db, table, id)
}

// GetLookup returns a lookup row by ID.
func GetLookup(ctx context.Context, db *sql.DB, table string, id int64) (*model.Lookup, error) {
	if err := checkLookupTable(table); err != nil {
		return nil, err
	}

	l := &model.Lookup{}
	err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, name FROM %s WHERE id = ?`, table), id,
	).Scan(&l.ID, &l.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s entry: %w", table, err)
	}
	return l, nil
}

// ListLookups returns all rows of a lookup table ordered by name.
func ListLookups(ctx context.Context, db *sql.DB, table string) ([]model.Lookup, error) {
	if err := checkLookupTable(table); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, table),
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var lookups []model.Lookup
	for rows.Next() {
		var l model.Lookup
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scanning %s entry: %w", table, err)
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

// UpdateLookup renames a lookup row.
func UpdateLookup(ctx context.Context, db *sql.DB, table string, id int64, name string) error {
	if err := checkLookupTable(table); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = ? WHERE id = ?`, table), name, id,
	)
	if err != nil {
		return fmt.Errorf("updating %s entry: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s entry not found", table)
	}
	return nil
}

// DeleteLookup removes a lookup row. Fails if the row is still referenced.
func DeleteLookup(ctx context.Context, db *sql.DB, table string, id int64) error {
	if err := checkLookupTable(table); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s entry: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s entry not found", table)
	}
	return nil
}
