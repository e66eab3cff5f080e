package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/officeflow/officeflow/internal/model"
)

// MoveDest describes the destination of a batch move. Each field is either a
// new value or marked "keep current", in which case the asset's own pre-move
// value is used. A nil EmployeeID without KeepEmployee means "unassign /
// return to stock".
type MoveDest struct {
	EmployeeID   *int64
	KeepEmployee bool
	SectorID     *int64
	KeepSector   bool
	StatusID     *int64
	KeepStatus   bool
}

// BatchError reports a single asset's failure within a batch move.
type BatchError struct {
	AssetID int64  `json:"asset_id"`
	Error   string `json:"error"`
}

// BatchResult summarizes a batch move: how many assets moved and which failed.
type BatchResult struct {
	Moved  int          `json:"moved"`
	Errors []BatchError `json:"errors,omitempty"`
}

// MoveAsset applies a change of assignment to a single asset: it appends a
// movement record holding the resulting employee/sector/status and updates
// the asset row to the same triple, in one transaction, so the asset's
// current state always equals its most recent history entry.
func MoveAsset(ctx context.Context, db *sql.DB, assetID int64, employeeID *int64, sectorID, statusID int64, note string, movedBy *int64) (*model.Asset, error) {
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

	// History first, then the current-state row, same triple in both.
	var noteVal any
	if note != "" {
		noteVal = note
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO movements (asset_id, employee_id, sector_id, status_id, note, moved_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		assetID, employeeID, sectorID, statusID, noteVal, movedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording movement: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE assets SET employee_id = ?, sector_id = ?, status_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		employeeID, sectorID, statusID, assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating asset state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing movement: %w", err)
	}

	return GetAsset(ctx, db, assetID)
}

// MoveAssetBatch moves many assets at once. For each asset, destination
// fields marked "keep current" resolve to that asset's own pre-move value.
// Assets are processed in the order given, without deduplication: a repeated
// id is moved twice, the second move applying on top of the first. Per-asset
// failures are accumulated and do not stop the remaining assets; assets
// already moved are not rolled back.
func MoveAssetBatch(ctx context.Context, db *sql.DB, assetIDs []int64, dest MoveDest, note string, movedBy *int64) (*BatchResult, error) {
	if len(assetIDs) == 0 {
		return nil, fmt.Errorf("no assets selected")
	}
	if !dest.KeepSector && dest.SectorID == nil {
		return nil, fmt.Errorf("destination sector required")
	}
	if !dest.KeepStatus && dest.StatusID == nil {
		return nil, fmt.Errorf("destination status required")
	}

	result := &BatchResult{}
	for _, assetID := range assetIDs {
		if err := moveOneOfBatch(ctx, db, assetID, dest, note, movedBy); err != nil {
			result.Errors = append(result.Errors, BatchError{AssetID: assetID, Error: err.Error()})
			continue
		}
		result.Moved++
	}
	return result, nil
}

// moveOneOfBatch resolves the effective destination for one asset and moves it.
func moveOneOfBatch(ctx context.Context, db *sql.DB, assetID int64, dest MoveDest, note string, movedBy *int64) error {
	asset, err := GetAsset(ctx, db, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return fmt.Errorf("asset not found")
	}

	employeeID := dest.EmployeeID
	if dest.KeepEmployee {
		employeeID = asset.EmployeeID
	}

	sectorID := dest.SectorID
	if dest.KeepSector {
		sectorID = asset.SectorID
	}
	// "Keep current" on a required field may resolve to nothing when the
	// asset row is incomplete (e.g. bulk-imported). Reject instead of
	// writing null.
	if sectorID == nil {
		return fmt.Errorf("sector required: asset has no current sector to keep")
	}

	statusID := dest.StatusID
	if dest.KeepStatus {
		statusID = asset.StatusID
	}
	if statusID == nil {
		return fmt.Errorf("status required: asset has no current status to keep")
	}

	_, err = MoveAsset(ctx, db, assetID, employeeID, *sectorID, *statusID, note, movedBy)
	return err
}

// LatestMovement returns the most recent movement for an asset, or nil if the
// asset has never moved.
func LatestMovement(ctx context.Context, db *sql.DB, assetID int64) (*model.Movement, error) {
	m := &model.Movement{}
	var note sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, asset_id, employee_id, sector_id, status_id, note, moved_by, created_at
		 FROM movements WHERE asset_id = ?
		 ORDER BY id DESC LIMIT 1`, assetID,
	).Scan(&m.ID, &m.AssetID, &m.EmployeeID, &m.SectorID, &m.StatusID, &note, &m.MovedBy, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest movement: %w", err)
	}
	m.Note = note.String
	return m, nil
}

// ListMovements returns movement history newest first, optionally filtered by
// asset, with the resulting state resolved to names.
func ListMovements(ctx context.Context, db *sql.DB, assetID int64) ([]model.Movement, error) {
	query := `SELECT mv.id, mv.asset_id, mv.employee_id, mv.sector_id, mv.status_id,
	                 mv.note, mv.moved_by, mv.created_at,
	                 a.serial,
	                 COALESCE(e.name, ''), COALESCE(se.name, ''), COALESCE(st.name, ''),
	                 COALESCE(u.username, '')
	          FROM movements mv
	          JOIN assets a ON a.id = mv.asset_id
	          LEFT JOIN employees e ON e.id = mv.employee_id
	          LEFT JOIN sectors se ON se.id = mv.sector_id
	          LEFT JOIN statuses st ON st.id = mv.status_id
	          LEFT JOIN users u ON u.id = mv.moved_by`
	var args []any

	if assetID > 0 {
		query += ` WHERE mv.asset_id = ?`
		args = append(args, assetID)
	}

	query += ` ORDER BY mv.created_at DESC, mv.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		var note sql.NullString
		if err := rows.Scan(&m.ID, &m.AssetID, &m.EmployeeID, &m.SectorID, &m.StatusID,
			&note, &m.MovedBy, &m.CreatedAt,
			&m.AssetSerial, &m.EmployeeName, &m.SectorName, &m.StatusName, &m.MovedByName); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		m.Note = note.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
