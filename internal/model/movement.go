package model

import "time"

// Movement is an immutable history entry capturing an asset's *resulting*
// assignment after a move: the destination employee, sector and status, not
// the delta. Movements are never updated or deleted.
type Movement struct {
	ID         int64     `json:"id"`
	AssetID    int64     `json:"asset_id"`
	EmployeeID *int64    `json:"employee_id"` // nil means returned to stock
	SectorID   *int64    `json:"sector_id"`
	StatusID   *int64    `json:"status_id"`
	Note       string    `json:"note,omitempty"`
	MovedBy    *int64    `json:"moved_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined fields (not always populated).
	AssetSerial  string `json:"asset_serial,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
	SectorName   string `json:"sector_name,omitempty"`
	StatusName   string `json:"status_name,omitempty"`
	MovedByName  string `json:"moved_by_name,omitempty"`
}
