package model

import "time"

// Maintenance represents a repair ticket for an asset. A ticket is open while
// closed_at is null; closing sets the cost and close date.
type Maintenance struct {
	ID       int64      `json:"id"`
	AssetID  int64      `json:"asset_id"`
	Vendor   string     `json:"vendor"`
	Defect   string     `json:"defect"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
	Cost     *float64   `json:"cost,omitempty"`

	// Joined fields (not always populated).
	AssetSerial string `json:"asset_serial,omitempty"`
}

// Open reports whether the ticket is still open.
func (m Maintenance) Open() bool {
	return m.ClosedAt == nil
}
