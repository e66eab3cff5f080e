package model

import "time"

// Asset represents a tracked physical IT item with a unique serial.
// The row holds the asset's current assignment; history lives in movements.
// Foreign keys other than the model are nullable because bulk-imported rows
// may arrive incomplete.
type Asset struct {
	ID          int64     `json:"id"`
	Serial      string    `json:"serial"`
	ModelID     int64     `json:"model_id"`
	StatusID    *int64    `json:"status_id"`
	ConditionID *int64    `json:"condition_id"`
	SectorID    *int64    `json:"sector_id"`
	EmployeeID  *int64    `json:"employee_id"` // nil means unassigned ("in stock")
	Value       *float64  `json:"value"`
	PurchaseID  *int64    `json:"purchase_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssetDetail is an asset together with the names behind its foreign keys,
// including the two-level model → brand join.
type AssetDetail struct {
	Asset

	ModelName     string `json:"model_name"`
	BrandName     string `json:"brand_name"`
	CategoryName  string `json:"category_name"`
	StatusName    string `json:"status_name,omitempty"`
	ConditionName string `json:"condition_name,omitempty"`
	SectorName    string `json:"sector_name,omitempty"`
	EmployeeName  string `json:"employee_name,omitempty"`
}

// DisplayName returns the "Brand Model (SN: serial)" label used in listings.
func (a AssetDetail) DisplayName() string {
	return a.BrandName + " " + a.ModelName + " (SN: " + a.Serial + ")"
}
