package model

// Lookup is a row in one of the small reference tables used to populate
// choices and normalize names to IDs (brands, categories, sectors, statuses,
// conditions, employees, suppliers).
type Lookup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
