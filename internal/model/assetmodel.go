package model

// AssetModel represents a hardware model (e.g. a specific laptop line)
// belonging to a brand and a category.
type AssetModel struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	BrandID    int64  `json:"brand_id"`
	CategoryID int64  `json:"category_id"`

	// Joined fields (not always populated).
	BrandName    string `json:"brand_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// DisplayName returns the brand and model name concatenated, the form shown
// in dropdowns and listings.
func (m AssetModel) DisplayName() string {
	if m.BrandName == "" {
		return m.Name
	}
	return m.BrandName + " " + m.Name
}
