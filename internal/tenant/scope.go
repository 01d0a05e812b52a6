package tenant

import "gorm.io/gorm"

// ForMunicipality returns a GORM scope that filters by municipality_id.
func ForMunicipality(municipalityID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("municipality_id = ?", municipalityID)
	}
}
