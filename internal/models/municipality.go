package models

import "time"

const (
	DefaultPrimaryColor   = "#0066cc"
	DefaultSecondaryColor = "#f0f0f0"
	DefaultAccentColor    = "#ff6b35"
	DefaultFontFamily     = "'Inter', sans-serif"
)

// Municipality is a tenant. The slug id is permanent: it appears in public URLs and theme lookups.
type Municipality struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	Name           string    `gorm:"not null;size:255" json:"name"`
	State          string    `gorm:"size:2" json:"state,omitempty"`
	LogoURL        string    `gorm:"type:text" json:"logo_url"`
	PrimaryColor   string    `gorm:"size:7" json:"primary_color"`
	SecondaryColor string    `gorm:"size:7" json:"secondary_color"`
	AccentColor    string    `gorm:"size:7" json:"accent_color"`
	FontFamily     string    `gorm:"size:255" json:"font_family"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Theme is the branding projection of a municipality.
type Theme struct {
	MunicipalityID string `json:"municipality_id"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	LogoURL        string `json:"logo_url"`
	FontFamily     string `json:"font_family"`
}

// Theme fills unset branding fields with the platform defaults.
func (m *Municipality) Theme() Theme {
	t := Theme{
		MunicipalityID: m.ID,
		PrimaryColor:   m.PrimaryColor,
		SecondaryColor: m.SecondaryColor,
		AccentColor:    m.AccentColor,
		LogoURL:        m.LogoURL,
		FontFamily:     m.FontFamily,
	}
	if t.PrimaryColor == "" {
		t.PrimaryColor = DefaultPrimaryColor
	}
	if t.SecondaryColor == "" {
		t.SecondaryColor = DefaultSecondaryColor
	}
	if t.AccentColor == "" {
		t.AccentColor = DefaultAccentColor
	}
	if t.FontFamily == "" {
		t.FontFamily = DefaultFontFamily
	}
	return t
}
