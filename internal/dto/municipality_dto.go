package dto

type BrandingInput struct {
	PrimaryColor   *string `json:"primaryColor" validate:"omitempty,rgbhex"`
	SecondaryColor *string `json:"secondaryColor" validate:"omitempty,rgbhex"`
	AccentColor    *string `json:"accentColor" validate:"omitempty,rgbhex"`
	LogoURL        *string `json:"logoUrl" validate:"omitempty,http_url"`
	FontFamily     *string `json:"fontFamily" validate:"omitempty,max=255"`
}

// CreateMunicipalityRequest leaves slug validation to the service so that
// an invalid slug and a taken slug are reported by the same code path.
type CreateMunicipalityRequest struct {
	ID    string `json:"id" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=255"`
	State string `json:"state" validate:"omitempty,len=2"`
	BrandingInput
}

type UpdateMunicipalityRequest struct {
	ID    string  `json:"id" validate:"required,slug"`
	Name  *string `json:"name" validate:"omitempty,max=255"`
	State *string `json:"state" validate:"omitempty,len=2"`
	BrandingInput
}

type MunicipalityRequest struct {
	ID string `json:"id" validate:"required,slug"`
}

type ThemeRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"required,slug"`
}

type UpdateThemeRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"required,slug"`
	BrandingInput
}
