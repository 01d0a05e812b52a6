package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Branding holds optional theme fields. Nil leaves a field unchanged.
type Branding struct {
	PrimaryColor   *string
	SecondaryColor *string
	AccentColor    *string
	LogoURL        *string
	FontFamily     *string
}

type MunicipalityInput struct {
	ID    string
	Name  string
	State string
	Branding
}

type MunicipalityUpdate struct {
	Name  *string
	State *string
	Branding
}

type MunicipalityService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewMunicipalityService(db *gorm.DB, audit *AuditService) *MunicipalityService {
	return &MunicipalityService{db: db, audit: audit}
}

// Create provisions a tenant. Slugs are permanent, so a taken slug is a
// conflict even when the rest of the input differs.
func (s *MunicipalityService) Create(ctx context.Context, a *tenant.Actor, in MunicipalityInput) (*models.Municipality, error) {
	fields := map[string]string{}
	if !models.ValidSlug(in.ID) {
		fields["id"] = "must contain only lowercase letters, digits and hyphens"
	}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.State != "" && len(in.State) != 2 {
		fields["state"] = "must be a two-letter code"
	}
	validateBranding(in.Branding, fields)
	if len(fields) > 0 {
		return nil, apperr.ValidationFailed(fields)
	}

	m := &models.Municipality{ID: in.ID, Name: in.Name, State: in.State}
	applyBranding(m, in.Branding)

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return nil, apperr.Wrap(res.Error, "failed to create municipality")
	}
	if res.RowsAffected == 0 {
		return nil, ErrSlugTaken
	}

	slog.Info("municipality created", "municipality_id", m.ID, "user_id", a.UserID())
	s.audit.Record(ctx, nil, AuditEntry{
		UserID:         a.UserID(),
		MunicipalityID: m.ID,
		Action:         models.AuditMunicipalityCreated,
		Details:        "municipality " + m.ID,
		IP:             a.IP,
	})
	return m, nil
}

func (s *MunicipalityService) Update(ctx context.Context, a *tenant.Actor, id string, in MunicipalityUpdate) (*models.Municipality, error) {
	fields := map[string]string{}
	if in.Name != nil && *in.Name == "" {
		fields["name"] = "must not be empty"
	}
	if in.State != nil && *in.State != "" && len(*in.State) != 2 {
		fields["state"] = "must be a two-letter code"
	}
	validateBranding(in.Branding, fields)
	if len(fields) > 0 {
		return nil, apperr.ValidationFailed(fields)
	}

	return s.mutate(ctx, a, id, models.AuditMunicipalityUpdated, func(m *models.Municipality) {
		if in.Name != nil {
			m.Name = *in.Name
		}
		if in.State != nil {
			m.State = *in.State
		}
		applyBranding(m, in.Branding)
	})
}

func (s *MunicipalityService) UpdateTheme(ctx context.Context, a *tenant.Actor, id string, b Branding) (models.Theme, error) {
	fields := map[string]string{}
	validateBranding(b, fields)
	if len(fields) > 0 {
		return models.Theme{}, apperr.ValidationFailed(fields)
	}

	m, err := s.mutate(ctx, a, id, models.AuditThemeUpdated, func(m *models.Municipality) {
		applyBranding(m, b)
	})
	if err != nil {
		return models.Theme{}, err
	}
	return m.Theme(), nil
}

func (s *MunicipalityService) mutate(ctx context.Context, a *tenant.Actor, id string, action models.AuditAction, apply func(*models.Municipality)) (*models.Municipality, error) {
	var m models.Municipality
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMunicipalityNotFound
			}
			return apperr.Wrap(err, "failed to load municipality")
		}
		apply(&m)
		if err := tx.Save(&m).Error; err != nil {
			return apperr.Wrap(err, "failed to update municipality")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, AuditEntry{
		UserID:         a.UserID(),
		MunicipalityID: m.ID,
		Action:         action,
		Details:        "municipality " + m.ID,
		IP:             a.IP,
	})
	return &m, nil
}

func (s *MunicipalityService) Get(ctx context.Context, id string) (*models.Municipality, error) {
	var m models.Municipality
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMunicipalityNotFound
		}
		return nil, apperr.Wrap(err, "failed to load municipality")
	}
	return &m, nil
}

func (s *MunicipalityService) List(ctx context.Context) ([]models.Municipality, error) {
	var out []models.Municipality
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list municipalities")
	}
	return out, nil
}

// Theme returns the branding of a municipality with defaults applied.
func (s *MunicipalityService) Theme(ctx context.Context, id string) (models.Theme, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return models.Theme{}, err
	}
	return m.Theme(), nil
}

// EnsureSeed creates seed municipalities that do not exist yet. Existing
// rows are left untouched.
func (s *MunicipalityService) EnsureSeed(ctx context.Context, file *tenant.SeedFile) (int, error) {
	created := 0
	for _, sm := range file.Municipalities {
		if !models.ValidSlug(sm.ID) {
			return created, apperr.ValidationFailed(map[string]string{"id": "invalid seed slug " + sm.ID})
		}
		m := models.Municipality{
			ID:             sm.ID,
			Name:           sm.Name,
			State:          sm.State,
			LogoURL:        sm.LogoURL,
			PrimaryColor:   sm.PrimaryColor,
			SecondaryColor: sm.SecondaryColor,
			AccentColor:    sm.AccentColor,
			FontFamily:     sm.FontFamily,
		}
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
		if res.Error != nil {
			return created, apperr.Wrap(res.Error, "failed to seed municipality")
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func validateBranding(b Branding, fields map[string]string) {
	for name, v := range map[string]*string{
		"primaryColor":   b.PrimaryColor,
		"secondaryColor": b.SecondaryColor,
		"accentColor":    b.AccentColor,
	} {
		if v != nil && *v != "" && !models.ValidColor(*v) {
			fields[name] = "must be a #RRGGBB colour"
		}
	}
	if b.LogoURL != nil && *b.LogoURL != "" && !models.ValidLogoURL(*b.LogoURL) {
		fields["logoUrl"] = "must be an absolute URL"
	}
}

func applyBranding(m *models.Municipality, b Branding) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&m.PrimaryColor, b.PrimaryColor)
	set(&m.SecondaryColor, b.SecondaryColor)
	set(&m.AccentColor, b.AccentColor)
	set(&m.LogoURL, b.LogoURL)
	set(&m.FontFamily, b.FontFamily)
}
