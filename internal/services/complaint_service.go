package services

import (
	"context"
	"errors"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
)

const (
	ComplaintMin = 10
	ComplaintMax = 2000
)

type ComplaintService struct {
	db        *gorm.DB
	sanitizer *Sanitizer
}

func NewComplaintService(db *gorm.DB, sanitizer *Sanitizer) *ComplaintService {
	return &ComplaintService{db: db, sanitizer: sanitizer}
}

// Submit files a complaint in the actor's municipality.
func (s *ComplaintService) Submit(ctx context.Context, a *tenant.Actor, text string) (*models.Complaint, error) {
	municipalityID := a.MunicipalityID()
	if municipalityID == "" {
		return nil, ErrForbidden
	}
	text = s.sanitizer.Text(text)
	if n := textLength(text); n < ComplaintMin || n > ComplaintMax {
		return nil, apperr.ValidationFailed(map[string]string{"text": "must be between 10 and 2000 characters"})
	}

	c := &models.Complaint{
		UserID:         a.UserID(),
		MunicipalityID: municipalityID,
		Text:           text,
		Status:         models.ComplaintOpen,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to submit complaint")
	}
	return c, nil
}

func (s *ComplaintService) ListForAdmin(ctx context.Context, a *tenant.Actor, municipalityID string, status models.ComplaintStatus) ([]models.Complaint, error) {
	scope, err := moderationScope(a, municipalityID)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(tenant.ForMunicipality(scope))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Complaint
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list complaints")
	}
	return out, nil
}

// UpdateStatus triages a complaint. Complaints of other municipalities are
// reported as absent.
func (s *ComplaintService) UpdateStatus(ctx context.Context, a *tenant.Actor, id string, status models.ComplaintStatus, municipalityID string) (*models.Complaint, error) {
	if !status.Valid() {
		return nil, apperr.ValidationFailed(map[string]string{"status": "must be open, in_review or closed"})
	}
	scope, err := moderationScope(a, municipalityID)
	if err != nil {
		return nil, err
	}

	var c models.Complaint
	if err := s.db.WithContext(ctx).Scopes(tenant.ForMunicipality(scope)).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, apperr.Wrap(err, "failed to load complaint")
	}
	if err := s.db.WithContext(ctx).Model(&c).Update("status", status).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to update complaint")
	}
	return &c, nil
}
