package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
)

const (
	TitleMin       = 5
	TitleMax       = 255
	DescriptionMin = 10
	DescriptionMax = 5000
	ReasonMax      = 1000
)

type ProposalService struct {
	db        *gorm.DB
	audit     *AuditService
	sanitizer *Sanitizer
}

func NewProposalService(db *gorm.DB, audit *AuditService, sanitizer *Sanitizer) *ProposalService {
	return &ProposalService{db: db, audit: audit, sanitizer: sanitizer}
}

// Create stores a pending proposal in the author's own municipality.
func (s *ProposalService) Create(ctx context.Context, a *tenant.Actor, title, description string) (*models.Proposal, error) {
	municipalityID := a.MunicipalityID()
	if municipalityID == "" {
		return nil, ErrForbidden
	}

	title = s.sanitizer.Text(title)
	description = s.sanitizer.Text(description)
	fields := map[string]string{}
	if n := textLength(title); n < TitleMin || n > TitleMax {
		fields["title"] = "must be between 5 and 255 characters"
	}
	if n := textLength(description); n < DescriptionMin || n > DescriptionMax {
		fields["description"] = "must be between 10 and 5000 characters"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFailed(fields)
	}

	p := &models.Proposal{
		MunicipalityID: municipalityID,
		AuthorID:       a.UserID(),
		Title:          title,
		Description:    description,
		Status:         models.ProposalPending,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to create proposal")
	}

	slog.Info("proposal created", "municipality_id", municipalityID, "user_id", a.UserID(), "proposal_id", p.PublicID)
	s.audit.RecordActor(ctx, nil, a, models.AuditProposalCreated, "proposal "+p.PublicID)
	return p, nil
}

func (s *ProposalService) Approve(ctx context.Context, a *tenant.Actor, publicID, municipalityID string) (*models.Proposal, error) {
	return s.transition(ctx, a, publicID, municipalityID, models.ProposalApproved, "")
}

func (s *ProposalService) Reject(ctx context.Context, a *tenant.Actor, publicID, municipalityID, reason string) (*models.Proposal, error) {
	reason = s.sanitizer.Text(reason)
	if textLength(reason) > ReasonMax {
		return nil, apperr.ValidationFailed(map[string]string{"reason": "must be at most 1000 characters"})
	}
	return s.transition(ctx, a, publicID, municipalityID, models.ProposalRejected, reason)
}

func (s *ProposalService) Archive(ctx context.Context, a *tenant.Actor, publicID, municipalityID string) (*models.Proposal, error) {
	return s.transition(ctx, a, publicID, municipalityID, models.ProposalArchived, "")
}

var transitionAudit = map[models.ProposalStatus]models.AuditAction{
	models.ProposalApproved: models.AuditProposalApproved,
	models.ProposalRejected: models.AuditProposalRejected,
	models.ProposalArchived: models.AuditProposalArchived,
}

// transition moves a proposal to next after the tenant check. The update is
// conditional on the prior status, so a concurrent archive cannot be undone.
func (s *ProposalService) transition(ctx context.Context, a *tenant.Actor, publicID, requested string, next models.ProposalStatus, reason string) (*models.Proposal, error) {
	scope, err := moderationScope(a, requested)
	if err != nil {
		return nil, err
	}

	var p models.Proposal
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("public_id = ?", publicID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProposalNotFound
			}
			return apperr.Wrap(err, "failed to load proposal")
		}
		if p.MunicipalityID != scope {
			return ErrForbidden
		}
		if !p.Status.CanTransition(next) {
			return ErrInvalidTransition
		}

		updates := map[string]interface{}{"status": next}
		if next == models.ProposalRejected {
			updates["reject_reason"] = reason
		}
		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status IN ?", p.ID, sourcesOf(next)).
			Updates(updates)
		if res.Error != nil {
			return apperr.Wrap(res.Error, "failed to update proposal")
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return tx.First(&p, p.ID).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("proposal status changed", "municipality_id", p.MunicipalityID, "user_id", a.UserID(), "proposal_id", p.PublicID, "status", string(next))
	s.audit.Record(ctx, nil, AuditEntry{
		UserID:         a.UserID(),
		MunicipalityID: p.MunicipalityID,
		Action:         transitionAudit[next],
		Details:        "proposal " + p.PublicID,
		IP:             a.IP,
	})
	return &p, nil
}

func sourcesOf(next models.ProposalStatus) []models.ProposalStatus {
	all := []models.ProposalStatus{models.ProposalPending, models.ProposalApproved, models.ProposalRejected, models.ProposalArchived}
	out := make([]models.ProposalStatus, 0, len(all))
	for _, s := range all {
		if s.CanTransition(next) {
			out = append(out, s)
		}
	}
	return out
}

// moderationScope resolves the municipality an administrative actor acts on.
// Super admins are unbound and must name it; everyone else is confined to
// their own and may not name another.
func moderationScope(a *tenant.Actor, requested string) (string, error) {
	if !a.Authenticated() {
		return "", ErrUnauthenticated
	}
	if a.Role() == models.RoleSuperAdmin {
		if requested == "" {
			return "", apperr.ValidationFailed(map[string]string{"municipalityId": "required for platform administrators"})
		}
		return requested, nil
	}
	own := a.MunicipalityID()
	if own == "" || (requested != "" && requested != own) {
		return "", ErrForbidden
	}
	return own, nil
}

// Get returns an approved proposal to anyone. Other statuses are visible only
// to the author and to administrators of the same municipality.
func (s *ProposalService) Get(ctx context.Context, a *tenant.Actor, publicID string) (*models.Proposal, error) {
	var p models.Proposal
	if err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, apperr.Wrap(err, "failed to load proposal")
	}
	if p.Status == models.ProposalApproved || canModerate(a, p.MunicipalityID) || (a.Authenticated() && p.AuthorID == a.UserID()) {
		return &p, nil
	}
	return nil, ErrProposalNotFound
}

func canModerate(a *tenant.Actor, municipalityID string) bool {
	if a.Role() == models.RoleSuperAdmin {
		return true
	}
	return a.Role().AtLeast(models.RoleCityAdmin) && a.SameMunicipality(municipalityID)
}

// ListForCitizens returns the approved proposals of one municipality.
func (s *ProposalService) ListForCitizens(ctx context.Context, municipalityID string) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.db.WithContext(ctx).
		Scopes(tenant.ForMunicipality(municipalityID)).
		Where("status = ?", models.ProposalApproved).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list proposals")
	}
	return out, nil
}

// ListMine returns every proposal the actor authored, in any status.
func (s *ProposalService) ListMine(ctx context.Context, a *tenant.Actor) ([]models.Proposal, error) {
	if !a.Authenticated() {
		return nil, ErrUnauthenticated
	}
	var out []models.Proposal
	if err := s.db.WithContext(ctx).Where("author_id = ?", a.UserID()).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list proposals")
	}
	return out, nil
}

// ListForAdmin returns every proposal of the actor's municipality, optionally
// filtered by status.
func (s *ProposalService) ListForAdmin(ctx context.Context, a *tenant.Actor, municipalityID string, status models.ProposalStatus) ([]models.Proposal, error) {
	scope, err := moderationScope(a, municipalityID)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(tenant.ForMunicipality(scope))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Proposal
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list proposals")
	}
	return out, nil
}
