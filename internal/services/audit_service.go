package services

import (
	"context"
	"log/slog"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
)

type AuditEntry struct {
	UserID         string
	MunicipalityID string
	Action         models.AuditAction
	Details        string
	IP             string
}

// AuditService appends audit entries. Record never fails the caller.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record writes through db, which may be a transaction handle. Failures are
// logged and swallowed.
func (s *AuditService) Record(ctx context.Context, db *gorm.DB, e AuditEntry) {
	if db == nil {
		db = s.db
	}
	row := models.AuditLog{
		UserID:         optional(e.UserID),
		MunicipalityID: optional(e.MunicipalityID),
		Action:         e.Action,
		Details:        e.Details,
		IPAddress:      truncate(e.IP, 45),
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		slog.Error("audit write failed",
			"action", string(e.Action),
			"user_id", e.UserID,
			"municipality_id", e.MunicipalityID,
			"error", err,
		)
	}
}

// RecordActor fills user, municipality and address from the actor.
func (s *AuditService) RecordActor(ctx context.Context, db *gorm.DB, a *tenant.Actor, action models.AuditAction, details string) {
	s.Record(ctx, db, AuditEntry{
		UserID:         a.UserID(),
		MunicipalityID: a.MunicipalityID(),
		Action:         action,
		Details:        details,
		IP:             a.IP,
	})
}

// List returns newest entries first. City admins see their own municipality;
// super admins see everything.
func (s *AuditService) List(ctx context.Context, a *tenant.Actor, limit, offset int) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	switch {
	case a.Role() == models.RoleSuperAdmin:
	case a.Role().AtLeast(models.RoleCityAdmin) && a.MunicipalityID() != "":
		q = q.Scopes(tenant.ForMunicipality(a.MunicipalityID()))
	default:
		return nil, ErrForbidden
	}

	var rows []models.AuditLog
	if err := q.Order("created_at DESC").Limit(clampLimit(limit)).Offset(max(offset, 0)).Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list audit log")
	}
	return rows, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}
