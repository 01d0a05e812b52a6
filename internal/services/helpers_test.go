package services

import (
	"testing"
	"time"

	"github.com/votopopular/civic-api/internal/identity"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"github.com/votopopular/civic-api/internal/testutil"
	"gorm.io/gorm"
)

type env struct {
	db           *gorm.DB
	audit        *AuditService
	antifraud    *Antifraud
	proposals    *ProposalService
	votes        *VoteService
	municipality *MunicipalityService
	auth         *AuthService
	users        *UserService
	complaints   *ComplaintService
	reports      *ReportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	audit := NewAuditService(db)
	sanitizer := NewSanitizer()
	af := NewAntifraud(NewGormAttemptStore(db), 5, 15*time.Minute, "test-key")
	return &env{
		db:           db,
		audit:        audit,
		antifraud:    af,
		proposals:    NewProposalService(db, audit, sanitizer),
		votes:        NewVoteService(db, audit),
		municipality: NewMunicipalityService(db, audit),
		auth:         NewAuthService(db, audit, af, []string{"root@example.com"}),
		users:        NewUserService(db, audit, af, sanitizer),
		complaints:   NewComplaintService(db, sanitizer),
		reports:      NewReportService(db),
	}
}

func actor(u *models.User) *tenant.Actor {
	return &tenant.Actor{
		User:     u,
		Identity: &identity.Identity{Subject: u.ID, Email: u.Email, EmailVerified: true},
		IP:       "203.0.113.7",
	}
}

// reload refreshes u so the actor reflects persisted changes.
func reload(t *testing.T, db *gorm.DB, u *models.User) *models.User {
	t.Helper()
	var fresh models.User
	if err := db.First(&fresh, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &fresh
}

func auditCount(t *testing.T, db *gorm.DB, action models.AuditAction) int64 {
	t.Helper()
	var n int64
	db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&n)
	return n
}
