package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/identity"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
)

// CurrentUser is the projection returned to the signed-in user.
type CurrentUser struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	Role           models.Role `json:"role"`
	MunicipalityID *string     `json:"municipality_id"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
}

func NewCurrentUser(u *models.User) *CurrentUser {
	return &CurrentUser{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		MunicipalityID: u.MunicipalityID,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
	}
}

// AuthService maps verified identities onto persisted users.
type AuthService struct {
	db          *gorm.DB
	audit       *AuditService
	antifraud   *Antifraud
	superAdmins map[string]bool
}

func NewAuthService(db *gorm.DB, audit *AuditService, antifraud *Antifraud, superAdminEmails []string) *AuthService {
	admins := make(map[string]bool, len(superAdminEmails))
	for _, e := range superAdminEmails {
		admins[strings.ToLower(e)] = true
	}
	return &AuthService{db: db, audit: audit, antifraud: antifraud, superAdmins: admins}
}

// Sync creates or refreshes the user for the verified identity on the
// request. Caller input never supplies the id or email.
func (s *AuthService) Sync(ctx context.Context, a *tenant.Actor) (*CurrentUser, error) {
	id := a.Identity
	if id == nil {
		return nil, ErrUnauthenticated
	}
	if id.Email == "" {
		return nil, apperr.ValidationFailed(map[string]string{"email": "identity has no email"})
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&user, "id = ?", id.Subject).Error
		switch {
		case err == nil:
			return s.refresh(tx, &user, id)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return s.create(tx, &user, id)
		default:
			return apperr.Wrap(err, "failed to load user")
		}
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id.Subject).Updates(map[string]interface{}{
				"failed_login_count":   gorm.Expr("failed_login_count + 1"),
				"last_failed_login_at": time.Now(),
			})
			s.audit.Record(ctx, nil, AuditEntry{UserID: id.Subject, Action: models.AuditLoginFailed, Details: "inactive account", IP: a.IP})
		}
		return nil, err
	}

	keys := []string{s.antifraud.Key(KeyIP, a.IP)}
	if user.CPF != nil {
		keys = append(keys, s.antifraud.Key(KeyCPF, *user.CPF))
	}
	s.antifraud.Reset(ctx, keys...)
	s.audit.Record(ctx, nil, AuditEntry{
		UserID:         user.ID,
		MunicipalityID: user.MunicipalityRef(),
		Action:         models.AuditLoginSuccess,
		IP:             a.IP,
	})
	return NewCurrentUser(&user), nil
}

func (s *AuthService) create(tx *gorm.DB, user *models.User, id *identity.Identity) error {
	role := models.RoleCitizen
	if id.EmailVerified && s.superAdmins[strings.ToLower(id.Email)] {
		role = models.RoleSuperAdmin
	}
	*user = models.User{
		ID:              id.Subject,
		Email:           id.Email,
		Name:            id.Name,
		Role:            role,
		LoginMethod:     "firebase",
		IsActive:        true,
		IsEmailVerified: id.EmailVerified,
		LastSignedIn:    time.Now(),
	}
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return apperr.Wrap(err, "failed to create user")
	}
	slog.Info("user created", "user_id", user.ID, "role", string(role))
	return nil
}

func (s *AuthService) refresh(tx *gorm.DB, user *models.User, id *identity.Identity) error {
	if !user.IsActive {
		return ErrForbidden
	}
	updates := map[string]interface{}{
		"last_signed_in":     time.Now(),
		"failed_login_count": 0,
		"is_email_verified":  user.IsEmailVerified || id.EmailVerified,
	}
	if user.Name == "" && id.Name != "" {
		updates["name"] = id.Name
	}
	if err := tx.Model(user).Updates(updates).Error; err != nil {
		return apperr.Wrap(err, "failed to update user")
	}
	return tx.First(user, "id = ?", user.ID).Error
}

// Me returns nil for anonymous callers.
func (s *AuthService) Me(a *tenant.Actor) *CurrentUser {
	if !a.Authenticated() {
		return nil
	}
	return NewCurrentUser(a.User)
}

// RecordFailure counts a rejected credential against the caller address.
func (s *AuthService) RecordFailure(ctx context.Context, ip string, cause error) {
	s.antifraud.Fail(ctx, s.antifraud.Key(KeyIP, ip))
	s.audit.Record(ctx, nil, AuditEntry{Action: models.AuditLoginFailed, Details: cause.Error(), IP: ip})
}

// Throttled reports whether the address exceeded the failure limit.
func (s *AuthService) Throttled(ctx context.Context, ip string) bool {
	return s.antifraud.Blocked(ctx, s.antifraud.Key(KeyIP, ip))
}
