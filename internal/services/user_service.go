package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
)

// MinVotingAge is the youngest age accepted on a profile.
const MinVotingAge = 16

type ProfileInput struct {
	Name      *string
	CPF       *string
	BirthDate *string
	ZipCode   *string
}

type UserService struct {
	db        *gorm.DB
	audit     *AuditService
	antifraud *Antifraud
	sanitizer *Sanitizer
	now       func() time.Time
}

func NewUserService(db *gorm.DB, audit *AuditService, antifraud *Antifraud, sanitizer *Sanitizer) *UserService {
	return &UserService{db: db, audit: audit, antifraud: antifraud, sanitizer: sanitizer, now: time.Now}
}

// UpdateProfile changes the actor's own profile. A CPF already held by
// another user counts as a failed attempt against that CPF and the caller.
func (s *UserService) UpdateProfile(ctx context.Context, a *tenant.Actor, in ProfileInput) (*CurrentUser, error) {
	if !a.Authenticated() {
		return nil, ErrUnauthenticated
	}

	updates := map[string]interface{}{}
	fields := map[string]string{}

	if in.Name != nil {
		name := s.sanitizer.Text(*in.Name)
		if n := textLength(name); n < 2 || n > 255 {
			fields["name"] = "must be between 2 and 255 characters"
		}
		updates["name"] = name
	}
	var cpf string
	if in.CPF != nil {
		cpf = models.NormalizeCPF(*in.CPF)
		if !models.ValidCPF(cpf) {
			fields["cpf"] = "invalid CPF"
		}
		updates["cpf"] = cpf
	}
	if in.BirthDate != nil {
		birth, err := time.Parse("2006-01-02", *in.BirthDate)
		switch {
		case err != nil:
			fields["birthDate"] = "must be a date in YYYY-MM-DD format"
		case birth.After(s.now()):
			fields["birthDate"] = "must not be in the future"
		case ageAt(birth, s.now()) < MinVotingAge:
			fields["birthDate"] = "must be at least 16 years old"
		}
		updates["birth_date"] = birth
	}
	if in.ZipCode != nil {
		if !models.ValidCEP(*in.ZipCode) {
			fields["zipCode"] = "must have 8 digits"
		}
		updates["zip_code"] = models.NormalizeCPF(*in.ZipCode)
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFailed(fields)
	}
	if len(updates) == 0 {
		return NewCurrentUser(a.User), nil
	}

	keys := []string{s.antifraud.Key(KeyIP, a.IP)}
	if cpf != "" {
		keys = append(keys, s.antifraud.Key(KeyCPF, cpf))
		if s.antifraud.Blocked(ctx, keys...) {
			return nil, ErrTooManyAttempts
		}
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cpf != "" {
			var taken int64
			if err := tx.Model(&models.User{}).Where("cpf = ? AND id <> ?", cpf, a.UserID()).Count(&taken).Error; err != nil {
				return apperr.Wrap(err, "failed to check CPF")
			}
			if taken > 0 {
				return ErrCPFTaken
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ?", a.UserID()).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCPFTaken
			}
			return apperr.Wrap(err, "failed to update profile")
		}
		return tx.First(&user, "id = ?", a.UserID()).Error
	})
	if errors.Is(err, ErrCPFTaken) {
		s.antifraud.Fail(ctx, keys...)
		s.audit.RecordActor(ctx, nil, a, models.AuditRegistrationRejected, "cpf already registered")
		return nil, err
	}
	if err != nil {
		return nil, apperr.From(err)
	}
	return NewCurrentUser(&user), nil
}

func ageAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// JoinMunicipality binds an unbound citizen to an existing municipality.
// The binding cannot be changed afterwards.
func (s *UserService) JoinMunicipality(ctx context.Context, a *tenant.Actor, municipalityID string) (*CurrentUser, error) {
	if !a.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if a.User.MunicipalityID != nil {
		return nil, ErrAlreadyBound
	}
	if a.Role() != models.RoleCitizen {
		return nil, ErrForbidden
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Municipality{}).Where("id = ?", municipalityID).Count(&n).Error; err != nil {
			return apperr.Wrap(err, "failed to load municipality")
		}
		if n == 0 {
			return ErrMunicipalityNotFound
		}
		res := tx.Model(&models.User{}).
			Where("id = ? AND municipality_id IS NULL", a.UserID()).
			Update("municipality_id", municipalityID)
		if res.Error != nil {
			return apperr.Wrap(res.Error, "failed to join municipality")
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyBound
		}
		return tx.First(&user, "id = ?", a.UserID()).Error
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	s.audit.Record(ctx, nil, AuditEntry{
		UserID:         user.ID,
		MunicipalityID: municipalityID,
		Action:         models.AuditMunicipalityJoined,
		IP:             a.IP,
	})
	return NewCurrentUser(&user), nil
}

var assignableRoles = map[models.Role]bool{
	models.RoleCitizen:       true,
	models.RoleCouncilMember: true,
	models.RoleCityAdmin:     true,
}

// AssignRole changes another user's role. Super admins assign any role
// below their own within a named municipality; city admins only promote
// citizens of their own municipality to council member. No path grants
// super admin.
func (s *UserService) AssignRole(ctx context.Context, a *tenant.Actor, userID string, role models.Role, municipalityID string) (*CurrentUser, error) {
	if !a.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if role == models.RoleSuperAdmin {
		return nil, ErrForbidden
	}
	if !assignableRoles[role] {
		return nil, apperr.ValidationFailed(map[string]string{"role": "unknown role"})
	}
	if userID == a.UserID() {
		return nil, ErrForbidden
	}

	scope, err := moderationScope(a, municipalityID)
	if err != nil {
		return nil, err
	}
	if a.Role() != models.RoleSuperAdmin && role != models.RoleCouncilMember {
		return nil, ErrForbidden
	}

	var target models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&target, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return apperr.Wrap(err, "failed to load user")
		}
		if target.Role == models.RoleSuperAdmin {
			return ErrForbidden
		}

		bound := target.MunicipalityRef()
		if a.Role() != models.RoleSuperAdmin {
			if bound != scope || target.Role != models.RoleCitizen {
				return ErrForbidden
			}
		} else if bound != "" && bound != scope {
			return ErrAlreadyBound
		}

		var n int64
		if err := tx.Model(&models.Municipality{}).Where("id = ?", scope).Count(&n).Error; err != nil {
			return apperr.Wrap(err, "failed to load municipality")
		}
		if n == 0 {
			return ErrMunicipalityNotFound
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND role = ?", target.ID, target.Role).
			Updates(map[string]interface{}{"role": role, "municipality_id": scope})
		if res.Error != nil {
			return apperr.Wrap(res.Error, "failed to assign role")
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.Conflict, "role_changed", "the user's role changed concurrently, retry")
		}
		return tx.First(&target, "id = ?", target.ID).Error
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	slog.Info("role assigned", "municipality_id", scope, "user_id", a.UserID(), "target_user_id", target.ID, "role", string(role))
	s.audit.Record(ctx, nil, AuditEntry{
		UserID:         a.UserID(),
		MunicipalityID: scope,
		Action:         models.AuditRoleAssigned,
		Details:        "user " + target.ID + " is now " + string(role),
		IP:             a.IP,
	})
	return NewCurrentUser(&target), nil
}

// ListForAdmin lists the users of one municipality.
func (s *UserService) ListForAdmin(ctx context.Context, a *tenant.Actor, municipalityID string, role models.Role) ([]CurrentUser, error) {
	scope, err := moderationScope(a, municipalityID)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(tenant.ForMunicipality(scope))
	if role != models.RoleNone {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list users")
	}
	out := make([]CurrentUser, 0, len(users))
	for i := range users {
		out = append(out, *NewCurrentUser(&users[i]))
	}
	return out, nil
}
