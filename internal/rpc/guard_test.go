package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
)

func actorWith(role models.Role, municipality string) *tenant.Actor {
	u := &models.User{ID: "u-" + string(role), Role: role, IsActive: true}
	if municipality != "" {
		u.MunicipalityID = &municipality
	}
	return &tenant.Actor{User: u}
}

func TestDecide(t *testing.T) {
	inactive := actorWith(models.RoleCityAdmin, "muriae-mg")
	inactive.User.IsActive = false

	tests := []struct {
		name   string
		actor  *tenant.Actor
		access Access
		want   apperr.Code
	}{
		{"public anonymous", tenant.Anonymous("1.1.1.1"), Access{}, ""},
		{"auth anonymous", tenant.Anonymous("1.1.1.1"), Access{Auth: true}, apperr.Unauthenticated},
		{"floor anonymous", tenant.Anonymous("1.1.1.1"), Access{Floor: models.RoleCitizen}, apperr.Unauthenticated},
		{"inactive user", inactive, Access{Auth: true}, apperr.Unauthenticated},
		{"citizen below council", actorWith(models.RoleCitizen, "muriae-mg"), Access{Floor: models.RoleCouncilMember}, apperr.Forbidden},
		{"admin satisfies council", actorWith(models.RoleCityAdmin, "muriae-mg"), Access{Floor: models.RoleCouncilMember, TenantBound: true}, ""},
		{"super admin satisfies every floor", actorWith(models.RoleSuperAdmin, ""), Access{Floor: models.RoleCityAdmin, TenantBound: true}, ""},
		{"unbound council", actorWith(models.RoleCouncilMember, ""), Access{Floor: models.RoleCouncilMember, TenantBound: true}, apperr.Forbidden},
		{"unbound citizen without binding", actorWith(models.RoleCitizen, ""), Access{Floor: models.RoleCitizen}, ""},
		{"unknown role", actorWith(models.Role("mayor"), "muriae-mg"), Access{Floor: models.RoleCitizen}, apperr.Forbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Decide(tc.actor, tc.access)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, apperr.CodeOf(err))
		})
	}
}

func TestDecide_FloorIsMonotonic(t *testing.T) {
	roles := []models.Role{models.RoleCitizen, models.RoleCouncilMember, models.RoleCityAdmin, models.RoleSuperAdmin}
	for _, floor := range append([]models.Role{models.RoleNone}, roles...) {
		for _, bound := range []bool{false, true} {
			access := Access{Auth: true, Floor: floor, TenantBound: bound}
			allowed := false
			for _, r := range roles {
				err := Decide(actorWith(r, "muriae-mg"), access)
				if allowed {
					assert.NoError(t, err, "role %s below an allowed role was denied floor %s", r, floor)
				}
				if err == nil {
					allowed = true
				}
			}
		}
	}
}
