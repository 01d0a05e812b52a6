package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_AtLeast(t *testing.T) {
	ordered := []Role{RoleCitizen, RoleCouncilMember, RoleCityAdmin, RoleSuperAdmin}

	for i, r := range ordered {
		for j, floor := range ordered {
			assert.Equal(t, i >= j, r.AtLeast(floor), "%s at least %s", r, floor)
		}
		assert.True(t, r.AtLeast(RoleNone))
	}
}

func TestRole_UnknownFailsClosed(t *testing.T) {
	for _, r := range []Role{"", "admin", "SUPER_ADMIN", "vereador"} {
		assert.False(t, r.AtLeast(RoleCitizen), "role %q", r)
		assert.False(t, r.Valid())
	}
}

func TestRole_Monotonic(t *testing.T) {
	ordered := []Role{RoleCitizen, RoleCouncilMember, RoleCityAdmin, RoleSuperAdmin}
	floors := append([]Role{RoleNone}, ordered...)

	for _, floor := range floors {
		passed := false
		for _, r := range ordered {
			if passed {
				assert.True(t, r.AtLeast(floor), "%s must satisfy %s once a lower role did", r, floor)
			}
			passed = passed || r.AtLeast(floor)
		}
	}
}

func TestRole_RequiresMunicipality(t *testing.T) {
	assert.True(t, RoleCitizen.RequiresMunicipality())
	assert.True(t, RoleCityAdmin.RequiresMunicipality())
	assert.False(t, RoleSuperAdmin.RequiresMunicipality())
	assert.True(t, Role("bogus").RequiresMunicipality())
}
