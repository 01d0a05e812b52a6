package rpc

import (
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
)

// Access is the requirement a procedure declares. A non-empty Floor implies Auth.
type Access struct {
	Auth        bool
	Floor       models.Role
	TenantBound bool
}

var (
	errUnauthenticated = apperr.New(apperr.Unauthenticated, "", "authentication required")
	errInsufficient    = apperr.New(apperr.Forbidden, "role", "insufficient permissions")
	errUnbound         = apperr.New(apperr.Forbidden, "unbound", "user is not bound to a municipality")
)

// Authenticate denies actors without a persisted, active user.
func Authenticate(a *tenant.Actor) error {
	if !a.Authenticated() {
		return errUnauthenticated
	}
	return nil
}

// RoleFloor compares the persisted role only; request input never takes part.
func RoleFloor(a *tenant.Actor, floor models.Role) error {
	if !a.Role().AtLeast(floor) {
		return errInsufficient
	}
	return nil
}

// TenantBinding requires a municipality for every role below super admin.
func TenantBinding(a *tenant.Actor) error {
	if a.Role().RequiresMunicipality() && a.MunicipalityID() == "" {
		return errUnbound
	}
	return nil
}

// Decide runs the guard chain for access and stops at the first denial.
func Decide(a *tenant.Actor, access Access) error {
	if !access.Auth && access.Floor == models.RoleNone && !access.TenantBound {
		return nil
	}
	if err := Authenticate(a); err != nil {
		return err
	}
	if err := RoleFloor(a, access.Floor); err != nil {
		return err
	}
	if access.TenantBound {
		return TenantBinding(a)
	}
	return nil
}
