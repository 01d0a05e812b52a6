package tenant

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/identity"
	"github.com/votopopular/civic-api/internal/models"
)

const (
	identityKey = "identity"
	actorKey    = "actor"
)

// Actor is the caller of a request. User is nil for anonymous callers and
// for identities with no persisted, active record.
type Actor struct {
	User     *models.User
	Identity *identity.Identity
	IP       string
}

func Anonymous(ip string) *Actor {
	return &Actor{IP: ip}
}

// Authenticated reports whether the actor maps to a persisted, active user.
func (a *Actor) Authenticated() bool {
	return a != nil && a.User != nil && a.User.IsActive
}

func (a *Actor) UserID() string {
	if a == nil || a.User == nil {
		return ""
	}
	return a.User.ID
}

// Role returns RoleNone when the actor is not authenticated.
func (a *Actor) Role() models.Role {
	if !a.Authenticated() {
		return models.RoleNone
	}
	return a.User.Role
}

func (a *Actor) MunicipalityID() string {
	if !a.Authenticated() {
		return ""
	}
	return a.User.MunicipalityRef()
}

// SameMunicipality is false whenever either side is unbound.
func (a *Actor) SameMunicipality(municipalityID string) bool {
	own := a.MunicipalityID()
	return own != "" && own == municipalityID
}

func SetIdentity(c *fiber.Ctx, id *identity.Identity) {
	c.Locals(identityKey, id)
}

// GetIdentity returns the verified identity or nil.
func GetIdentity(c *fiber.Ctx) *identity.Identity {
	if id, ok := c.Locals(identityKey).(*identity.Identity); ok {
		return id
	}
	return nil
}

func SetActor(c *fiber.Ctx, a *Actor) {
	c.Locals(actorKey, a)
}

// GetActor never returns nil; an unresolved request yields an anonymous actor.
func GetActor(c *fiber.Ctx) *Actor {
	if a, ok := c.Locals(actorKey).(*Actor); ok && a != nil {
		return a
	}
	return Anonymous(c.IP())
}
