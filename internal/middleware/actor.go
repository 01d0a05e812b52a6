package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
)

// ResolveActor loads the persisted user of the verified identity. Unknown
// identities and store failures leave the actor without a user.
func ResolveActor(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a := tenant.Anonymous(c.IP())
		if id := tenant.GetIdentity(c); id != nil {
			a.Identity = id
			var user models.User
			err := db.WithContext(c.UserContext()).First(&user, "id = ?", id.Subject).Error
			switch {
			case err == nil:
				a.User = &user
			case errors.Is(err, gorm.ErrRecordNotFound):
			default:
				slog.Error("actor lookup failed", "user_id", id.Subject, "error", err)
			}
		}
		tenant.SetActor(c, a)
		return c.Next()
	}
}
