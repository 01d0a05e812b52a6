package middleware

import (
	"errors"
	"log/slog"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/identity"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

var errThrottled = apperr.New(apperr.RateLimited, "", "too many failed attempts, try again later")

// Identity verifies the bearer token when one is present. A failed
// verification never rejects the request; it continues anonymously and the
// failure is counted against the caller address.
func Identity(verifier *identity.Verifier, auth *services.AuthService) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		KeyFunc: verifier.Keyfunc,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals("user").(*jwt.Token)
			id, err := verifier.Identity(token)
			if err != nil {
				auth.RecordFailure(c.UserContext(), c.IP(), err)
				return c.Next()
			}
			tenant.SetIdentity(c, id)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
			case errors.Is(err, identity.ErrUnavailable):
				slog.Warn("identity provider unavailable", "request_id", c.Locals("requestid"), "error", err)
			default:
				auth.RecordFailure(c.UserContext(), c.IP(), err)
			}
			return c.Next()
		},
	})

	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		if auth.Throttled(c.UserContext(), c.IP()) {
			return rpc.Fail(c, errThrottled)
		}
		return verify(c)
	}
}
