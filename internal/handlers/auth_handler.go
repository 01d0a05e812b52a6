package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Procedures() []rpc.Procedure {
	return []rpc.Procedure{
		// Sync runs before a user record exists, so it only needs a verified identity.
		rpc.NewMutation("auth.sync", public, h.Sync),
		rpc.NewQuery("auth.me", authenticated, h.Me),
	}
}

func (h *AuthHandler) Sync(c *fiber.Ctx, a *tenant.Actor, _ *rpc.NoInput) (interface{}, error) {
	return h.authService.Sync(c.UserContext(), a)
}

func (h *AuthHandler) Me(c *fiber.Ctx, a *tenant.Actor, _ *rpc.NoInput) (interface{}, error) {
	return h.authService.Me(a), nil
}
