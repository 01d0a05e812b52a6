package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/dto"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

type MunicipalityHandler struct {
	municipalityService *services.MunicipalityService
}

func NewMunicipalityHandler(municipalityService *services.MunicipalityService) *MunicipalityHandler {
	return &MunicipalityHandler{municipalityService: municipalityService}
}

// Procedures covers tenants and their theme. Mutations are super admin only
// and not tenant bound.
func (h *MunicipalityHandler) Procedures() []rpc.Procedure {
	super := rpc.Access{Floor: models.RoleSuperAdmin}
	return []rpc.Procedure{
		rpc.NewQuery("municipalities.get", public, h.Get),
		rpc.NewQuery("municipalities.list", public, h.List),
		rpc.NewMutation("municipalities.create", super, h.Create),
		rpc.NewMutation("municipalities.update", super, h.Update),
		rpc.NewQuery("theme.get", public, h.Theme),
		rpc.NewMutation("theme.update", super, h.UpdateTheme),
	}
}

func (h *MunicipalityHandler) Get(c *fiber.Ctx, _ *tenant.Actor, in *dto.MunicipalityRequest) (interface{}, error) {
	return h.municipalityService.Get(c.UserContext(), in.ID)
}

func (h *MunicipalityHandler) List(c *fiber.Ctx, _ *tenant.Actor, _ *rpc.NoInput) (interface{}, error) {
	return h.municipalityService.List(c.UserContext())
}

func (h *MunicipalityHandler) Create(c *fiber.Ctx, a *tenant.Actor, in *dto.CreateMunicipalityRequest) (interface{}, error) {
	return h.municipalityService.Create(c.UserContext(), a, services.MunicipalityInput{
		ID:       in.ID,
		Name:     in.Name,
		State:    in.State,
		Branding: branding(in.BrandingInput),
	})
}

func (h *MunicipalityHandler) Update(c *fiber.Ctx, a *tenant.Actor, in *dto.UpdateMunicipalityRequest) (interface{}, error) {
	return h.municipalityService.Update(c.UserContext(), a, in.ID, services.MunicipalityUpdate{
		Name:     in.Name,
		State:    in.State,
		Branding: branding(in.BrandingInput),
	})
}

func (h *MunicipalityHandler) Theme(c *fiber.Ctx, _ *tenant.Actor, in *dto.ThemeRequest) (interface{}, error) {
	return h.municipalityService.Theme(c.UserContext(), in.MunicipalityID)
}

func (h *MunicipalityHandler) UpdateTheme(c *fiber.Ctx, a *tenant.Actor, in *dto.UpdateThemeRequest) (interface{}, error) {
	return h.municipalityService.UpdateTheme(c.UserContext(), a, in.MunicipalityID, branding(in.BrandingInput))
}

func branding(in dto.BrandingInput) services.Branding {
	return services.Branding{
		PrimaryColor:   in.PrimaryColor,
		SecondaryColor: in.SecondaryColor,
		AccentColor:    in.AccentColor,
		LogoURL:        in.LogoURL,
		FontFamily:     in.FontFamily,
	}
}
