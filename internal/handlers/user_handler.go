package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/dto"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Procedures() []rpc.Procedure {
	admin := rpc.Access{Floor: models.RoleCityAdmin, TenantBound: true}
	return []rpc.Procedure{
		rpc.NewMutation("users.updateProfile", authenticated, h.UpdateProfile),
		rpc.NewMutation("users.joinMunicipality", rpc.Access{Floor: models.RoleCitizen}, h.JoinMunicipality),
		rpc.NewMutation("users.assignRole", admin, h.AssignRole),
		rpc.NewQuery("users.listForAdmin", admin, h.ListForAdmin),
	}
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx, a *tenant.Actor, in *dto.UpdateProfileRequest) (interface{}, error) {
	return h.userService.UpdateProfile(c.UserContext(), a, services.ProfileInput{
		Name:      in.Name,
		CPF:       in.CPF,
		BirthDate: in.BirthDate,
		ZipCode:   in.ZipCode,
	})
}

func (h *UserHandler) JoinMunicipality(c *fiber.Ctx, a *tenant.Actor, in *dto.JoinMunicipalityRequest) (interface{}, error) {
	return h.userService.JoinMunicipality(c.UserContext(), a, in.MunicipalityID)
}

func (h *UserHandler) AssignRole(c *fiber.Ctx, a *tenant.Actor, in *dto.AssignRoleRequest) (interface{}, error) {
	return h.userService.AssignRole(c.UserContext(), a, in.UserID, models.Role(in.Role), in.MunicipalityID)
}

func (h *UserHandler) ListForAdmin(c *fiber.Ctx, a *tenant.Actor, in *dto.ListUsersRequest) (interface{}, error) {
	return h.userService.ListForAdmin(c.UserContext(), a, in.MunicipalityID, models.Role(in.Role))
}
