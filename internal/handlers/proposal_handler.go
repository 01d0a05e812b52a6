package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/dto"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
}

func NewProposalHandler(proposalService *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

func (h *ProposalHandler) Procedures() []rpc.Procedure {
	council := rpc.Access{Floor: models.RoleCouncilMember, TenantBound: true}
	admin := rpc.Access{Floor: models.RoleCityAdmin, TenantBound: true}
	return []rpc.Procedure{
		rpc.NewMutation("proposals.create", council, h.Create),
		rpc.NewQuery("proposals.listApproved", public, h.ListApproved),
		rpc.NewQuery("proposals.listMine", council, h.ListMine),
		rpc.NewQuery("proposals.listForAdmin", admin, h.ListForAdmin),
		rpc.NewQuery("proposals.get", public, h.Get),
		rpc.NewMutation("proposals.approve", admin, h.Approve),
		rpc.NewMutation("proposals.reject", admin, h.Reject),
		rpc.NewMutation("proposals.archive", admin, h.Archive),
	}
}

func (h *ProposalHandler) Create(c *fiber.Ctx, a *tenant.Actor, in *dto.CreateProposalRequest) (interface{}, error) {
	return h.proposalService.Create(c.UserContext(), a, in.Title, in.Description)
}

// ListApproved is the public browsing list; the requested municipality is
// the only filter.
func (h *ProposalHandler) ListApproved(c *fiber.Ctx, _ *tenant.Actor, in *dto.ListApprovedRequest) (interface{}, error) {
	return h.proposalService.ListForCitizens(c.UserContext(), in.MunicipalityID)
}

func (h *ProposalHandler) ListMine(c *fiber.Ctx, a *tenant.Actor, _ *rpc.NoInput) (interface{}, error) {
	return h.proposalService.ListMine(c.UserContext(), a)
}

func (h *ProposalHandler) ListForAdmin(c *fiber.Ctx, a *tenant.Actor, in *dto.AdminListProposalsRequest) (interface{}, error) {
	return h.proposalService.ListForAdmin(c.UserContext(), a, in.MunicipalityID, models.ProposalStatus(in.Status))
}

func (h *ProposalHandler) Get(c *fiber.Ctx, a *tenant.Actor, in *dto.ProposalRequest) (interface{}, error) {
	return h.proposalService.Get(c.UserContext(), a, in.ProposalID)
}

func (h *ProposalHandler) Approve(c *fiber.Ctx, a *tenant.Actor, in *dto.ProposalRequest) (interface{}, error) {
	return h.proposalService.Approve(c.UserContext(), a, in.ProposalID, in.MunicipalityID)
}

func (h *ProposalHandler) Reject(c *fiber.Ctx, a *tenant.Actor, in *dto.RejectProposalRequest) (interface{}, error) {
	return h.proposalService.Reject(c.UserContext(), a, in.ProposalID, in.MunicipalityID, in.Reason)
}

func (h *ProposalHandler) Archive(c *fiber.Ctx, a *tenant.Actor, in *dto.ProposalRequest) (interface{}, error) {
	return h.proposalService.Archive(c.UserContext(), a, in.ProposalID, in.MunicipalityID)
}
