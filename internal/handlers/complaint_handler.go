package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/dto"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

type ComplaintHandler struct {
	complaintService *services.ComplaintService
}

func NewComplaintHandler(complaintService *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

func (h *ComplaintHandler) Procedures() []rpc.Procedure {
	admin := rpc.Access{Floor: models.RoleCityAdmin, TenantBound: true}
	return []rpc.Procedure{
		rpc.NewMutation("complaints.submit", rpc.Access{Floor: models.RoleCitizen, TenantBound: true}, h.Submit),
		rpc.NewQuery("complaints.listForAdmin", admin, h.ListForAdmin),
		rpc.NewMutation("complaints.updateStatus", admin, h.UpdateStatus),
	}
}

func (h *ComplaintHandler) Submit(c *fiber.Ctx, a *tenant.Actor, in *dto.SubmitComplaintRequest) (interface{}, error) {
	return h.complaintService.Submit(c.UserContext(), a, in.Text)
}

func (h *ComplaintHandler) ListForAdmin(c *fiber.Ctx, a *tenant.Actor, in *dto.ListComplaintsRequest) (interface{}, error) {
	return h.complaintService.ListForAdmin(c.UserContext(), a, in.MunicipalityID, models.ComplaintStatus(in.Status))
}

func (h *ComplaintHandler) UpdateStatus(c *fiber.Ctx, a *tenant.Actor, in *dto.UpdateComplaintRequest) (interface{}, error) {
	return h.complaintService.UpdateStatus(c.UserContext(), a, in.ComplaintID, models.ComplaintStatus(in.Status), in.MunicipalityID)
}
