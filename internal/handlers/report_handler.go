package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/dto"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

// ReportHandler serves the admin read side: engagement summary and audit trail.
type ReportHandler struct {
	reportService *services.ReportService
	auditService  *services.AuditService
}

func NewReportHandler(reportService *services.ReportService, auditService *services.AuditService) *ReportHandler {
	return &ReportHandler{reportService: reportService, auditService: auditService}
}

func (h *ReportHandler) Procedures() []rpc.Procedure {
	admin := rpc.Access{Floor: models.RoleCityAdmin, TenantBound: true}
	return []rpc.Procedure{
		rpc.NewQuery("reports.summary", admin, h.Summary),
		rpc.NewQuery("audit.list", admin, h.AuditList),
	}
}

func (h *ReportHandler) Summary(c *fiber.Ctx, a *tenant.Actor, in *dto.ReportSummaryRequest) (interface{}, error) {
	return h.reportService.Summary(c.UserContext(), a, in.MunicipalityID, in.Top)
}

func (h *ReportHandler) AuditList(c *fiber.Ctx, a *tenant.Actor, in *dto.AuditListRequest) (interface{}, error) {
	return h.auditService.List(c.UserContext(), a, in.Limit, in.Offset)
}
