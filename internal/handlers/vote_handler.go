package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/dto"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

type VoteHandler struct {
	voteService *services.VoteService
}

func NewVoteHandler(voteService *services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

func (h *VoteHandler) Procedures() []rpc.Procedure {
	return []rpc.Procedure{
		rpc.NewMutation("votes.cast", rpc.Access{Floor: models.RoleCitizen, TenantBound: true}, h.Cast),
		// Advisory button state, so anonymous callers get false instead of an error.
		rpc.NewQuery("votes.hasVoted", public, h.HasVoted),
	}
}

func (h *VoteHandler) Cast(c *fiber.Ctx, a *tenant.Actor, in *dto.VoteRequest) (interface{}, error) {
	return h.voteService.Vote(c.UserContext(), a, in.ProposalID)
}

func (h *VoteHandler) HasVoted(c *fiber.Ctx, a *tenant.Actor, in *dto.VoteRequest) (interface{}, error) {
	return h.voteService.HasVoted(c.UserContext(), a, in.ProposalID)
}
