package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteResult struct {
	ProposalID string `json:"proposal_id"`
	VoteCount  int64  `json:"vote_count"`
}

// VoteService is the one-vote-per-citizen ledger.
type VoteService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewVoteService(db *gorm.DB, audit *AuditService) *VoteService {
	return &VoteService{db: db, audit: audit}
}

// Vote records the actor's vote and bumps the proposal counter in one
// transaction. The unique index on (citizen_id, proposal_id) is authoritative;
// the lookup before the insert only produces the friendlier error early.
func (s *VoteService) Vote(ctx context.Context, a *tenant.Actor, publicID string) (*VoteResult, error) {
	if !a.Authenticated() {
		return nil, ErrUnauthenticated
	}

	var p models.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("public_id = ?", publicID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProposalNotFound
			}
			return apperr.Wrap(err, "failed to load proposal")
		}
		if !a.SameMunicipality(p.MunicipalityID) {
			return ErrForbidden
		}
		if p.Status != models.ProposalApproved {
			return ErrVotingClosed
		}

		var existing int64
		if err := tx.Model(&models.Vote{}).
			Where("citizen_id = ? AND proposal_id = ?", a.UserID(), p.ID).
			Count(&existing).Error; err != nil {
			return apperr.Wrap(err, "failed to check vote")
		}
		if existing > 0 {
			return ErrAlreadyVoted
		}

		vote := models.Vote{
			ProposalID:     p.ID,
			CitizenID:      a.UserID(),
			MunicipalityID: p.MunicipalityID,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			return apperr.Wrap(res.Error, "failed to record vote")
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyVoted
		}

		res = tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", p.ID, models.ProposalApproved).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1"))
		if res.Error != nil {
			return apperr.Wrap(res.Error, "failed to update vote count")
		}
		if res.RowsAffected == 0 {
			// Archived between the read and the write; the vote rolls back.
			return ErrVotingClosed
		}
		return tx.Select("vote_count").First(&p, p.ID).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("vote cast", "municipality_id", p.MunicipalityID, "user_id", a.UserID(), "proposal_id", p.PublicID)
	s.audit.RecordActor(ctx, nil, a, models.AuditVoteCast, "proposal "+p.PublicID)
	return &VoteResult{ProposalID: p.PublicID, VoteCount: p.VoteCount}, nil
}

// HasVoted is advisory UI state. It answers false instead of failing for
// anonymous callers, other municipalities and unknown proposals.
func (s *VoteService) HasVoted(ctx context.Context, a *tenant.Actor, publicID string) (bool, error) {
	if !a.Authenticated() {
		return false, nil
	}

	var n int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Joins("JOIN proposals ON proposals.id = votes.proposal_id").
		Where("proposals.public_id = ? AND votes.citizen_id = ? AND votes.municipality_id = ?",
			publicID, a.UserID(), a.MunicipalityID()).
		Count(&n).Error
	if err != nil {
		return false, apperr.Wrap(err, "failed to check vote")
	}
	return n > 0, nil
}
