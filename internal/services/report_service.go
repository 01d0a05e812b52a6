package services

import (
	"context"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/tenant"
	"gorm.io/gorm"
)

type ProposalRank struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	VoteCount int64  `json:"vote_count"`
}

// Summary is the engagement report of one municipality.
type Summary struct {
	MunicipalityID    string                           `json:"municipality_id"`
	ProposalsByStatus map[models.ProposalStatus]int64  `json:"proposals_by_status"`
	ComplaintsByState map[models.ComplaintStatus]int64 `json:"complaints_by_status"`
	UsersByRole       map[models.Role]int64            `json:"users_by_role"`
	TotalVotes        int64                            `json:"total_votes"`
	TopProposals      []ProposalRank                   `json:"top_proposals"`
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type groupCount struct {
	GroupKey string
	Total    int64
}

func (s *ReportService) Summary(ctx context.Context, a *tenant.Actor, municipalityID string, top int) (*Summary, error) {
	scope, err := moderationScope(a, municipalityID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	out := &Summary{
		MunicipalityID:    scope,
		ProposalsByStatus: map[models.ProposalStatus]int64{},
		ComplaintsByState: map[models.ComplaintStatus]int64{},
		UsersByRole:       map[models.Role]int64{},
	}

	var rows []groupCount
	if err := grouped(db, &models.Proposal{}, scope, "status", &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.ProposalsByStatus[models.ProposalStatus(r.GroupKey)] = r.Total
	}

	rows = nil
	if err := grouped(db, &models.Complaint{}, scope, "status", &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.ComplaintsByState[models.ComplaintStatus(r.GroupKey)] = r.Total
	}

	rows = nil
	if err := grouped(db, &models.User{}, scope, "role", &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.UsersByRole[models.Role(r.GroupKey)] = r.Total
	}

	if err := db.Model(&models.Vote{}).Scopes(tenant.ForMunicipality(scope)).Count(&out.TotalVotes).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to count votes")
	}

	if top <= 0 || top > 50 {
		top = 5
	}
	var ranked []models.Proposal
	if err := db.Scopes(tenant.ForMunicipality(scope)).
		Where("status IN ?", []models.ProposalStatus{models.ProposalApproved, models.ProposalArchived}).
		Order("vote_count DESC, created_at ASC").
		Limit(top).
		Find(&ranked).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to rank proposals")
	}
	out.TopProposals = make([]ProposalRank, 0, len(ranked))
	for _, p := range ranked {
		out.TopProposals = append(out.TopProposals, ProposalRank{ID: p.PublicID, Title: p.Title, VoteCount: p.VoteCount})
	}
	return out, nil
}

func grouped(db *gorm.DB, model interface{}, municipalityID, column string, dest *[]groupCount) error {
	err := db.Model(model).
		Scopes(tenant.ForMunicipality(municipalityID)).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(dest).Error
	if err != nil {
		return apperr.Wrap(err, "failed to build report")
	}
	return nil
}
