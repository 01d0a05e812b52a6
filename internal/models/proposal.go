package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
	ProposalArchived ProposalStatus = "archived"
)

// proposalTransitions lists the allowed targets per status. Re-applying the
// current status is handled by CanTransition and is not listed here.
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalPending:  {ProposalApproved, ProposalRejected, ProposalArchived},
	ProposalApproved: {ProposalArchived},
	ProposalRejected: {ProposalArchived},
	ProposalArchived: {},
}

// CanTransition reports whether a proposal in status s may move to next.
// Approving an approved proposal (or rejecting a rejected one) is accepted as
// a no-op; nothing leaves archived.
func (s ProposalStatus) CanTransition(next ProposalStatus) bool {
	if s == ProposalArchived {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ProposalStatus) Valid() bool {
	_, ok := proposalTransitions[s]
	return ok
}

type Proposal struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	PublicID       string         `gorm:"size:36;not null;uniqueIndex" json:"id"`
	MunicipalityID string         `gorm:"size:64;not null;index:idx_proposals_municipality_status,priority:1" json:"municipality_id"`
	AuthorID       string         `gorm:"size:128;not null;index" json:"author_id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Status         ProposalStatus `gorm:"size:20;not null;default:'pending';index:idx_proposals_municipality_status,priority:2" json:"status"`
	RejectReason   string         `gorm:"size:1000" json:"reject_reason,omitempty"`
	VoteCount      int64          `gorm:"not null;default:0;check:vote_count >= 0" json:"vote_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Municipality   *Municipality  `gorm:"foreignKey:MunicipalityID" json:"-"`
	Author         *User          `gorm:"foreignKey:AuthorID" json:"-"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.PublicID == "" {
		p.PublicID = uuid.NewString()
	}
	return nil
}
