package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote rows are immutable. The unique index on (citizen_id, proposal_id) is
// the authoritative one-vote guarantee.
type Vote struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ProposalID     uint      `gorm:"not null;uniqueIndex:idx_votes_citizen_proposal,priority:2;index" json:"-"`
	CitizenID      string    `gorm:"size:128;not null;uniqueIndex:idx_votes_citizen_proposal,priority:1" json:"citizen_id"`
	MunicipalityID string    `gorm:"size:64;not null;index" json:"municipality_id"`
	CreatedAt      time.Time `json:"created_at"`
	Proposal       *Proposal `gorm:"foreignKey:ProposalID" json:"-"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
