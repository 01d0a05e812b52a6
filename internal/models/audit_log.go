package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditLoginSuccess         AuditAction = "LOGIN_SUCCESS"
	AuditLoginFailed          AuditAction = "LOGIN_FAILED"
	AuditProposalCreated      AuditAction = "PROPOSAL_CREATED"
	AuditProposalApproved     AuditAction = "PROPOSAL_APPROVED"
	AuditProposalRejected     AuditAction = "PROPOSAL_REJECTED"
	AuditProposalArchived     AuditAction = "PROPOSAL_ARCHIVED"
	AuditVoteCast             AuditAction = "VOTE_CAST"
	AuditMunicipalityCreated  AuditAction = "MUNICIPALITY_CREATED"
	AuditMunicipalityUpdated  AuditAction = "MUNICIPALITY_UPDATED"
	AuditThemeUpdated         AuditAction = "THEME_UPDATED"
	AuditRoleAssigned         AuditAction = "ROLE_ASSIGNED"
	AuditMunicipalityJoined   AuditAction = "MUNICIPALITY_JOINED"
	AuditRegistrationRejected AuditAction = "REGISTRATION_REJECTED"
)

// AuditLog is append-only; the application never updates or deletes rows.
type AuditLog struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	UserID         *string     `gorm:"size:128;index" json:"user_id"`
	MunicipalityID *string     `gorm:"size:64;index" json:"municipality_id"`
	Action         AuditAction `gorm:"size:64;not null;index" json:"action"`
	Details        string      `gorm:"type:text" json:"details"`
	IPAddress      string      `gorm:"size:45" json:"ip_address"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
