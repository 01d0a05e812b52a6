package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComplaintStatus string

const (
	ComplaintOpen     ComplaintStatus = "open"
	ComplaintInReview ComplaintStatus = "in_review"
	ComplaintClosed   ComplaintStatus = "closed"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintOpen, ComplaintInReview, ComplaintClosed:
		return true
	}
	return false
}

// Complaint is a free-text issue report triaged manually by the city admin.
type Complaint struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	UserID         string          `gorm:"size:128;not null;index" json:"user_id"`
	MunicipalityID string          `gorm:"size:64;not null;index" json:"municipality_id"`
	Text           string          `gorm:"type:text;not null" json:"text"`
	Status         ComplaintStatus `gorm:"size:20;not null;default:'open'" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
