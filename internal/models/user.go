package models

import (
	"time"
)

// User is keyed by the identity provider's subject id; ids are never generated locally.
type User struct {
	ID                string        `gorm:"primaryKey;size:128" json:"id"`
	Email             string        `gorm:"not null;size:320;uniqueIndex" json:"email"`
	Name              string        `gorm:"size:255" json:"name"`
	CPF               *string       `gorm:"size:11;uniqueIndex" json:"-"`
	BirthDate         *time.Time    `json:"birth_date,omitempty"`
	ZipCode           string        `gorm:"size:8" json:"zip_code,omitempty"`
	Role              Role          `gorm:"size:20;not null;default:'citizen';index" json:"role"`
	MunicipalityID    *string       `gorm:"size:64;index" json:"municipality_id"`
	LoginMethod       string        `gorm:"size:64;default:'firebase'" json:"-"`
	IsActive          bool          `gorm:"not null;default:true" json:"is_active"`
	IsEmailVerified   bool          `gorm:"not null;default:false" json:"is_email_verified"`
	IsCPFVerified     bool          `gorm:"not null;default:false" json:"is_cpf_verified"`
	FailedLoginCount  int           `gorm:"not null;default:0" json:"-"`
	LastFailedLoginAt *time.Time    `json:"-"`
	LastSignedIn      time.Time     `json:"last_signed_in"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Municipality      *Municipality `gorm:"foreignKey:MunicipalityID" json:"-"`
}

// MunicipalityRef returns the bound municipality id or "" when unbound.
func (u *User) MunicipalityRef() string {
	if u.MunicipalityID == nil {
		return ""
	}
	return *u.MunicipalityID
}
