package models

import "time"

// LoginAttempt is one failed attempt against a hashed identity key.
type LoginAttempt struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Key       string    `gorm:"column:attempt_key;size:64;not null;index:idx_login_attempts_key_time,priority:1"`
	CreatedAt time.Time `gorm:"not null;index:idx_login_attempts_key_time,priority:2"`
}
