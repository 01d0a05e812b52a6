package models

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&Municipality{},
		&User{},
		&Proposal{},
		&Vote{},
		&Complaint{},
		&AuditLog{},
		&LoginAttempt{},
		&SystemLog{},
	}
}
