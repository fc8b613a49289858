package models

import "time"

// UserSecurity holds per-user security metadata. The PIN hash is never serialized.
type UserSecurity struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	PINHash        *string    `json:"-"`
	HasPIN         bool       `json:"hasPin"`
	PINAttempts    int        `json:"pinAttempts"`
	PINLockedUntil *time.Time `json:"pinLockedUntil"`
	RecoveryHint   *string    `json:"recoveryHint"`
	RecoveryEmail  *string    `json:"recoveryEmail"`
	Phone          *string    `json:"phone"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt"`
}

// Locked reports whether PIN checks are rejected at now.
func (s *UserSecurity) Locked(now time.Time) bool {
	return s.PINLockedUntil != nil && s.PINLockedUntil.After(now)
}

// UserSecurityUpdate is a partial update. Empty strings clear the column.
// When SetPIN is true, PINHash replaces the stored hash (nil clears it) and
// the attempt counter and lock are reset.
type UserSecurityUpdate struct {
	RecoveryEmail *string
	Phone         *string
	RecoveryHint  *string
	SetPIN        bool
	PINHash       *string
}
