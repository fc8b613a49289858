// Package models defines server-side data models persisted in the database
// and the views returned to API clients.
package models

import "time"

// User is an identity record. PasswordHash is never serialized.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	IsActive     *bool
}

// UserView is the user as returned by the API, optionally with roles and profile.
type UserView struct {
	User
	Roles   []RoleAssignment `json:"roles,omitempty"`
	Profile *Profile         `json:"profile,omitempty"`
}
