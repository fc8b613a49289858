package models

import "time"

// Role is a named permission bundle. Names are unique among active roles.
type Role struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

type RoleUpdate struct {
	Name        *string
	Description *string
}

// RoleAssignment is a role held by a user.
type RoleAssignment struct {
	Role
	AssignedAt time.Time `json:"assignedAt"`
}

// Permission is an (action, subject) pair.
type Permission struct {
	ID          string     `json:"id"`
	Action      string     `json:"action"`
	Subject     string     `json:"subject"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

// PermissionGrant is a permission granted to a role.
type PermissionGrant struct {
	Permission
	GrantedAt time.Time `json:"grantedAt"`
}
