package services

import "encoding/json"

// Request payloads. The binding tags are evaluated by gin's validator
// before a service is called; services re-check the rules they own.

type CreateUserInput struct {
	Email             string `json:"email" binding:"required,email,max=50"`
	Password          string `json:"password" binding:"required"`
	PasswordConfirmed string `json:"passwordConfirmed" binding:"required"`
}

type UpdateUserInput struct {
	Email             *string `json:"email" binding:"omitempty,email,max=50"`
	IsActive          *bool   `json:"isActive"`
	Password          *string `json:"password" binding:"omitempty"`
	PasswordConfirmed *string `json:"passwordConfirmed"`
}

type SetRolesInput struct {
	RoleIDs []string `json:"roleIds" binding:"required,min=1,max=10,dive,uuid4"`
}

type ProfileInput struct {
	FirstName       *string         `json:"firstName" binding:"omitempty,min=1,max=30"`
	LastName        *string         `json:"lastName" binding:"omitempty,min=1,max=30"`
	Locale          *string         `json:"locale" binding:"omitempty,max=35"`
	DisplayCurrency *string         `json:"displayCurrency" binding:"omitempty,len=3"`
	ExtraSettings   json.RawMessage `json:"extraSettings"`
}

type CreateProfileInput struct {
	UserID string `json:"userId" binding:"required,uuid"`
	ProfileInput
}

type RoleInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
}

type CreateRoleInput struct {
	Name        string  `json:"name" binding:"required,min=1,max=50"`
	Description *string `json:"description"`
}

type CreatePermissionInput struct {
	Action      string  `json:"action" binding:"required,max=50"`
	Subject     string  `json:"subject" binding:"required,max=50"`
	Description *string `json:"description"`
}

type SetPermissionsInput struct {
	PermissionIDs []string `json:"permissionIds" binding:"required,min=1,dive,uuid"`
}

// UpdateSecurityInput is a partial update. An empty pin clears the PIN.
type UpdateSecurityInput struct {
	RecoveryEmail *string `json:"recoveryEmail" binding:"omitempty,email,max=50"`
	Phone         *string `json:"phone" binding:"omitempty,e164"`
	RecoveryHint  *string `json:"recoveryHint"`
	PIN           *string `json:"pin" binding:"omitempty,len=4,numeric"`
}

type VerifyPINInput struct {
	PIN string `json:"pin" binding:"required,len=4,numeric"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
