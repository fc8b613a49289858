package common

// Profile defaults applied when a user is created.
const (
	DefaultLocale          = "en-US"
	DefaultDisplayCurrency = "USD"
)

// Well-known role names.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// SystemActor is recorded in the audit log when no authenticated actor exists.
const SystemActor = "system"

// AccessTokenHeaderName is the gRPC metadata key used to carry the access token.
const AccessTokenHeaderName = "authorization"
