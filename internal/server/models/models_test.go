package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExtraSettings(t *testing.T) {
	var got ExtraSettings
	require.NoError(t, json.Unmarshal(DefaultExtraSettings(), &got))

	assert.Equal(t, "en-US", got.RegionalPreferences.Locale)
	assert.Equal(t, "UTC", got.RegionalPreferences.Timezone)
	assert.Equal(t, "light", got.AppPreferences.Theme)
	assert.True(t, got.AppPreferences.Notifications.Push)
	assert.False(t, got.AppPreferences.Notifications.SMS)
	assert.Equal(t, 10, got.DashboardSettings.ItemsPerPage)
	assert.Equal(t, []string{"balance", "transactions", "goals"}, got.DashboardSettings.WidgetsOrder)
}

func TestNewDefaultProfile(t *testing.T) {
	p := NewDefaultProfile("u1")
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "en-US", p.Locale)
	assert.Equal(t, "USD", p.DisplayCurrency)
	assert.JSONEq(t, string(DefaultExtraSettings()), string(p.ExtraSettings))
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	b, err := json.Marshal(UserView{User: User{ID: "u1", Email: "a@b.com", PasswordHash: "salt:key"}})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "salt:key")
	assert.NotContains(t, string(b), "roles")
}

func TestUserSecurity_Locked(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	assert.False(t, (&UserSecurity{}).Locked(now))
	assert.True(t, (&UserSecurity{PINLockedUntil: &later}).Locked(now))
	assert.False(t, (&UserSecurity{PINLockedUntil: &earlier}).Locked(now))
}

func TestNewDeleteConfirmation(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewDeleteConfirmation("User", "users", "42", at)

	assert.Equal(t, 200, c.StatusCode)
	assert.Equal(t, "User deleted successfully", c.Message)
	assert.Equal(t, "users/42", c.Resource)
	assert.True(t, c.Deleted)
	assert.Equal(t, at, c.Timestamp)
}
