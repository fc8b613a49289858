package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
)

// Profile holds per-user display preferences.
type Profile struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	FirstName       *string         `json:"firstName"`
	LastName        *string         `json:"lastName"`
	Locale          string          `json:"locale"`
	DisplayCurrency string          `json:"displayCurrency"`
	ExtraSettings   json.RawMessage `json:"extraSettings"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       *time.Time      `json:"deletedAt"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	Locale          *string
	DisplayCurrency *string
	ExtraSettings   json.RawMessage
}

type RegionalPreferences struct {
	Locale     string `json:"locale"`
	Timezone   string `json:"timezone"`
	DateFormat string `json:"dateFormat"`
}

type Notifications struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

type AppPreferences struct {
	Theme         string        `json:"theme"`
	Schema        string        `json:"schema"`
	Notifications Notifications `json:"notifications"`
}

type DashboardSettings struct {
	DefaultView  string   `json:"defaultView"`
	ItemsPerPage int      `json:"itemsPerPage"`
	WidgetsOrder []string `json:"widgetsOrder"`
}

// ExtraSettings is the shape of the blob stored in Profile.ExtraSettings
// for new profiles. Clients may store any JSON object there.
type ExtraSettings struct {
	RegionalPreferences RegionalPreferences `json:"regionalPreferences"`
	AppPreferences      AppPreferences      `json:"appPreferences"`
	DashboardSettings   DashboardSettings   `json:"dashboardSettings"`
}

// DefaultExtraSettings returns the settings blob assigned to new profiles.
func DefaultExtraSettings() json.RawMessage {
	b, _ := json.Marshal(ExtraSettings{
		RegionalPreferences: RegionalPreferences{
			Locale:     common.DefaultLocale,
			Timezone:   "UTC",
			DateFormat: "MM/DD/YYYY",
		},
		AppPreferences: AppPreferences{
			Theme:         "light",
			Schema:        "default",
			Notifications: Notifications{Push: true},
		},
		DashboardSettings: DashboardSettings{
			DefaultView:  "overview",
			ItemsPerPage: 10,
			WidgetsOrder: []string{"balance", "transactions", "goals"},
		},
	})
	return b
}

// NewDefaultProfile builds the profile provisioned together with a user.
func NewDefaultProfile(userID string) *Profile {
	return &Profile{
		UserID:          userID,
		Locale:          common.DefaultLocale,
		DisplayCurrency: common.DefaultDisplayCurrency,
		ExtraSettings:   DefaultExtraSettings(),
	}
}
