package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// ProfileService manages profiles by id and through their owning user.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         Clock
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m, now: dbx.Now}
}

func profileNotFound(id string) error {
	return common.NewError(common.ErrorNotFound, "Profile with ID %s not found", id)
}

// validateProfile checks in and returns the corresponding update with
// locale, currency and extra settings normalized.
func validateProfile(in ProfileInput) (models.ProfileUpdate, error) {
	upd := models.ProfileUpdate{FirstName: in.FirstName, LastName: in.LastName}

	for field, v := range map[string]*string{"firstName": in.FirstName, "lastName": in.LastName} {
		if v == nil {
			continue
		}
		if n := utf8.RuneCountInString(*v); n < 1 || n > 30 {
			return upd, common.NewError(common.ErrorBadRequest, "%s must be between 1 and 30 characters", field)
		}
	}

	if in.Locale != nil {
		tag, err := language.Parse(*in.Locale)
		if err != nil {
			return upd, common.NewError(common.ErrorBadRequest, "Invalid locale '%s'", *in.Locale)
		}
		s := tag.String()
		upd.Locale = &s
	}

	if in.DisplayCurrency != nil {
		unit, err := currency.ParseISO(*in.DisplayCurrency)
		if err != nil {
			return upd, common.NewError(common.ErrorBadRequest, "Invalid currency code '%s'", *in.DisplayCurrency)
		}
		s := unit.String()
		upd.DisplayCurrency = &s
	}

	settings, err := normalizeSettings(in.ExtraSettings)
	if err != nil {
		return upd, err
	}
	upd.ExtraSettings = settings

	return upd, nil
}

// normalizeSettings accepts a JSON object or a JSON string holding one.
// An absent or null value yields nil.
func normalizeSettings(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	invalid := common.NewError(common.ErrorBadRequest, "extraSettings must be a JSON object")

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid
		}
		raw = []byte(s)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, invalid
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, invalid
	}
	return buf.Bytes(), nil
}

// Create adds a profile for an active user that has none.
func (s *ProfileService) Create(ctx context.Context, in CreateProfileInput) (*models.Profile, error) {
	upd, err := validateProfile(in.ProfileInput)
	if err != nil {
		return nil, err
	}

	p := models.NewDefaultProfile(in.UserID)
	p.FirstName, p.LastName = upd.FirstName, upd.LastName
	if upd.Locale != nil {
		p.Locale = *upd.Locale
	}
	if upd.DisplayCurrency != nil {
		p.DisplayCurrency = *upd.DisplayCurrency
	}
	if upd.ExtraSettings != nil {
		p.ExtraSettings = upd.ExtraSettings
	}

	exists := common.NewError(common.ErrorConflict, "Profile for user '%s' already exists", in.UserID)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).FindActiveByID(ctx, in.UserID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return userNotFound(in.UserID)
			}
			return err
		}

		if _, err := s.repomanager.Profiles(tx).FindActiveByUserID(ctx, in.UserID); err == nil {
			return exists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		p.CreatedAt = s.now()
		if _, err := s.repomanager.Profiles(tx).Create(ctx, p); err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return exists
			}
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, p.CreatedAt, "profile.create", "profiles/"+p.ID, nil)
	})
	if err != nil {
		return nil, internal(err, "create profile")
	}

	return p, nil
}

func (s *ProfileService) FindAll(ctx context.Context, includeDeleted bool) ([]models.Profile, error) {
	list, err := s.repomanager.Profiles(s.db).List(ctx, includeDeleted)
	if err != nil {
		return nil, internal(err, "list profiles")
	}
	return list, nil
}

func (s *ProfileService) FindOne(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.repomanager.Profiles(s.db).FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, profileNotFound(id)
		}
		return nil, internal(err, "find profile")
	}
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, id string, in ProfileInput) (*models.Profile, error) {
	upd, err := validateProfile(in)
	if err != nil {
		return nil, err
	}

	var p *models.Profile
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()

		var err error
		if p, err = s.repomanager.Profiles(tx).Update(ctx, id, upd, now); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return profileNotFound(id)
			}
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, now, "profile.update", "profiles/"+id, nil)
	})
	if err != nil {
		return nil, internal(err, "update profile")
	}

	return p, nil
}

func (s *ProfileService) Remove(ctx context.Context, id string) (*models.DeleteConfirmation, error) {
	var conf *models.DeleteConfirmation
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)

		if _, err := repo.FindActiveByID(ctx, id); err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			if _, err := repo.FindDeletedByID(ctx, id); err == nil {
				return common.NewError(common.ErrorAlreadyDeleted, "Profile with ID %s is already deleted", id)
			}
			return profileNotFound(id)
		}

		var err error
		conf, err = s.softDelete(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, internal(err, "remove profile")
	}

	return conf, nil
}

func (s *ProfileService) softDelete(ctx context.Context, tx dbx.DBTX, id string) (*models.DeleteConfirmation, error) {
	at := s.now()
	if err := s.repomanager.Profiles(tx).SoftDelete(ctx, id, at); err != nil {
		return nil, err
	}
	if err := recordAudit(ctx, s.repomanager, tx, at, "profile.remove", "profiles/"+id, nil); err != nil {
		return nil, err
	}
	return models.NewDeleteConfirmation("Profile", "profiles", id, at), nil
}

func (s *ProfileService) Recover(ctx context.Context, id string) (*models.Profile, error) {
	var p *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		deleted, err := s.repomanager.Profiles(tx).FindDeletedByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, "Deleted profile with ID %s not found", id)
			}
			return err
		}

		p, err = s.restore(ctx, tx, deleted)
		return err
	})
	if err != nil {
		return nil, internal(err, "recover profile")
	}

	return p, nil
}

// restore brings a tombstoned profile back. Its owner must be active and
// must not have another active profile.
func (s *ProfileService) restore(ctx context.Context, tx dbx.DBTX, deleted *models.Profile) (*models.Profile, error) {
	if _, err := s.repomanager.Users(tx).FindActiveByID(ctx, deleted.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, userNotFound(deleted.UserID)
		}
		return nil, err
	}

	repo := s.repomanager.Profiles(tx)
	if err := repo.Restore(ctx, deleted.ID); err != nil {
		return nil, conflictOr(err, "An active profile already exists for user '%s'", deleted.UserID)
	}

	p, err := repo.FindActiveByID(ctx, deleted.ID)
	if err != nil {
		return nil, err
	}

	return p, recordAudit(ctx, s.repomanager, tx, s.now(), "profile.recover", "profiles/"+deleted.ID, nil)
}

func (s *ProfileService) activeOwner(ctx context.Context, tx dbx.DBTX, userID string) error {
	if _, err := s.repomanager.Users(tx).FindActiveByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return userNotFound(userID)
		}
		return err
	}
	return nil
}

func profileOfUserNotFound(userID string) error {
	return common.NewError(common.ErrorNotFound, "Profile for user '%s' not found", userID)
}

// GetForUser returns the active profile of an active user.
func (s *ProfileService) GetForUser(ctx context.Context, userID string) (*models.Profile, error) {
	if err := s.activeOwner(ctx, s.db, userID); err != nil {
		return nil, internal(err, "find user")
	}

	p, err := s.repomanager.Profiles(s.db).FindActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, profileOfUserNotFound(userID)
		}
		return nil, internal(err, "find profile")
	}
	return p, nil
}

func (s *ProfileService) UpdateForUser(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	p, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, p.ID, in)
}

// RemoveForUser tombstones the active profile of userID. When only a
// tombstone exists the profile is reported as already deleted.
func (s *ProfileService) RemoveForUser(ctx context.Context, userID string) (*models.DeleteConfirmation, error) {
	var conf *models.DeleteConfirmation
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.activeOwner(ctx, tx, userID); err != nil {
			return err
		}

		repo := s.repomanager.Profiles(tx)
		p, err := repo.FindActiveByUserID(ctx, userID)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			if _, err := repo.FindDeletedByUserID(ctx, userID); err == nil {
				return common.NewError(common.ErrorAlreadyDeleted, "Profile for user '%s' is already deleted", userID)
			}
			return profileOfUserNotFound(userID)
		}

		conf, err = s.softDelete(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, internal(err, "remove profile")
	}

	return conf, nil
}

// RecoverForUser restores the most recently deleted profile of userID.
func (s *ProfileService) RecoverForUser(ctx context.Context, userID string) (*models.Profile, error) {
	var p *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		deleted, err := s.repomanager.Profiles(tx).FindDeletedByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, "No deleted profile found for user '%s'", userID)
			}
			return err
		}

		p, err = s.restore(ctx, tx, deleted)
		return err
	})
	if err != nil {
		return nil, internal(err, "recover profile")
	}

	return p, nil
}
