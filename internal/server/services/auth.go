package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/cryptox"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/auth"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        *models.User `json:"user"`
}

// AuthService verifies credentials and issues access tokens.
type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Login checks email and password of an active user and returns a token
// carrying the user's role names.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := common.NewError(common.ErrorUnauthorized, "Invalid credentials")

	user, err := s.repomanager.Users(s.db).FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, invalid
		}
		return nil, internal(err, "look up user")
	}
	if !user.IsActive {
		return nil, invalid
	}

	ok, err := cryptox.VerifySecret(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, invalid
	}

	assigned, err := s.repomanager.UserRoles(s.db).ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, internal(err, "list user roles")
	}
	roles := make([]string, 0, len(assigned))
	for _, r := range assigned {
		roles = append(roles, r.Name)
	}

	token, err := auth.GenerateToken(user.ID, roles, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, internal(err, "issue token")
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTokenValidityDuration.Seconds()),
		User:        user,
	}, nil
}
