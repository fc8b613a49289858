package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
)

type HealthService struct {
	db *sql.DB
}

func NewHealthService(db *sql.DB) *HealthService {
	return &HealthService{db: db}
}

// Ping reports whether the database answers.
func (s *HealthService) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return common.NewError(common.ErrorUnavailable, "Database is not connected")
	}
	return nil
}
