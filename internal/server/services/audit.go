package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Uploader stores an object under key.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

// ExportResult describes an uploaded audit export.
type ExportResult struct {
	Key     string `json:"key"`
	Entries int    `json:"entries"`
}

// AuditService reads the audit log and exports it to object storage.
type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    Uploader
	now         Clock
}

// NewAuditService builds the service. A nil uploader disables Export.
func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, uploader Uploader) *AuditService {
	return &AuditService{db: db, repomanager: m, uploader: uploader, now: dbx.Now}
}

func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error) {
	if filter.Limit < 0 {
		return nil, common.NewError(common.ErrorBadRequest, "limit must not be negative")
	}
	list, err := s.repomanager.Audit(s.db).List(ctx, filter)
	if err != nil {
		return nil, internal(err, "list audit log")
	}
	return list, nil
}

// Export uploads the whole log as JSON lines to audit/YYYY/MM/DD/<uuid>.jsonl.
func (s *AuditService) Export(ctx context.Context) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, common.NewError(common.ErrorUnavailable, "Audit export is not configured")
	}

	entries, err := s.repomanager.Audit(s.db).List(ctx, models.AuditFilter{})
	if err != nil {
		return nil, internal(err, "list audit log")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range entries {
		if err := enc.Encode(&entries[i]); err != nil {
			return nil, internal(err, "encode audit log")
		}
	}

	now := s.now()
	key := fmt.Sprintf("audit/%s/%s.jsonl", now.Format("2006/01/02"), uuid.NewString())

	if err := s.uploader.Upload(ctx, key, buf.Bytes(), "application/x-ndjson"); err != nil {
		return nil, internal(err, "upload audit export")
	}

	if err := recordAudit(ctx, s.repomanager, s.db, now, "audit.export", key, map[string]int{"entries": len(entries)}); err != nil {
		return nil, internal(err, "record audit export")
	}

	return &ExportResult{Key: key, Entries: len(entries)}, nil
}
