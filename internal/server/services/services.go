// Package services contains server-side business logic: the users,
// profiles, roles and security workflows including the soft-delete and
// recover lifecycle, authentication, the audit log and health checks.
//
// Every multi-row mutation runs inside dbx.WithTx and only touches
// repositories bound to that transaction.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/auth"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

// Clock returns the current time. Services default to dbx.Now.
type Clock func() time.Time

// recordAudit appends an audit entry on tx for the actor found in ctx.
func recordAudit(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, at time.Time, action, target string, details any) error {
	e := &models.AuditEntry{
		ActorID:   auth.ActorFromContext(ctx),
		Action:    action,
		Target:    target,
		Timestamp: at,
	}
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		s := string(b)
		e.Details = &s
	}
	return m.Audit(tx).Create(ctx, e)
}

// internal hides a storage failure behind common.ErrorInternal while
// keeping domain errors untouched.
func internal(err error, what string) error {
	var de *common.Error
	if errors.As(err, &de) {
		return err
	}
	return errors.Join(common.NewError(common.ErrorInternal, "Failed to %s", what), err)
}

// dedupe returns ids without repeats, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
