package models

import "time"

// AuditEntry is an append-only record of an administrative action.
type AuditEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   *string   `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type AuditFilter struct {
	ActorID string
	Limit   int
}
