package models

import (
	"fmt"
	"net/http"
	"time"
)

// DeleteConfirmation is returned by every soft-delete operation.
type DeleteConfirmation struct {
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Resource   string    `json:"resource"`
	Deleted    bool      `json:"deleted"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDeleteConfirmation builds the payload for entity (e.g. "User") stored
// under collection (e.g. "users").
func NewDeleteConfirmation(entity, collection, id string, at time.Time) *DeleteConfirmation {
	return &DeleteConfirmation{
		StatusCode: http.StatusOK,
		Message:    entity + " deleted successfully",
		Resource:   fmt.Sprintf("%s/%s", collection, id),
		Deleted:    true,
		Timestamp:  at,
	}
}
