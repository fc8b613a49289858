package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	var syntaxErr error = json.Unmarshal([]byte("{"), &struct{}{})
	var typeErr error = json.Unmarshal([]byte(`{"a":"x"}`), &struct{ A int }{})

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
		details any
	}{
		{"http error", NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), 405, CodeHTTP, "Method Not Allowed", "Method Not Allowed"},
		{"http error with details", &HTTPError{Status: 404, Message: "Not Found", Details: "Wrong route or resource"}, 404, CodeHTTP, "Not Found", "Wrong route or resource"},
		{"not found", common.NewError(common.ErrorNotFound, "User with ID 'x' not found"), 404, CodeClient, "User with ID 'x' not found", "Not Found"},
		{"already deleted", common.NewError(common.ErrorAlreadyDeleted, "gone"), 410, CodeClient, "gone", "Gone"},
		{"conflict", common.NewError(common.ErrorConflict, "dup"), 409, CodeClient, "dup", "Conflict"},
		{"bad request", common.NewError(common.ErrorBadRequest, "bad"), 400, CodeClient, "bad", "Bad Request"},
		{"unauthorized", common.NewError(common.ErrorUnauthorized, "no"), 401, CodeClient, "no", "Unauthorized"},
		{"forbidden", common.NewError(common.ErrorForbidden, "no"), 403, CodeClient, "no", "Forbidden"},
		{"wrapped kind", fmt.Errorf("ctx: %w", common.NewError(common.ErrorNotFound, "missing")), 404, CodeClient, "missing", "Not Found"},
		{"unavailable", common.NewError(common.ErrorUnavailable, "Database is not connected"), 503, CodeUnavailable, "Database is not connected", "Service Unavailable"},
		{"syntax", syntaxErr, 400, CodeMalformed, "Malformed JSON", syntaxErr.Error()},
		{"type", typeErr, 400, CodeMalformed, "Malformed JSON", typeErr.Error()},
		{"eof", io.EOF, 400, CodeMalformed, "Malformed JSON", "EOF"},
		{"unknown", errors.New("secret driver detail"), 500, CodeUnknown, "Unexpected error occurred", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FormatError(tt.err)
			assert.Equal(t, tt.status, p.StatusCode)
			assert.Equal(t, tt.code, p.Code)
			assert.Equal(t, tt.message, p.Message)
			assert.Equal(t, tt.details, p.Details)
		})
	}
}

func TestFormatError_InternalWinsOverCause(t *testing.T) {
	// An internal failure whose cause chain also holds a client kind.
	err := errors.Join(
		common.NewError(common.ErrorInternal, "Failed to create user"),
		common.NewError(common.ErrorConflict, "driver conflict"),
	)

	p := FormatError(err)
	assert.Equal(t, http.StatusInternalServerError, p.StatusCode)
	assert.Equal(t, CodeInternal, p.Code)
	assert.Equal(t, "Failed to create user", p.Message)
	assert.Equal(t, "Internal Server Error", p.Details)
}

func TestFormatError_Validation(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)

	type input struct {
		Email string   `json:"email" validate:"required,email"`
		PIN   string   `json:"pin" validate:"len=4"`
		IDs   []string `json:"ids" validate:"dive,uuid4"`
	}
	err := v.Struct(input{PIN: "12", IDs: []string{"x"}})
	require.Error(t, err)

	p := FormatError(err)
	assert.Equal(t, http.StatusBadRequest, p.StatusCode)
	assert.Equal(t, CodeValidation, p.Code)
	assert.Equal(t, "Validation failed", p.Message)
	assert.Equal(t, []string{
		"email is required",
		"pin must be exactly 4 characters long",
		"ids[0] must be a UUID",
	}, p.Details)
}
