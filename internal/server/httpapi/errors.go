// Package httpapi is the REST surface of budgetkeeper: a gin engine under
// /v1 whose errors all pass through FormatError.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

// Error codes reported in Problem.Code.
const (
	CodeHTTP        = "HTTP_EXCEPTION"
	CodeClient      = "CLIENT_EXCEPTION"
	CodeValidation  = "VALIDATION_ERROR"
	CodeMalformed   = "MALFORMED_JSON"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal    = "INTERNAL_EXCEPTION"
	CodeUnknown     = "UNKNOWN_ERROR"
)

// HTTPError is raised by the transport itself: unknown routes, wrong
// methods and authentication failures.
type HTTPError struct {
	Status  int
	Message string
	Details string
}

func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// Problem is the JSON body of every error response.
type Problem struct {
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details"`
	Timestamp  string `json:"timestamp"`
}

// FormatError maps any error to a status, code, message and details. Path
// and Timestamp are left for the caller. The text of unknown errors is
// never exposed.
func FormatError(err error) Problem {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		details := httpErr.Details
		if details == "" {
			details = http.StatusText(httpErr.Status)
		}
		return Problem{StatusCode: httpErr.Status, Code: CodeHTTP, Message: httpErr.Message, Details: details}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Problem{
			StatusCode: http.StatusBadRequest,
			Code:       CodeValidation,
			Message:    "Validation failed",
			Details:    fieldMessages(verrs),
		}
	}

	if isMalformedJSON(err) {
		return Problem{StatusCode: http.StatusBadRequest, Code: CodeMalformed, Message: "Malformed JSON", Details: err.Error()}
	}

	if errors.Is(err, common.ErrorInternal) {
		return domain(http.StatusInternalServerError, CodeInternal, err)
	}

	for _, k := range []struct {
		kind   error
		status int
	}{
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorAlreadyDeleted, http.StatusGone},
		{common.ErrorConflict, http.StatusConflict},
		{common.ErrorBadRequest, http.StatusBadRequest},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrorForbidden, http.StatusForbidden},
	} {
		if errors.Is(err, k.kind) {
			return domain(k.status, CodeClient, err)
		}
	}

	if errors.Is(err, common.ErrorUnavailable) {
		return domain(http.StatusServiceUnavailable, CodeUnavailable, err)
	}

	return Problem{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeUnknown,
		Message:    "Unexpected error occurred",
		Details:    "",
	}
}

func domain(status int, code string, err error) Problem {
	return Problem{StatusCode: status, Code: code, Message: common.Message(err), Details: http.StatusText(status)}
}

func isMalformedJSON(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func fieldMessages(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be an email", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a UUID", field)
	case "e164":
		return fmt.Sprintf("%s must be a phone number in E.164 format", field)
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}
