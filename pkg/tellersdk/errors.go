package tellersdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
)

// Error codes shared between the server and SDK clients.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeInvalidGrant   = "invalid_grant"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeMFARequired    = "mfa_required"
	ErrorCodeForbidden      = "forbidden"
	ErrorCodeRateLimited    = "rate_limit_exceeded"
	ErrorCodeValidation     = "validation_error"
	ErrorCodeToolNotFound   = "tool_not_found"
	ErrorCodeServerError    = "server_error"
)

// APIError is the wire error shape every endpoint uses. It implements the
// error interface so the SDK client can surface it directly.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// WithDescription returns a copy carrying a more specific description.
func (e *APIError) WithDescription(desc string) *APIError {
	clone := *e
	clone.Description = desc
	return &clone
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidJSONBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request body is not valid JSON",
	}

	ErrInvalidGrant = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidGrant,
		Description: "the provided credentials or refresh token are invalid",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, expired, revoked or malformed",
	}

	ErrMFARequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeMFARequired,
		Description: "a one-time code is required to complete this login",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "the caller's role does not permit this operation",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: "too many requests, slow down",
	}

	ErrValidation = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "one or more arguments failed validation",
	}

	ErrToolNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeToolNotFound,
		Description: "no tool with that name exists",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "an unexpected error occurred",
	}
)
