package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/pkg/httpx"
	"github.com/aussiebroadwan/beatme/pkg/slogx"
)

// APIError is the error body every endpoint answers with:
// {"error": Code, "message": Message}.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes e to w.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Message)
}

var (
	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       "BadRequest",
		Message:    "Params are wrong",
	}
	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       "Unauthorized",
		Message:    "Session is wrong",
	}
	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       "NotFound",
		Message:    "Item is not exists",
	}
	ErrUnsupportedProvider = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       "UnsupportedProvider",
		Message:    "Provider is not supported yet",
	}
	ErrAccountConflict = &APIError{
		StatusCode: http.StatusConflict,
		Code:       "AccountConflict",
		Message:    "Account is linked to another user",
	}
	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       "InternalError",
		Message:    "internal error",
	}
)

// writeServiceError maps a service error onto its APIError. Anything not in
// the service taxonomy is logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		ErrBadRequest.WriteError(w)
	case errors.Is(err, service.ErrUnsupportedProvider):
		ErrUnsupportedProvider.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrAccountConflict):
		ErrAccountConflict.WriteError(w)
	case errors.Is(err, service.ErrNoProviderAccount):
		ErrNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		ErrInternal.WriteError(w)
	}
}
