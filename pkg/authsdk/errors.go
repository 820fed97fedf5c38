package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes the service answers with.
const (
	ErrorCodeBadRequest          = "BadRequest"
	ErrorCodeUnauthorized        = "Unauthorized"
	ErrorCodeNotFound            = "NotFound"
	ErrorCodeUnsupportedProvider = "UnsupportedProvider"
	ErrorCodeAccountConflict     = "AccountConflict"
	ErrorCodeTooManyRequests     = "TooManyRequests"
	ErrorCodeInternal            = "InternalError"
)

// ErrNoRefreshToken is returned by Session.Refresh once the session has
// been logged out.
var ErrNoRefreshToken = errors.New("authsdk: session has no refresh token")

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// parseErrorResponse builds an *APIError from an error response. Bodies
// that aren't the service's error shape fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeInternal,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
