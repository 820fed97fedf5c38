package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
)

var (
	ErrBadRequest          = errors.New("bad_request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedProvider = errors.New("unsupported_provider")
	ErrAccountConflict     = errors.New("account_conflict")
)

// FlowState is a step of the OAuth sign-in flow.
type FlowState string

const (
	StateAwaitingCode        FlowState = "AWAITING_CODE"
	StateExchanging          FlowState = "EXCHANGING"
	StateFetchingProfile     FlowState = "FETCHING_PROFILE"
	StateReconcilingIdentity FlowState = "RECONCILING_IDENTITY"
	StateIssuingTokens       FlowState = "ISSUING_TOKENS"
	StateDone                FlowState = "DONE"
	StateFailed              FlowState = "FAILED"
)

// FlowError is returned when a sign-in flow fails. State is the step that
// failed; Err wraps one of the package sentinels or an infrastructure error.
type FlowError struct {
	Provider domain.Provider
	State    FlowState
	Err      error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("oauth %s failed in %s: %v", e.Provider.Slug(), e.State, e.Err)
}

func (e *FlowError) Unwrap() error { return e.Err }
