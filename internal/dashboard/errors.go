package dashboard

import (
	"errors"
	"strings"

	"github.com/manikanta7cheruku/agent-fetch/internal/common"
)

// ErrorKind classifies a surface error into the behaviors the UI
// distinguishes.
type ErrorKind int

const (
	// ErrorValidation: empty required input, caught before any network call.
	ErrorValidation ErrorKind = iota
	// ErrorRateLimit: the server reported a rate-limited provider; shown as a
	// friendly retry-later message.
	ErrorRateLimit
	// ErrorServer: any other non-2xx response; the server's detail text is
	// surfaced verbatim.
	ErrorServer
	// ErrorNetwork: the call could not complete at all.
	ErrorNetwork
)

const (
	rateLimitMessage = "The data provider is temporarily rate-limited. Please try again in a few minutes."
	networkMessage   = "Could not reach the Agent Fetch backend. Please check that the server is running."
)

// SurfaceError is an error bound to exactly one surface's error slot.
type SurfaceError struct {
	Kind    ErrorKind
	Message string
}

func (e *SurfaceError) Error() string {
	return e.Message
}

func validationError(message string) *SurfaceError {
	return &SurfaceError{Kind: ErrorValidation, Message: message}
}

func networkError() *SurfaceError {
	return &SurfaceError{Kind: ErrorNetwork, Message: networkMessage}
}

// serverError classifies a server-provided detail string: rate-limit wording
// maps to the friendly message, anything else passes through verbatim.
// Matching free text is fragile, but the backend has no structured error code
// to offer instead.
func serverError(detail string) *SurfaceError {
	if common.HasAny(strings.ToLower(detail), "rate limit", "rate-limit", "429") {
		return &SurfaceError{Kind: ErrorRateLimit, Message: rateLimitMessage}
	}
	return &SurfaceError{Kind: ErrorServer, Message: detail}
}

// asSurfaceError coerces any error into a SurfaceError for an error slot.
func asSurfaceError(err error) *SurfaceError {
	var se *SurfaceError
	if errors.As(err, &se) {
		return se
	}
	return &SurfaceError{Kind: ErrorServer, Message: err.Error()}
}
