package model

import "errors"

// Domain errors - used by services, mapped to HTTP status codes by handlers
var (
	ErrNotFound             = errors.New("not_found")
	ErrAlreadyExists        = errors.New("already_exists")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid_input")
	ErrTooManyRequests      = errors.New("too_many_requests")
	ErrUnsupportedProvider  = errors.New("unsupported_provider")
	ErrStateValidation      = errors.New("state_validation")
	ErrProviderExchange     = errors.New("provider_exchange")
	ErrProviderProfile      = errors.New("provider_profile")
	ErrCredentialMismatch   = errors.New("credential_mismatch")
	ErrSigningConfiguration = errors.New("signing_configuration")
)

// MsgRequestFailed is shown for every OAuth callback failure. Callers never
// learn whether the state was unknown, replayed, or the provider refused.
const MsgRequestFailed = "Request failed."

// DomainError wraps a domain error with additional context
type DomainError struct {
	Err     error
	Message string
	Field   string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(err error, message string) *DomainError {
	return &DomainError{Err: err, Message: message}
}

func NewFieldError(err error, field, message string) *DomainError {
	return &DomainError{Err: err, Field: field, Message: message}
}
