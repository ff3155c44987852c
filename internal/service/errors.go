package service

import "errors"

// Access denial and lookup errors returned by the vault lifecycle engine.
// Each is distinct so the HTTP layer can render a precise message; an unknown
// id and a purged id are deliberately the same error to avoid enumeration.
var (
	ErrInvalidLink     = errors.New("invalid link")
	ErrExpired         = errors.New("link expired")
	ErrAlreadyConsumed = errors.New("link already used")
	ErrLimitReached    = errors.New("access limit reached")

	ErrPasswordRequired = errors.New("password required")
	ErrPasswordInvalid  = errors.New("invalid password")

	ErrOwnerAuthRequired = errors.New("owner authentication required")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError reports rejected user input. The reason is safe to surface
// to the caller verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErr(reason string) error {
	return &ValidationError{Reason: reason}
}
