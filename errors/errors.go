package errors

import "fmt"

// Core taxonomy. Every error leaving a service wraps exactly one of these.
var (
	ErrValidation = fmt.Errorf("validation error")
	ErrNotFound   = fmt.Errorf("not found")
	ErrAuth       = fmt.Errorf("authentication error")
	ErrStore      = fmt.Errorf("store error")
)

var (
	ErrEmptyContent       = fmt.Errorf("%w: content must not be empty", ErrValidation)
	ErrInvalidUserID      = fmt.Errorf("%w: malformed user identifier", ErrValidation)
	ErrSelfConversation   = fmt.Errorf("%w: sender and receiver must differ", ErrValidation)
	ErrInvalidPassword    = fmt.Errorf("%w: password does not meet complexity requirements", ErrValidation)
	ErrUserAlreadyExists  = fmt.Errorf("%w: email already exists", ErrValidation)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrMissingToken       = fmt.Errorf("%w: token is missing", ErrAuth)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrAuth)
	ErrExpiredToken       = fmt.Errorf("%w: token expired", ErrAuth)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuth)
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
