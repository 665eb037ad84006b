package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage means the caller submitted an empty image payload.
	ErrNoImage = errors.New("no image provided")
	// ErrUserIDRequired guards every scan operation.
	ErrUserIDRequired     = errors.New("user id is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrDiseaseNotFound    = errors.New("disease not found")
)

// QuotaGuidance is returned to callers when every model attempt ended in
// rate limiting.
const QuotaGuidance = "API quota exceeded. Please wait 30-60 seconds and try again, or check your billing at https://ai.google.dev"

// QuotaError reports that the whole fallback chain was exhausted by
// rate-limit/quota failures.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string { return QuotaGuidance }
func (e *QuotaError) Unwrap() error { return e.Err }

// MalformedResponseError reports that the model replied with text that is
// not a valid diagnosis. It is fatal and never retried.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("model returned malformed diagnosis: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
