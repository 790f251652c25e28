package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when an authenticated call is rejected with
// 401 or 403. Callers must treat the token they used as dead.
var ErrUnauthorized = errors.New("api: session rejected")

// ErrMalformedResponse marks a 2xx body that does not match the endpoint's
// schema. It is always wrapped in a TransportError.
var ErrMalformedResponse = errors.New("api: malformed response")

// ValidationError is a local input rejection. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError covers anything that kept a well-formed answer from
// reaching the caller: dial failures, timeouts, unreadable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer other than an authorization failure.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
