package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by controllers when input fails a local rule
// (e.g. missing required field, end date not after start date). No network
// call is made once this error is produced.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnavailable is returned by the profile store when the backing service
// cannot be reached right now. It is a transient failure.
var ErrUnavailable = errors.New("service unavailable")

// ErrResourceExhausted is returned by the profile store when the backing
// service refuses work for lack of resources (quota, connections, disk).
// It is a transient failure.
var ErrResourceExhausted = errors.New("resource exhausted")

// ErrNoSession is returned when an operation requires a signed-in identity
// and none is present.
var ErrNoSession = errors.New("no active session")

// IsTransient reports whether err is expected to resolve on retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrResourceExhausted)
}
