package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCategory signals a request without a usable game_id.
	ErrMissingCategory = errors.New("missing required parameter: game_id")
	// ErrUpstream signals a failed call to the streaming platform API.
	ErrUpstream = errors.New("upstream error")
)

// UpstreamError carries the provider status and diagnostic detail of a failed page fetch.
// HTTPStatus is 0 for transport failures (DNS, timeout, connection reset); Err then holds the cause.
type UpstreamError struct {
	HTTPStatus int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrUpstream.Error(), e.HTTPStatus, e.Detail)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// NewUpstreamError creates an upstream error.
func NewUpstreamError(status int, detail string) error {
	return &UpstreamError{HTTPStatus: status, Detail: detail}
}

// NewTransportError creates an upstream error for a request that never got a response.
// The cause stays matchable, so a cancelled caller is distinguishable from a broken upstream.
func NewTransportError(detail string, cause error) error {
	return &UpstreamError{Detail: detail, Err: cause}
}
