package bigbook

import (
	"errors"
	"fmt"
)

// ErrUpstream matches every failure returned by Client.
var ErrUpstream = errors.New("upstream catalog error")

// UpstreamError describes a failed call to the catalog service.
// StatusCode is zero for transport failures.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bigbook %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("bigbook %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.StatusCode == 404
}
