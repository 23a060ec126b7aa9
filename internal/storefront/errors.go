package storefront

import (
	"errors"
	"strings"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrUnauthorized = errors.New("downstream credential rejected")
	ErrUnreachable  = errors.New("downstream unreachable")
)

// RejectedError carries the human-readable messages of a downstream 400
// response. It is recoverable: callers re-render with the messages attached.
type RejectedError struct {
	Errors []string
}

func (e *RejectedError) Error() string {
	if len(e.Errors) == 0 {
		return "downstream rejected request"
	}
	return "downstream rejected request: " + strings.Join(e.Errors, "; ")
}

func AsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}
