package service

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	// ErrNotFound also covers rows that exist but sit outside the caller's
	// visibility, so existence of other tenants' resources never leaks.
	ErrNotFound = errors.New("not found")
)

// BadRequestError marks an operation that is illegal in the current state
// (box not open, vouch already processed, transfer target not a shipper).
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string {
	return e.Msg
}

func badRequest(msg string) error {
	return &BadRequestError{Msg: msg}
}

// IsBadRequest reports whether err is a state-rule violation.
func IsBadRequest(err error) bool {
	var br *BadRequestError
	return errors.As(err, &br)
}
