package gogogate

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailed means a login attempt came back without the
	// authenticated page markup. Wrong credentials, usually.
	ErrAuthFailed = errors.New("gogogate2: authentication failed")

	// ErrInvalidDoor is returned for door numbers outside 1..3 before any
	// request is sent.
	ErrInvalidDoor = errors.New("gogogate2: door number out of range")

	// ErrToggleRejected means the device answered the toggle request but
	// did not accept it.
	ErrToggleRejected = errors.New("gogogate2: toggle rejected by device")
)

// sessionError marks a response that looks like an expired or missing
// session: connection failures, non-200 statuses, and 200s whose body is
// empty or unparseable. The firmware gives no better signal, so all of
// these trigger one re-login and retry.
type sessionError struct {
	cause error
}

func (e *sessionError) Error() string {
	return fmt.Sprintf("gogogate2: session invalid: %v", e.cause)
}

func (e *sessionError) Unwrap() error {
	return e.cause
}

func sessionErr(format string, args ...any) error {
	return &sessionError{cause: fmt.Errorf(format, args...)}
}
