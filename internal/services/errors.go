package services

import "errors"

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrDelivery     = errors.New("delivery failed")
)

// Error carries a caller-facing message and unwraps to its kind.
type Error struct {
	kind error
	msg  string
	err  error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() []error {
	if e.err != nil {
		return []error{e.kind, e.err}
	}
	return []error{e.kind}
}

func newError(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func wrapError(kind error, msg string, cause error) error {
	return &Error{kind: kind, msg: msg, err: cause}
}

func validationError(msg string) error { return newError(ErrValidation, msg) }
func forbiddenError(msg string) error  { return newError(ErrForbidden, msg) }
func notFoundError(msg string) error   { return newError(ErrNotFound, msg) }
func stateError(msg string) error      { return newError(ErrInvalidState, msg) }

var (
	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid email or password")
	ErrAccountInactive    = newError(ErrUnauthorized, "Your account has been deactivated. Contact your manager.")
	ErrLoadNotFound       = notFoundError("Load not found")
	ErrUserNotFound       = notFoundError("User not found")
	ErrDriverNotFound     = notFoundError("Driver not found")
	ErrNotAssigned        = forbiddenError("This load is not assigned to you")
	ErrNotificationGone   = notFoundError("Notification not found")
)
