package application

import "errors"

// Kind identifies the failure classes returned by Service.
type Kind string

const (
	KindUnknown              Kind = "Unknown"
	KindRegistrationDisabled Kind = "UserRegistrationDisabled"
	KindValidationFailure    Kind = "ValidationFailure"
	KindInvalidEmail         Kind = "InvalidEmail"
	KindEmailExists          Kind = "EmailExists"
	KindHashingFailure       Kind = "UnableToEncryptPassword"
	KindDatabaseError        Kind = "DatabaseError"
	KindInvalidUser          Kind = "InvalidUser"
	KindTokenInvalid         Kind = "TokenInvalid"
)

// Error is the only error type returned by Service. It carries a Kind and
// nothing from the underlying failure.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.Kind)
}

// Is matches any *Error of the same Kind so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrUnknown              = &Error{Kind: KindUnknown}
	ErrRegistrationDisabled = &Error{Kind: KindRegistrationDisabled}
	ErrValidationFailure    = &Error{Kind: KindValidationFailure}
	ErrInvalidEmail         = &Error{Kind: KindInvalidEmail}
	ErrEmailExists          = &Error{Kind: KindEmailExists}
	ErrHashingFailure       = &Error{Kind: KindHashingFailure}
	ErrDatabaseError        = &Error{Kind: KindDatabaseError}
	ErrInvalidUser          = &Error{Kind: KindInvalidUser}
	ErrTokenInvalid         = &Error{Kind: KindTokenInvalid}
)

// KindOf extracts the Kind of err. Errors that did not come from Service are KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind
	}
	return KindUnknown
}
