package storage

import "errors"

// Kind classifies a storage failure so callers can map it onto a response.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalid
	KindConflict
	KindForbidden
)

// Error is a rule violation or missing record. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func invalid(msg string) error {
	return &Error{Kind: KindInvalid, Message: msg}
}

func conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
