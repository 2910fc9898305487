// Package apperr defines the error taxonomy shared by all domain
// services. Handlers translate a Kind directly into an HTTP status, so
// services never import net/http and repositories never invent their
// own sentinel values.
package apperr

import "errors"

type Kind int

const (
	// NotFound: a referenced entity is absent.
	NotFound Kind = iota + 1
	// Forbidden: the caller lacks the required relationship to the
	// entity (not owner, host or member).
	Forbidden
	// InvalidState: the operation is not valid for the entity's
	// current lifecycle state.
	InvalidState
	// Conflict: the operation would violate a uniqueness or singleton
	// invariant.
	Conflict
	// Full: a capacity limit has been reached.
	Full
	// InvalidInput: a value is outside its allowed range.
	InvalidInput
	// Precondition: a required aggregate condition (e.g. "all members
	// ready") is unmet.
	Precondition
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the Kind from err, or 0 when err is not an apperr.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
