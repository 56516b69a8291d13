package core

import "github.com/pkg/errors"

// Relationship and identity error kinds. Services wrap these with context;
// the boundary layer switches on errors.Cause to pick a status.
var (
	// ErrNotFound indicates that a referenced id is absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPresent indicates that the child is already linked to this parent.
	// A duplicate add is an error, never a no-op.
	ErrAlreadyPresent = errors.New("already present")

	// ErrNotLinked indicates that the child is not currently in the parent's collection.
	ErrNotLinked = errors.New("not linked")

	// ErrMembersNotEnrolled indicates that a group cannot join a commission
	// because some of its members are not enrolled students of that commission.
	ErrMembersNotEnrolled = errors.New("group members not enrolled in commission")

	// ErrAlreadyOwned indicates that a project already belongs to a different
	// group or student.
	ErrAlreadyOwned = errors.New("project already owned")

	// ErrLastMember indicates that removing the member would leave the group empty.
	ErrLastMember = errors.New("group cannot be left without members")

	// ErrEmailTaken indicates that the email is already registered for that role.
	ErrEmailTaken = errors.New("a user with this email already exists")

	// ErrInUse indicates that the entity is still referenced and cannot be deleted.
	ErrInUse = errors.New("still referenced")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
