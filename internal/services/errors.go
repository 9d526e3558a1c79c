package services

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a business failure carrying a caller-safe message. Err, when set,
// is the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind and message so wrapped copies still compare
// equal to the package-level values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "User already exists"}
	ErrWorkspaceTaken     = &Error{Kind: KindConflict, Message: "This Workspace name is already taken. Please choose a unique name."}
	ErrWorkspaceNotFound  = &Error{Kind: KindNotFound, Message: "Workspace name not found. Please ask your Admin for the exact ID."}
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "Invalid credentials"}
	ErrAssigneeNotFound   = &Error{Kind: KindNotFound, Message: "Assignee not found"}
	ErrTaskNotFound       = &Error{Kind: KindNotFound, Message: "Task not found or unauthorized"}
)

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf reports the kind of err, defaulting to KindInternal for errors that
// did not originate in this package.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
