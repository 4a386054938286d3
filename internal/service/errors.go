package service

import (
	"errors"
	"fmt"

	"github.com/templui/filenest/internal/repository"
)

// Error kinds reported to callers.
const (
	KindNotFound         = "not_found"
	KindPermissionDenied = "permission_denied"
	KindDuplicateName    = "duplicate_name"
	KindInvalidMove      = "invalid_move"
	KindUnsupportedType  = "unsupported_type"
	KindTreeTooDeep      = "tree_too_deep"
	KindConversion       = "conversion_error"
	KindValidation       = "validation_error"
	KindInternal         = "internal"
)

// Error is a classified failure of a tree operation.
type Error struct {
	Kind    string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found failure regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrDuplicateName    = &Error{Kind: KindDuplicateName, Message: "name already exists"}
	ErrInvalidMove      = &Error{Kind: KindInvalidMove, Message: "invalid move"}
	ErrUnsupportedType  = &Error{Kind: KindUnsupportedType, Message: "unsupported file type"}
	ErrTreeTooDeep      = &Error{Kind: KindTreeTooDeep, Message: "folder tree too deep"}
	ErrConversion       = &Error{Kind: KindConversion, Message: "document conversion failed"}
	ErrValidation       = &Error{Kind: KindValidation, Message: "invalid request"}
)

func newError(kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), err: err}
}

// KindOf classifies err. Unclassified errors are internal. A name clash
// caught by the database counts as a duplicate name.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, repository.ErrDuplicateNode) {
		return KindDuplicateName
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if errors.Is(err, repository.ErrDuplicateNode) {
		return ErrDuplicateName.Message
	}
	return "internal error"
}
