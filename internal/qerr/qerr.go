// Package qerr defines the error taxonomy shared across the core: a small
// set of error kinds (not types) that collaborators switch on, wrapping an
// underlying cause the way the teacher's storage layer wraps database/sql
// errors with operation context.
package qerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for upstream exit-code / usage-error mapping.
// The mapping from Kind to CLI exit codes lives in the external CLI
// collaborator (spec.md §6); the core only tags errors with a Kind.
type Kind int

const (
	// Other is the fallthrough kind: a human message with no finer
	// classification, used for compaction-invariant violations and
	// anything else that doesn't fit a more specific kind.
	Other Kind = iota
	UnknownFormat
	DuplicateFormat
	UsageError
	StoreNotFound
	InvalidStore
	NoteNotFound
	InvalidFrontmatter
	Io
	Yaml
	Json
	Toml
)

func (k Kind) String() string {
	switch k {
	case UnknownFormat:
		return "UnknownFormat"
	case DuplicateFormat:
		return "DuplicateFormat"
	case UsageError:
		return "UsageError"
	case StoreNotFound:
		return "StoreNotFound"
	case InvalidStore:
		return "InvalidStore"
	case NoteNotFound:
		return "NoteNotFound"
	case InvalidFrontmatter:
		return "InvalidFrontmatter"
	case Io:
		return "Io"
	case Yaml:
		return "Yaml"
	case Json:
		return "Json"
	case Toml:
		return "Toml"
	default:
		return "Other"
	}
}

// Error is a structured error carrying a Kind and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Path    string // offending file/path, when relevant (InvalidFrontmatter, NoteNotFound, ...)
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithPath attaches an offending path to an error, wrapping it as an Error
// of the given kind if it isn't one already.
func WithPath(kind Kind, path string, cause error) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		e.Path = path
		return e
	}
	return &Error{Kind: kind, Message: cause.Error(), Path: path, Cause: cause}
}

// Is reports whether err is a qerr.Error (or wraps one) of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
