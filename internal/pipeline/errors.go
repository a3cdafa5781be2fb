package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInputNotFound     Kind = "input not found"
	KindMissingCredential Kind = "missing credential"
	KindImageNotFound     Kind = "image not found"
	KindInvalidArgument   Kind = "invalid argument"
	KindProvider          Kind = "provider error"
	KindDownload          Kind = "download error"
	KindIO                Kind = "io error"
)

// Error is a classified failure of one pipeline operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels below, so errors.Is(err, ErrProvider) works
// for any wrapped provider failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrInputNotFound     = &Error{Kind: KindInputNotFound}
	ErrMissingCredential = &Error{Kind: KindMissingCredential}
	ErrImageNotFound     = &Error{Kind: KindImageNotFound}
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrProvider          = &Error{Kind: KindProvider}
	ErrDownload          = &Error{Kind: KindDownload}
	ErrIO                = &Error{Kind: KindIO}
)

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
