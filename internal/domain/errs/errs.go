// Package errs is the error taxonomy shared by every usecase. Adapters map
// Kind to a transport status; callers match with errors.Is against the
// sentinel values below.
package errs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindValidation        Kind = "validation_error"
)

var (
	ErrConflict          = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrInvalidState      = &Error{Kind: KindInvalidState, Msg: "invalid state"}
	ErrNotFound          = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrForbidden         = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Msg: "insufficient funds"}
	ErrValidation        = &Error{Kind: KindValidation, Msg: "validation error"}
)

type Error struct {
	Kind Kind
	Msg  string

	// CurrentStatus is set on InvalidState so callers don't retry blindly.
	CurrentStatus string
	// TotalDue is set on InsufficientFunds.
	TotalDue *decimal.Decimal
}

func (e *Error) Error() string {
	switch {
	case e.CurrentStatus != "":
		return fmt.Sprintf("%s (current status: %s)", e.Msg, e.CurrentStatus)
	case e.TotalDue != nil:
		return fmt.Sprintf("%s (total due: %s)", e.Msg, e.TotalDue.StringFixed(2))
	}
	return e.Msg
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func InvalidState(status, format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...), CurrentStatus: status}
}

func InsufficientFunds(totalDue decimal.Decimal, format string, args ...any) error {
	return &Error{Kind: KindInsufficientFunds, Msg: fmt.Sprintf(format, args...), TotalDue: &totalDue}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
