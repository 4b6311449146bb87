package export

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindConnection
	KindQuery
	KindRow
	KindWrite
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	case KindRow:
		return "row"
	case KindWrite:
		return "write"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Error classifies a failed export. The underlying error is kept intact so
// the driver's own message reaches the operator.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
