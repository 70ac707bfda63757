package common

import (
	"errors"
	"fmt"

	"github.com/LeeLin2602/lin-compiler/internal/ast"
)

// Error kinds. None of them is recoverable: generation stops at the first one.
var (
	ErrUnresolvedIdentifier    = errors.New("unresolved identifier")
	ErrUnsupportedConstruct    = errors.New("unsupported construct")
	ErrOutputTargetUnavailable = errors.New("output target unavailable")
)

type Error struct {
	Kind error
	Loc  ast.Location
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Loc, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Unresolved(loc ast.Location, name string) error {
	return &Error{Kind: ErrUnresolvedIdentifier, Loc: loc, Msg: name}
}

func Unsupported(loc ast.Location, format string, args ...any) error {
	return &Error{Kind: ErrUnsupportedConstruct, Loc: loc, Msg: fmt.Sprintf(format, args...)}
}
