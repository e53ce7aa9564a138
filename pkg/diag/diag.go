// Package diag defines the positioned errors reported by the parser and
// resolver, and a List that accumulates them.
package diag

import (
	"errors"
	"fmt"

	"gofront/pkg/token"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// Grammar: a required token or sub-construct is missing after the parser
	// committed to a production.
	Grammar Kind = iota
	// Unresolved: a name has no visible declaration.
	Unresolved
	// Cyclic: a structure contains itself by value.
	Cyclic
	// NotAType: a type position names a declaration that is not a structure.
	NotAType
	// Internal: a parser or resolver invariant was violated.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Grammar:
		return "grammar"
	case Unresolved:
		return "unresolved"
	case Cyclic:
		return "cyclic"
	case NotAType:
		return "not a type"
	case Internal:
		return "internal error"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a single diagnostic at a source position.
type Error struct {
	Kind Kind
	Pos  token.Pos
	Msg  string
}

// Errorf builds an Error with a formatted message.
func Errorf(kind Kind, pos token.Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v: %s", e.Pos, e.Kind, e.Msg)
}

// List collects diagnostics. The zero value is ready to use.
type List struct {
	Errors []*Error
	// Limit caps the number of collected errors; 0 means unlimited.
	Limit int
}

// Add appends e and reports whether the list is still below its limit.
func (l *List) Add(e *Error) bool {
	if l.Limit > 0 && len(l.Errors) >= l.Limit {
		return false
	}
	l.Errors = append(l.Errors, e)
	return l.Limit == 0 || len(l.Errors) < l.Limit
}

// Full reports whether the limit has been reached.
func (l *List) Full() bool {
	return l.Limit > 0 && len(l.Errors) >= l.Limit
}

func (l *List) Len() int { return len(l.Errors) }

// Err returns nil for an empty list, the only error for a list of one, and
// the list itself otherwise.
func (l *List) Err() error {
	switch len(l.Errors) {
	case 0:
		return nil
	case 1:
		return l.Errors[0]
	}
	return l
}

func (l *List) Error() string {
	switch len(l.Errors) {
	case 0:
		return "no errors"
	case 1:
		return l.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors, first error was: %v", len(l.Errors), l.Errors[0])
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (l *List) Unwrap() []error {
	errs := make([]error, len(l.Errors))
	for i, e := range l.Errors {
		errs[i] = e
	}
	return errs
}

// IsKind reports whether err is, or wraps, a diagnostic of the given kind.
func IsKind(err error, kind Kind) bool {
	var list *List
	if errors.As(err, &list) {
		for _, e := range list.Errors {
			if e.Kind == kind {
				return true
			}
		}
		return false
	}
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// All flattens err into its diagnostics.
func All(err error) []*Error {
	var list *List
	if errors.As(err, &list) {
		return list.Errors
	}
	var e *Error
	if errors.As(err, &e) {
		return []*Error{e}
	}
	return nil
}
