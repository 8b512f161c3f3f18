// Package terrors is a unified errors package for type checking and signature
// resolution so that failures can be formatted in a unified way and handled in
// a unified way.
package terrors

import (
	"fmt"
	"strings"
)

type (
	// ErrorKind is an enum to describe where the error originates from.
	ErrorKind int
	// Error captures all failures in the typefence runtime. It distinguishes
	// between value mismatches, unsupported type expressions, unresolvable
	// references, and type variable conflicts and will format them accordingly.
	Error struct {
		Kind     ErrorKind
		Path     string   // where in the value the failure happened
		Expected string   // the declared type
		Actual   string   // summary of the offending value
		Reason   string   // overrides the default "is not an instance of" text
		Subs     []*Error // one per union alternative, in declaration order
		Err      error
	}
)

const (
	// CheckErr is a value that does not conform to its declared type.
	CheckErr ErrorKind = iota
	// UnsupportedErr is a declared type expression with no registered matcher.
	UnsupportedErr
	// ReferenceErr is a forward reference that cannot be resolved.
	ReferenceErr
	// ConsistencyErr is a type variable bound to two different types in one call.
	ConsistencyErr
	// ParseErr is a malformed type expression source string.
	ParseErr
)

func (err *Error) Error() string {
	switch err.Kind {
	case CheckErr:
		if len(err.Subs) > 0 {
			parts := []string{withPath(err.Path, "did not match any element in the union:")}
			for _, sub := range err.Subs {
				parts = append(parts, fmt.Sprintf("  %s: %s", sub.Expected, sub.reason()))
			}
			return strings.Join(parts, "\n")
		}
		return withPath(err.Path, err.reason())
	case UnsupportedErr:
		return fmt.Sprintf("unsupported type expression %v", err.Expected)
	case ReferenceErr:
		return fmt.Sprintf("cannot resolve reference %v", err.Expected)
	case ConsistencyErr:
		return withPath(err.Path, err.Reason)
	case ParseErr:
		return fmt.Sprintf("parse error: %v", err.Err)
	default:
		return err.reason()
	}
}

func (err *Error) Unwrap() error { return err.Err }

func (err *Error) reason() string {
	if err.Reason != "" {
		return err.Reason
	}
	return "is not an instance of " + err.Expected
}

func withPath(path, msg string) string {
	if path == "" {
		return "value " + msg
	}
	return path + " " + msg
}
