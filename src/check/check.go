// Package check is the recursive constraint checker. Given a value and a
// declared type expression it dispatches on the expression's shape to the
// registered matching strategy, descending into container elements, union
// alternatives, and resolved references while maintaining the path used to
// qualify diagnostics. Checking never mutates the value and has no side
// effects beyond returning an error.
package check

import (
	"fmt"
	"strings"

	"github.com/tanema/typefence/src/conf"
	"github.com/tanema/typefence/src/object"
	"github.com/tanema/typefence/src/terrors"
	"github.com/tanema/typefence/src/types"
)

// Checker holds the transient state of one call's checks: the descent path
// for diagnostics and the type variable bindings observed so far. A checker
// is owned by a single call and is not shared between goroutines; separate
// calls each construct their own.
type Checker struct {
	path     []string
	bindings map[string]*types.Class
	// depth counts nested check calls. The path cannot serve as the guard
	// because union alternatives restart with an empty path, which would let
	// a self referential alias recurse unbounded.
	depth int
}

// New creates a checker for one call's worth of checks.
func New() *Checker {
	return &Checker{bindings: map[string]*types.Class{}}
}

// Check verifies that val conforms to t using a fresh checker, so type
// variable bindings are scoped to this single check.
func Check(val any, t types.Expr) error {
	return New().Check(val, t)
}

// Check verifies that val conforms to t. A nil expression means the value is
// unchecked and always passes.
func (c *Checker) Check(val any, t types.Expr) error {
	if err := c.check(val, t); err != nil {
		return err
	}
	return nil
}

// CheckAt verifies val against t with a path segment, such as `argument "x"`
// or "yielded value", prefixed onto any resulting diagnostic.
func (c *Checker) CheckAt(segment string, val any, t types.Expr) error {
	if t == nil {
		return nil
	}
	c.push(segment)
	err := c.check(val, t)
	c.pop()
	if err != nil {
		return err
	}
	return nil
}

func (c *Checker) check(val any, t types.Expr) *terrors.Error {
	if t == nil {
		return nil
	}
	if c.depth > conf.MAXDEPTH {
		return c.failReason(t, val, "is nested deeper than %v levels", conf.MAXDEPTH)
	}
	matcher, found := lookup(t.Shape())
	if !found {
		return &terrors.Error{Kind: terrors.UnsupportedErr, Expected: t.String()}
	}
	c.depth++
	err := matcher(c, val, t)
	c.depth--
	return err
}

// sub creates a checker that shares this call's type variable bindings and
// current depth but starts with an empty path, used for union alternatives
// whose diagnostics are reported relative to the union itself.
func (c *Checker) sub() *Checker {
	return &Checker{bindings: c.bindings, depth: c.depth}
}

func (c *Checker) push(segment string) { c.path = append(c.path, segment) }
func (c *Checker) pop()                { c.path = c.path[:len(c.path)-1] }

func (c *Checker) pathString() string { return strings.Join(c.path, " ") }

func (c *Checker) fail(t types.Expr, val any) *terrors.Error {
	return &terrors.Error{
		Kind:     terrors.CheckErr,
		Path:     c.pathString(),
		Expected: t.String(),
		Actual:   object.Repr(val),
	}
}

func (c *Checker) failReason(t types.Expr, val any, format string, args ...any) *terrors.Error {
	err := c.fail(t, val)
	err.Reason = fmt.Sprintf(format, args...)
	return err
}
