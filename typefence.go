package typefence

import (
	"github.com/tanema/typefence/src/call"
	"github.com/tanema/typefence/src/check"
	"github.com/tanema/typefence/src/object"
	"github.com/tanema/typefence/src/types"
)

// Check will simply verify that a value conforms to a type expression.
func Check(val any, t types.Expr) error {
	return check.Check(val, t)
}

// CheckString parses a textual type expression and verifies a value against
// it. Unknown names resolve lazily against ns.
func CheckString(val any, src string, ns types.Namespace) error {
	t, err := types.Parse(src, ns)
	if err != nil {
		return err
	}
	return check.Check(val, t)
}

// Call invokes a plain callable with argument and return checking.
func Call(fn *object.Func, args ...any) (any, error) {
	return call.Call(fn, args...)
}

// Async invokes an async callable in the background with argument checking
// up front. The return value is checked when the task is awaited.
func Async(fn *object.Func, args ...any) (*call.Task, error) {
	return call.Async(fn, args...)
}

// Generator creates a checked generator from a generator-shaped callable.
func Generator(fn *object.Func, args ...any) (*call.Generator, error) {
	return call.NewGenerator(fn, args...)
}

// AsyncGenerator creates a checked async generator. Only yielded values are
// checked, there is no return or send leg.
func AsyncGenerator(fn *object.Func, args ...any) (*call.AsyncGenerator, error) {
	return call.NewAsyncGenerator(fn, args...)
}

// ParseType parses a textual type expression into the expression model.
func ParseType(src string, ns types.Namespace) (types.Expr, error) {
	return types.Parse(src, ns)
}
