package object

import (
	"fmt"

	"github.com/tanema/typefence/src/types"
)

type (
	// FuncKind describes the invocation protocol of a callable.
	FuncKind int
	// Param captures a single declared parameter of a callable.
	Param struct {
		Name     string
		Type     types.Expr // nil leaves the parameter unchecked
		Variadic bool
	}
	// Proto is the declared prototype of a callable: its ordered parameters
	// and its return, yield, and send types. It is built once when the
	// callable is defined and never mutated.
	Proto struct {
		Name   string
		Params []Param
		Ret    types.Expr // nil leaves the return unchecked
		Yield  types.Expr // generator kinds only
		Send   types.Expr // generator kind only
		Kind   FuncKind
		// Unchecked marks a callable that opted out of checking entirely.
		Unchecked bool
	}
	// Yield is handed to generator bodies to produce a value. It blocks until
	// the consumer asks for the next value and returns what the consumer sent
	// back in.
	Yield func(val any) (any, error)
	// Func is a callable value usable by the call protocol.
	Func struct {
		proto *Proto
		val   func(args []any) (any, error)
		gen   func(y Yield, args []any) (any, error)
	}
)

const (
	// FuncPlain is a callable that runs to completion and returns one result.
	FuncPlain FuncKind = iota
	// FuncAsync is a callable whose result materializes later.
	FuncAsync
	// FuncGenerator is a callable that yields values, accepts sent values,
	// and finishes with a return value.
	FuncGenerator
	// FuncAsyncGen is a generator without the send and final-return legs.
	FuncAsyncGen
)

// Fn creates a callable value from a prototype and a plain body. This enables
// exposing a go function to the call protocol.
func Fn(proto *Proto, fn func(args []any) (any, error)) *Func {
	return &Func{proto: proto, val: fn}
}

// GenFn creates a generator-shaped callable from a prototype and a body that
// produces values through the passed Yield.
func GenFn(proto *Proto, fn func(y Yield, args []any) (any, error)) *Func {
	return &Func{proto: proto, gen: fn}
}

// Proto returns the declared prototype of the callable.
func (fn *Func) Proto() *Proto { return fn.proto }

func (fn *Func) String() string {
	if fn.proto.Name != "" {
		return fmt.Sprintf("function:[%s()]", fn.proto.Name)
	}
	return fmt.Sprintf("function:[%p]", fn)
}

// Invoke runs a plain or async body without any checking.
func (fn *Func) Invoke(args []any) (any, error) {
	if fn.val == nil {
		return nil, fmt.Errorf("%s is not a plain callable", fn)
	}
	return fn.val(args)
}

// InvokeGen runs a generator body without any checking.
func (fn *Func) InvokeGen(y Yield, args []any) (any, error) {
	if fn.gen == nil {
		return nil, fmt.Errorf("%s is not a generator", fn)
	}
	return fn.gen(y, args)
}
