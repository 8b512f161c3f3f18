// Package call implements the call-site protocol: argument checking before a
// body executes, result checking after, and the yield/send/return legs of
// generator-shaped callables. Signatures are resolved once per callable and
// cached process wide.
package call

import (
	"fmt"
	"sync"

	"github.com/tanema/typefence/src/check"
	"github.com/tanema/typefence/src/object"
	"github.com/tanema/typefence/src/types"
)

// Signature is the resolved, validated record of a callable's declared types.
// It is built at most once per callable and never mutated afterward.
type Signature struct {
	Params []object.Param
	Ret    types.Expr
	Yield  types.Expr
	Send   types.Expr
	Kind   object.FuncKind
	// Skip is set for callables that opted out of checking entirely; the
	// protocol bypasses them without building checkers per call.
	Skip bool
}

// sigs caches one Signature per callable identity for the life of the
// process. Concurrent first use may race to build, but LoadOrStore keeps a
// single winner so every caller observes the same Signature.
var sigs sync.Map

// Resolve builds or fetches the signature for a callable. Declared type
// expressions with no registered matching strategy fail here, not at call
// time. Build failures are not cached so they surface on every attempt.
func Resolve(fn *object.Func) (*Signature, error) {
	if cached, found := sigs.Load(fn); found {
		return cached.(*Signature), nil
	}
	proto := fn.Proto()
	sig := &Signature{
		Params: proto.Params,
		Ret:    proto.Ret,
		Yield:  proto.Yield,
		Send:   proto.Send,
		Kind:   proto.Kind,
		Skip:   proto.Unchecked,
	}
	if !sig.Skip {
		for _, param := range proto.Params {
			if err := check.Validate(param.Type); err != nil {
				return nil, err
			}
		}
		for _, t := range []types.Expr{proto.Ret, proto.Yield, proto.Send} {
			if err := check.Validate(t); err != nil {
				return nil, err
			}
		}
	}
	cached, _ := sigs.LoadOrStore(fn, sig)
	return cached.(*Signature), nil
}

// CheckArgs verifies the bound arguments against the declared parameters in
// order. Variadic parameters consume and check all remaining arguments.
func (sig *Signature) CheckArgs(c *check.Checker, args []any) error {
	for i, param := range sig.Params {
		segment := fmt.Sprintf("argument %q", param.Name)
		if param.Variadic {
			if param.Type == nil {
				return nil
			}
			for _, arg := range args[min(i, len(args)):] {
				if err := c.CheckAt(segment, arg, param.Type); err != nil {
					return err
				}
			}
			return nil
		}
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		if err := c.CheckAt(segment, arg, param.Type); err != nil {
			return err
		}
	}
	return nil
}
