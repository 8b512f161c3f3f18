package call

import (
	"context"
	"fmt"

	"github.com/tanema/typefence/src/check"
	"github.com/tanema/typefence/src/object"
)

const returnSegment = "the return value"

// Call invokes a plain callable with full checking: arguments are verified
// before the body runs, the result after. A failed argument check means the
// body never executes; a failed return check discards the computed result and
// raises the failure instead.
func Call(fn *object.Func, args ...any) (any, error) {
	sig, err := Resolve(fn)
	if err != nil {
		return nil, err
	}
	if sig.Kind != object.FuncPlain {
		return nil, fmt.Errorf("%s is not a plain callable", fn)
	}
	if sig.Skip {
		return fn.Invoke(args)
	}
	c := check.New()
	if err := sig.CheckArgs(c, args); err != nil {
		return nil, err
	}
	res, err := fn.Invoke(args)
	if err != nil {
		return nil, err
	}
	if err := c.CheckAt(returnSegment, res, sig.Ret); err != nil {
		return nil, err
	}
	return res, nil
}

// Task is the pending result of an asynchronous call. The result type is
// checked when the task is awaited, not when the body finishes, so a caller
// that never awaits never observes a diagnostic for it.
type Task struct {
	done chan struct{}
	res  any
	err  error
	c    *check.Checker
	sig  *Signature
}

// Async invokes an async-kind callable. Arguments are checked synchronously
// before the body is scheduled; an argument failure means nothing runs.
func Async(fn *object.Func, args ...any) (*Task, error) {
	sig, err := Resolve(fn)
	if err != nil {
		return nil, err
	}
	if sig.Kind != object.FuncAsync {
		return nil, fmt.Errorf("%s is not an async callable", fn)
	}
	c := check.New()
	if !sig.Skip {
		if err := sig.CheckArgs(c, args); err != nil {
			return nil, err
		}
	}
	task := &Task{done: make(chan struct{}), c: c, sig: sig}
	go func() {
		task.res, task.err = fn.Invoke(args)
		close(task.done)
	}()
	return task, nil
}

// Await blocks until the result is ready or ctx is cancelled. Cancellation
// before the result materializes skips the result check entirely.
func (t *Task) Await(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
	}
	if t.err != nil {
		return nil, t.err
	}
	if !t.sig.Skip {
		if err := t.c.CheckAt(returnSegment, t.res, t.sig.Ret); err != nil {
			return nil, err
		}
	}
	return t.res, nil
}
