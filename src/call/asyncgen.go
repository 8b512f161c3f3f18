package call

import (
	"context"
	"fmt"

	"github.com/tanema/typefence/src/check"
	"github.com/tanema/typefence/src/object"
)

// AsyncGenerator wraps an async-generator-shaped callable. Only the yield leg
// is checked: each produced value is verified before delivery. Consumption is
// fire and forget, so there is no sent value and no final return check.
type AsyncGenerator struct {
	fn      *object.Func
	sig     *Signature
	c       *check.Checker
	args    []any
	started bool
	closed  bool
	ctx     context.Context
	cancel  func()
	out     chan genmsg
}

// NewAsyncGenerator prepares a checked async generator. Arguments are checked
// synchronously; the body does not start until the first Next.
func NewAsyncGenerator(fn *object.Func, args ...any) (*AsyncGenerator, error) {
	sig, err := Resolve(fn)
	if err != nil {
		return nil, err
	}
	if sig.Kind != object.FuncAsyncGen {
		return nil, fmt.Errorf("cannot create an async generator from a %s callable", kindName(sig.Kind))
	}
	c := check.New()
	if !sig.Skip {
		if err := sig.CheckArgs(c, args); err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncGenerator{
		fn:     fn,
		sig:    sig,
		c:      c,
		args:   args,
		ctx:    ctx,
		cancel: cancel,
		out:    make(chan genmsg),
	}, nil
}

// Next produces the next value, checking it against the declared yield type
// before delivery. The bool reports exhaustion. Cancelling ctx abandons the
// step without producing a diagnostic for a value that never materialized.
func (g *AsyncGenerator) Next(ctx context.Context) (any, bool, error) {
	if g.closed {
		return nil, true, nil
	}
	if !g.started {
		g.started = true
		go g.run()
	}
	var msg genmsg
	select {
	case msg = <-g.out:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-g.ctx.Done():
		return nil, true, nil
	}
	if msg.done {
		g.closed = true
		return nil, true, msg.err
	}
	if !g.sig.Skip {
		if err := g.c.CheckAt("yielded value", msg.val, g.sig.Yield); err != nil {
			return nil, false, err
		}
	}
	return msg.val, false, nil
}

// Close stops the producer. A body blocked in a yield observes ErrClosed.
func (g *AsyncGenerator) Close() error {
	g.closed = true
	g.cancel()
	return nil
}

func (g *AsyncGenerator) run() {
	yield := func(val any) (any, error) {
		select {
		case g.out <- genmsg{val: val}:
			return nil, nil
		case <-g.ctx.Done():
			return nil, ErrClosed
		}
	}
	_, err := g.fn.InvokeGen(yield, g.args)
	select {
	case g.out <- genmsg{done: true, err: err}:
	case <-g.ctx.Done():
	}
}
