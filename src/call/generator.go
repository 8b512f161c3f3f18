package call

import (
	"context"
	"errors"
	"fmt"

	"github.com/tanema/typefence/src/check"
	"github.com/tanema/typefence/src/object"
)

type (
	genstate string
	genmsg   struct {
		val  any
		done bool
		err  error
	}
	// Generator wraps a generator-shaped callable, interposing a check at
	// every boundary: each yielded value is verified before delivery to the
	// consumer, each sent value before delivery to the body, and the final
	// completion value against the declared return type. A failed check
	// leaves the generator suspended and closable.
	Generator struct {
		fn      *object.Func
		sig     *Signature
		c       *check.Checker
		args    []any
		status  genstate
		started bool
		ctx     context.Context
		cancel  func()
		sent    chan any
		out     chan genmsg
	}
)

const (
	genSuspended genstate = "suspended"
	genRunning   genstate = "running"
	genDead      genstate = "dead"
)

// ErrClosed is delivered to a generator body blocked in a yield when the
// generator is closed underneath it.
var ErrClosed = errors.New("generator closed")

// NewGenerator prepares a checked generator from a generator-kind callable.
// Arguments are checked here, before the body ever runs; the body itself does
// not start until the first Resume.
func NewGenerator(fn *object.Func, args ...any) (*Generator, error) {
	sig, err := Resolve(fn)
	if err != nil {
		return nil, err
	}
	if sig.Kind != object.FuncGenerator {
		return nil, fmt.Errorf("cannot create a generator from a %s callable", kindName(sig.Kind))
	}
	c := check.New()
	if !sig.Skip {
		if err := sig.CheckArgs(c, args); err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Generator{
		fn:     fn,
		sig:    sig,
		c:      c,
		args:   args,
		status: genSuspended,
		ctx:    ctx,
		cancel: cancel,
		sent:   make(chan any),
		out:    make(chan genmsg),
	}, nil
}

// Resume drives the generator one step. The first call starts the body and
// ignores send; later calls deliver send into the suspended yield after
// checking it. The returned bool reports completion, in which case the value
// is the checked final return value.
func (g *Generator) Resume(send any) (any, bool, error) {
	switch g.status {
	case genDead:
		return nil, true, errors.New("cannot resume dead generator")
	case genRunning:
		return nil, false, errors.New("generator is already running")
	}

	if g.started {
		if !g.sig.Skip {
			if err := g.c.CheckAt("sent value", send, g.sig.Send); err != nil {
				// the body stays suspended at its yield; the generator can be
				// resumed with a conforming value or closed
				return nil, false, err
			}
		}
		g.status = genRunning
		select {
		case g.sent <- send:
		case <-g.ctx.Done():
			g.status = genDead
			return nil, true, ErrClosed
		}
	} else {
		g.started = true
		g.status = genRunning
		go g.run()
	}

	var msg genmsg
	select {
	case msg = <-g.out:
	case <-g.ctx.Done():
		g.status = genDead
		return nil, true, ErrClosed
	}

	if msg.done {
		g.status = genDead
		if msg.err != nil {
			return nil, true, msg.err
		}
		if !g.sig.Skip {
			if err := g.c.CheckAt(returnSegment, msg.val, g.sig.Ret); err != nil {
				return nil, true, err
			}
		}
		return msg.val, true, nil
	}

	g.status = genSuspended
	if !g.sig.Skip {
		if err := g.c.CheckAt("yielded value", msg.val, g.sig.Yield); err != nil {
			return nil, false, err
		}
	}
	return msg.val, false, nil
}

// Status reports the generator state: suspended, running, or dead.
func (g *Generator) Status() string { return string(g.status) }

// Close shuts the generator down. A body blocked in a yield observes
// ErrClosed and unwinds; closing a dead generator is a no-op.
func (g *Generator) Close() error {
	g.cancel()
	g.status = genDead
	return nil
}

func (g *Generator) run() {
	yield := func(val any) (any, error) {
		select {
		case g.out <- genmsg{val: val}:
		case <-g.ctx.Done():
			return nil, ErrClosed
		}
		select {
		case sent := <-g.sent:
			return sent, nil
		case <-g.ctx.Done():
			return nil, ErrClosed
		}
	}
	ret, err := g.fn.InvokeGen(yield, g.args)
	select {
	case g.out <- genmsg{val: ret, done: true, err: err}:
	case <-g.ctx.Done():
	}
}

func kindName(kind object.FuncKind) string {
	switch kind {
	case object.FuncPlain:
		return "plain"
	case object.FuncAsync:
		return "async"
	case object.FuncGenerator:
		return "generator"
	case object.FuncAsyncGen:
		return "async generator"
	default:
		return "unknown"
	}
}
