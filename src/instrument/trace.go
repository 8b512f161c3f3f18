package instrument

import (
	"fmt"
	"io"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Tracer writes timestamped check events. The timestamp format is an strftime
// pattern so it can be configured the same way across host languages. A nil
// tracer discards everything.
type Tracer struct {
	out  io.Writer
	strf *strftime.Strftime
}

// NewTracer creates a tracer writing to out with the passed strftime pattern.
func NewTracer(out io.Writer, pattern string) (*Tracer, error) {
	strf, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid trace time format '%v'", pattern)
	}
	return &Tracer{out: out, strf: strf}, nil
}

// Logf writes a single timestamped trace line.
func (t *Tracer) Logf(format string, args ...any) {
	if t == nil {
		return
	}
	fmt.Fprintf(t.out, "[%s] %s\n", t.strf.FormatString(time.Now()), fmt.Sprintf(format, args...))
}
