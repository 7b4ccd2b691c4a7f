// Package trace provides the low-level, allocation-conscious tracer used by
// the framer dispatcher, the top708 bridge and the transports.
//
// It plays the same role as the teacher's stream.Tracet placeholder, but
// actually writes: a package-level level and sink, set once at startup by
// cmd/gnssframed, and read (never locked) on every call. Application-level
// logging (startup, shutdown, resync counters) belongs to logrus instead;
// see internal/worker.
package trace

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

var (
	level int32 = 0
	sink  io.Writer
)

func init() {
	sink = os.Stderr
}

// SetLevel sets the trace verbosity. 0 disables tracing entirely.
func SetLevel(n int) {
	atomic.StoreInt32(&level, int32(n))
}

// SetSink redirects trace output. Passing nil restores os.Stderr.
func SetSink(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	sink = w
}

// Enabled reports whether level n would currently be traced, so that a
// caller building an expensive format argument can skip the work entirely.
func Enabled(n int) bool {
	return int32(n) <= atomic.LoadInt32(&level)
}

// T emits a trace line at the given level. Callers on a hot path should
// guard with Enabled(n) first if the arguments are non-trivial to compute.
func T(n int, format string, args ...interface{}) {
	if !Enabled(n) {
		return
	}
	fmt.Fprintf(sink, "%s "+format, append([]interface{}{time.Now().Format("15:04:05.000000")}, args...)...)
}

// TickGet returns the wall-clock time in milliseconds since the Unix
// epoch, truncated to 32 bits. It reads the wall clock, so it is not
// monotonic and moves with any wall-clock adjustment.
func TickGet() uint32 {
	return uint32(time.Now().UnixNano() / int64(time.Millisecond))
}
