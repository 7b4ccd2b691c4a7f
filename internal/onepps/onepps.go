// Package onepps holds the single shared flag two optional poller
// threads (a DCD poller and a GPIO edge poller) publish into, per
// spec.md §5: "Both publish a single boolean onepps into a shared
// structure guarded by one mutex; the worker loop reads-and-clears it
// under the same mutex."
package onepps

import "sync"

// Flag is the shared onepps boolean. The zero value is ready to use.
type Flag struct {
	mu  sync.Mutex
	set bool
}

// Publish is called by a poller goroutine the instant it observes a
// pulse edge (DCD transition or GPIO interrupt). Multiple pulses between
// worker polls collapse into one flag, matching the original
// read-and-clear semantics — the worker only cares whether a pulse
// happened since the last poll, not how many.
func (f *Flag) Publish() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
}

// TakeAndClear reports whether a pulse was published since the last call
// and clears the flag, all under the poller's own mutex so no separate
// synchronization is needed between the worker and the pollers.
func (f *Flag) TakeAndClear() bool {
	f.mu.Lock()
	v := f.set
	f.set = false
	f.mu.Unlock()
	return v
}

// Source names a poller's backing mechanism, surfaced in logs so an
// operator can tell which one is wired up.
type Source int

const (
	SourceNone Source = iota
	SourceDCD
	SourceGPIO
)

func (s Source) String() string {
	switch s {
	case SourceDCD:
		return "dcd"
	case SourceGPIO:
		return "gpio"
	default:
		return "none"
	}
}

// EdgeWaiter abstracts the blocking pin-edge wait spec.md §5 calls the
// only suspension point in a poller besides the wait itself: a DCD
// poller blocks on a modem-status ioctl, a GPIO poller blocks on a
// sysfs/gpiod edge wait. Neither belongs in this package — callers in
// hardware/ supply a concrete implementation.
type EdgeWaiter interface {
	// WaitEdge blocks until the next rising edge, returning an error
	// only if the underlying line can no longer be waited on.
	WaitEdge() error
}

// Run drives one poller loop: wait for an edge, publish, repeat, until
// stop is closed. It is meant to run in its own goroutine, one per
// configured source (spec.md §5: "Two optional poller contexts run in
// separate threads").
func Run(w EdgeWaiter, flag *Flag, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		if err := w.WaitEdge(); err != nil {
			return
		}
		flag.Publish()
	}
}
