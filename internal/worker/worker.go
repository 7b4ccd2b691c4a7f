// Package worker runs the single worker loop spec.md §5 describes: a
// readiness multiplexer standing in for select/poll, driving one input
// stream through the multi-framer dispatcher into a shared database,
// with signal-driven cancellation and an optional onepps flag folded in
// once per tick. Grounded on the teacher's context.Context/select-driven
// run loop in pkg/server.Server.run, generalized from an HTTP retry loop
// to a byte-stream poll loop.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arlobridge/gnssframe/internal/onepps"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/framer"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/nmea"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/rtcm"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/ubx"
)

// Maximum framed unit sizes per spec.md §3.
const (
	maxNMEAFrame = 512
	maxUBXFrame  = 1024
	maxRTCMFrame = 1029
)

// pollTimeout stands in for the readiness multiplexer's 1-second bound
// (spec.md §5: "the multiplexer wait (bounded by a 1-second timeout)").
const pollTimeout = time.Second

// readBufferSize is sized for the worst case: one RTCM maximum plus
// headroom for a partial frame left over from the previous read.
const readBufferSize = 4096

// Source is the only blocking surface the worker touches besides the
// poll timeout itself and the optional onepps pollers' own edge waits
// (spec.md §5's three suspension points). transport.Serial satisfies
// it, as does hardware/topgnss/top708's SerialPort by way of its Read
// method signature; transport.UDP has no Read method (it exposes
// Send/Receive) and does not.
type Source interface {
	Read(buf []byte) (int, error)
}

// Options configures a Loop run. All fields are optional except Source
// and DB.
type Options struct {
	Source Source
	DB     *gnssdb.DB

	// Onepps is read-and-cleared once per tick if non-nil (spec.md §5).
	Onepps *onepps.Flag

	// Debug is toggled by the caller's SIGHUP handler; the loop reads it
	// to decide whether to emit per-frame trace logging. Spec.md §5:
	// "SIGHUP (reserved, toggles debug)".
	Debug *atomic.Bool

	// Forward, if set, is handed every completed frame's raw bytes
	// before dispatch, letting a caller mirror the stream out over the
	// datagram envelope (spec.md §4.8, §6's -G/-Y flags) without the
	// loop itself knowing about UDP.
	Forward func(raw []byte)

	Log *logrus.Entry
}

// Stats accumulates the counters a caller reports at shutdown: frames
// routed per format, and the dispatcher's resync count.
type Stats struct {
	NMEAFrames int
	UBXFrames  int
	RTCMFrames int
	Resyncs    int
}

// Loop runs until ctx is cancelled or Source.Read returns a
// non-timeout error. It reads in a background goroutine so the select
// below can also service the poll-timeout tick and onepps without
// blocking on a read that may not return for a while; this mirrors the
// teacher's own goroutine-plus-channel structuring of Server.connect's
// streaming write loop, applied here to a streaming read.
func Loop(ctx context.Context, opts Options) (Stats, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	dispatcher := framer.NewDispatcher(
		make([]byte, maxNMEAFrame),
		make([]byte, maxUBXFrame),
		make([]byte, maxRTCMFrame),
	)

	type readResult struct {
		chunk []byte
		err   error
	}
	reads := make(chan readResult, 1)

	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()

	pump := func() {
		buf := make([]byte, readBufferSize)
		for {
			if readCtx.Err() != nil {
				return
			}
			n, err := opts.Source.Read(buf)
			var chunk []byte
			if n > 0 {
				// Copy out of buf before the next Read overwrites it —
				// the channel hand-off alone doesn't serialize this
				// goroutine's next Read against the receiver still
				// working through the previous one.
				chunk = append([]byte(nil), buf[:n]...)
			}
			select {
			case reads <- readResult{chunk, err}:
			case <-readCtx.Done():
				return
			}
			if err != nil && !isTimeout(err) {
				return
			}
		}
	}
	go pump()

	ticker := time.NewTicker(pollTimeout)
	defer ticker.Stop()

	var stats Stats
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			stats.Resyncs = dispatcher.Resyncs()
			log.WithField("resyncs", stats.Resyncs).Info("worker: shutting down")
			return stats, nil

		case <-ticker.C:
			elapsed := int(time.Since(lastTick) / pollTimeout)
			if elapsed < 1 {
				elapsed = 1
			}
			lastTick = time.Now()
			opts.DB.Tick(elapsed)
			if opts.Onepps != nil && opts.Onepps.TakeAndClear() {
				log.Debug("worker: 1PPS edge observed")
			}

		case r := <-reads:
			if r.err != nil {
				if isTimeout(r.err) {
					continue
				}
				stats.Resyncs = dispatcher.Resyncs()
				return stats, gnsserr.Wrap(gnsserr.ENODATA, "worker: input read", r.err)
			}
			debug := opts.Debug != nil && opts.Debug.Load()
			for _, b := range r.chunk {
				f, ok := dispatcher.Step(b)
				if !ok {
					continue
				}
				if opts.Forward != nil {
					opts.Forward(f.Data)
				}
				route(opts.DB, f, log, debug, &stats)
			}
		}
	}
}

func route(db *gnssdb.DB, f framer.Frame, log *logrus.Entry, debug bool, stats *Stats) {
	switch f.Format {
	case framer.FormatNMEA:
		stats.NMEAFrames++
		sentence := string(f.Data)
		if _, err := nmea.Parse(db, sentence); err != nil && debug {
			log.WithError(err).Debug("worker: nmea parse")
		}
	case framer.FormatUBX:
		stats.UBXFrames++
		if _, err := ubx.Update(db, f.Data); err != nil && debug {
			log.WithError(err).Debug("worker: ubx update")
		}
	case framer.FormatRTCM:
		stats.RTCMFrames++
		if _, err := rtcm.Update(db, f.Data); err != nil && debug {
			log.WithError(err).Debug("worker: rtcm update")
		}
	}
}

// timeoutError matches the subset of the net/go.bug.st error surface
// the worker treats as "nothing to read yet", not a fatal I/O error.
type timeoutError interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	te, ok := err.(timeoutError)
	return ok && te.Timeout()
}
