package top708

import (
	"github.com/arlobridge/gnssframe/pkg/gnssframe/framer"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/nmea"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/rtcm"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/trace"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/ubx"
)

// Maximum framed unit sizes per spec.md §3: 512 NMEA, 1024 UBX, 1029 RTCM.
const (
	maxNMEAFrame = 512
	maxUBXFrame  = 1024
	maxRTCMFrame = 1029
)

// Bridge runs the three-format dispatcher over bytes read from a Device
// and folds every completed frame into a shared gnssdb.DB, replacing the
// ad-hoc "find '$', find CRLF" scanning the original driver used. A
// Bridge owns no I/O of its own: Feed is called with whatever a Device's
// ReadRaw returned.
type Bridge struct {
	dispatcher *framer.Dispatcher
	db         *gnssdb.DB
	handler    FrameHandler
}

// NewBridge allocates a Bridge over db, reporting completed frames to
// handler (which may be nil to silently populate db without callbacks).
func NewBridge(db *gnssdb.DB, handler FrameHandler) *Bridge {
	return &Bridge{
		dispatcher: framer.NewDispatcher(
			make([]byte, maxNMEAFrame),
			make([]byte, maxUBXFrame),
			make([]byte, maxRTCMFrame),
		),
		db:      db,
		handler: handler,
	}
}

// DB returns the database this bridge updates.
func (b *Bridge) DB() *gnssdb.DB { return b.db }

// Resyncs returns the dispatcher's resync counter, exposed for
// diagnostics the way the worker loop logs it.
func (b *Bridge) Resyncs() int { return b.dispatcher.Resyncs() }

// Feed processes every byte in chunk, invoking the handler for each
// completed frame.
func (b *Bridge) Feed(chunk []byte) {
	for _, by := range chunk {
		frame, ok := b.dispatcher.Step(by)
		if !ok {
			continue
		}
		b.dispatch(frame)
	}
}

func (b *Bridge) dispatch(f framer.Frame) {
	switch f.Format {
	case framer.FormatNMEA:
		b.dispatchNMEA(f.Data)
	case framer.FormatUBX:
		b.dispatchUBX(f.Data)
	case framer.FormatRTCM:
		b.dispatchRTCM(f.Data)
	}
}

func (b *Bridge) dispatchNMEA(raw []byte) {
	sentence := string(raw)
	outcome, err := nmea.Parse(b.db, sentence)
	talker, typ, _, idErr := nmea.Identify(sentence)
	if idErr != nil {
		trace.T(2, "top708: nmea identify failed: %v\n", idErr)
	}
	if err != nil {
		trace.T(3, "top708: nmea parse error (%s%s): %v\n", talker, typ, err)
	}
	if b.handler != nil {
		b.handler.HandleNMEA(NMEASentence{
			Raw:     sentence,
			Talker:  talker,
			Type:    typ,
			Dropped: outcome == gnsserr.Dropped,
			Err:     err,
		})
	}
}

func (b *Bridge) dispatchUBX(raw []byte) {
	h, _, hErr := ubx.ParseHeader(raw)
	outcome, err := ubx.Update(b.db, raw)
	if err != nil {
		trace.T(3, "top708: ubx update error: %v\n", err)
	}
	if b.handler != nil {
		msg := UBXMessage{Raw: raw, Dropped: outcome == gnsserr.Dropped, Err: err}
		if hErr == nil {
			msg.Class, msg.ID = h.Class, h.ID
		}
		b.handler.HandleUBX(msg)
	}
}

func (b *Bridge) dispatchRTCM(raw []byte) {
	outcome, err := rtcm.Update(b.db, raw)
	if err != nil {
		trace.T(3, "top708: rtcm update error: %v\n", err)
	}
	if b.handler == nil {
		return
	}
	msg := RTCMMessage{Raw: raw, Keepalive: rtcm.IsKeepalive(raw), Dropped: outcome == gnsserr.Dropped, Err: err}
	if n, nErr := rtcm.MessageNumber(raw); nErr == nil {
		msg.MessageNumber = n
		msg.System = rtcm.Classify(n).String()
	}
	b.handler.HandleRTCM(msg)
}
