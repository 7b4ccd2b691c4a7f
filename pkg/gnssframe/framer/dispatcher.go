package framer

import "github.com/arlobridge/gnssframe/pkg/gnssframe/trace"

// Frame is a completed, framed unit handed back to the caller.
type Frame struct {
	Format Format
	Data   []byte // includes the trailing NUL; length is Total()
}

// Dispatcher runs the three format framers in parallel over a single byte
// stream. Once any machine has produced an END, and the byte immediately
// following it is one of the three distinctive leading bytes, the
// dispatcher activates only the matching machine for the next unit — an
// optimization over always running all three. Any byte that does not
// match a known leading byte while "synchronized" reverts to running all
// three machines from START, and a resync is logged.
type Dispatcher struct {
	nmea *NMEAFramer
	ubx  *UBXFramer
	rtcm *RTCMFramer

	synchronized bool
	frameStart   bool
	active       Format // FormatUnknown means all three are active

	resyncs int
}

// NewDispatcher allocates one scratch buffer per format and wires up the
// three framers. bufNMEA/bufUBX/bufRTCM should be sized to the protocol's
// maximum framed unit (512/1024/1029 respectively, per spec.md §3).
func NewDispatcher(bufNMEA, bufUBX, bufRTCM []byte) *Dispatcher {
	return &Dispatcher{
		nmea: NewNMEAFramer(bufNMEA),
		ubx:  NewUBXFramer(bufUBX),
		rtcm: NewRTCMFramer(bufRTCM),
	}
}

// Resyncs returns the number of times the byte following a completed
// frame was not a known leading byte, forcing the dispatcher back to
// running all three machines. A fast-path machine that stops mid-frame
// also falls back to all three machines but is not counted here.
func (d *Dispatcher) Resyncs() int { return d.resyncs }

func formatLeadByte(b byte) Format {
	switch b {
	case '$', '!':
		return FormatNMEA
	case 0xB5:
		return FormatUBX
	case 0xD3:
		return FormatRTCM
	}
	return FormatUnknown
}

// Step feeds one byte to the dispatcher and reports a completed frame, if
// any. ok is false when no machine reached END on this byte.
func (d *Dispatcher) Step(b byte) (Frame, bool) {
	if d.synchronized && d.frameStart {
		lead := formatLeadByte(b)
		if lead == FormatUnknown {
			// An unknown byte where a new frame was expected: give up the
			// fast path and resynchronize all three machines from START.
			d.resyncs++
			trace.T(2, "dispatcher: resync on unexpected lead byte 0x%02x\n", b)
			d.active = FormatUnknown
		} else {
			d.active = lead
		}
		d.frameStart = false
	}

	var (
		sNMEA, sUBX, sRTCM State = StateStart, StateStart, StateStart
		ranAny              bool
	)

	if d.active == FormatUnknown || d.active == FormatNMEA {
		sNMEA = d.nmea.Step(b)
		ranAny = true
	}
	if d.active == FormatUnknown || d.active == FormatUBX {
		sUBX = d.ubx.Step(b)
		ranAny = true
	}
	if d.active == FormatUnknown || d.active == FormatRTCM {
		sRTCM = d.rtcm.Step(b)
		ranAny = true
	}
	_ = ranAny

	switch {
	case sNMEA == StateEnd:
		d.synchronized = true
		d.frameStart = true
		return Frame{Format: FormatNMEA, Data: d.nmea.Buf()[:d.nmea.Total()]}, true
	case sUBX == StateEnd:
		d.synchronized = true
		d.frameStart = true
		return Frame{Format: FormatUBX, Data: d.ubx.Buf()[:d.ubx.Total()]}, true
	case sRTCM == StateEnd:
		d.synchronized = true
		d.frameStart = true
		return Frame{Format: FormatRTCM, Data: d.rtcm.Buf()[:d.rtcm.Total()]}, true
	}

	// If every machine that ran this byte landed in STOP, none of them is
	// carrying a candidate frame forward; reset to running all three.
	if d.active == FormatUnknown {
		if sNMEA == StateStop && sUBX == StateStop && sRTCM == StateStop {
			d.active = FormatUnknown
		}
	} else {
		// Single-format fast path: if the active machine stopped, fall
		// back to running all three so a new leading byte anywhere in
		// the stream can be recognized.
		stopped := (d.active == FormatNMEA && sNMEA == StateStop) ||
			(d.active == FormatUBX && sUBX == StateStop) ||
			(d.active == FormatRTCM && sRTCM == StateStop)
		if stopped {
			d.active = FormatUnknown
		}
	}

	return Frame{}, false
}
