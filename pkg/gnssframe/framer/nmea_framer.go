package framer

import "github.com/arlobridge/gnssframe/pkg/gnssframe/checksum"

// nmea-internal states beyond the START/STOP/END the caller sees.
type nmeaInternal int

const (
	nmeaStart nmeaInternal = iota
	nmeaPayload
	nmeaMSN
	nmeaLSN
	nmeaCR
	nmeaLF
)

// NMEAFramer delimits '$...*HH\r\n' (and '!...*HH\r\n' AIS-style) sentences
// out of a byte stream, verifying the XOR checksum as it goes.
type NMEAFramer struct {
	buf      []byte
	cursor   int
	total    int
	internal nmeaInternal
	sum      checksum.NMEA
	expMSN   byte
	expLSN   byte
	err      int
}

// NewNMEAFramer returns a framer that writes frames into buf. buf is
// reused across frames; the caller must not read it until Step returns
// StateEnd.
func NewNMEAFramer(buf []byte) *NMEAFramer {
	f := &NMEAFramer{buf: buf}
	f.reset()
	return f
}

func (f *NMEAFramer) reset() {
	f.cursor = 0
	f.total = 0
	f.internal = nmeaStart
	f.sum.Reset()
	f.err = 0
}

// Total returns the byte count of the last completed frame, including the
// trailing NUL, valid only immediately after Step returns StateEnd.
func (f *NMEAFramer) Total() int { return f.total }

// Buf returns the destination buffer passed to NewNMEAFramer.
func (f *NMEAFramer) Buf() []byte { return f.buf }

// Err reports whether the last StateStop transition was caused by an
// integrity failure (checksum mismatch) as opposed to ordinary framing
// noise.
func (f *NMEAFramer) Err() bool { return f.err == errFlagChecksum }

// sameNibbleChar reports whether the literal hex character read from the
// wire (upper or lower case) encodes the same nibble as the expected,
// always-uppercase character produced by checksum.ChecksumToChars.
func sameNibbleChar(got, want byte) bool {
	gv, ok := checksum.CharsToNibble(got)
	if !ok {
		return false
	}
	wv, _ := checksum.CharsToNibble(want)
	return gv == wv
}

func (f *NMEAFramer) put(b byte) bool {
	if f.cursor >= len(f.buf) {
		return false
	}
	f.buf[f.cursor] = b
	f.cursor++
	return true
}

// Step feeds one byte into the machine and returns its new state.
func (f *NMEAFramer) Step(b byte) State {
	switch f.internal {
	case nmeaStart:
		if b == '$' || b == '!' {
			f.reset()
			f.put(b)
			f.internal = nmeaPayload
			return StateRunning
		}
		return StateStart

	case nmeaPayload:
		if b == '*' {
			if !f.put(b) {
				f.err = errFlagOverflow
				f.internal = nmeaStart
				return StateStop
			}
			f.expMSN, f.expLSN = checksum.ChecksumToChars(f.sum.Sum())
			f.internal = nmeaMSN
			return StateRunning
		}
		// Anything outside the printable ASCII payload range that is not
		// '*' is not a framing error: it is ordinary binary noise that
		// happens to land between sentences.
		if b < ' ' || b > '}' {
			f.internal = nmeaStart
			return StateStop
		}
		f.sum.Add(b)
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = nmeaStart
			return StateStop
		}
		return StateRunning

	case nmeaMSN:
		if !sameNibbleChar(b, f.expMSN) {
			f.err = errFlagChecksum
			f.internal = nmeaStart
			return StateStop
		}
		f.put(b)
		f.internal = nmeaLSN
		return StateRunning

	case nmeaLSN:
		if !sameNibbleChar(b, f.expLSN) {
			f.err = errFlagChecksum
			f.internal = nmeaStart
			return StateStop
		}
		f.put(b)
		f.internal = nmeaCR
		return StateRunning

	case nmeaCR:
		if b != '\r' {
			f.internal = nmeaStart
			return StateStop
		}
		f.put(b)
		f.internal = nmeaLF
		return StateRunning

	case nmeaLF:
		if b != '\n' {
			f.internal = nmeaStart
			return StateStop
		}
		f.put(b)
		f.put(0) // trailing NUL for downstream convenience
		f.total = f.cursor
		f.internal = nmeaStart
		return StateEnd
	}
	return StateStart
}
