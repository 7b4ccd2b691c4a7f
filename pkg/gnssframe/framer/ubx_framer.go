package framer

import "github.com/arlobridge/gnssframe/pkg/gnssframe/checksum"

type ubxInternal int

const (
	ubxStart ubxInternal = iota
	ubxSync2
	ubxClass
	ubxID
	ubxLength1
	ubxLength2
	ubxPayload
	ubxCkA
	ubxCkB
)

const (
	ubxSync1Byte byte = 0xB5
	ubxSync2Byte byte = 0x62
)

// UBXFramer delimits 'B5 62 <class> <id> <len:2 LE> <payload> <CK_A> <CK_B>'
// packets, verifying the 8-bit Fletcher checksum as it goes.
type UBXFramer struct {
	buf      []byte
	cursor   int
	total    int
	internal ubxInternal
	fletcher checksum.Fletcher
	length   int
	received int
	err      int
}

// NewUBXFramer returns a framer that writes frames into buf.
func NewUBXFramer(buf []byte) *UBXFramer {
	f := &UBXFramer{buf: buf}
	f.reset()
	return f
}

func (f *UBXFramer) reset() {
	f.cursor = 0
	f.total = 0
	f.internal = ubxStart
	f.fletcher.Reset()
	f.length = 0
	f.received = 0
	f.err = 0
}

// Total returns the byte count of the last completed frame, valid only
// immediately after Step returns StateEnd.
func (f *UBXFramer) Total() int { return f.total }

// Buf returns the destination buffer passed to NewUBXFramer.
func (f *UBXFramer) Buf() []byte { return f.buf }

func (f *UBXFramer) put(b byte) bool {
	if f.cursor >= len(f.buf) {
		return false
	}
	f.buf[f.cursor] = b
	f.cursor++
	return true
}

// Step feeds one byte into the machine and returns its new state.
func (f *UBXFramer) Step(b byte) State {
	switch f.internal {
	case ubxStart:
		if b == ubxSync1Byte {
			f.reset()
			f.put(b)
			f.internal = ubxSync2
			return StateRunning
		}
		return StateStart

	case ubxSync2:
		if b != ubxSync2Byte {
			f.internal = ubxStart
			return StateStop
		}
		f.put(b)
		f.internal = ubxClass
		return StateRunning

	case ubxClass:
		f.fletcher.Add(b)
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = ubxStart
			return StateStop
		}
		f.internal = ubxID
		return StateRunning

	case ubxID:
		f.fletcher.Add(b)
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = ubxStart
			return StateStop
		}
		f.internal = ubxLength1
		return StateRunning

	case ubxLength1:
		f.fletcher.Add(b)
		f.length = int(b)
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = ubxStart
			return StateStop
		}
		f.internal = ubxLength2
		return StateRunning

	case ubxLength2:
		f.fletcher.Add(b)
		f.length |= int(b) << 8
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = ubxStart
			return StateStop
		}
		f.received = 0
		if f.length == 0 {
			f.internal = ubxCkA
		} else {
			f.internal = ubxPayload
		}
		return StateRunning

	case ubxPayload:
		f.fletcher.Add(b)
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = ubxStart
			return StateStop
		}
		f.received++
		if f.received >= f.length {
			f.internal = ubxCkA
		}
		return StateRunning

	case ubxCkA:
		ckA, _ := f.fletcher.Sum()
		if b != ckA {
			f.err = errFlagChecksum
			f.internal = ubxStart
			return StateStop
		}
		f.put(b)
		f.internal = ubxCkB
		return StateRunning

	case ubxCkB:
		_, ckB := f.fletcher.Sum()
		if b != ckB {
			f.err = errFlagChecksum
			f.internal = ubxStart
			return StateStop
		}
		f.put(b)
		f.put(0)
		f.total = f.cursor
		f.internal = ubxStart
		return StateEnd
	}
	return StateStart
}
