package framer

import "github.com/arlobridge/gnssframe/pkg/gnssframe/checksum"

type rtcmInternal int

const (
	rtcmStart rtcmInternal = iota
	rtcmLength1
	rtcmLength2
	rtcmPayload
	rtcmCRC1
	rtcmCRC2
	rtcmCRC3
)

const rtcmPreamble byte = 0xD3

// RTCMFramer delimits 'D3 <10-bit len> <payload> <CRC-24Q:3>' messages.
type RTCMFramer struct {
	buf      []byte
	cursor   int
	total    int
	internal rtcmInternal
	crc      checksum.RTCM
	length   int
	received int
	err      int
}

// NewRTCMFramer returns a framer that writes frames into buf.
func NewRTCMFramer(buf []byte) *RTCMFramer {
	f := &RTCMFramer{buf: buf}
	f.reset()
	return f
}

func (f *RTCMFramer) reset() {
	f.cursor = 0
	f.total = 0
	f.internal = rtcmStart
	f.crc.Reset()
	f.length = 0
	f.received = 0
	f.err = 0
}

// Total returns the byte count of the last completed frame, valid only
// immediately after Step returns StateEnd.
func (f *RTCMFramer) Total() int { return f.total }

// Buf returns the destination buffer passed to NewRTCMFramer.
func (f *RTCMFramer) Buf() []byte { return f.buf }

func (f *RTCMFramer) put(b byte) bool {
	if f.cursor >= len(f.buf) {
		return false
	}
	f.buf[f.cursor] = b
	f.cursor++
	return true
}

// Step feeds one byte into the machine and returns its new state.
func (f *RTCMFramer) Step(b byte) State {
	switch f.internal {
	case rtcmStart:
		if b == rtcmPreamble {
			f.reset()
			f.crc.Add(b)
			f.put(b)
			f.internal = rtcmLength1
			return StateRunning
		}
		return StateStart

	case rtcmLength1:
		// Top six bits are reserved and must be zero; the low two bits
		// are the MSB of the 10-bit length.
		if b&0xFC != 0 {
			f.internal = rtcmStart
			return StateStop
		}
		f.crc.Add(b)
		f.length = int(b&0x03) << 8
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = rtcmStart
			return StateStop
		}
		f.internal = rtcmLength2
		return StateRunning

	case rtcmLength2:
		f.crc.Add(b)
		f.length |= int(b)
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = rtcmStart
			return StateStop
		}
		f.received = 0
		if f.length == 0 {
			f.internal = rtcmCRC1
		} else {
			f.internal = rtcmPayload
		}
		return StateRunning

	case rtcmPayload:
		f.crc.Add(b)
		if !f.put(b) {
			f.err = errFlagOverflow
			f.internal = rtcmStart
			return StateStop
		}
		f.received++
		if f.received >= f.length {
			f.internal = rtcmCRC1
		}
		return StateRunning

	case rtcmCRC1:
		want := byte(f.crc.Sum() >> 16)
		if b != want {
			f.err = errFlagChecksum
			f.internal = rtcmStart
			return StateStop
		}
		f.put(b)
		f.internal = rtcmCRC2
		return StateRunning

	case rtcmCRC2:
		want := byte(f.crc.Sum() >> 8)
		if b != want {
			f.err = errFlagChecksum
			f.internal = rtcmStart
			return StateStop
		}
		f.put(b)
		f.internal = rtcmCRC3
		return StateRunning

	case rtcmCRC3:
		want := byte(f.crc.Sum())
		if b != want {
			f.err = errFlagChecksum
			f.internal = rtcmStart
			return StateStop
		}
		f.put(b)
		f.put(0)
		f.total = f.cursor
		f.internal = rtcmStart
		return StateEnd
	}
	return StateStart
}
