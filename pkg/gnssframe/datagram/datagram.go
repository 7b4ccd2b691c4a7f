// Package datagram implements the 32-bit sequence-numbered envelope that
// wraps one framed NMEA/UBX/RTCM unit for transport over UDP (spec.md
// §4.8). The header is big-endian, matching RTCM's own endianness rather
// than UBX's, since the envelope travels alongside both.
package datagram

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
)

const headerLen = 4

// MaxPayload is the largest framed unit the envelope ever carries: the
// largest of the three protocol buffers (spec.md §3).
const MaxPayload = 1029

// Sender maintains an outgoing sequence counter and stamps it into each
// envelope. SessionID never travels on the wire — the envelope itself is
// exactly the 4-byte sequence header spec.md §4.8 defines — it exists so
// a caller juggling several Senders (one per input device, say) can tag
// its own logs/metrics with a stable identity per stream.
type Sender struct {
	next      uint32
	SessionID uuid.UUID
}

// NewSender returns a Sender with a fresh random session id.
func NewSender() *Sender {
	return &Sender{SessionID: uuid.New()}
}

// Encode writes the current sequence number as a big-endian header ahead
// of payload into dst, returning the total envelope length, and advances
// the counter.
func (s *Sender) Encode(dst []byte, payload []byte) (int, error) {
	if len(dst) < headerLen+len(payload) {
		return 0, gnsserr.New(gnsserr.ENODATA, "datagram: destination buffer too small")
	}
	binary.BigEndian.PutUint32(dst[:headerLen], s.next)
	n := headerLen + copy(dst[headerLen:], payload)
	s.next++
	return n, nil
}

// Receiver tracks the expected next sequence number and gap/out-of-order
// accounting. The zero value is ready to use, with expected = 0.
type Receiver struct {
	expected   uint32
	Missing    uint64
	OutOfOrder uint64
}

// Expected reports the receiver's next expected sequence number.
func (r *Receiver) Expected() uint32 { return r.expected }

// Accept processes one received envelope. It returns the payload slice
// (a view into buf) and true if the packet is accepted into the stream,
// or nil, false if it is an out-of-order duplicate/stale packet that must
// be dropped (spec.md §4.8).
func (r *Receiver) Accept(buf []byte) ([]byte, bool, error) {
	if len(buf) < headerLen {
		return nil, false, gnsserr.New(gnsserr.ENODATA, "datagram: buffer shorter than header")
	}
	actual := binary.BigEndian.Uint32(buf[:headerLen])
	payload := buf[headerLen:]

	if actual == r.expected {
		r.expected++
		return payload, true, nil
	}

	gap := actual - r.expected // wraps modulo 2^32 by construction
	if gap < 1<<31 {
		r.Missing += uint64(gap)
		r.expected = actual + 1
		return payload, true, nil
	}

	r.OutOfOrder++
	return nil, false, nil
}
