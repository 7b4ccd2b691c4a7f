// Package ubx parses u-blox UBX binary messages out of an already-framed
// buffer (as produced by framer.UBXFramer). Little-endian fields are
// byte-swapped at the parser boundary per spec.md §9's endianness note;
// callers never see a raw little-endian integer.
package ubx

import (
	"encoding/binary"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
)

// Class/ID pairs of interest (spec.md §6).
const (
	ClassNAV = 0x01
	ClassRXM = 0x02
	ClassACK = 0x05
	ClassCFG = 0x06
	ClassMON = 0x0A
)

const (
	IDNavPosLLH    = 0x02
	IDNavStatus    = 0x03
	IDNavATT       = 0x05
	IDNavPVT       = 0x07
	IDNavOdo       = 0x09
	IDNavHPPOSLLH  = 0x14
	IDNavSVIN      = 0x3B
	IDAckNAK       = 0x00
	IDAckACK       = 0x01
	IDMonVER       = 0x04
	IDMonHW        = 0x09
	IDMonComms     = 0x36
	IDRXMRTCM      = 0x32
	IDCfgValGet    = 0x8B
)

// payloadOffset is the byte offset of the payload within a framed buffer
// produced by framer.UBXFramer: 2 sync + 1 class + 1 id + 2 length.
const payloadOffset = 6

// shortest is the minimum framed length of any UBX message: sync(2) +
// class(1) + id(1) + length(2) + checksum(2).
const shortest = 8

// Header is the class/id/length triple every parser validates first.
type Header struct {
	Class  byte
	ID     byte
	Length uint16
}

// ParseHeader reads the class, id, and payload length out of a framed
// UBX buffer, validating that the buffer is at least long enough to hold
// its declared payload.
func ParseHeader(frame []byte) (Header, []byte, error) {
	if len(frame) < shortest {
		return Header{}, nil, gnsserr.New(gnsserr.ENODATA, "ubx: frame too short")
	}
	h := Header{
		Class:  frame[2],
		ID:     frame[3],
		Length: binary.LittleEndian.Uint16(frame[4:6]),
	}
	want := payloadOffset + int(h.Length) + 2
	if len(frame) < want {
		return Header{}, nil, gnsserr.New(gnsserr.ENODATA, "ubx: frame shorter than declared length")
	}
	return h, frame[payloadOffset : payloadOffset+int(h.Length)], nil
}

// expect validates that a parsed header matches the class/id/length a
// specific message parser requires, returning ENOMSG if the class/id
// don't match (try the next parser) or ENODATA if they match but the
// length doesn't (truncated).
func expect(h Header, class, id byte, wantLen int) error {
	if h.Class != class || h.ID != id {
		return gnsserr.New(gnsserr.ENOMSG, "ubx: class/id mismatch")
	}
	if int(h.Length) != wantLen {
		return gnsserr.New(gnsserr.ENODATA, "ubx: unexpected payload length")
	}
	return nil
}
