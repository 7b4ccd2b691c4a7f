// Package rtcm provides the framing-adjacent helpers spec.md §4.6 calls
// for: extracting the declared length and message number from an RTCM
// 10403.3 frame, validating its CRC-24Q, and classifying a message number
// into the constellation it reports on. Full observable decoding (MSM,
// SSR, ephemeris payload contents) is out of scope: nothing in this core
// consumes a decoded observable, only the per-station traffic counters in
// gnssdb.RTCMObservation, which only need the message number.
package rtcm

import (
	"encoding/binary"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/checksum"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// Keepalive is the minimum-length RTCM frame: valid preamble, zero-length
// payload, correct CRC-24Q — used to punch NAT holes and signal liveness.
var Keepalive = []byte{0xD3, 0x00, 0x00, 0x47, 0xEA, 0x4B}

// Length extracts the 10-bit payload length from the 2-byte big-endian
// word at offset 1 and returns the total framed size: preamble + length
// word + payload + 3-byte CRC.
func Length(buf []byte) (int, error) {
	if len(buf) < 3 {
		return 0, gnsserr.New(gnsserr.ENODATA, "rtcm: buffer too short for length word")
	}
	if buf[0] != 0xD3 {
		return 0, gnsserr.New(gnsserr.ENOMSG, "rtcm: bad preamble")
	}
	payloadLen := int(binary.BigEndian.Uint16(buf[1:3]) & 0x03FF)
	return 3 + payloadLen + 3, nil
}

// MessageNumber extracts the 12 most-significant bits of the first two
// payload bytes (offset 3 in the framed buffer). A payload shorter than
// two bytes (the 6-byte keepalive's zero-length payload) has no message
// number to report and yields 0 rather than reading into the trailing CRC.
func MessageNumber(buf []byte) (int, error) {
	total, err := Length(buf)
	if err != nil {
		return 0, err
	}
	payloadLen := total - 6
	if payloadLen < 2 {
		return 0, nil
	}
	if len(buf) < 5 {
		return 0, gnsserr.New(gnsserr.ENODATA, "rtcm: buffer too short for message number")
	}
	return int(binary.BigEndian.Uint16(buf[3:5]) >> 4), nil
}

// Validate combines length extraction, CRC-24Q recomputation, and
// equality comparison against the trailing three bytes.
func Validate(buf []byte) (bool, error) {
	total, err := Length(buf)
	if err != nil {
		return false, err
	}
	if len(buf) < total {
		return false, gnsserr.New(gnsserr.ENODATA, "rtcm: buffer shorter than declared length")
	}
	crcStart := total - 3
	got := checksum.RTCM24Q(buf[:crcStart])
	want := uint32(buf[crcStart])<<16 | uint32(buf[crcStart+1])<<8 | uint32(buf[crcStart+2])
	return got == want, nil
}

// MSM message-number bands, one per constellation (RTCM 10403.3 §3.5).
const (
	msmGPSStart, msmGPSEnd         = 1071, 1077
	msmGLONASSStart, msmGLONASSEnd = 1081, 1087
	msmGALILEOStart, msmGALILEOEnd = 1091, 1097
	msmSBASStart, msmSBASEnd       = 1101, 1107
	msmQZSSStart, msmQZSSEnd       = 1111, 1117
	msmBEIDOUStart, msmBEIDOUEnd   = 1121, 1127
	msmNAVICStart, msmNAVICEnd     = 1131, 1137

	stationCoordinates = 1005
	stationCoordAndAnt = 1006
)

// Classify maps an RTCM message number to the constellation it reports
// observables for, or GNSS for station/antenna descriptors and any
// message number this core does not specifically recognize. This is a
// supplement beyond the bare helpers spec.md names; the top708 Bridge
// uses it to label each RTCM message it hands on with a system, while
// RTCMObservation itself records no system.
func Classify(messageNumber int) gnssdb.System {
	switch {
	case messageNumber >= msmGPSStart && messageNumber <= msmGPSEnd:
		return gnssdb.GPS
	case messageNumber >= msmGLONASSStart && messageNumber <= msmGLONASSEnd:
		return gnssdb.GLONASS
	case messageNumber >= msmGALILEOStart && messageNumber <= msmGALILEOEnd:
		return gnssdb.GALILEO
	case messageNumber >= msmSBASStart && messageNumber <= msmSBASEnd:
		return gnssdb.SBAS
	case messageNumber >= msmQZSSStart && messageNumber <= msmQZSSEnd:
		return gnssdb.QZSS
	case messageNumber >= msmBEIDOUStart && messageNumber <= msmBEIDOUEnd:
		return gnssdb.BEIDOU
	case messageNumber >= msmNAVICStart && messageNumber <= msmNAVICEnd:
		return gnssdb.NAVIC
	default:
		return gnssdb.GNSS
	}
}

// IsKeepalive reports whether buf is the 6-byte keepalive frame, either
// alone or followed by the single trailing NUL the framer appends.
func IsKeepalive(buf []byte) bool {
	if len(buf) == len(Keepalive)+1 && buf[len(Keepalive)] == 0 {
		buf = buf[:len(Keepalive)]
	}
	if len(buf) != len(Keepalive) {
		return false
	}
	for i := range buf {
		if buf[i] != Keepalive[i] {
			return false
		}
	}
	return true
}
