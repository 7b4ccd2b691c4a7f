package ubx

import "encoding/binary"

// RXMRTCM is the decoded RXM-RTCM reception report: whether the last RTCM
// message this rover received was actually used in the solution.
type RXMRTCM struct {
	Flags        uint8
	MessageType  uint16
	RefStationID uint16
}

// Used reports whether the reception flags' "message used" field is 2
// (used); 0 is unknown, 1 is not used.
func (r RXMRTCM) Used() bool { return r.Flags&0x02 != 0 }

func ParseRXMRTCM(frame []byte) (RXMRTCM, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return RXMRTCM{}, err
	}
	if err := expect(h, ClassRXM, IDRXMRTCM, 8); err != nil {
		return RXMRTCM{}, err
	}
	return RXMRTCM{
		Flags:        payload[4],
		RefStationID: binary.LittleEndian.Uint16(payload[6:8]) & 0x0FFF,
		MessageType:  binary.LittleEndian.Uint16(payload[6:8]) >> 12,
	}, nil
}
