package ubx

import (
	"encoding/binary"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
)

// MonHW is the decoded MON-HW receiver-health snapshot.
type MonHW struct {
	NoisePerMS uint16
	AGCCnt     uint16
	AntStatus  uint8
	AntPower   uint8
	JammingInd uint8
	RTCCalib   bool
	SafeBoot   bool
}

func ParseMonHW(frame []byte) (MonHW, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return MonHW{}, err
	}
	if err := expect(h, ClassMON, IDMonHW, 60); err != nil {
		return MonHW{}, err
	}
	flags := payload[22]
	return MonHW{
		NoisePerMS: binary.LittleEndian.Uint16(payload[16:18]),
		AGCCnt:     binary.LittleEndian.Uint16(payload[18:20]),
		AntStatus:  payload[20],
		AntPower:   payload[21],
		JammingInd: payload[45],
		RTCCalib:   flags&0x02 != 0,
		SafeBoot:   flags&0x04 != 0,
	}, nil
}

// MonPort is one port's traffic counters from MON-COMMS.
type MonPort struct {
	PortID   uint16
	TxPending uint16
	TxBytes  uint32
	RxPending uint16
	RxBytes  uint32
	Overrun  bool
}

// ParseMonComms decodes MON-COMMS: a 8-byte header giving nPorts and
// txErrors, followed by nPorts fixed-size port records.
func ParseMonComms(frame []byte) ([]MonPort, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return nil, err
	}
	if h.Class != ClassMON || h.ID != IDMonComms {
		return nil, gnsserr.New(gnsserr.ENOMSG, "ubx: not MON-COMMS")
	}
	if len(payload) < 8 {
		return nil, gnsserr.New(gnsserr.ENODATA, "ubx: MON-COMMS header truncated")
	}
	nPorts := int(payload[1])
	const portWidth = 40
	if len(payload) < 8+nPorts*portWidth {
		return nil, gnsserr.New(gnsserr.ENODATA, "ubx: MON-COMMS port records truncated")
	}
	ports := make([]MonPort, 0, nPorts)
	for i := 0; i < nPorts; i++ {
		off := 8 + i*portWidth
		rec := payload[off : off+portWidth]
		ports = append(ports, MonPort{
			PortID:    binary.LittleEndian.Uint16(rec[0:2]),
			TxPending: binary.LittleEndian.Uint16(rec[2:4]),
			TxBytes:   binary.LittleEndian.Uint32(rec[4:8]),
			RxPending: binary.LittleEndian.Uint16(rec[10:12]),
			RxBytes:   binary.LittleEndian.Uint32(rec[12:16]),
			Overrun:   rec[27]&0x01 != 0,
		})
	}
	return ports, nil
}

// MonVER is the decoded MON-VER identification message: a 30-byte
// software version and a 10-byte hardware version, each NUL-padded,
// plus a variable number of 30-byte extension strings.
type MonVER struct {
	SWVersion  string
	HWVersion  string
	Extensions []string
}

func trimNUL(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func ParseMonVER(frame []byte) (MonVER, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return MonVER{}, err
	}
	if h.Class != ClassMON || h.ID != IDMonVER {
		return MonVER{}, gnsserr.New(gnsserr.ENOMSG, "ubx: not MON-VER")
	}
	if len(payload) < 40 {
		return MonVER{}, gnsserr.New(gnsserr.ENODATA, "ubx: MON-VER truncated")
	}
	v := MonVER{
		SWVersion: trimNUL(payload[0:30]),
		HWVersion: trimNUL(payload[30:40]),
	}
	for off := 40; off+30 <= len(payload); off += 30 {
		v.Extensions = append(v.Extensions, trimNUL(payload[off:off+30]))
	}
	return v, nil
}

// Ack is the decoded ACK-ACK/ACK-NAK acknowledgement: which class/id the
// receiver is (not) acknowledging.
type Ack struct {
	ClassID byte
	MsgID   byte
	Ack     bool
}

func ParseAck(frame []byte) (Ack, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return Ack{}, err
	}
	if h.Class != ClassACK || (h.ID != IDAckACK && h.ID != IDAckNAK) {
		return Ack{}, gnsserr.New(gnsserr.ENOMSG, "ubx: not ACK-ACK/ACK-NAK")
	}
	if len(payload) != 2 {
		return Ack{}, gnsserr.New(gnsserr.ENODATA, "ubx: ACK payload wrong length")
	}
	return Ack{ClassID: payload[0], MsgID: payload[1], Ack: h.ID == IDAckACK}, nil
}

// CfgValue is one decoded CFG-VALGET key/value pair. Key is decoded from
// its little-endian wire form; Value holds the value's bytes as they
// appear in the payload (little-endian, not reordered), and callers
// interpret width/type via the key's encoded size.
type CfgValue struct {
	Key   uint32
	Value []byte
}

// keySize returns the value width in bytes encoded in bits 28-30 of a
// CFG-VALGET key (spec.md §4.5, §9).
func keySize(key uint32) int {
	switch (key >> 28) & 0x7 {
	case 1:
		return 1
	case 2:
		return 1
	case 3:
		return 2
	case 4:
		return 4
	case 5:
		return 8
	default:
		return 0
	}
}

// ParseCfgValGet walks the variable-length TLV section of a CFG-VALGET
// payload (after its 4-byte version/layer/position header), byte-
// swapping each key and refusing to advance past the buffer end.
func ParseCfgValGet(frame []byte) ([]CfgValue, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return nil, err
	}
	if h.Class != ClassCFG || h.ID != IDCfgValGet {
		return nil, gnsserr.New(gnsserr.ENOMSG, "ubx: not CFG-VALGET")
	}
	if len(payload) < 4 {
		return nil, gnsserr.New(gnsserr.ENODATA, "ubx: CFG-VALGET header truncated")
	}
	var out []CfgValue
	for off := 4; off < len(payload); {
		if off+4 > len(payload) {
			return nil, gnsserr.New(gnsserr.ENODATA, "ubx: CFG-VALGET key truncated")
		}
		key := binary.LittleEndian.Uint32(payload[off : off+4])
		size := keySize(key)
		if size == 0 || off+4+size > len(payload) {
			return nil, gnsserr.New(gnsserr.ENODATA, "ubx: CFG-VALGET value truncated")
		}
		value := make([]byte, size)
		copy(value, payload[off+4:off+4+size])
		out = append(out, CfgValue{Key: key, Value: value})
		off += 4 + size
	}
	return out, nil
}
