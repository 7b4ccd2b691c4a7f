package ubx

import (
	"encoding/binary"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
)

// NavHPPOSLLH is the decoded NAV-HPPOSLLH high-precision position.
type NavHPPOSLLH struct {
	LatNanomin int64
	LonNanomin int64
	AltMm      int32
	HAccMm     uint32
	VAccMm     uint32
}

// ParseNavHPPOSLLH decodes a NAV-HPPOSLLH payload (length 36). The
// invalidLlh flag (bit 0 of the flags byte) causes a policy drop: the
// record is left unchanged, no error.
func ParseNavHPPOSLLH(frame []byte) (NavHPPOSLLH, bool, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return NavHPPOSLLH{}, false, err
	}
	if err := expect(h, ClassNAV, IDNavHPPOSLLH, 36); err != nil {
		return NavHPPOSLLH{}, false, err
	}
	flags := payload[3]
	if flags&0x01 != 0 {
		return NavHPPOSLLH{}, true, nil
	}
	lonDeg1e7 := int32(binary.LittleEndian.Uint32(payload[4:8]))
	latDeg1e7 := int32(binary.LittleEndian.Uint32(payload[8:12]))
	heightMm := int32(binary.LittleEndian.Uint32(payload[12:16]))
	lonHp := int8(payload[24])
	latHp := int8(payload[25])
	heightHp := int8(payload[26])
	hAcc := binary.LittleEndian.Uint32(payload[28:32])
	vAcc := binary.LittleEndian.Uint32(payload[32:36])

	// Degrees*1e-7 + 1e-9-degree high-precision component, converted to
	// nanominutes (1 degree = 60 minutes): 1e-7 degree is 6000
	// nanominutes, 1e-9 degree is 60.
	latNanomin := int64(latDeg1e7)*6000 + int64(latHp)*60
	lonNanomin := int64(lonDeg1e7)*6000 + int64(lonHp)*60

	return NavHPPOSLLH{
		LatNanomin: latNanomin,
		LonNanomin: lonNanomin,
		AltMm:      heightMm + int32(heightHp)/10,
		HAccMm:     hAcc / 10,
		VAccMm:     vAcc / 10,
	}, false, nil
}

// NavStatus is the decoded NAV-STATUS fix-status snapshot.
type NavStatus struct {
	GPSFix  uint8
	Flags   uint8
	FixStat uint8
	Flags2  uint8
	TTFFms  uint32
	MSSSms  uint32
}

func ParseNavStatus(frame []byte) (NavStatus, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return NavStatus{}, err
	}
	if err := expect(h, ClassNAV, IDNavStatus, 16); err != nil {
		return NavStatus{}, err
	}
	return NavStatus{
		GPSFix:  payload[4],
		Flags:   payload[5],
		FixStat: payload[6],
		Flags2:  payload[7],
		TTFFms:  binary.LittleEndian.Uint32(payload[8:12]),
		MSSSms:  binary.LittleEndian.Uint32(payload[12:16]),
	}, nil
}

// NavSVIN is the decoded NAV-SVIN base-station survey-in progress.
type NavSVIN struct {
	DurationS    uint32
	MeanXMm      int32
	MeanYMm      int32
	MeanZMm      int32
	MeanAccMm    uint32
	Observations uint32
	Valid        bool
	Active       bool
}

func ParseNavSVIN(frame []byte) (NavSVIN, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return NavSVIN{}, err
	}
	if err := expect(h, ClassNAV, IDNavSVIN, 40); err != nil {
		return NavSVIN{}, err
	}
	meanAcc := binary.LittleEndian.Uint32(payload[28:32])
	return NavSVIN{
		DurationS:    binary.LittleEndian.Uint32(payload[4:8]),
		MeanXMm:      int32(binary.LittleEndian.Uint32(payload[8:12])),
		MeanYMm:      int32(binary.LittleEndian.Uint32(payload[12:16])),
		MeanZMm:      int32(binary.LittleEndian.Uint32(payload[16:20])),
		MeanAccMm:    meanAcc / 10,
		Observations: binary.LittleEndian.Uint32(payload[32:36]),
		Active:       payload[36] != 0,
		Valid:        payload[37] != 0,
	}, nil
}

// NavPVT is the decoded NAV-PVT navigation solution (the fields this
// core consumes; many PVT fields are not reproduced here since nothing
// downstream needs them).
type NavPVT struct {
	FixType  uint8
	NumSV    uint8
	LatDeg1e7 int32
	LonDeg1e7 int32
	HeightMm int32
	GSpeedMmS int32
	HeadMotion1e5 int32
}

func ParseNavPVT(frame []byte) (NavPVT, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return NavPVT{}, err
	}
	if h.Class != ClassNAV || h.ID != IDNavPVT {
		return NavPVT{}, gnsserr.New(gnsserr.ENOMSG, "ubx: not NAV-PVT")
	}
	if len(payload) < 84 {
		return NavPVT{}, gnsserr.New(gnsserr.ENODATA, "ubx: NAV-PVT truncated")
	}
	return NavPVT{
		FixType:       payload[20],
		NumSV:         payload[23],
		LonDeg1e7:     int32(binary.LittleEndian.Uint32(payload[24:28])),
		LatDeg1e7:     int32(binary.LittleEndian.Uint32(payload[28:32])),
		HeightMm:      int32(binary.LittleEndian.Uint32(payload[32:36])),
		GSpeedMmS:     int32(binary.LittleEndian.Uint32(payload[60:64])),
		HeadMotion1e5: int32(binary.LittleEndian.Uint32(payload[64:68])),
	}, nil
}

// NavATT is the decoded NAV-ATT vehicle attitude solution.
type NavATT struct {
	RollDeg1e5  int32
	PitchDeg1e5 int32
	HeadingDeg1e5 int32
}

func ParseNavATT(frame []byte) (NavATT, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return NavATT{}, err
	}
	if err := expect(h, ClassNAV, IDNavATT, 32); err != nil {
		return NavATT{}, err
	}
	return NavATT{
		RollDeg1e5:    int32(binary.LittleEndian.Uint32(payload[4:8])),
		PitchDeg1e5:   int32(binary.LittleEndian.Uint32(payload[8:12])),
		HeadingDeg1e5: int32(binary.LittleEndian.Uint32(payload[12:16])),
	}, nil
}

// NavOdo is the decoded NAV-ODO odometer reading.
type NavOdo struct {
	DistanceM     uint32
	TotalDistanceM uint32
}

func ParseNavOdo(frame []byte) (NavOdo, error) {
	h, payload, err := ParseHeader(frame)
	if err != nil {
		return NavOdo{}, err
	}
	if err := expect(h, ClassNAV, IDNavOdo, 20); err != nil {
		return NavOdo{}, err
	}
	return NavOdo{
		DistanceM:      binary.LittleEndian.Uint32(payload[8:12]),
		TotalDistanceM: binary.LittleEndian.Uint32(payload[12:16]),
	}, nil
}
