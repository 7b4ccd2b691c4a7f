package gnssdb

// HighPrecision holds the UBX NAV-HPPOSLLH refinement: the standard and
// high-precision components are kept separate rather than pre-summed, so
// a consumer that only wants standard precision never needs to know the
// high-precision fields exist (spec.md §4.5).
type HighPrecision struct {
	LatNanomin int64
	LonNanomin int64
	AltMm      int32
	HAccMm     uint32
	VAccMm     uint32

	Expiry int
}

func (h *HighPrecision) Expire(elapsedTicks int) {
	h.Expiry -= elapsedTicks
	if h.Expiry < 0 {
		h.Expiry = 0
	}
}

func (h *HighPrecision) Stale() bool { return h.Expiry <= 0 }

// HardwareMonitor holds the UBX MON-HW receiver-health snapshot.
type HardwareMonitor struct {
	NoisePerMS  uint16
	AGCCnt      uint16
	AntStatus   uint8
	AntPower    uint8
	JammingInd  uint8
	RTCCalib    bool
	SafeBoot    bool

	Expiry int
}

func (h *HardwareMonitor) Expire(elapsedTicks int) {
	h.Expiry -= elapsedTicks
	if h.Expiry < 0 {
		h.Expiry = 0
	}
}

func (h *HardwareMonitor) Stale() bool { return h.Expiry <= 0 }

// NavStatus holds the UBX NAV-STATUS fix-status snapshot.
type NavStatus struct {
	GPSFix     uint8
	Flags      uint8
	FixStat    uint8
	Flags2     uint8
	TTFFms     uint32
	MSSSms     uint32

	Expiry int
}

func (n *NavStatus) Expire(elapsedTicks int) {
	n.Expiry -= elapsedTicks
	if n.Expiry < 0 {
		n.Expiry = 0
	}
}

func (n *NavStatus) Stale() bool { return n.Expiry <= 0 }

// BaseSurvey holds the UBX NAV-SVIN base-station survey-in progress.
type BaseSurvey struct {
	DurationS   uint32
	MeanXMm     int32
	MeanYMm     int32
	MeanZMm     int32
	MeanAccMm   uint32
	Observations uint32
	Valid       bool
	Active      bool

	Expiry int
}

func (b *BaseSurvey) Expire(elapsedTicks int) {
	b.Expiry -= elapsedTicks
	if b.Expiry < 0 {
		b.Expiry = 0
	}
}

func (b *BaseSurvey) Stale() bool { return b.Expiry <= 0 }

// Rover holds rover-side correction-age state fed by UBX RXM-RTCM.
type Rover struct {
	MessageType  uint16
	MessageUsed  uint8 // 0 unknown, 1 not used, 2 used
	RefStationID uint16

	Expiry int
}

func (r *Rover) Expire(elapsedTicks int) {
	r.Expiry -= elapsedTicks
	if r.Expiry < 0 {
		r.Expiry = 0
	}
}

func (r *Rover) Stale() bool { return r.Expiry <= 0 }

// Fault records the most recent receiver-reported fault: a UBX ACK-NAK
// (ClassID/MsgID identify the rejected request) or an NMEA GBS fault-
// detection sentence (the remaining fields, per spec.md §4.4). Residuals
// and error estimates are signed millimeters; ProbabilityPPM is the
// fault probability scaled by 1e6 (a probability of 0.002 is 2000).
type Fault struct {
	ClassID uint8
	MsgID   uint8
	Label   string

	UtcNs          int64
	LatResidualMm  int32
	LonResidualMm  int32
	AltResidualMm  int32
	FailedPRN      int
	HasFailedPRN   bool
	ProbabilityPPM int64
	ExpectedErrMm  int32
	StdDevMm       int32
	System         System
	HasSystem      bool
	Signal         string

	Expiry int
}

func (f *Fault) Expire(elapsedTicks int) {
	f.Expiry -= elapsedTicks
	if f.Expiry < 0 {
		f.Expiry = 0
	}
}

func (f *Fault) Stale() bool { return f.Expiry <= 0 }
