package gnssdb

// RTCMObservation tracks per-station correction traffic, keyed by station
// ID rather than by System: RTCM 10403.3 multiplexes every constellation's
// observables through one reference-station stream (spec.md §4.6).
type RTCMObservation struct {
	StationID     uint16
	LastMessageNo int
	MessageCount  uint64
	KeepaliveOnly bool

	Expiry int
}

func (o *RTCMObservation) Expire(elapsedTicks int) {
	o.Expiry -= elapsedTicks
	if o.Expiry < 0 {
		o.Expiry = 0
	}
}

func (o *RTCMObservation) Stale() bool { return o.Expiry <= 0 }

// Observe records one classified RTCM message against the station's
// running counters.
func (o *RTCMObservation) Observe(stationID uint16, messageNo int, keepalive bool) {
	o.StationID = stationID
	o.LastMessageNo = messageNo
	o.KeepaliveOnly = keepalive
	if !keepalive {
		o.MessageCount++
	}
}
