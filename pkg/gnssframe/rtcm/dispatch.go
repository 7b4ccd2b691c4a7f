package rtcm

import (
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
)

// Update validates a framed RTCM buffer (as produced by
// framer.RTCMFramer) and folds it into db's per-station observation
// counters, mirroring nmea.Parse and ubx.Update's role for the other two
// protocols (spec.md §4.6/§4.7). Update decodes no station id from the
// message: it passes the record's current StationID (zero unless a
// caller sets it) to Observe, matching the teacher's
// single-reference-station assumption.
func Update(db *gnssdb.DB, buf []byte) (gnsserr.Outcome, error) {
	ok, err := Validate(buf)
	if err != nil {
		return gnsserr.Dropped, err
	}
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "rtcm: crc mismatch")
	}
	if IsKeepalive(buf) {
		db.RTCMObservation.Observe(db.RTCMObservation.StationID, 0, true)
		db.RTCMObservation.Expiry = gnssdb.DefaultExpiryTicks
		return gnsserr.Updated, nil
	}
	msgNo, err := MessageNumber(buf)
	if err != nil {
		return gnsserr.Dropped, err
	}
	db.RTCMObservation.Observe(db.RTCMObservation.StationID, msgNo, false)
	db.RTCMObservation.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}
