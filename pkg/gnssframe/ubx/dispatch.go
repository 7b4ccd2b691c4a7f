package ubx

import (
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
)

// Update decodes a framed UBX buffer (as produced by framer.UBXFramer)
// and applies it to db, the way nmea.Parse and rtcm.Update do for their
// own protocols. Messages the core doesn't track (NAV-PVT, NAV-ATT,
// NAV-ODO, MON-VER, MON-COMMS, CFG-VALGET) are still decoded by their own
// Parse functions for callers that want them directly; Update only wires
// the subset that feeds a database record per spec.md §4.5/§4.7.
func Update(db *gnssdb.DB, frame []byte) (gnsserr.Outcome, error) {
	h, _, err := ParseHeader(frame)
	if err != nil {
		return gnsserr.Dropped, err
	}

	switch {
	case h.Class == ClassNAV && h.ID == IDNavHPPOSLLH:
		r, invalid, err := ParseNavHPPOSLLH(frame)
		if err != nil {
			return gnsserr.Dropped, err
		}
		if invalid {
			return gnsserr.Dropped, nil
		}
		db.HighPrecision.LatNanomin = r.LatNanomin
		db.HighPrecision.LonNanomin = r.LonNanomin
		db.HighPrecision.AltMm = r.AltMm
		db.HighPrecision.HAccMm = r.HAccMm
		db.HighPrecision.VAccMm = r.VAccMm
		db.HighPrecision.Expiry = gnssdb.DefaultExpiryTicks
		return gnsserr.Updated, nil

	case h.Class == ClassNAV && h.ID == IDNavStatus:
		r, err := ParseNavStatus(frame)
		if err != nil {
			return gnsserr.Dropped, err
		}
		db.NavStatus.GPSFix = r.GPSFix
		db.NavStatus.Flags = r.Flags
		db.NavStatus.FixStat = r.FixStat
		db.NavStatus.Flags2 = r.Flags2
		db.NavStatus.TTFFms = r.TTFFms
		db.NavStatus.MSSSms = r.MSSSms
		db.NavStatus.Expiry = gnssdb.DefaultExpiryTicks
		return gnsserr.Updated, nil

	case h.Class == ClassNAV && h.ID == IDNavSVIN:
		r, err := ParseNavSVIN(frame)
		if err != nil {
			return gnsserr.Dropped, err
		}
		db.BaseSurvey.DurationS = r.DurationS
		db.BaseSurvey.MeanXMm = r.MeanXMm
		db.BaseSurvey.MeanYMm = r.MeanYMm
		db.BaseSurvey.MeanZMm = r.MeanZMm
		db.BaseSurvey.MeanAccMm = r.MeanAccMm
		db.BaseSurvey.Observations = r.Observations
		db.BaseSurvey.Valid = r.Valid
		db.BaseSurvey.Active = r.Active
		db.BaseSurvey.Expiry = gnssdb.DefaultExpiryTicks
		return gnsserr.Updated, nil

	case h.Class == ClassRXM && h.ID == IDRXMRTCM:
		r, err := ParseRXMRTCM(frame)
		if err != nil {
			return gnsserr.Dropped, err
		}
		db.Rover.MessageType = r.MessageType
		db.Rover.RefStationID = r.RefStationID
		db.Rover.MessageUsed = r.Flags & 0x03
		db.Rover.Expiry = gnssdb.DefaultExpiryTicks
		return gnsserr.Updated, nil

	case h.Class == ClassMON && h.ID == IDMonHW:
		r, err := ParseMonHW(frame)
		if err != nil {
			return gnsserr.Dropped, err
		}
		db.HardwareMonitor.NoisePerMS = r.NoisePerMS
		db.HardwareMonitor.AGCCnt = r.AGCCnt
		db.HardwareMonitor.AntStatus = r.AntStatus
		db.HardwareMonitor.AntPower = r.AntPower
		db.HardwareMonitor.JammingInd = r.JammingInd
		db.HardwareMonitor.RTCCalib = r.RTCCalib
		db.HardwareMonitor.SafeBoot = r.SafeBoot
		db.HardwareMonitor.Expiry = gnssdb.DefaultExpiryTicks
		return gnsserr.Updated, nil

	case h.Class == ClassACK && (h.ID == IDAckACK || h.ID == IDAckNAK):
		r, err := ParseAck(frame)
		if err != nil {
			return gnsserr.Dropped, err
		}
		if !r.Ack {
			db.Fault.ClassID = r.ClassID
			db.Fault.MsgID = r.MsgID
			db.Fault.Label = "ACK-NAK"
			db.Fault.Expiry = gnssdb.DefaultExpiryTicks
		}
		return gnsserr.Updated, nil

	default:
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENOMSG, "ubx: unhandled class/id")
	}
}
