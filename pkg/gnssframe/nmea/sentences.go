package nmea

import (
	"strconv"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// Parse identifies and dispatches a framed NMEA sentence to its
// record-specific parser, mutating db in place. The destination record is
// only ever mutated after every field in the sentence has validated —
// parsers build local values and commit them to db only on success
// (spec.md §4.4).
func Parse(db *gnssdb.DB, raw string) (gnsserr.Outcome, error) {
	talker, typ, payload, err := Identify(raw)
	if err != nil {
		return gnsserr.Dropped, err
	}
	if typ == "" && talker == "PUBX" {
		return parsePUBX(db, payload)
	}
	toks := Tokenize(payload)
	switch typ {
	case "GGA":
		return parseGGA(db, talkerSystem(talker), toks)
	case "RMC":
		return parseRMC(db, talkerSystem(talker), toks)
	case "GLL":
		return parseGLL(db, talkerSystem(talker), toks)
	case "VTG":
		return parseVTG(db, talkerSystem(talker), toks)
	case "ZDA":
		return parseZDA(db, talkerSystem(talker), toks)
	case "GSA":
		return parseGSA(db, talker, toks)
	case "GSV":
		return parseGSV(db, talkerSystem(talker), toks)
	case "TXT":
		return parseTXT(toks)
	case "GBS":
		return parseGBS(db, talkerSystem(talker), toks)
	default:
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENOMSG, "nmea: "+typ)
	}
}

func modeIndicatorQuality(c byte) (gnssdb.Quality, bool) {
	switch c {
	case 'A':
		return gnssdb.QualityAutonomous, true
	case 'D':
		return gnssdb.QualityDifferential, true
	case 'E':
		return gnssdb.QualityEstimated, true
	case 'F':
		return gnssdb.QualityRTKFloat, true
	case 'M':
		return gnssdb.QualityManual, true
	case 'P':
		return gnssdb.QualityPrecise, true
	case 'R':
		return gnssdb.QualityRTKFixed, true
	case 'S':
		return gnssdb.QualitySimulator, true
	case 'N':
		return 0, false
	default:
		return 0, false
	}
}

func safetyLetter(c byte) gnssdb.Safety {
	switch c {
	case 'S':
		return gnssdb.SafetySafe
	case 'C':
		return gnssdb.SafetyCaution
	case 'U':
		return gnssdb.SafetyUnsafe
	case 'V':
		return gnssdb.SafetyNotValid
	default:
		return gnssdb.SafetyUnknown
	}
}

// parseGGA implements the GGA parser from spec.md §4.4. Fields:
// 0 utc, 1 lat, 2 N/S, 3 lon, 4 E/W, 5 quality, 6 numSats, 7 hdop,
// 8 alt, 9 altUnit, 10 sep, 11 sepUnit, 12 dgpsAge, 13 dgpsStation.
func parseGGA(db *gnssdb.DB, sys gnssdb.System, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 14 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "GGA: too few fields")
	}
	quality, err := strconv.Atoi(t.Field(5))
	if err != nil {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GGA: quality")
	}
	numSats, err := strconv.Atoi(t.Field(6))
	if err != nil {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GGA: numSats")
	}
	if quality == 0 || numSats == 0 {
		return gnsserr.Dropped, nil
	}

	utcNs, _, err := ParseUTC(t.Field(0))
	if err != nil {
		return gnsserr.Dropped, err
	}
	lat, latDigits, ok := ParseLatLon(t.Field(1), t.Field(2), 2)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GGA: lat")
	}
	lon, lonDigits, ok := ParseLatLon(t.Field(3), t.Field(4), 3)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GGA: lon")
	}
	if t.Field(9) != "" && t.Field(9) != "M" {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GGA: altitude units")
	}
	alt, altDigits, ok := ParseAltitude(t.Field(8))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GGA: altitude")
	}
	var sep int32
	var sepDigits int
	if t.Field(10) != "" {
		sep, sepDigits, ok = ParseAltitude(t.Field(10))
		if !ok {
			return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GGA: sep")
		}
	}

	q := gnssdb.QualityNoFix
	switch quality {
	case 1:
		q = gnssdb.QualityAutonomous
	case 2:
		q = gnssdb.QualityDifferential
	case 4:
		q = gnssdb.QualityRTKFixed
	case 5:
		q = gnssdb.QualityRTKFloat
	default:
		q = gnssdb.Quality(quality)
	}

	p := db.Position(sys)
	p.stampUTC(utcNs)
	p.LatNanomin = lat
	p.LonNanomin = lon
	p.HasFix = true
	p.AltMm = alt
	p.SepMm = sep
	p.SatsUsed = numSats
	p.Quality = q
	p.Digits.Lat, p.Digits.Lon, p.Digits.Alt, p.Digits.Sep =
		uint8(latDigits), uint8(lonDigits), uint8(altDigits), uint8(sepDigits)
	p.Label = "GGA"
	p.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// parseRMC implements the RMC parser. Fields: 0 utc, 1 status, 2 lat,
// 3 N/S, 4 lon, 5 E/W, 6 sog, 7 cog, 8 date, 9 magvar, 10 magvar dir,
// 11 mode indicator (NMEA 2.3+), 12 nav status (NMEA 4.1+).
func parseRMC(db *gnssdb.DB, sys gnssdb.System, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 9 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "RMC: too few fields")
	}
	status := t.Field(1)
	navStatus := t.Field(12)
	if status != "A" && !(navStatus == "A" || navStatus == "D") {
		return gnsserr.Dropped, nil
	}

	mode := byte('A')
	if t.Field(11) != "" {
		mode = t.Field(11)[0]
	}
	quality, accept := modeIndicatorQuality(mode)
	if !accept {
		return gnsserr.Dropped, nil
	}

	utcNs, _, err := ParseUTC(t.Field(0))
	if err != nil {
		return gnsserr.Dropped, err
	}
	lat, latDigits, ok := ParseLatLon(t.Field(2), t.Field(3), 2)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "RMC: lat")
	}
	lon, lonDigits, ok := ParseLatLon(t.Field(4), t.Field(5), 3)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "RMC: lon")
	}
	sog, sogDigits, ok := ParseSOGKnots(t.Field(6))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "RMC: sog")
	}
	cog, cogDigits, ok := ParseCOG(t.Field(7))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "RMC: cog")
	}
	dmyNs, err := ParseDMY(t.Field(8))
	if err != nil {
		return gnsserr.Dropped, err
	}

	p := db.Position(sys)
	p.DmyNs = dmyNs
	p.stampUTC(utcNs)
	p.LatNanomin = lat
	p.LonNanomin = lon
	p.HasFix = true
	p.SogMicroKnots = sog
	p.CogNanodeg = cog
	p.Quality = quality
	if navStatus != "" {
		p.Safety = safetyLetter(navStatus[0])
	} else {
		p.Safety = gnssdb.SafetyUnknown
	}
	p.Digits.Lat, p.Digits.Lon, p.Digits.SOG, p.Digits.COG =
		uint8(latDigits), uint8(lonDigits), uint8(sogDigits), uint8(cogDigits)
	p.Label = "RMC"
	p.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// parseGLL implements the GLL parser: 0 lat, 1 N/S, 2 lon, 3 E/W, 4 utc,
// 5 status.
func parseGLL(db *gnssdb.DB, sys gnssdb.System, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 6 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "GLL: too few fields")
	}
	if t.Field(5) != "A" {
		return gnsserr.Dropped, nil
	}
	lat, latDigits, ok := ParseLatLon(t.Field(0), t.Field(1), 2)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GLL: lat")
	}
	lon, lonDigits, ok := ParseLatLon(t.Field(2), t.Field(3), 3)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GLL: lon")
	}
	utcNs, _, err := ParseUTC(t.Field(4))
	if err != nil {
		return gnsserr.Dropped, err
	}

	p := db.Position(sys)
	p.stampUTC(utcNs)
	p.LatNanomin = lat
	p.LonNanomin = lon
	p.HasFix = true
	p.Digits.Lat, p.Digits.Lon = uint8(latDigits), uint8(lonDigits)
	p.Label = "GLL"
	p.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// parseVTG implements the VTG parser: 0 true heading, 1 'T', 2 magnetic
// heading, 3 'M', 4 sog knots, 5 'N', 6 sog km/h, 7 'K', 8 mode.
func parseVTG(db *gnssdb.DB, sys gnssdb.System, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 8 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "VTG: too few fields")
	}
	if t.Field(8) == "N" {
		return gnsserr.Dropped, nil
	}
	cog, cogDigits, ok := ParseCOG(t.Field(0))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "VTG: true heading")
	}
	var hdg int64
	var hdgDigits int
	if t.Field(2) != "" {
		hdg, hdgDigits, ok = ParseCOG(t.Field(2))
		if !ok {
			return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "VTG: magnetic heading")
		}
	}
	sog, sogDigits, ok := ParseSOGKnots(t.Field(4))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "VTG: sog")
	}
	sogKmh, _, ok := ParseSOGKmh(t.Field(6))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "VTG: sog km/h")
	}

	p := db.Position(sys)
	p.CogNanodeg = cog
	p.HdgNanodeg = hdg
	p.SogMicroKnots = sog
	p.SogMmPerHour = sogKmh
	p.Digits.COG, p.Digits.Heading, p.Digits.SOG = uint8(cogDigits), uint8(hdgDigits), uint8(sogDigits)
	p.Label = "VTG"
	p.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// parseZDA implements the ZDA parser: 0 utc, 1 day, 2 month, 3 year,
// 4 zone hours, 5 zone minutes. ZDA updates the monotonic clock even
// without a fix.
func parseZDA(db *gnssdb.DB, sys gnssdb.System, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 6 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "ZDA: too few fields")
	}
	utcNs, _, err := ParseUTC(t.Field(0))
	if err != nil {
		return gnsserr.Dropped, err
	}
	dmyNs, err := ParseZDADate(t.Field(1), t.Field(2), t.Field(3))
	if err != nil {
		return gnsserr.Dropped, err
	}
	var tzNs int64
	hasTz := false
	if t.Field(4) != "" && t.Field(5) != "" {
		zh, err1 := strconv.Atoi(t.Field(4))
		zm, err2 := strconv.Atoi(t.Field(5))
		if err1 != nil || err2 != nil {
			return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "ZDA: zone")
		}
		tzNs = (int64(zh)*3600 + int64(zm)*60) * 1e9
		hasTz = true
	}

	p := db.Position(sys)
	p.DmyNs = dmyNs
	p.stampUTC(utcNs)
	if hasTz {
		p.TzNs = tzNs
		p.HasTz = true
	}
	p.Label = "ZDA"
	p.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// parseGSA implements the GSA parser: 0 mode char (M/A), 1 fix mode
// (1/2/3), 2..13 up to 12 satellite IDs, 14 pdop, 15 hdop, 16 vdop,
// optional trailing NMEA 4.10 System ID (hex).
func parseGSA(db *gnssdb.DB, talker string, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 17 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "GSA: too few fields")
	}
	fixMode, err := strconv.Atoi(t.Field(1))
	if err != nil || fixMode < 1 || fixMode > 3 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSA: fix mode")
	}

	var ids []int
	for i := 2; i <= 13; i++ {
		f := t.Field(i)
		if f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSA: satellite id")
		}
		ids = append(ids, id)
	}
	pdop, ok := ParseDOP(t.Field(14))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSA: pdop")
	}
	hdop, ok := ParseDOP(t.Field(15))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSA: hdop")
	}
	vdop, ok := ParseDOP(t.Field(16))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSA: vdop")
	}

	sys := talkerSystem(talker)
	if talker == "GN" {
		sysID := t.Field(17)
		if sysID != "" {
			n, err := strconv.ParseInt(sysID, 16, 64)
			if err == nil {
				sys = systemFromHexID(int(n))
			}
		} else if len(ids) > 0 {
			sys = gnssdb.SystemFromNMEARange(ids[0])
		}
	}

	a := db.Active(sys)
	a.InUse = fixMode > 1
	a.Fix3D = fixMode == 3
	a.PRNs = ids
	a.PDOPmmx = pdop
	a.HDOPmmx = hdop
	a.VDOPmmx = vdop
	a.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// systemFromHexID maps the NMEA 4.10 GSA System ID hex field to a
// constellation.
func systemFromHexID(id int) gnssdb.System {
	switch id {
	case 1:
		return gnssdb.GPS
	case 2:
		return gnssdb.GLONASS
	case 3:
		return gnssdb.GALILEO
	case 4:
		return gnssdb.BEIDOU
	case 5, 15:
		return gnssdb.QZSS
	case 6:
		return gnssdb.NAVIC
	default:
		return gnssdb.GNSS
	}
}

// parseGSV implements the GSV tuple-assembly parser: 0 total sentences,
// 1 sentence number, 2 satellites in view, then up to four
// (id, elv, azm, snr) quadruplets, then an optional trailing signal-band
// id. Emptiness rules per spec.md §4.4: an empty id skips the slot; an
// empty elv or azm sets Phantom; an empty snr sets Untracked. Decoded
// rows are handed to View.AppendSentence, which owns when a tuple
// actually commits.
func parseGSV(db *gnssdb.DB, sys gnssdb.System, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 3 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "GSV: too few fields")
	}
	total, err := strconv.Atoi(t.Field(0))
	if err != nil {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSV: total sentences")
	}
	num, err := strconv.Atoi(t.Field(1))
	if err != nil {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSV: sentence number")
	}
	visible, err := strconv.Atoi(t.Field(2))
	if err != nil {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSV: satellites in view")
	}

	const base = 3
	rows := make([]gnssdb.SatelliteView, 0, 4)
	for i := 0; i < 4; i++ {
		idTok := t.Field(base + i*4)
		if idTok == "" {
			continue
		}
		id, err := strconv.Atoi(idTok)
		if err != nil {
			return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSV: satellite id")
		}
		row := gnssdb.SatelliteView{PRN: id}
		elvTok, azmTok, snrTok := t.Field(base+i*4+1), t.Field(base+i*4+2), t.Field(base+i*4+3)
		if elvTok == "" || azmTok == "" {
			row.Phantom = true
		} else {
			elv, err1 := strconv.Atoi(elvTok)
			azm, err2 := strconv.Atoi(azmTok)
			if err1 != nil || err2 != nil {
				return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSV: elv/azm")
			}
			row.ElevationDeg, row.AzimuthDeg = int16(elv), int16(azm)
		}
		if snrTok == "" {
			row.Untracked = true
			row.CNRdb = -1
		} else {
			snr, err := strconv.Atoi(snrTok)
			if err != nil {
				return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GSV: snr")
			}
			row.CNRdb = int8(snr)
		}
		rows = append(rows, row)
	}
	signal := t.Field(base + 4*4)

	view := db.View(sys)
	view.AppendSentence(total, num, visible, signal, rows)
	view.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// parseTXT recognizes a TXT sentence; the spec calls only for
// recognition and logging, not field validation beyond field count.
func parseTXT(t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 4 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "TXT: too few fields")
	}
	return gnsserr.Dropped, nil
}

// parseGBS implements the fault-detection parser: 0 utc, 1 lat residual,
// 2 lon residual, 3 alt residual, 4 failed satellite id, 5 fault
// probability, 6 expected error, 7 standard deviation, optional 8 system,
// 9 signal.
func parseGBS(db *gnssdb.DB, sys gnssdb.System, t Tokens) (gnsserr.Outcome, error) {
	if t.Len() < 8 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "GBS: too few fields")
	}
	utcNs, _, err := ParseUTC(t.Field(0))
	if err != nil {
		return gnsserr.Dropped, err
	}
	latResMm, _, ok := ParseSignedDecimal(t.Field(1), 1000)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: lat residual")
	}
	lonResMm, _, ok := ParseSignedDecimal(t.Field(2), 1000)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: lon residual")
	}
	altResMm, _, ok := ParseSignedDecimal(t.Field(3), 1000)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: alt residual")
	}
	failedID, err := strconv.Atoi(t.Field(4))
	hasFailedID := t.Field(4) != ""
	if err != nil && hasFailedID {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: failed satellite id")
	}
	probPPM, _, ok := ParseSignedDecimal(t.Field(5), 1e6)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: fault probability")
	}
	expectedErrMm, _, ok := ParseSignedDecimal(t.Field(6), 1000)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: expected error")
	}
	stdDevMm, _, ok := ParseSignedDecimal(t.Field(7), 1000)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: standard deviation")
	}
	gbsSys := sys
	hasSystem := false
	if t.Field(8) != "" {
		n, err := strconv.ParseInt(t.Field(8), 16, 64)
		if err != nil {
			return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "GBS: system")
		}
		gbsSys = systemFromHexID(int(n))
		hasSystem = true
	}

	db.Fault.UtcNs = utcNs
	db.Fault.LatResidualMm = int32(latResMm)
	db.Fault.LonResidualMm = int32(lonResMm)
	db.Fault.AltResidualMm = int32(altResMm)
	db.Fault.FailedPRN = failedID
	db.Fault.HasFailedPRN = hasFailedID
	db.Fault.ProbabilityPPM = probPPM
	db.Fault.ExpectedErrMm = int32(expectedErrMm)
	db.Fault.StdDevMm = int32(stdDevMm)
	db.Fault.System = gbsSys
	db.Fault.HasSystem = hasSystem
	db.Fault.Signal = t.Field(9)
	db.Fault.Label = "GBS"
	db.Fault.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}
