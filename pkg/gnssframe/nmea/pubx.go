package nmea

import (
	"strconv"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// parsePUBX dispatches a u-blox proprietary "$PUBX,<subtype>,..." sentence
// to its subtype-specific parser (spec.md §4.4).
func parsePUBX(db *gnssdb.DB, payload string) (gnsserr.Outcome, error) {
	toks := Tokenize(payload)
	if toks.Len() < 1 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "PUBX: missing subtype")
	}
	switch toks.Field(0) {
	case "00":
		return parsePUBX00(db, toks)
	case "03":
		return parsePUBX03(db, toks)
	case "04":
		return parsePUBX04(db, toks)
	default:
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENOMSG, "PUBX: "+toks.Field(0))
	}
}

// pubxNavModeQuality maps a PUBX,00 two-letter navigation-mode code to a
// (system-agnostic) quality, plus whether the fix is 3D.
func pubxNavModeQuality(mode string) (q gnssdb.Quality, fix3D, drop bool) {
	switch mode {
	case "NF":
		return 0, false, true
	case "DR":
		return gnssdb.QualityEstimated, false, false
	case "G2":
		return gnssdb.QualityAutonomous, false, false
	case "G3":
		return gnssdb.QualityAutonomous, true, false
	case "RK":
		return gnssdb.QualityEstimated, true, false
	case "D2":
		return gnssdb.QualityDifferential, false, false
	case "D3":
		return gnssdb.QualityDifferential, true, false
	case "TT":
		return 0, false, false
	default:
		return 0, false, true
	}
}

// parsePUBX00 implements the POSITION subtype: 1 utc, 2 lat, 3 N/S,
// 4 lon, 5 E/W, 6 alt, 7 navstat, 8 hacc, 9 vacc, 10 sog, 11 cog,
// 12 vvel, 13 diffage, 14 hdop, 15 vdop, 16 tdop, 17 numsats.
// Note the field indices here are 1-based relative to the subtype token
// already consumed at Field(0) by Tokens, so fields below are offset by
// one compared to the raw comma-separated sentence.
func parsePUBX00(db *gnssdb.DB, t Tokens) (gnsserr.Outcome, error) {
	navstat := t.Field(7)
	quality, fix3D, drop := pubxNavModeQuality(navstat)
	if drop {
		return gnsserr.Dropped, nil
	}

	if navstat == "TT" {
		utcNs, _, err := ParseUTC(t.Field(1))
		if err != nil {
			return gnsserr.Dropped, err
		}
		p := db.Position(gnssdb.GNSS)
		p.stampUTC(utcNs)
		p.Label = "PUBX00"
		p.Expiry = gnssdb.DefaultExpiryTicks
		return gnsserr.Updated, nil
	}

	if t.Len() < 18 {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "PUBX00: too few fields")
	}
	utcNs, _, err := ParseUTC(t.Field(1))
	if err != nil {
		return gnsserr.Dropped, err
	}
	lat, latDigits, ok := ParseLatLon(t.Field(2), t.Field(3), 2)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX00: lat")
	}
	lon, lonDigits, ok := ParseLatLon(t.Field(4), t.Field(5), 3)
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX00: lon")
	}
	alt, altDigits, ok := ParseAltitude(t.Field(6))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX00: altitude")
	}
	sog, sogDigits, ok := ParseSOGKnots(t.Field(10))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX00: sog")
	}
	cog, cogDigits, ok := ParseCOG(t.Field(11))
	if !ok {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX00: cog")
	}
	numSats, err := strconv.Atoi(t.Field(17))
	if err != nil {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX00: numSats")
	}

	p := db.Position(gnssdb.GNSS)
	p.stampUTC(utcNs)
	p.LatNanomin = lat
	p.LonNanomin = lon
	p.HasFix = true
	p.AltMm = alt
	p.SogMicroKnots = sog
	p.CogNanodeg = cog
	p.SatsUsed = numSats
	p.Quality = quality
	p.Digits.Lat, p.Digits.Lon, p.Digits.Alt, p.Digits.SOG, p.Digits.COG =
		uint8(latDigits), uint8(lonDigits), uint8(altDigits), uint8(sogDigits), uint8(cogDigits)
	p.Label = "PUBX00"
	p.Expiry = gnssdb.DefaultExpiryTicks

	a := db.Active(gnssdb.GNSS)
	a.Fix3D = fix3D
	a.InUse = true
	a.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}

// pubx03Group collects one system's rows and used-satellite IDs out of a
// PUBX,03 sentence, preserving the order systems are first encountered
// in so the commit pass below is deterministic.
type pubx03Group struct {
	sys  gnssdb.System
	rows []gnssdb.SatelliteView
	used []int
}

// parsePUBX03 implements the SVSTATUS subtype: 1 numSv, then one 6-tuple
// per satellite: svid, status, azm, elv, cno, lck. Variable length; the
// satellite ID range determines the destination system.
func parsePUBX03(db *gnssdb.DB, t Tokens) (gnsserr.Outcome, error) {
	numSv, err := strconv.Atoi(t.Field(1))
	if err != nil {
		return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX03: numSv")
	}
	const base = 2
	const tupleWidth = 6
	if t.Len() < base+numSv*tupleWidth {
		return gnsserr.Dropped, gnsserr.New(gnsserr.ENODATA, "PUBX03: truncated tuples")
	}

	var groups []pubx03Group
	groupFor := func(sys gnssdb.System) *pubx03Group {
		for i := range groups {
			if groups[i].sys == sys {
				return &groups[i]
			}
		}
		groups = append(groups, pubx03Group{sys: sys})
		return &groups[len(groups)-1]
	}

	for i := 0; i < numSv; i++ {
		off := base + i*tupleWidth
		svid, err := strconv.Atoi(t.Field(off))
		if err != nil {
			return gnsserr.Dropped, gnsserr.New(gnsserr.EINVAL, "PUBX03: svid")
		}
		status := t.Field(off + 1)
		row := gnssdb.SatelliteView{PRN: svid}
		if t.Field(off+2) == "" || t.Field(off+3) == "" {
			row.Phantom = true
		} else {
			azm, _ := strconv.Atoi(t.Field(off + 2))
			elv, _ := strconv.Atoi(t.Field(off + 3))
			row.AzimuthDeg, row.ElevationDeg = int16(azm), int16(elv)
		}
		if t.Field(off+4) == "" {
			row.Untracked = true
			row.CNRdb = -1
		} else {
			v, _ := strconv.Atoi(t.Field(off + 4))
			row.CNRdb = int8(v)
		}

		sys := gnssdb.SystemFromPUBXRange(svid)
		group := groupFor(sys)
		switch status {
		case "U":
			group.used = append(group.used, svid)
		case "e":
			// ephemeris only, not used for ranging
		case "-":
			// unused
		default:
			row.Phantom = true
			row.Untracked = true
		}
		group.rows = append(group.rows, row)
	}

	// PUBX,03 atomically refreshes the view of every system present in
	// the sentence (spec.md §3): one commit per system, in one shot,
	// rather than a multi-sentence GSV-style tuple.
	for _, g := range groups {
		view := db.View(g.sys)
		view.AppendSentence(1, 1, len(g.rows), "", g.rows)
		view.Expiry = gnssdb.DefaultExpiryTicks

		a := db.Active(g.sys)
		if len(g.used) > 0 {
			a.PRNs = append(a.PRNs, g.used...)
			a.InUse = true
		}
		a.Expiry = gnssdb.DefaultExpiryTicks
	}
	return gnsserr.Updated, nil
}

// parsePUBX04 implements the TIME subtype: 1 utc, 2 date, others ignored.
func parsePUBX04(db *gnssdb.DB, t Tokens) (gnsserr.Outcome, error) {
	utcNs, _, err := ParseUTC(t.Field(1))
	if err != nil {
		return gnsserr.Dropped, err
	}
	dmyNs, err := ParseDMY(t.Field(2))
	if err != nil {
		return gnsserr.Dropped, err
	}
	p := db.Position(gnssdb.GNSS)
	p.DmyNs = dmyNs
	p.stampUTC(utcNs)
	p.Label = "PUBX04"
	p.Expiry = gnssdb.DefaultExpiryTicks
	return gnsserr.Updated, nil
}
