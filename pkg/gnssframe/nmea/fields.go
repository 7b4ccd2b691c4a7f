// Package nmea tokenizes and parses NMEA 0183 sentences into the
// fixed-point records of gnssdb. It replaces the teacher's float-based,
// destructive-split tokenizer with a non-destructive iterator over token
// slices and integer field parsers, per the reimplementation notes.
package nmea

import (
	"strconv"
	"strings"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gtime"
)

// Tokens is a non-destructive view over a sentence's comma-separated
// fields, addressed by index rather than by repeated splitting.
type Tokens struct {
	fields []string
}

// Tokenize splits the payload between "$TTMMM" and the trailing "*HH"
// (the checksum and CR/LF are assumed already stripped by the caller) into
// its comma-delimited fields, dropping the leading "$TTMMM" token itself.
func Tokenize(payload string) Tokens {
	fields := strings.Split(payload, ",")
	if len(fields) > 0 {
		fields = fields[1:]
	}
	return Tokens{fields: fields}
}

func (t Tokens) Len() int { return len(t.fields) }

// Field returns the token at i, or "" if i is out of range — callers
// treat a missing trailing field the same as an explicitly empty one.
func (t Tokens) Field(i int) string {
	if i < 0 || i >= len(t.fields) {
		return ""
	}
	return t.fields[i]
}

// Fraction parses a decimal integer token, returning the integer value,
// the power-of-ten denominator implied by the digit count consumed, and
// the digit count itself. An empty token returns ok=false.
func Fraction(tok string) (value int64, denom int64, digits int, ok bool) {
	if tok == "" {
		return 0, 1, 0, false
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, 1, 0, false
	}
	denom = 1
	for i := 0; i < len(tok); i++ {
		denom *= 10
	}
	return v, denom, len(tok), true
}

// ParseUTC parses an "hhmmss(.sss...)" token into nanoseconds since
// 00:00 UTC.
func ParseUTC(tok string) (ns int64, digits int, err error) {
	if tok == "" {
		return 0, 0, nil
	}
	dot := strings.IndexByte(tok, '.')
	whole := tok
	frac := ""
	if dot >= 0 {
		whole = tok[:dot]
		frac = tok[dot+1:]
	}
	if len(whole) < 6 {
		return 0, 0, gnsserr.New(gnsserr.EINVAL, "nmea utc: too short")
	}
	hh, err1 := strconv.Atoi(whole[0:2])
	mm, err2 := strconv.Atoi(whole[2:4])
	ss, err3 := strconv.Atoi(whole[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, gnsserr.New(gnsserr.EINVAL, "nmea utc: non-numeric")
	}
	if hh < 0 || hh >= 24 || mm < 0 || mm >= 60 || ss < 0 || ss >= 60 {
		return 0, 0, gnsserr.New(gnsserr.ERANGE, "nmea utc: out of range")
	}
	ns = (int64(hh)*3600 + int64(mm)*60 + int64(ss)) * 1e9
	digits = len(whole)
	if frac != "" {
		fv, denom, fdigits, ok := Fraction(frac)
		if !ok {
			return 0, 0, gnsserr.New(gnsserr.EINVAL, "nmea utc: bad fraction")
		}
		ns += fv * 1e9 / denom
		digits += fdigits
	}
	return ns, digits, nil
}

// twoDigitYearCentury resolves the NMEA DMY two-digit-year heuristic:
// values less than 93 mean the 21st century, else the 20th.
func twoDigitYearCentury(yy int) int {
	if yy < 93 {
		return 2000 + yy
	}
	return 1900 + yy
}

// ParseDMY parses a "ddmmyy" token (RMC-style) into nanoseconds since the
// POSIX epoch at 00:00 UTC on that date, applying the two-digit-year
// heuristic.
func ParseDMY(tok string) (epochNs int64, err error) {
	if len(tok) != 6 {
		return 0, gnsserr.New(gnsserr.EINVAL, "nmea dmy: wrong length")
	}
	dd, err1 := strconv.Atoi(tok[0:2])
	mm, err2 := strconv.Atoi(tok[2:4])
	yy, err3 := strconv.Atoi(tok[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, gnsserr.New(gnsserr.EINVAL, "nmea dmy: non-numeric")
	}
	year := twoDigitYearCentury(yy)
	if mm < 1 || mm > 12 || dd < 1 || dd > gtime.DaysInMonth(year, mm) {
		return 0, gnsserr.New(gnsserr.ERANGE, "nmea dmy: out of range")
	}
	return gtime.DMYToEpochNanos(year, mm, dd, 0), nil
}

// ParseZDADate parses ZDA's independent d, m, y fields (a full four-digit
// year, bypassing the two-digit-year heuristic) into epoch nanoseconds.
func ParseZDADate(dTok, mTok, yTok string) (epochNs int64, err error) {
	dd, err1 := strconv.Atoi(dTok)
	mm, err2 := strconv.Atoi(mTok)
	yyyy, err3 := strconv.Atoi(yTok)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, gnsserr.New(gnsserr.EINVAL, "nmea zda date: non-numeric")
	}
	if mm < 1 || mm > 12 || dd < 1 || dd > gtime.DaysInMonth(yyyy, mm) {
		return 0, gnsserr.New(gnsserr.ERANGE, "nmea zda date: out of range")
	}
	return gtime.DMYToEpochNanos(yyyy, mm, dd, 0), nil
}

// ParseLatLon parses a "dddmm.mmmm..." coordinate token plus its N/S or
// E/W direction letter into signed nanominutes (N/E positive, S/W
// negative), and the number of significant minute digits seen (whole
// minutes plus fractional digits).
func ParseLatLon(coordTok, dirTok string, degreeWidth int) (nanomin int64, digits int, ok bool) {
	if coordTok == "" {
		return 0, 0, false
	}
	dot := strings.IndexByte(coordTok, '.')
	whole := coordTok
	frac := ""
	if dot >= 0 {
		whole = coordTok[:dot]
		frac = coordTok[dot+1:]
	}
	if len(whole) < degreeWidth+2 {
		return 0, 0, false
	}
	degStr := whole[:degreeWidth]
	minStr := whole[degreeWidth:]
	deg, err1 := strconv.Atoi(degStr)
	min, err2 := strconv.Atoi(minStr)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	nanomin = (int64(deg)*60 + int64(min)) * 1e9
	digits = len(minStr)
	if frac != "" {
		fv, denom, fdigits, fok := Fraction(frac)
		if !fok {
			return 0, 0, false
		}
		nanomin += fv * 1e9 / denom
		digits += fdigits
	}
	switch dirTok {
	case "S", "W":
		nanomin = -nanomin
	case "N", "E", "":
	default:
		return 0, 0, false
	}
	return nanomin, digits, true
}

// ParseSignedDecimal parses a signed decimal token into a value scaled by
// scale (e.g. 1e9 for nanodegrees), along with the digit count of the
// fractional part consumed.
func ParseSignedDecimal(tok string, scale int64) (scaled int64, digits int, ok bool) {
	if tok == "" {
		return 0, 0, false
	}
	neg := false
	s := tok
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	whole := s
	frac := ""
	if dot >= 0 {
		whole = s[:dot]
		frac = s[dot+1:]
	}
	if whole == "" {
		whole = "0"
	}
	wv, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	scaled = wv * scale
	if frac != "" {
		fv, denom, fdigits, fok := Fraction(frac)
		if !fok {
			return 0, 0, false
		}
		scaled += fv * scale / denom
		digits = fdigits
	}
	if neg {
		scaled = -scaled
	}
	return scaled, digits, true
}

// ParseCOG parses a signed decimal-degree token into signed nanodegrees.
func ParseCOG(tok string) (nanodeg int64, digits int, ok bool) {
	return ParseSignedDecimal(tok, 1e9)
}

// ParseSOGKnots parses a signed decimal-knots token into signed
// micro-knots.
func ParseSOGKnots(tok string) (microKnots int64, digits int, ok bool) {
	return ParseSignedDecimal(tok, 1e6)
}

// ParseSOGKmh parses a signed decimal-km/h token into signed
// millimeters-per-hour (1 km/h = 1,000,000 mm/h).
func ParseSOGKmh(tok string) (mmPerHour int64, digits int, ok bool) {
	return ParseSignedDecimal(tok, 1e6)
}

// ParseAltitude parses a signed decimal token (units suffix validated
// separately by the caller against "M") into signed millimeters.
func ParseAltitude(tok string) (mm int32, digits int, ok bool) {
	v, d, k := ParseSignedDecimal(tok, 1000)
	if !k {
		return 0, 0, false
	}
	return int32(v), d, true
}

// ParseDOP parses a two-fractional-digit decimal token into an unsigned
// integer scaled x100, clamped to [0, 9999].
func ParseDOP(tok string) (dopx100 int32, ok bool) {
	v, _, k := ParseSignedDecimal(tok, 100)
	if !k || v < 0 {
		return 0, false
	}
	if v > 9999 {
		v = 9999
	}
	return int32(v), true
}
