// Package gnssdb holds the per-constellation database model: Position,
// Active, View, and the UBX/RTCM-fed auxiliary records, each with its own
// expiry-tick lifetime. The model is a plain fixed-size array indexed by
// System, following the teacher's preference (RTKLIB-style) for flat
// arrays over pointer graphs; cross-references such as "which system does
// this GN-talker GSA sentence belong to" are resolved by a satellite-ID
// range lookup at call time, never stored as a pointer (spec.md §9).
package gnssdb

// System names one GNSS constellation, or GNSS for a combined/unspecified
// multi-system solution.
type System int

const (
	GNSS System = iota
	GPS
	GLONASS
	GALILEO
	BEIDOU
	SBAS
	IMES
	QZSS
	NAVIC
	numSystems
)

func (s System) String() string {
	switch s {
	case GNSS:
		return "GNSS"
	case GPS:
		return "GPS"
	case GLONASS:
		return "GLONASS"
	case GALILEO:
		return "GALILEO"
	case BEIDOU:
		return "BEIDOU"
	case SBAS:
		return "SBAS"
	case IMES:
		return "IMES"
	case QZSS:
		return "QZSS"
	case NAVIC:
		return "NAVIC"
	default:
		return "UNKNOWN"
	}
}

// idRange is an inclusive [lo,hi] satellite-ID band.
type idRange struct {
	lo, hi int
	system System
}

// nmeaIDRanges is the GSA-fallback table from the Glossary: used when a
// GN-talker GSA sentence carries no NMEA 4.10 System ID field.
var nmeaIDRanges = []idRange{
	{1, 32, GPS},
	{33, 64, SBAS},
	{65, 96, GLONASS},
	{120, 158, SBAS},
	{173, 182, IMES},
	{193, 197, QZSS},
	{201, 235, BEIDOU},
	{301, 336, GALILEO},
	{401, 437, BEIDOU},
}

// SystemFromNMEARange resolves a satellite ID to a system using the GSA
// fallback ranges. It returns GNSS if no range recognizes the ID —
// the Open Question in spec.md §9 about out-of-range PUBX ids leaves this
// behavior for NMEA too; we keep parity with the documented current
// behavior (map to GNSS) rather than silently guessing further.
func SystemFromNMEARange(id int) System {
	for _, r := range nmeaIDRanges {
		if id >= r.lo && id <= r.hi {
			return r.system
		}
	}
	return GNSS
}

// pubxIDRanges is the PUBX,03 ID-range table from the Glossary. Note that
// this table disagrees with the NMEA table on which bands belong to
// BEIDOU vs GLONASS vs SBAS — u-blox's proprietary PUBX,03 numbering is
// independent of the NMEA 4.10 System ID convention.
var pubxIDRanges = []idRange{
	{1, 32, GPS},
	{33, 64, BEIDOU},
	{65, 96, GLONASS},
	{120, 158, SBAS},
	{159, 163, BEIDOU},
	{173, 182, IMES},
	{193, 202, QZSS},
	{211, 246, GALILEO},
	{255, 255, GLONASS},
}

// SystemFromPUBXRange resolves a satellite ID using the PUBX,03 table. IDs
// outside every known band currently map to GNSS; see the Open Question
// recorded in DESIGN.md.
func SystemFromPUBXRange(id int) System {
	for _, r := range pubxIDRanges {
		if id >= r.lo && id <= r.hi {
			return r.system
		}
	}
	return GNSS
}

// QZSSDeprecatedConstellationIDs lists the NMEA constellation IDs (in the
// GSA System ID field) that receivers have historically used for QZSS
// alongside the current value; see the Open Question in spec.md §9.
var QZSSDeprecatedConstellationIDs = []int{5, 15}
