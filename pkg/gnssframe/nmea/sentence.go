package nmea

import (
	"strings"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// talkerSystem maps a 2-letter NMEA talker to the constellation it
// speaks for. GN (combined solution) and any unrecognized talker map to
// the aggregate GNSS system.
func talkerSystem(talker string) gnssdb.System {
	switch talker {
	case "GP":
		return gnssdb.GPS
	case "GL":
		return gnssdb.GLONASS
	case "GA":
		return gnssdb.GALILEO
	case "GB", "CD":
		return gnssdb.BEIDOU
	case "GI", "IN":
		return gnssdb.NAVIC
	case "GQ":
		return gnssdb.QZSS
	default:
		return gnssdb.GNSS
	}
}

// Identify splits a framed, checksum-verified NMEA sentence (with the
// leading '$'/'!' and trailing "*HH\r\n\x00" still attached, as produced
// by the framer) into its talker and sentence-type codes and the
// remaining payload suitable for Tokenize.
func Identify(raw string) (talker, sentenceType, payload string, err error) {
	raw = strings.TrimRight(raw, "\x00\r\n")
	star := strings.LastIndexByte(raw, '*')
	if star < 0 {
		return "", "", "", gnsserr.New(gnsserr.ENODATA, "nmea: missing checksum delimiter")
	}
	payload = raw[:star]
	if len(payload) < 1 || (payload[0] != '$' && payload[0] != '!') {
		return "", "", "", gnsserr.New(gnsserr.ENODATA, "nmea: missing leading delimiter")
	}
	comma := strings.IndexByte(payload, ',')
	head := payload[1:]
	if comma >= 0 {
		head = payload[1:comma]
	}
	if strings.HasPrefix(head, "P") {
		// Proprietary sentence: "$PUBX,00,..." — talker is the whole
		// proprietary head and sentenceType is empty; the subtype stays
		// in the payload's next field for the proprietary parser.
		return head, "", payload, nil
	}
	if len(head) < 5 {
		return "", "", "", gnsserr.New(gnsserr.ENOMSG, "nmea: sentence head too short")
	}
	return head[:2], head[2:5], payload, nil
}
