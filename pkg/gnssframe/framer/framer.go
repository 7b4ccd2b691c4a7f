// Package framer implements the byte-at-a-time state machines that
// delimit and integrity-check NMEA sentences, UBX packets, and RTCM
// messages out of an unsynchronized stream, plus the dispatcher that runs
// all three in parallel with single-byte lookahead format election.
//
// Each machine is driven one input byte at a time via Step and never
// allocates: the caller supplies the destination buffer up front and the
// machine only ever writes into it and advances an internal cursor.
package framer

// State is the subset of each machine's internal state that the
// application cares about. The machines track additional private states
// (MSN/LSN, SYNC_2/CLASS/ID/LENGTH_1/LENGTH_2/CK_A/CK_B, CRC_1/CRC_2/CRC_3,
// and so on) that never escape Step's return value.
type State int

const (
	// StateStart is the resynchronizing state: no candidate frame is in
	// progress, and every byte is tested against each format's leading
	// delimiter.
	StateStart State = iota
	// StateRunning means a candidate frame is in progress in this machine.
	StateRunning
	// StateStop means this machine abandoned the candidate frame on this
	// byte (an invalid literal, a checksum mismatch, or a buffer
	// overflow). Framing/integrity errors never propagate as Go errors:
	// the caller simply ignores the candidate and the next Step call
	// begins resynchronizing again.
	StateStop
	// StateEnd means this machine completed a well-formed frame on this
	// byte. Total() reports the frame length including the trailing NUL
	// the machine appends for downstream convenience.
	StateEnd
)

// Format tags the wire protocol a completed frame belongs to.
type Format int

const (
	FormatUnknown Format = iota
	FormatNMEA
	FormatUBX
	FormatRTCM
)

// errFlagOverflow and errFlagChecksum are the values a machine records in
// its private error flag when it returns StateStop because the caller's
// buffer was exhausted mid-frame or because a checksum/CRC did not match.
const errFlagOverflow = 1
const errFlagChecksum = 2
