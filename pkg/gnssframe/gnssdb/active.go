package gnssdb

// Active is the per-system "is this constellation contributing to the
// solution" record fed by GSA (spec.md §4.7).
type Active struct {
	System  System
	InUse   bool
	Fix3D   bool
	PDOPmmx int32 // DOP * 100, dimensionless
	HDOPmmx int32
	VDOPmmx int32

	PRNs []int // satellite IDs GSA reported as used, per system

	Expiry int
}

func (a *Active) Expire(elapsedTicks int) {
	a.Expiry -= elapsedTicks
	if a.Expiry < 0 {
		a.Expiry = 0
	}
	if a.Expiry == 0 {
		a.InUse = false
		a.PRNs = a.PRNs[:0]
	}
}

func (a *Active) Stale() bool { return a.Expiry <= 0 }

const maxSignalBands = 16
const maxChannelsPerBand = 32

// SatelliteView is one satellite's row within a signal band's channel
// list: elevation, azimuth and carrier-to-noise ratio. Phantom and
// Untracked record that the source sentence left elv/azm or snr empty
// respectively, rather than the parser inventing a zero reading
// (spec.md §3: "Empty NMEA fields are distinct from zero"). PUBX,03 also
// sets both for a satellite whose status code it does not recognise,
// leaving any reported elevation, azimuth and CNR in place.
type SatelliteView struct {
	PRN          int
	ElevationDeg int16
	AzimuthDeg   int16
	CNRdb        int8 // -1 when the source SNR field was empty
	Phantom      bool // elevation/azimuth were empty in the source, or unknown PUBX,03 status
	Untracked    bool // SNR was empty in the source, or unknown PUBX,03 status
}

// SignalBand is one committed GSV tuple's channel list: a single
// signal-band id (the trailing 0…F token, "" if the sentence carried
// none) and the satellite records assembled across that tuple.
type SignalBand struct {
	Signal   string
	Channels []SatelliteView
}

// View is the per-system sky view assembled across GSV tuples
// (spec.md §3/§4.4). Up to 16 signal bands are tracked, each holding up
// to 32 committed channel records. The fields below the Bands slice are
// tuple-assembly state for whichever GSV tuple is currently in progress;
// they are mutated one sentence at a time and only fold into Bands once
// Pending reaches zero (spec.md: "updates are committed only when a
// tuple completes").
type View struct {
	System System

	Bands []SignalBand

	Visible     int    // "satellites in view" reported by the in-progress tuple
	Signal      string // signal-band id of the in-progress tuple
	Pending     int    // sentences remaining before the in-progress tuple commits
	SignalsSeen int    // count of distinct signal bands committed so far

	channels []SatelliteView // rows accumulated so far for the in-progress tuple

	Expiry int
}

func (v *View) Expire(elapsedTicks int) {
	v.Expiry -= elapsedTicks
	if v.Expiry < 0 {
		v.Expiry = 0
	}
	if v.Expiry == 0 {
		v.Bands = v.Bands[:0]
		v.channels = v.channels[:0]
		v.Pending = 0
	}
}

func (v *View) Stale() bool { return v.Expiry <= 0 }

// AppendSentence folds one sentence of a GSV tuple into the view's
// in-progress assembly state (spec.md §4.4). totalSentences/sentenceNum
// are the tuple's M/N header fields, visible is the "satellites in
// view" count, signal is the trailing signal-band id (possibly empty),
// and rows are this sentence's up-to-four satellite quadruplets, already
// decoded with Phantom/Untracked set per the emptiness rules. A sentence
// numbered 1, or one whose signal id doesn't match the tuple already in
// progress, starts a fresh tuple; otherwise rows append to the running
// channel list at the offset the prior sentences left off, per spec.md's
// "appending to the per-signal channel list on sentence 2..M".
func (v *View) AppendSentence(totalSentences, sentenceNum, visible int, signal string, rows []SatelliteView) {
	if sentenceNum <= 1 || v.Signal != signal {
		v.channels = v.channels[:0]
		v.Signal = signal
	}
	v.Visible = visible
	v.channels = append(v.channels, rows...)
	v.Pending = totalSentences - sentenceNum
	if v.Pending <= 0 {
		v.commit()
	}
}

// commit folds the in-progress channel list into Bands, clipping it to
// min(Visible, 32) per spec.md §8's testable property, and resets the
// assembly state for the next tuple.
func (v *View) commit() {
	limit := v.Visible
	if limit > maxChannelsPerBand {
		limit = maxChannelsPerBand
	}
	if limit < 0 || limit > len(v.channels) {
		limit = len(v.channels)
	}
	channels := append([]SatelliteView(nil), v.channels[:limit]...)

	for i := range v.Bands {
		if v.Bands[i].Signal == v.Signal {
			v.Bands[i].Channels = channels
			v.SignalsSeen++
			v.channels = v.channels[:0]
			v.Pending = 0
			return
		}
	}
	if len(v.Bands) < maxSignalBands {
		v.Bands = append(v.Bands, SignalBand{Signal: v.Signal, Channels: channels})
	}
	v.SignalsSeen++
	v.channels = v.channels[:0]
	v.Pending = 0
}
