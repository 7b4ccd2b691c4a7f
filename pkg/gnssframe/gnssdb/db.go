package gnssdb

// DefaultExpiryTicks is the number of worker-loop ticks a record survives
// without being refreshed before Expire() marks it stale (spec.md §4.7).
const DefaultExpiryTicks = 5

// DB is the full per-receiver database: one slot per System for each
// sentence/message family that resolves to a constellation, plus the
// station-keyed and receiver-global records that don't. Flat arrays
// indexed by System, not a map, following the teacher's RTKLIB-derived
// preference for fixed-size tables over pointer-heavy containers.
type DB struct {
	Positions [numSystems]Position
	Actives   [numSystems]Active
	Views     [numSystems]View

	HighPrecision   HighPrecision
	HardwareMonitor HardwareMonitor
	NavStatus       NavStatus
	BaseSurvey      BaseSurvey
	Rover           Rover
	Fault           Fault

	RTCMObservation RTCMObservation
}

// New returns a DB with every slot's System field set and every expiry
// clock zeroed (stale until the first update arrives).
func New() *DB {
	db := &DB{}
	for s := System(0); s < numSystems; s++ {
		db.Positions[s].System = s
		db.Actives[s].System = s
		db.Views[s].System = s
	}
	return db
}

// Position returns the per-system position record, or nil if sys is out
// of range.
func (db *DB) Position(sys System) *Position {
	if sys < 0 || sys >= numSystems {
		return nil
	}
	return &db.Positions[sys]
}

// Active returns the per-system GSA-derived record, or nil if sys is out
// of range.
func (db *DB) Active(sys System) *Active {
	if sys < 0 || sys >= numSystems {
		return nil
	}
	return &db.Actives[sys]
}

// View returns the per-system GSV-derived sky view, or nil if sys is out
// of range.
func (db *DB) View(sys System) *View {
	if sys < 0 || sys >= numSystems {
		return nil
	}
	return &db.Views[sys]
}

// Tick advances every record's expiry clock by elapsedTicks, the unit of
// work the worker loop performs once per poll interval (spec.md §5).
func (db *DB) Tick(elapsedTicks int) {
	for s := System(0); s < numSystems; s++ {
		db.Positions[s].Expire(elapsedTicks)
		db.Actives[s].Expire(elapsedTicks)
		db.Views[s].Expire(elapsedTicks)
	}
	db.HighPrecision.Expire(elapsedTicks)
	db.HardwareMonitor.Expire(elapsedTicks)
	db.NavStatus.Expire(elapsedTicks)
	db.BaseSurvey.Expire(elapsedTicks)
	db.Rover.Expire(elapsedTicks)
	db.Fault.Expire(elapsedTicks)
	db.RTCMObservation.Expire(elapsedTicks)
}

// HasValidTime reports whether any constellation's position record
// currently carries a valid, monotonic timestamp with both UTC and date
// set (see the per-record HasValidTime).
func (db *DB) HasValidTime() bool {
	for s := System(0); s < numSystems; s++ {
		if HasValidTime(&db.Positions[s]) {
			return true
		}
	}
	return false
}
