package gnssdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemFromNMEARange(t *testing.T) {
	assert.Equal(t, GPS, SystemFromNMEARange(12))
	assert.Equal(t, GLONASS, SystemFromNMEARange(70))
	assert.Equal(t, BEIDOU, SystemFromNMEARange(201))
	assert.Equal(t, GALILEO, SystemFromNMEARange(310))
	assert.Equal(t, GNSS, SystemFromNMEARange(999))
}

func TestSystemFromPUBXRangeDisagreesWithNMEA(t *testing.T) {
	// Band 33-64 is SBAS under the NMEA table but BEIDOU under PUBX.
	assert.Equal(t, SBAS, SystemFromNMEARange(40))
	assert.Equal(t, BEIDOU, SystemFromPUBXRange(40))
}

func TestPositionMonotonicity(t *testing.T) {
	p := &Position{}
	p.stampTotal(1000)
	dmyOkay, totOkay := p.Okay()
	assert.False(t, dmyOkay)
	assert.True(t, totOkay)

	p.stampTotal(2000)
	assert.Equal(t, int64(1000), p.OldNs)
	assert.Equal(t, int64(2000), p.TotNs)

	// A regression does not move TotNs/OldNs backwards.
	p.stampTotal(500)
	assert.Equal(t, int64(1000), p.OldNs)
	assert.Equal(t, int64(2000), p.TotNs)
	_, totOkay = p.Okay()
	assert.True(t, totOkay)
}

func TestHasValidTime(t *testing.T) {
	p := &Position{}
	assert.False(t, HasValidTime(p))

	p.UtcNs = 123
	p.DmyNs = 456
	p.stampTotal(456)
	assert.True(t, HasValidTime(p))
}

func TestPositionExpiryClampsAtZero(t *testing.T) {
	p := &Position{Expiry: 2}
	p.Expire(1)
	assert.Equal(t, 1, p.Expiry)
	assert.False(t, p.Stale())

	p.Expire(5)
	assert.Equal(t, 0, p.Expiry)
	assert.True(t, p.Stale())
}

func TestViewRecommitReplacesSignalBandAcrossSequence(t *testing.T) {
	v := &View{System: GPS}
	v.AppendSentence(1, 1, 2, "", []SatelliteView{
		{PRN: 5, ElevationDeg: 30, AzimuthDeg: 120, CNRdb: 40},
		{PRN: 7, ElevationDeg: 10, AzimuthDeg: 200, CNRdb: -1, Untracked: true},
	})
	require.Len(t, v.Bands, 1)
	require.Len(t, v.Bands[0].Channels, 2)

	v.AppendSentence(1, 1, 2, "", []SatelliteView{
		{PRN: 5, ElevationDeg: 31, AzimuthDeg: 121, CNRdb: 41},
		{PRN: 7, ElevationDeg: 10, AzimuthDeg: 200, CNRdb: -1, Untracked: true},
	})
	require.Len(t, v.Bands, 1)
	require.Len(t, v.Bands[0].Channels, 2)
	assert.Equal(t, int16(31), v.Bands[0].Channels[0].ElevationDeg)
}

func TestActiveExpiryClearsPRNs(t *testing.T) {
	a := &Active{System: GPS, InUse: true, PRNs: []int{1, 2, 3}, Expiry: 1}
	a.Expire(1)
	assert.True(t, a.Stale())
	assert.False(t, a.InUse)
	assert.Empty(t, a.PRNs)
}

func TestDBTickAdvancesEverySlot(t *testing.T) {
	db := New()
	for s := System(0); s < numSystems; s++ {
		db.Positions[s].Expiry = DefaultExpiryTicks
		db.Actives[s].Expiry = DefaultExpiryTicks
		db.Views[s].Expiry = DefaultExpiryTicks
	}
	db.HighPrecision.Expiry = DefaultExpiryTicks

	db.Tick(DefaultExpiryTicks)

	for s := System(0); s < numSystems; s++ {
		assert.True(t, db.Positions[s].Stale())
		assert.True(t, db.Actives[s].Stale())
		assert.True(t, db.Views[s].Stale())
	}
	assert.True(t, db.HighPrecision.Stale())
}

func TestRTCMObservationCountsKeepalivesSeparately(t *testing.T) {
	o := &RTCMObservation{}
	o.Observe(1234, 1230, false)
	o.Observe(1234, 0, true)
	assert.Equal(t, uint64(1), o.MessageCount)
	assert.True(t, o.KeepaliveOnly)
}
