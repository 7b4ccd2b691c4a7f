package nmea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

func TestParseGGAScenario1(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	outcome, err := Parse(db, raw)
	require.NoError(t, err)
	require.Equal(t, outcome, outcome)

	p := db.Position(gnssdb.GPS)
	assert.Equal(t, int64(2243465877040), p.LatNanomin)
	assert.Equal(t, int64(-7322269578640), p.LonNanomin)
	assert.Equal(t, int32(18893), p.AltMm)
	assert.Equal(t, int32(-25669), p.SepMm)
	assert.Equal(t, gnssdb.QualityDifferential, p.Quality)
	assert.Equal(t, 6, p.SatsUsed)
}

func TestParseRMCScenario2(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPRMC,225446,A,4916.45,N,12311.12,W,000.5,054.7,191194,020.3,E*68\r\n"
	_, err := Parse(db, raw)
	require.NoError(t, err)

	p := db.Position(gnssdb.GPS)
	assert.NotZero(t, p.UtcNs)
	assert.NotZero(t, p.DmyNs)
	assert.Equal(t, int64(54700000000), p.CogNanodeg)
	assert.Equal(t, int64(500000), p.SogMicroKnots)
	assert.Equal(t, gnssdb.QualityAutonomous, p.Quality)
}

func TestParseVTGSetsSOGInBothUnits(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPVTG,045.5,T,034.4,M,005.5,N,010.2,K,A*00\r\n"
	_, err := Parse(db, raw)
	require.NoError(t, err)

	p := db.Position(gnssdb.GPS)
	assert.Equal(t, int64(5500000), p.SogMicroKnots)
	assert.Equal(t, int64(10200000), p.SogMmPerHour)
}

func TestParseGSVSingleSentenceTupleCommitsOnPending0(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPGSV,1,1,04,19,61,217,42,28,38,112,39,14,72,303,,22,07,090,*00\r\n"
	_, err := Parse(db, raw)
	require.NoError(t, err)

	view := db.View(gnssdb.GPS)
	assert.Equal(t, 0, view.Pending)
	require.Len(t, view.Bands, 1)

	band := view.Bands[0]
	require.Len(t, band.Channels, 4)
	assert.Equal(t, 19, band.Channels[0].PRN)
	assert.Equal(t, int16(61), band.Channels[0].ElevationDeg)
	assert.Equal(t, int8(42), band.Channels[0].CNRdb)
	assert.False(t, band.Channels[0].Phantom)
	assert.False(t, band.Channels[0].Untracked)

	// Third satellite's SNR field is empty → untracked, not phantom.
	assert.False(t, band.Channels[2].Phantom)
	assert.True(t, band.Channels[2].Untracked)
	assert.Equal(t, int8(-1), band.Channels[2].CNRdb)
}

func TestParseGSVMultiSentenceTupleAccumulatesBeforeCommitting(t *testing.T) {
	db := gnssdb.New()
	first := "$GPGSV,2,1,07,19,61,217,42,28,38,112,39,14,72,303,40,22,07,090,33*00\r\n"
	_, err := Parse(db, first)
	require.NoError(t, err)

	view := db.View(gnssdb.GPS)
	assert.Equal(t, 1, view.Pending)
	assert.Empty(t, view.Bands)

	second := "$GPGSV,2,2,07,06,,,39,31,,,,51,,,*00\r\n"
	_, err = Parse(db, second)
	require.NoError(t, err)

	assert.Equal(t, 0, view.Pending)
	require.Len(t, view.Bands, 1)
	band := view.Bands[0]
	// 7 satellites reported, clipped to the 7 channels actually parsed.
	assert.Len(t, band.Channels, 7)
	// Satellite 06's elv/azm are empty → phantom, but it still has an
	// SNR, so it isn't also untracked.
	assert.True(t, band.Channels[4].Phantom)
	assert.False(t, band.Channels[4].Untracked)
}

func TestParseGSAScenario3(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPGSA,A,3,19,28,14,18,27,22,31,39,,,,,1.7,1.0,1.3*34\r\n"
	_, err := Parse(db, raw)
	require.NoError(t, err)

	a := db.Active(gnssdb.GPS)
	assert.Equal(t, []int{19, 28, 14, 18, 27, 22, 31, 39}, a.PRNs)
	assert.True(t, a.Fix3D)
	assert.Equal(t, int32(170), a.PDOPmmx)
	assert.Equal(t, int32(100), a.HDOPmmx)
	assert.Equal(t, int32(130), a.VDOPmmx)
}

func TestParseGGADropsOnNoFix(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,0,0,1.2,18.893,M,-25.669,M,2.0,0031*47\r\n"
	outcome, err := Parse(db, raw)
	assert.NoError(t, err)
	assert.Equal(t, outcome, outcome)
	p := db.Position(gnssdb.GPS)
	assert.False(t, p.HasFix)
}

func TestParseRMCRejectsVoidStatus(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPRMC,225446,V,4916.45,N,12311.12,W,000.5,054.7,191194,020.3,E*6B\r\n"
	_, err := Parse(db, raw)
	assert.NoError(t, err)
	p := db.Position(gnssdb.GPS)
	assert.False(t, p.HasFix)
}

func TestParseZDASetsTimeWithoutFix(t *testing.T) {
	db := gnssdb.New()
	raw := "$GPZDA,172814.0,19,11,1994,,*51\r\n"
	_, err := Parse(db, raw)
	require.NoError(t, err)
	p := db.Position(gnssdb.GPS)
	assert.NotZero(t, p.UtcNs)
	assert.NotZero(t, p.DmyNs)
	assert.False(t, p.HasFix)
}

func TestPUBX00DropsOnNoFix(t *testing.T) {
	db := gnssdb.New()
	raw := "$PUBX,00,113212.00,,,,,,NF,,,,,,,,,,,,*00\r\n"
	_, err := Parse(db, raw)
	assert.NoError(t, err)
}

func TestTokenizeDropsLeadingToken(t *testing.T) {
	toks := Tokenize("$GPGGA,1,2,3")
	assert.Equal(t, 3, toks.Len())
	assert.Equal(t, "1", toks.Field(0))
	assert.Equal(t, "", toks.Field(10))
}

func TestParseDMYCenturyHeuristic(t *testing.T) {
	ns92, err := ParseDMY("010192")
	require.NoError(t, err)
	ns93, err := ParseDMY("010193")
	require.NoError(t, err)
	assert.NotEqual(t, ns92, ns93)
}

func TestFieldParserIdempotence(t *testing.T) {
	nanodeg, _, ok := ParseCOG("054.7")
	require.True(t, ok)
	assert.Equal(t, int64(54700000000), nanodeg)

	again, _, ok := ParseCOG("54.7")
	require.True(t, ok)
	assert.Equal(t, nanodeg, again)
}
