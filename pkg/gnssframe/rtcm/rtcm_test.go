package rtcm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

func TestLengthAndMessageNumberScenario5(t *testing.T) {
	buf := []byte{0xD3, 0x00, 0x00, 0x47, 0xEA, 0x4B}
	n, err := Length(buf)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	msgNo, err := MessageNumber(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, msgNo)
}

func TestValidateKeepalive(t *testing.T) {
	ok, err := Validate(Keepalive)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, IsKeepalive(Keepalive))
}

func TestValidateRejectsCorruptCRC(t *testing.T) {
	buf := append([]byte(nil), Keepalive...)
	buf[5] ^= 0xFF
	ok, err := Validate(buf)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClassifyMSMBands(t *testing.T) {
	assert.Equal(t, gnssdb.GPS, Classify(1074))
	assert.Equal(t, gnssdb.GLONASS, Classify(1084))
	assert.Equal(t, gnssdb.GALILEO, Classify(1094))
	assert.Equal(t, gnssdb.BEIDOU, Classify(1124))
	assert.Equal(t, gnssdb.GNSS, Classify(1005))
}
