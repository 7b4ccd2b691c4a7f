package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNMEAChecksum(t *testing.T) {
	var n NMEA
	for _, b := range []byte("GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031") {
		n.Add(b)
	}
	msn, lsn := ChecksumToChars(n.Sum())
	assert.Equal(t, byte('4'), msn)
	assert.Equal(t, byte('F'), lsn)
}

func TestChecksumCharRoundTrip(t *testing.T) {
	for sum := 0; sum < 256; sum++ {
		msn, lsn := ChecksumToChars(uint8(sum))
		got, ok := CharsToChecksum(msn, lsn)
		require.True(t, ok)
		assert.Equal(t, uint8(sum), got)
	}
}

func TestCharsToChecksumRejectsNonHex(t *testing.T) {
	_, ok := CharsToChecksum('Z', '0')
	assert.False(t, ok)
}

func TestFletcherKnownVector(t *testing.T) {
	// UBX ACK-ACK for CFG-VALGET (class 0x06, id 0x8B): 05 01 02 00 06 8B
	var f Fletcher
	for _, b := range []byte{0x05, 0x01, 0x02, 0x00, 0x06, 0x8B} {
		f.Add(b)
	}
	ckA, ckB := f.Sum()
	assert.Equal(t, uint8(0x99), ckA)
	assert.Equal(t, uint8(0xC2), ckB)
	// Regression pin: re-running the same bytes must reproduce the same sum.
	var f2 Fletcher
	for _, b := range []byte{0x05, 0x01, 0x02, 0x00, 0x06, 0x8B} {
		f2.Add(b)
	}
	a2, b2 := f2.Sum()
	assert.Equal(t, ckA, a2)
	assert.Equal(t, ckB, b2)
}

func TestRTCM24QTableSelfConsistency(t *testing.T) {
	table := RTCM24QTable()
	for i := 0; i < 256; i++ {
		var r RTCM
		r.Add(byte(i))
		assert.Equal(t, table[i], r.Sum(), "table[%d] mismatch", i)
	}
}

func TestRTCM24QKeepalive(t *testing.T) {
	// D3 00 00 preamble+reserved+length=0, then CRC 47 EA 4B per spec.md scenario 5.
	frame := []byte{0xD3, 0x00, 0x00}
	crc := RTCM24Q(frame)
	assert.Equal(t, uint32(0x47EA4B), crc)
}
