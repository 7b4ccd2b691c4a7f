package ubx

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
)

func buildFrame(class, id byte, payload []byte) []byte {
	frame := make([]byte, 0, 8+len(payload))
	frame = append(frame, 0xB5, 0x62, class, id)
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(payload)))
	frame = append(frame, lenBuf...)
	frame = append(frame, payload...)
	frame = append(frame, 0x00, 0x00) // checksum not validated by parsers
	return frame
}

func TestParseAckScenario4(t *testing.T) {
	frame := buildFrame(ClassACK, IDAckACK, []byte{0x06, 0x8B})
	ack, err := ParseAck(frame)
	require.NoError(t, err)
	assert.True(t, ack.Ack)
	assert.Equal(t, byte(0x06), ack.ClassID)
	assert.Equal(t, byte(0x8B), ack.MsgID)
}

func TestParseHeaderRejectsTruncatedFrame(t *testing.T) {
	_, _, err := ParseHeader([]byte{0xB5, 0x62, 0x05, 0x01, 0x02, 0x00})
	assert.Error(t, err)
}

func TestExpectReturnsENOMSGOnClassMismatch(t *testing.T) {
	frame := buildFrame(ClassNAV, IDNavStatus, make([]byte, 16))
	_, err := ParseMonHW(frame)
	assert.Error(t, err)
	var gerr *gnsserr.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, gnsserr.ENOMSG, gerr.Kind)
}

func TestParseCfgValGetWalksTLV(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x00}
	key1 := make([]byte, 4)
	binary.LittleEndian.PutUint32(key1, 0x10000001) // size code 1 -> 1 byte
	payload = append(payload, key1...)
	payload = append(payload, 0x01)
	frame := buildFrame(ClassCFG, IDCfgValGet, payload)

	values, err := ParseCfgValGet(frame)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, []byte{0x01}, values[0].Value)
}

func TestParseNavHPPOSLLHDropsOnInvalidFlag(t *testing.T) {
	payload := make([]byte, 36)
	payload[3] = 0x01 // invalidLlh
	frame := buildFrame(ClassNAV, IDNavHPPOSLLH, payload)
	_, dropped, err := ParseNavHPPOSLLH(frame)
	require.NoError(t, err)
	assert.True(t, dropped)
}
