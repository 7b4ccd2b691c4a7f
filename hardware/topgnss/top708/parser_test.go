package top708

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// recordingBridgeHandler captures every frame a Bridge hands it, so tests
// can assert on exactly what Feed produced without a live device.
type recordingBridgeHandler struct {
	nmea []NMEASentence
	ubx  []UBXMessage
	rtcm []RTCMMessage
}

func (h *recordingBridgeHandler) HandleNMEA(s NMEASentence) { h.nmea = append(h.nmea, s) }
func (h *recordingBridgeHandler) HandleUBX(m UBXMessage)    { h.ubx = append(h.ubx, m) }
func (h *recordingBridgeHandler) HandleRTCM(m RTCMMessage)  { h.rtcm = append(h.rtcm, m) }

func ubxFrameWithChecksum(class, id byte, payload []byte) []byte {
	frame := []byte{0xB5, 0x62, class, id, byte(len(payload)), byte(len(payload) >> 8)}
	frame = append(frame, payload...)
	var ckA, ckB uint8
	for _, b := range frame[2:] {
		ckA += b
		ckB += ckA
	}
	return append(frame, ckA, ckB)
}

func TestBridgeFeedDispatchesNMEA(t *testing.T) {
	db := gnssdb.New()
	handler := &recordingBridgeHandler{}
	bridge := NewBridge(db, handler)

	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	bridge.Feed([]byte(sentence))

	require.Len(t, handler.nmea, 1)
	assert.Equal(t, "GP", handler.nmea[0].Talker)
	assert.Equal(t, "GGA", handler.nmea[0].Type)
	assert.False(t, handler.nmea[0].Dropped)
	assert.Equal(t, 0, bridge.Resyncs())
}

func TestBridgeFeedDispatchesUBXAckAck(t *testing.T) {
	db := gnssdb.New()
	handler := &recordingBridgeHandler{}
	bridge := NewBridge(db, handler)

	// ACK-ACK for CFG-VALGET (class 0x06 id 0x8B).
	frame := ubxFrameWithChecksum(0x05, 0x01, []byte{0x06, 0x8B})
	bridge.Feed(frame)

	require.Len(t, handler.ubx, 1)
	assert.False(t, handler.ubx[0].Dropped)
	assert.Equal(t, byte(0x05), handler.ubx[0].Class)
	assert.Equal(t, byte(0x01), handler.ubx[0].ID)
}

func TestBridgeFeedDropsUnhandledUBXMessage(t *testing.T) {
	db := gnssdb.New()
	handler := &recordingBridgeHandler{}
	bridge := NewBridge(db, handler)

	// MON-VER isn't one of the classes Update folds into the database.
	frame := ubxFrameWithChecksum(0x0A, 0x04, make([]byte, 4))
	bridge.Feed(frame)

	require.Len(t, handler.ubx, 1)
	assert.True(t, handler.ubx[0].Dropped)
	assert.Error(t, handler.ubx[0].Err)
}

func TestBridgeFeedDispatchesRTCMKeepalive(t *testing.T) {
	db := gnssdb.New()
	handler := &recordingBridgeHandler{}
	bridge := NewBridge(db, handler)

	keepalive := []byte{0xD3, 0x00, 0x00, 0x47, 0xEA, 0x4B}
	bridge.Feed(keepalive)

	require.Len(t, handler.rtcm, 1)
	assert.True(t, handler.rtcm[0].Keepalive)
	assert.False(t, handler.rtcm[0].Dropped)
}

func TestBridgeFeedHandlesBackToBackFrames(t *testing.T) {
	db := gnssdb.New()
	handler := &recordingBridgeHandler{}
	bridge := NewBridge(db, handler)

	keepalive := []byte{0xD3, 0x00, 0x00, 0x47, 0xEA, 0x4B}
	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"

	bridge.Feed(keepalive)
	bridge.Feed([]byte(sentence))

	assert.Len(t, handler.rtcm, 1)
	assert.Len(t, handler.nmea, 1)
}

func TestBridgeFeedResyncsAfterGarbageBetweenFrames(t *testing.T) {
	db := gnssdb.New()
	bridge := NewBridge(db, nil)

	keepalive := []byte{0xD3, 0x00, 0x00, 0x47, 0xEA, 0x4B}
	bridge.Feed(keepalive)
	assert.Equal(t, 0, bridge.Resyncs())

	// A byte that isn't a valid lead byte where the fast path expects a
	// new frame forces the dispatcher back to running all three machines.
	bridge.Feed([]byte{0x01})

	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	bridge.Feed([]byte(sentence))

	assert.Equal(t, 1, bridge.Resyncs())
}

func TestBridgeFeedNilHandlerStillUpdatesDB(t *testing.T) {
	db := gnssdb.New()
	bridge := NewBridge(db, nil)

	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	bridge.Feed([]byte(sentence))

	assert.Equal(t, bridge.DB(), db)
}
