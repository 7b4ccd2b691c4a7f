package framer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNMEAFramerRoundTrip(t *testing.T) {
	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	f := NewNMEAFramer(make([]byte, 512))

	var state State
	for i := 0; i < len(sentence); i++ {
		state = f.Step(sentence[i])
	}
	require.Equal(t, StateEnd, state)
	assert.Equal(t, len(sentence)+1, f.Total())
	assert.Equal(t, sentence, string(f.Buf()[:f.Total()-1]))
}

func TestNMEAFramerLowercaseChecksum(t *testing.T) {
	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4f\r\n"
	f := NewNMEAFramer(make([]byte, 512))
	var state State
	for i := 0; i < len(sentence); i++ {
		state = f.Step(sentence[i])
	}
	require.Equal(t, StateEnd, state)
}

func TestNMEAFramerBadChecksum(t *testing.T) {
	sentence := "$GPGGA,172814.0*00\r\n"
	f := NewNMEAFramer(make([]byte, 512))
	var state State
	for i := 0; i < len(sentence); i++ {
		state = f.Step(sentence[i])
		if state == StateStop {
			break
		}
	}
	assert.Equal(t, StateStop, state)
	assert.True(t, f.Err())
}

func TestUBXFramerRoundTrip(t *testing.T) {
	// ACK-ACK for CFG-VALGET (class 0x06 id 0x8B), per spec.md scenario 4.
	frame := []byte{0xB5, 0x62, 0x05, 0x01, 0x02, 0x00, 0x06, 0x8B}
	var ckA, ckB uint8
	for _, b := range frame[2:] {
		ckA += b
		ckB += ckA
	}
	frame = append(frame, ckA, ckB)

	f := NewUBXFramer(make([]byte, 256))
	var state State
	for _, b := range frame {
		state = f.Step(b)
	}
	require.Equal(t, StateEnd, state)
	assert.Equal(t, len(frame)+1, f.Total())
}

func TestRTCMFramerKeepalive(t *testing.T) {
	frame := []byte{0xD3, 0x00, 0x00, 0x47, 0xEA, 0x4B}
	f := NewRTCMFramer(make([]byte, 1029))
	var state State
	for _, b := range frame {
		state = f.Step(b)
	}
	require.Equal(t, StateEnd, state)
	assert.Equal(t, len(frame)+1, f.Total())
}

func TestDispatcherResyncOnGarbagePrefix(t *testing.T) {
	d := NewDispatcher(make([]byte, 512), make([]byte, 256), make([]byte, 1029))
	garbage := []byte{0x01, 0x02, 0x03}
	for _, b := range garbage {
		_, ok := d.Step(b)
		assert.False(t, ok)
	}

	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	var frame Frame
	var ok bool
	for i := 0; i < len(sentence); i++ {
		frame, ok = d.Step(sentence[i])
	}
	require.True(t, ok)
	assert.Equal(t, FormatNMEA, frame.Format)
	assert.Equal(t, sentence, string(frame.Data[:len(frame.Data)-1]))
}

func TestDispatcherHandlesBackToBackFrames(t *testing.T) {
	d := NewDispatcher(make([]byte, 512), make([]byte, 256), make([]byte, 1029))
	rtcmKeepalive := []byte{0xD3, 0x00, 0x00, 0x47, 0xEA, 0x4B}
	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"

	var frames []Frame
	for _, b := range rtcmKeepalive {
		if f, ok := d.Step(b); ok {
			frames = append(frames, f)
		}
	}
	for i := 0; i < len(sentence); i++ {
		if f, ok := d.Step(sentence[i]); ok {
			frames = append(frames, f)
		}
	}

	require.Len(t, frames, 2)
	assert.Equal(t, FormatRTCM, frames[0].Format)
	assert.Equal(t, FormatNMEA, frames[1].Format)
}
