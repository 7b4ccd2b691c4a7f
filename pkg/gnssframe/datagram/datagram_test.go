package datagram

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(seq uint32) []byte {
	buf := make([]byte, headerLen+1)
	binary.BigEndian.PutUint32(buf, seq)
	buf[headerLen] = 0xAA
	return buf
}

func TestReceiverSequenceScenario(t *testing.T) {
	var r Receiver
	sequence := []uint32{0, 1, 3, 2, 4}
	for _, seq := range sequence {
		r.Accept(envelope(seq))
	}
	assert.Equal(t, uint32(5), r.Expected())
	assert.Equal(t, uint64(1), r.OutOfOrder)
	assert.Equal(t, uint64(1), r.Missing)
}

func TestReceiverAcceptsFutureGapScenario6(t *testing.T) {
	r := Receiver{expected: 5}
	_, accepted, err := r.Accept(envelope(7))
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, uint32(8), r.Expected())
	assert.Equal(t, uint64(2), r.Missing)
}

func TestSenderIncrementsSequence(t *testing.T) {
	var s Sender
	buf := make([]byte, 16)
	n1, err := s.Encode(buf, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(buf[:4]))
	assert.Equal(t, headerLen+1, n1)

	n2, err := s.Encode(buf, []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(buf[:4]))
	assert.Equal(t, headerLen+1, n2)
}

func TestNewSenderAssignsDistinctSessionIDsAndOmitsThemFromTheWire(t *testing.T) {
	s1, s2 := NewSender(), NewSender()
	assert.NotEqual(t, s1.SessionID, s2.SessionID)

	buf := make([]byte, 16)
	n, err := s1.Encode(buf, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, headerLen+1, n)
}
