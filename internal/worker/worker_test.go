package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// chunkSource replays a fixed slice of chunks, then blocks (simulating a
// serial port's read timeout) by returning a timeout error forever.
type chunkSource struct {
	mu     sync.Mutex
	chunks [][]byte
}

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string { return "i/o timeout" }
func (fakeTimeoutErr) Timeout() bool { return true }

func (s *chunkSource) Read(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chunks) == 0 {
		return 0, fakeTimeoutErr{}
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	n := copy(buf, chunk)
	return n, nil
}

func TestLoopDispatchesFramesUntilCancelled(t *testing.T) {
	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	src := &chunkSource{chunks: [][]byte{[]byte(sentence)}}

	db := gnssdb.New()
	var forwarded [][]byte
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	stats, err := Loop(ctx, Options{
		Source: src,
		DB:     db,
		Forward: func(raw []byte) {
			forwarded = append(forwarded, append([]byte(nil), raw...))
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.NMEAFrames)
	assert.Len(t, forwarded, 1)
	pos := db.Position(gnssdb.GPS)
	assert.True(t, pos.HasFix)
	assert.NotZero(t, pos.UtcNs)
}

func TestLoopReturnsErrorOnNonTimeoutReadFailure(t *testing.T) {
	db := gnssdb.New()
	ctx := context.Background()

	_, err := Loop(ctx, Options{
		Source: readerFunc(func([]byte) (int, error) { return 0, io.ErrClosedPipe }),
		DB:     db,
	})

	assert.Error(t, err)
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(buf []byte) (int, error) { return f(buf) }
