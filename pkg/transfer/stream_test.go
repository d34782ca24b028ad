package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestStream_ReportsProgressFromOffset(t *testing.T) {
	body := io.NopCloser(bytes.NewReader([]byte("tail")))
	var reports [][2]int64

	s := NewStream(context.Background(), body, 6, 4, WithProgress(func(current, total int64) {
		reports = append(reports, [2]int64{current, total})
	}))

	assert.Equal(t, []byte("tail"), readAll(t, s))
	require.NotEmpty(t, reports)
	assert.Equal(t, [2]int64{10, 10}, reports[len(reports)-1])
	assert.Equal(t, int64(4), s.Received())
}

func TestStream_WrapsReadFailures(t *testing.T) {
	boom := errors.New("connection reset by peer")
	s := NewStream(context.Background(), io.NopCloser(failingReader{err: boom}), 0, 0)

	_, err := s.Next()
	require.ErrorIs(t, err, pkgerrors.ErrTransport)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStream_BandwidthCapStillDelivers(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 2*DefaultBufferSize)
	s := NewStream(context.Background(), io.NopCloser(bytes.NewReader(content)), 0, int64(len(content)),
		WithBandwidth(100<<20))

	assert.Equal(t, content, readAll(t, s))
}

func TestStream_IdleTimeoutIgnoresSlowCaller(t *testing.T) {
	content := bytes.Repeat([]byte("y"), 3*DefaultBufferSize)
	s := NewStream(context.Background(), io.NopCloser(bytes.NewReader(content)), 0, int64(len(content)),
		WithStreamIdleTimeout(50*time.Millisecond))
	defer func() { _ = s.Close() }()

	var out []byte
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		out = append(out, chunk...)
		// Hashing or uploading the previous chunk.
		time.Sleep(150 * time.Millisecond)
	}
	assert.Equal(t, content, out)
}

func TestStream_IdleTimeoutIgnoresThrottleWaits(t *testing.T) {
	content := bytes.Repeat([]byte("z"), 3*DefaultBufferSize)
	s := NewStream(context.Background(), io.NopCloser(bytes.NewReader(content)), 0, int64(len(content)),
		WithStreamIdleTimeout(100*time.Millisecond), WithBandwidth(2*DefaultBufferSize))

	start := time.Now()
	assert.Equal(t, content, readAll(t, s))
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond, "the third buffer waits for the limiter")
}

func TestStream_IdleTimeoutAbortsSilentBody(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	s := NewStream(context.Background(), pr, 0, 0, WithStreamIdleTimeout(50*time.Millisecond))
	defer func() { _ = s.Close() }()

	_, err := s.Next()
	require.ErrorIs(t, err, pkgerrors.ErrTransport)
	assert.Contains(t, err.Error(), "no data received for 50ms")
}
