package transfer

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"golang.org/x/time/rate"
)

// DefaultBufferSize is the size of the buffers returned by Stream.Next.
const DefaultBufferSize = 256 << 10

// ProgressFunc receives the number of bytes of the target available so far
// and the expected total, both counted from the start of the file.
type ProgressFunc func(current, total int64)

// Stream yields the body of a download buffer by buffer.
type Stream struct {
	ctx        context.Context
	cancel     context.CancelFunc
	body       io.ReadCloser
	buf        []byte
	startAt    int64
	total      int64
	current    int64
	onProgress ProgressFunc
	limiter    *rate.Limiter
	idle       time.Duration
	idleTimer  *time.Timer
	idleFired  chan struct{}
}

// StreamOption customizes a Stream.
type StreamOption func(*Stream)

// WithBandwidth caps the read rate to bytesPerSecond. Zero disables the cap.
func WithBandwidth(bytesPerSecond int64) StreamOption {
	return func(s *Stream) {
		if bytesPerSecond <= 0 {
			return
		}
		burst := max(int(bytesPerSecond), len(s.buf))
		s.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), burst)
	}
}

// WithStreamIdleTimeout aborts the stream when a single read of the body waits
// longer than d. Time spent by the caller between reads or in bandwidth
// waits does not count.
func WithStreamIdleTimeout(d time.Duration) StreamOption {
	return func(s *Stream) { s.idle = d }
}

// WithProgress registers the progress callback.
func WithProgress(fn ProgressFunc) StreamOption {
	return func(s *Stream) { s.onProgress = fn }
}

// NewStream wraps body. startAt is the offset the body begins at within the
// file and total the length of body, or 0 when unknown.
func NewStream(ctx context.Context, body io.ReadCloser, startAt, total int64, opts ...StreamOption) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		ctx:     ctx,
		cancel:  cancel,
		body:    body,
		buf:     make([]byte, DefaultBufferSize),
		startAt: startAt,
		total:   total,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idle > 0 {
		s.idleFired = make(chan struct{})
		var once sync.Once
		s.idleTimer = time.AfterFunc(s.idle, func() {
			once.Do(func() {
				close(s.idleFired)
				cancel()
				_ = body.Close()
			})
		})
		s.idleTimer.Stop()
	}
	return s
}

// Next returns the next buffer of the body, or io.EOF once it is exhausted.
// The returned slice is only valid until the following call.
func (s *Stream) Next() ([]byte, error) {
	for {
		n, err := s.read()
		if n > 0 {
			if err := s.received(n); err != nil {
				return nil, err
			}
			return s.buf[:n], nil
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, s.readError(err)
		}
	}
}

// read arms the idle timer for the duration of one body read only.
func (s *Stream) read() (int, error) {
	if s.idleTimer == nil {
		return s.body.Read(s.buf)
	}
	s.idleTimer.Reset(s.idle)
	n, err := s.body.Read(s.buf)
	s.idleTimer.Stop()
	return n, err
}

func (s *Stream) received(n int) error {
	if s.limiter != nil {
		if err := s.limiter.WaitN(s.ctx, n); err != nil {
			return s.readError(err)
		}
	}
	s.current += int64(n)
	if s.onProgress != nil {
		s.onProgress(s.current+s.startAt, s.total+s.startAt)
	}
	return nil
}

func (s *Stream) readError(err error) error {
	if s.idleFired != nil {
		select {
		case <-s.idleFired:
			return pkgerrors.Wrapf(pkgerrors.ErrTransport, "no data received for %s", s.idle)
		default:
		}
	}
	return pkgerrors.Wrapf(pkgerrors.ErrTransport, "%v", err)
}

func (s *Stream) stopIdle() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
}

// Received returns the number of body bytes read so far.
func (s *Stream) Received() int64 { return s.current }

// Close releases the underlying connection.
func (s *Stream) Close() error {
	s.stopIdle()
	s.cancel()
	return s.body.Close()
}
