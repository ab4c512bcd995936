package ratelimit

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// minBurst keeps reads of a typical copy buffer from being split into tiny
// waits when the configured rate is low
const minBurst = 64 * 1024

// Limiter controls the rate of data transfer across multiple readers
type Limiter struct {
	bytesPerSecond int64
	limiter        *rate.Limiter
}

// NewLimiter creates a new rate limiter with the specified bytes per second
// limit. It returns nil (no limiting) when bytesPerSecond is not positive.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// Burst is one second worth of data, at least 64KB
	burst := bytesPerSecond
	if burst < minBurst {
		burst = minBurst
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		limiter:        rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
	}
}

// BytesPerSecond returns the configured rate
func (l *Limiter) BytesPerSecond() int64 {
	return l.bytesPerSecond
}

// Burst returns the largest single read the limiter grants
func (l *Limiter) Burst() int {
	return l.limiter.Burst()
}

// ParseLimit parses a bandwidth such as "10M", "512KiB" or "1G" into bytes
// per second. An empty string means unlimited.
func ParseLimit(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bandwidth limit %q: %w", s, err)
	}
	return int64(n), nil
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps an io.Reader with rate limiting
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{
		reader:  reader,
		limiter: limiter,
		ctx:     ctx,
	}
}

// Read implements io.Reader, waiting for tokens before each read
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	toRead := len(p)
	if burst := r.limiter.Burst(); toRead > burst {
		toRead = burst
	}
	if toRead == 0 {
		return r.reader.Read(p)
	}

	if err := r.limiter.limiter.WaitN(r.ctx, toRead); err != nil {
		return 0, err
	}

	return r.reader.Read(p[:toRead])
}

// ReadCloser wraps an io.ReadCloser with rate limiting
type ReadCloser struct {
	Reader
	closer io.Closer
}

// NewReadCloser wraps an io.ReadCloser with rate limiting
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{
		Reader: Reader{
			reader:  rc,
			limiter: limiter,
			ctx:     ctx,
		},
		closer: rc,
	}
}

// Close implements io.Closer
func (rc *ReadCloser) Close() error {
	return rc.closer.Close()
}
