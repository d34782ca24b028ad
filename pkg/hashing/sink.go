// Package hashing provides the streaming MD5 digest used to verify transfers.
package hashing

import (
	"crypto/md5" //nolint:gosec // the catalog publishes MD5 checksums
	"encoding/hex"
	"hash"
	"io"
	"strings"
)

// SeedBufferSize is the read size used when seeding a sink from existing content.
const SeedBufferSize = 8 << 20

// Sink accumulates a content digest chunk by chunk.
type Sink struct {
	h       hash.Hash
	written int64
}

// New returns an empty sink.
func New() *Sink {
	return &Sink{h: md5.New()} //nolint:gosec
}

// NewSeeded returns a sink that already contains everything read from r.
func NewSeeded(r io.Reader) (*Sink, error) {
	s := New()
	if err := s.Seed(r); err != nil {
		return nil, err
	}
	return s, nil
}

// Seed feeds all of r into the digest.
func (s *Sink) Seed(r io.Reader) error {
	buf := make([]byte, SeedBufferSize)
	n, err := io.CopyBuffer(s.h, r, buf)
	s.written += n
	return err
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.h.Write(p)
	s.written += int64(n)
	return n, err
}

// Update adds a chunk to the digest.
func (s *Sink) Update(chunk []byte) {
	_, _ = s.Write(chunk)
}

// Written returns the number of bytes hashed so far.
func (s *Sink) Written() int64 { return s.written }

// Sum returns the lowercase hex digest of everything written so far.
// The sink can keep receiving data afterwards.
func (s *Sink) Sum() string {
	return hex.EncodeToString(s.h.Sum(nil))
}

// Of returns the hex digest of r.
func Of(r io.Reader) (string, error) {
	s, err := NewSeeded(r)
	if err != nil {
		return "", err
	}
	return s.Sum(), nil
}

// Equal compares two hex digests ignoring case and surrounding whitespace.
func Equal(a, b string) bool {
	return normalizeHex(a) == normalizeHex(b)
}

func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
