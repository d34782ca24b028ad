//go:generate mockgen -destination=./mocks/storage.go . Writer,Ref,ObjectAPI

// Package storage writes transferred content to its final location, either a
// local file or an object in an S3 compatible bucket.
package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/hashing"
)

// Ref is a handle to one target, built per transfer attempt.
type Ref interface {
	String() string
	// Close releases any open handle or session without finalizing it.
	Close() error
}

// Writer is a storage backend.
type Writer interface {
	// Supports reports whether the writer handles path.
	Supports(path string) bool
	// Ref builds a reference to the target at path.
	Ref(path string) (Ref, error)
	Exists(ctx context.Context, path string) (bool, error)
	ExistsRef(ctx context.Context, ref Ref) (bool, error)
	Size(ctx context.Context, ref Ref) (int64, error)
	// StoredDigest returns the digest of the stored content. It fails with
	// ErrUnreadableTarget when the digest cannot be obtained.
	StoredDigest(ctx context.Context, ref Ref) (string, error)
	IsReadable(ctx context.Context, ref Ref) (bool, error)
	// CreateContainer makes sure the directory or bucket at path exists.
	CreateContainer(ctx context.Context, path string) error
	// WriteChunk appends data to the target. chunkSize is the configured
	// transfer chunk size and bounds the writer's internal buffering.
	WriteChunk(ctx context.Context, ref Ref, data []byte, chunkSize int) error
	// DigestContext returns a sink seeded with the content already stored.
	DigestContext(ctx context.Context, ref Ref) (*hashing.Sink, error)
	// Finalize commits the written content. digest is the content digest
	// computed while streaming.
	Finalize(ctx context.Context, ref Ref, digest string) error
	Remove(ctx context.Context, ref Ref) error
}

// Locator picks the first writer that supports a path.
type Locator struct {
	writers []Writer
}

// NewLocator returns a locator trying writers in the given order.
func NewLocator(writers ...Writer) *Locator {
	return &Locator{writers: writers}
}

// Writer returns the writer responsible for path.
func (l *Locator) Writer(path string) (Writer, error) {
	for _, w := range l.writers {
		if w.Supports(path) {
			return w, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNoWriter, "path %s", path)
}

// JoinPath appends name to the directory dir, using forward slashes for
// object storage paths.
func JoinPath(dir, name string) string {
	if IsObjectPath(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}
