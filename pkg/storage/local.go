package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/fsutil"
	"github.com/glorpus-work/shelfsync/pkg/hashing"
)

// LocalRef points to a file on the local filesystem.
type LocalRef struct {
	Path string
	file *os.File
}

func (r *LocalRef) String() string { return r.Path }

// Close closes the append handle if one is open.
func (r *LocalRef) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *LocalRef) handle() (*os.File, error) {
	if r.file != nil {
		return r.file, nil
	}
	f, err := os.OpenFile(r.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, fsutil.FileModeDefault)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for writing: %w", r.Path, err)
	}
	r.file = f
	return f, nil
}

// LocalWriter stores targets as plain files. It accepts every path that does
// not address object storage.
type LocalWriter struct{}

// NewLocalWriter creates a LocalWriter.
func NewLocalWriter() *LocalWriter {
	return &LocalWriter{}
}

// Supports implements Writer.
func (w *LocalWriter) Supports(path string) bool { return !IsObjectPath(path) }

// Ref implements Writer.
func (w *LocalWriter) Ref(path string) (Ref, error) {
	if path == "" {
		return nil, pkgerrors.Wrap(pkgerrors.ErrInvalidPath, "empty local path")
	}
	return &LocalRef{Path: path}, nil
}

// Exists implements Writer.
func (w *LocalWriter) Exists(_ context.Context, path string) (bool, error) {
	return fsutil.FileExists(path)
}

// ExistsRef implements Writer.
func (w *LocalWriter) ExistsRef(ctx context.Context, ref Ref) (bool, error) {
	r, err := localRef(ref)
	if err != nil {
		return false, err
	}
	return w.Exists(ctx, r.Path)
}

// Size implements Writer.
func (w *LocalWriter) Size(_ context.Context, ref Ref) (int64, error) {
	r, err := localRef(ref)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(r.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", r.Path, err)
	}
	return info.Size(), nil
}

// StoredDigest implements Writer.
func (w *LocalWriter) StoredDigest(_ context.Context, ref Ref) (string, error) {
	r, err := localRef(ref)
	if err != nil {
		return "", err
	}
	f, err := os.Open(r.Path)
	if err != nil {
		return "", pkgerrors.Wrapf(pkgerrors.ErrUnreadableTarget, "%s: %v", r.Path, err)
	}
	defer func() { _ = f.Close() }()

	digest, err := hashing.Of(f)
	if err != nil {
		return "", pkgerrors.Wrapf(pkgerrors.ErrUnreadableTarget, "%s: %v", r.Path, err)
	}
	return digest, nil
}

// IsReadable implements Writer. A missing file is readable when its parent
// directory is.
func (w *LocalWriter) IsReadable(_ context.Context, ref Ref) (bool, error) {
	r, err := localRef(ref)
	if err != nil {
		return false, err
	}
	exists, err := fsutil.FileExists(r.Path)
	if err != nil {
		return false, nil
	}
	if exists {
		return fsutil.IsReadable(r.Path), nil
	}
	return fsutil.IsReadable(filepath.Dir(r.Path)), nil
}

// CreateContainer implements Writer.
func (w *LocalWriter) CreateContainer(_ context.Context, path string) error {
	if err := fsutil.EnsureDir(path); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// WriteChunk implements Writer.
func (w *LocalWriter) WriteChunk(_ context.Context, ref Ref, data []byte, _ int) error {
	r, err := localRef(ref)
	if err != nil {
		return err
	}
	f, err := r.handle()
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write to %s: %w", r.Path, err)
	}
	return nil
}

// DigestContext implements Writer.
func (w *LocalWriter) DigestContext(_ context.Context, ref Ref) (*hashing.Sink, error) {
	r, err := localRef(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(r.Path)
	if errors.Is(err, os.ErrNotExist) {
		return hashing.New(), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrUnreadableTarget, "%s: %v", r.Path, err)
	}
	defer func() { _ = f.Close() }()

	sink, err := hashing.NewSeeded(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.Path, err)
	}
	return sink, nil
}

// Finalize implements Writer. Content is already in place, only the handle
// is released.
func (w *LocalWriter) Finalize(_ context.Context, ref Ref, _ string) error {
	r, err := localRef(ref)
	if err != nil {
		return err
	}
	return r.Close()
}

// Remove implements Writer.
func (w *LocalWriter) Remove(_ context.Context, ref Ref) error {
	r, err := localRef(ref)
	if err != nil {
		return err
	}
	_ = r.Close()
	if err := os.Remove(r.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", r.Path, err)
	}
	return nil
}

func localRef(ref Ref) (*LocalRef, error) {
	r, ok := ref.(*LocalRef)
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidPath, "%s is not a local reference", ref)
	}
	return r, nil
}

var _ Writer = (*LocalWriter)(nil)
