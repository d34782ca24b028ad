package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/hashing"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const (
	// ObjectScheme prefixes paths handled by ObjectWriter.
	ObjectScheme = "s3://"

	// MinPartSize is the smallest part S3 accepts for any part but the last.
	MinPartSize = 5 << 20
	// MaxCopyPartSize is the largest range a single part copy may cover.
	MaxCopyPartSize = 5 << 30

	// DigestKey names the tag and user metadata entry holding the md5 digest.
	DigestKey = "md5_hash"

	storageClassHeader = "X-Amz-Storage-Class"
)

// StorageClass is an S3 storage class.
type StorageClass string

// Supported storage classes.
const (
	StorageClassStandard           StorageClass = "STANDARD"
	StorageClassReducedRedundancy  StorageClass = "REDUCED_REDUNDANCY"
	StorageClassStandardIA         StorageClass = "STANDARD_IA"
	StorageClassOneZoneIA          StorageClass = "ONEZONE_IA"
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"
	StorageClassGlacierIR          StorageClass = "GLACIER_IR"
	StorageClassGlacier            StorageClass = "GLACIER"
	StorageClassDeepArchive        StorageClass = "DEEP_ARCHIVE"
)

// ValidStorageClasses lists the accepted storage class names.
func ValidStorageClasses() []string {
	return []string{
		string(StorageClassStandard),
		string(StorageClassReducedRedundancy),
		string(StorageClassStandardIA),
		string(StorageClassOneZoneIA),
		string(StorageClassIntelligentTiering),
		string(StorageClassGlacierIR),
		string(StorageClassGlacier),
		string(StorageClassDeepArchive),
	}
}

// ParseStorageClass validates s. An empty string selects the bucket default.
func ParseStorageClass(s string) (StorageClass, error) {
	if s == "" {
		return "", nil
	}
	upper := strings.ToUpper(s)
	for _, valid := range ValidStorageClasses() {
		if upper == valid {
			return StorageClass(upper), nil
		}
	}
	return "", errors.ErrInvalidStorageClassWithDetails(s, ValidStorageClasses())
}

// IsCold reports whether objects in the class must be restored before they
// can be read.
func (c StorageClass) IsCold() bool {
	return c == StorageClassGlacier || c == StorageClassDeepArchive
}

// IsObjectPath reports whether path addresses object storage.
func IsObjectPath(path string) bool {
	return strings.HasPrefix(path, ObjectScheme)
}

// ParseObjectPath splits an s3://bucket/key path. The key may be empty.
func ParseObjectPath(path string) (bucket, key string, err error) {
	if !IsObjectPath(path) {
		return "", "", errors.Wrapf(errors.ErrInvalidPath, "%s is not an object storage path", path)
	}
	rest := strings.TrimPrefix(path, ObjectScheme)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", errors.Wrapf(errors.ErrInvalidPath, "%s has no bucket", path)
	}
	return bucket, key, nil
}

// ObjectRef points to an object and holds its upload session.
type ObjectRef struct {
	Bucket string
	Key    string

	api     ObjectAPI
	session *uploadSession
}

type uploadSession struct {
	tempKey  string
	uploadID string
	nextPart int
	parts    []minio.CompletePart
	buf      []byte
	closed   bool
}

func (r *ObjectRef) String() string {
	return ObjectScheme + r.Bucket + "/" + r.Key
}

// TempKey returns the key the open session writes to, or "".
func (r *ObjectRef) TempKey() string {
	if r.session == nil {
		return ""
	}
	return r.session.tempKey
}

// Close aborts a multipart upload that was not finalized.
func (r *ObjectRef) Close() error {
	s := r.session
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	if err := r.api.AbortMultipartUpload(context.Background(), r.Bucket, s.tempKey, s.uploadID); err != nil {
		return fmt.Errorf("failed to abort upload of %s: %w", r, err)
	}
	return nil
}

// ObjectOption customizes an ObjectWriter.
type ObjectOption func(*ObjectWriter)

// WithVisibilityPoll sets how often and how long Finalize waits for a
// completed upload to become visible.
func WithVisibilityPoll(interval time.Duration, attempts int) ObjectOption {
	return func(w *ObjectWriter) {
		w.pollInterval = interval
		w.pollAttempts = attempts
	}
}

// WithTempSuffix replaces the random suffix generator of temporary keys.
func WithTempSuffix(fn func() string) ObjectOption {
	return func(w *ObjectWriter) { w.tempSuffix = fn }
}

// ObjectWriter stores targets in an S3 compatible bucket. Content is
// uploaded to a temporary key and only copied to the final key once the
// upload completed, so the final key never holds a partial object.
type ObjectWriter struct {
	api          ObjectAPI
	storageClass StorageClass
	pollInterval time.Duration
	pollAttempts int
	tempSuffix   func() string
}

// NewObjectWriter creates an ObjectWriter writing objects with class.
func NewObjectWriter(api ObjectAPI, class StorageClass, opts ...ObjectOption) *ObjectWriter {
	w := &ObjectWriter{
		api:          api,
		storageClass: class,
		pollInterval: 500 * time.Millisecond,
		pollAttempts: 20,
		tempSuffix:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Supports implements Writer.
func (w *ObjectWriter) Supports(path string) bool { return IsObjectPath(path) }

// Ref implements Writer.
func (w *ObjectWriter) Ref(path string) (Ref, error) {
	bucket, key, err := ParseObjectPath(path)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.Wrapf(errors.ErrInvalidPath, "%s has no object key", path)
	}
	return &ObjectRef{Bucket: bucket, Key: key, api: w.api}, nil
}

// Exists implements Writer.
func (w *ObjectWriter) Exists(ctx context.Context, path string) (bool, error) {
	bucket, key, err := ParseObjectPath(path)
	if err != nil {
		return false, err
	}
	return w.exists(ctx, bucket, key)
}

// ExistsRef implements Writer.
func (w *ObjectWriter) ExistsRef(ctx context.Context, ref Ref) (bool, error) {
	r, err := objectRef(ref)
	if err != nil {
		return false, err
	}
	return w.exists(ctx, r.Bucket, r.Key)
}

func (w *ObjectWriter) exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := w.api.StatObject(ctx, bucket, key)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s%s/%s: %w", ObjectScheme, bucket, key, err)
}

// Size implements Writer.
func (w *ObjectWriter) Size(ctx context.Context, ref Ref) (int64, error) {
	r, err := objectRef(ref)
	if err != nil {
		return 0, err
	}
	info, err := w.api.StatObject(ctx, r.Bucket, r.Key)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", r, err)
	}
	return info.Size, nil
}

// StoredDigest implements Writer. The md5_hash tag wins over the metadata
// entry; the content is hashed only when neither is present.
func (w *ObjectWriter) StoredDigest(ctx context.Context, ref Ref) (string, error) {
	r, err := objectRef(ref)
	if err != nil {
		return "", err
	}
	info, err := w.api.StatObject(ctx, r.Bucket, r.Key)
	if err != nil {
		return "", errors.Wrapf(errors.ErrUnreadableTarget, "%s: %v", r, err)
	}

	if tags, err := w.api.GetObjectTags(ctx, r.Bucket, r.Key); err == nil {
		if digest, ok := lookupFold(tags, DigestKey); ok && digest != "" {
			return digest, nil
		}
	} else {
		logger.Debug("Failed to read object tags", logger.Fields{"object": r.String(), "error": err})
	}
	if digest, ok := lookupFold(info.UserMetadata, DigestKey); ok && digest != "" {
		return digest, nil
	}
	if digest := headerDigest(info); digest != "" {
		return digest, nil
	}

	if StorageClass(info.StorageClass).IsCold() {
		return "", errors.Wrapf(errors.ErrUnreadableTarget, "%s is in storage class %s", r, info.StorageClass)
	}
	body, err := w.api.GetObject(ctx, r.Bucket, r.Key)
	if err != nil {
		return "", errors.Wrapf(errors.ErrUnreadableTarget, "%s: %v", r, err)
	}
	defer func() { _ = body.Close() }()

	digest, err := hashing.Of(body)
	if err != nil {
		return "", errors.Wrapf(errors.ErrUnreadableTarget, "%s: %v", r, err)
	}
	return digest, nil
}

// IsReadable implements Writer. Objects in cold storage classes are not
// readable; a missing object is readable when its bucket exists.
func (w *ObjectWriter) IsReadable(ctx context.Context, ref Ref) (bool, error) {
	r, err := objectRef(ref)
	if err != nil {
		return false, err
	}
	info, err := w.api.StatObject(ctx, r.Bucket, r.Key)
	if err != nil {
		if isNotFound(err) {
			return w.api.BucketExists(ctx, r.Bucket)
		}
		return false, fmt.Errorf("failed to stat %s: %w", r, err)
	}
	return !StorageClass(info.StorageClass).IsCold(), nil
}

// CreateContainer implements Writer. Prefixes need no creation, only the
// bucket has to exist.
func (w *ObjectWriter) CreateContainer(ctx context.Context, path string) error {
	bucket, _, err := ParseObjectPath(path)
	if err != nil {
		return err
	}
	ok, err := w.api.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !ok {
		return errors.Wrapf(errors.ErrInvalidPath, "bucket %s does not exist", bucket)
	}
	return nil
}

// WriteChunk implements Writer. Data is buffered until a full part of at
// least max(chunkSize, MinPartSize) bytes can be uploaded.
func (w *ObjectWriter) WriteChunk(ctx context.Context, ref Ref, data []byte, chunkSize int) error {
	r, err := objectRef(ref)
	if err != nil {
		return err
	}
	s, err := w.session(ctx, r)
	if err != nil {
		return err
	}

	s.buf = append(s.buf, data...)
	if len(s.buf) >= max(chunkSize, MinPartSize) {
		return w.flush(ctx, r, s)
	}
	return nil
}

// DigestContext implements Writer.
func (w *ObjectWriter) DigestContext(ctx context.Context, ref Ref) (*hashing.Sink, error) {
	r, err := objectRef(ref)
	if err != nil {
		return nil, err
	}
	info, err := w.api.StatObject(ctx, r.Bucket, r.Key)
	if err != nil {
		if isNotFound(err) {
			return hashing.New(), nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", r, err)
	}
	if StorageClass(info.StorageClass).IsCold() {
		return nil, errors.Wrapf(errors.ErrUnreadableTarget, "%s is in storage class %s", r, info.StorageClass)
	}

	body, err := w.api.GetObject(ctx, r.Bucket, r.Key)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnreadableTarget, "%s: %v", r, err)
	}
	defer func() { _ = body.Close() }()
	return hashing.NewSeeded(body)
}

// Finalize implements Writer.
func (w *ObjectWriter) Finalize(ctx context.Context, ref Ref, digest string) error {
	r, err := objectRef(ref)
	if err != nil {
		return err
	}
	s, err := w.session(ctx, r)
	if err != nil {
		return err
	}

	if len(s.buf) > 0 || len(s.parts) == 0 {
		if err := w.flush(ctx, r, s); err != nil {
			return err
		}
	}
	if err := w.api.CompleteMultipartUpload(ctx, r.Bucket, s.tempKey, s.uploadID, s.parts); err != nil {
		return fmt.Errorf("failed to complete upload of %s: %w", r, err)
	}
	s.closed = true

	if err := w.waitVisible(ctx, r.Bucket, s.tempKey); err != nil {
		w.removeTemp(ctx, r, s.tempKey)
		return err
	}

	metadata := map[string]string{DigestKey: digest}
	if w.storageClass != "" {
		metadata[storageClassHeader] = string(w.storageClass)
	}
	tags := map[string]string{DigestKey: digest}
	if err := w.api.Promote(ctx, r.Bucket, s.tempKey, r.Key, metadata, tags); err != nil {
		w.removeTemp(ctx, r, s.tempKey)
		return fmt.Errorf("failed to promote %s: %w", r, err)
	}
	w.removeTemp(ctx, r, s.tempKey)
	return nil
}

// Remove implements Writer.
func (w *ObjectWriter) Remove(ctx context.Context, ref Ref) error {
	r, err := objectRef(ref)
	if err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		logger.Warn("Failed to abort upload", logger.Fields{"object": r.String(), "error": err})
	}
	r.session = nil
	if err := w.api.RemoveObject(ctx, r.Bucket, r.Key); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to remove %s: %w", r, err)
	}
	return nil
}

// session returns the open upload session of r, starting one if needed.
// When the final object already exists its content becomes the head of the
// new upload.
func (w *ObjectWriter) session(ctx context.Context, r *ObjectRef) (*uploadSession, error) {
	if r.session != nil {
		if r.session.closed {
			return nil, errors.Wrapf(errors.ErrSessionClosed, "%s", r)
		}
		return r.session, nil
	}

	tempKey := r.Key + ".partial-" + w.tempSuffix()
	uploadID, err := w.api.NewMultipartUpload(ctx, r.Bucket, tempKey, minio.PutObjectOptions{
		StorageClass: string(w.storageClass),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start upload of %s: %w", r, err)
	}
	r.session = &uploadSession{tempKey: tempKey, uploadID: uploadID, nextPart: 1}

	if err := w.seed(ctx, r, r.session); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r.session, nil
}

func (w *ObjectWriter) seed(ctx context.Context, r *ObjectRef, s *uploadSession) error {
	info, err := w.api.StatObject(ctx, r.Bucket, r.Key)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", r, err)
	}
	if info.Size == 0 {
		return nil
	}

	if info.Size < MinPartSize {
		body, err := w.api.GetObject(ctx, r.Bucket, r.Key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", r, err)
		}
		defer func() { _ = body.Close() }()
		s.buf, err = io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", r, err)
		}
		return nil
	}

	var offset int64
	for offset < info.Size {
		length := info.Size - offset
		if length > MaxCopyPartSize {
			length = MaxCopyPartSize
			if info.Size-offset-length < MinPartSize {
				length = info.Size - offset - MinPartSize
			}
		}
		part, err := w.api.CopyObjectPart(ctx, r.Bucket, r.Key, s.tempKey, s.uploadID, s.nextPart, offset, length)
		if err != nil {
			return fmt.Errorf("failed to copy existing content of %s: %w", r, err)
		}
		part.PartNumber = s.nextPart
		s.parts = append(s.parts, part)
		s.nextPart++
		offset += length
	}
	logger.Debug("Seeded upload with existing object", logger.Fields{"object": r.String(), "size": info.Size})
	return nil
}

func (w *ObjectWriter) flush(ctx context.Context, r *ObjectRef, s *uploadSession) error {
	part, err := w.api.PutObjectPart(ctx, r.Bucket, s.tempKey, s.uploadID, s.nextPart, s.buf)
	if err != nil {
		return fmt.Errorf("failed to upload part %d of %s: %w", s.nextPart, r, err)
	}
	s.parts = append(s.parts, minio.CompletePart{PartNumber: s.nextPart, ETag: part.ETag})
	s.nextPart++
	s.buf = nil
	return nil
}

func (w *ObjectWriter) waitVisible(ctx context.Context, bucket, key string) error {
	var lastErr error
	for i := 0; i < w.pollAttempts; i++ {
		_, err := w.api.StatObject(ctx, bucket, key)
		if err == nil {
			return nil
		}
		lastErr = err
		timer := time.NewTimer(w.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("uploaded object %s%s/%s did not become visible: %w", ObjectScheme, bucket, key, lastErr)
}

func (w *ObjectWriter) removeTemp(ctx context.Context, r *ObjectRef, key string) {
	if err := w.api.RemoveObject(ctx, r.Bucket, key); err != nil && !isNotFound(err) {
		logger.Warn("Failed to remove temporary object", logger.Fields{"bucket": r.Bucket, "key": key, "error": err})
	}
}

func objectRef(ref Ref) (*ObjectRef, error) {
	r, ok := ref.(*ObjectRef)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidPath, "%s is not an object reference", ref)
	}
	return r, nil
}

func lookupFold(m map[string]string, key string) (string, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func headerDigest(info minio.ObjectInfo) string {
	if info.Metadata == nil {
		return ""
	}
	return info.Metadata.Get("X-Amz-Meta-" + DigestKey)
}

var _ Writer = (*ObjectWriter)(nil)
