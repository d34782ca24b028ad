package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectAPI is the subset of the S3 API used by ObjectWriter.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	StatObject(ctx context.Context, bucket, key string) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	GetObjectTags(ctx context.Context, bucket, key string) (map[string]string, error)
	NewMultipartUpload(ctx context.Context, bucket, key string, opts minio.PutObjectOptions) (string, error)
	PutObjectPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (minio.ObjectPart, error)
	CopyObjectPart(ctx context.Context, bucket, srcKey, dstKey, uploadID string, partNumber int, offset, length int64) (minio.CompletePart, error)
	CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []minio.CompletePart) error
	AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error
	// Promote copies srcKey over dstKey replacing its metadata and tags.
	Promote(ctx context.Context, bucket, srcKey, dstKey string, metadata, tags map[string]string) error
	RemoveObject(ctx context.Context, bucket, key string) error
}

// ObjectStoreConfig holds the connection settings of an S3 compatible store.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// NewMinioAPI connects to an S3 compatible store.
func NewMinioAPI(cfg ObjectStoreConfig) (ObjectAPI, error) {
	core, err := minio.NewCore(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.Secure,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, err
	}
	return &minioAPI{core: core}, nil
}

type minioAPI struct {
	core *minio.Core
}

func (m *minioAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return m.core.Client.BucketExists(ctx, bucket)
}

func (m *minioAPI) StatObject(ctx context.Context, bucket, key string) (minio.ObjectInfo, error) {
	return m.core.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
}

func (m *minioAPI) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return m.core.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
}

func (m *minioAPI) GetObjectTags(ctx context.Context, bucket, key string) (map[string]string, error) {
	t, err := m.core.Client.GetObjectTagging(ctx, bucket, key, minio.GetObjectTaggingOptions{})
	if err != nil {
		return nil, err
	}
	return t.ToMap(), nil
}

func (m *minioAPI) NewMultipartUpload(ctx context.Context, bucket, key string, opts minio.PutObjectOptions) (string, error) {
	return m.core.NewMultipartUpload(ctx, bucket, key, opts)
}

func (m *minioAPI) PutObjectPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (minio.ObjectPart, error) {
	return m.core.PutObjectPart(ctx, bucket, key, uploadID, partNumber,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
}

func (m *minioAPI) CopyObjectPart(ctx context.Context, bucket, srcKey, dstKey, uploadID string, partNumber int, offset, length int64) (minio.CompletePart, error) {
	return m.core.CopyObjectPart(ctx, bucket, srcKey, bucket, dstKey, uploadID, partNumber, offset, length, nil)
}

func (m *minioAPI) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []minio.CompletePart) error {
	_, err := m.core.CompleteMultipartUpload(ctx, bucket, key, uploadID, parts, minio.PutObjectOptions{})
	return err
}

func (m *minioAPI) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	return m.core.AbortMultipartUpload(ctx, bucket, key, uploadID)
}

func (m *minioAPI) Promote(ctx context.Context, bucket, srcKey, dstKey string, metadata, tags map[string]string) error {
	dst := minio.CopyDestOptions{
		Bucket:          bucket,
		Object:          dstKey,
		UserMetadata:    metadata,
		ReplaceMetadata: true,
		UserTags:        tags,
		ReplaceTags:     true,
	}
	_, err := m.core.Client.ComposeObject(ctx, dst, minio.CopySrcOptions{Bucket: bucket, Object: srcKey})
	return err
}

func (m *minioAPI) RemoveObject(ctx context.Context, bucket, key string) error {
	return m.core.Client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

// isNotFound reports whether err is an S3 "no such key" response.
func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
