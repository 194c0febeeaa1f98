package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for a MinIO / S3-compatible endpoint.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// MinioOpener opens buckets on a shared minio client.
type MinioOpener struct {
	client *minio.Client
}

// NewMinioOpener builds a client for the endpoint. minio-go wants a bare
// host:port, so any scheme on the endpoint is stripped and decides UseSSL.
func NewMinioOpener(cfg MinioConfig) (*MinioOpener, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials must be provided")
	}

	endpoint, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init failed: %w", err)
	}

	return &MinioOpener{client: client}, nil
}

func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/"), useSSL
	}
}

func (o *MinioOpener) Source(bucket string) (Source, error) {
	return &MinioBucket{client: o.client, bucket: bucket}, nil
}

func (o *MinioOpener) Destination(bucket string) (Destination, error) {
	return &MinioBucket{client: o.client, bucket: bucket}, nil
}

// MinioBucket is a single bucket on a minio client.
type MinioBucket struct {
	client *minio.Client
	bucket string
}

func (b *MinioBucket) Name() string { return b.bucket }

// ListObjects lists all objects in the bucket recursively.
func (b *MinioBucket) ListObjects(ctx context.Context) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("minio list %s failed: %w", b.bucket, object.Err)
		}
		results = append(results, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return results, nil
}

// GetObject downloads the whole object into memory.
func (b *MinioBucket) GetObject(ctx context.Context, key string) ([]byte, error) {
	object, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, b.translate(key, err)
	}
	defer object.Close()

	// minio reports a missing key on the first read, not on GetObject.
	data, err := io.ReadAll(object)
	if err != nil {
		return nil, b.translate(key, err)
	}
	return data, nil
}

func (b *MinioBucket) translate(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s/%s: %w", b.bucket, key, ErrObjectNotFound)
	}
	return fmt.Errorf("minio get %s/%s failed: %w", b.bucket, key, err)
}

func (b *MinioBucket) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("minio put %s/%s failed: %w", b.bucket, key, err)
	}
	return nil
}

// SetObjectACL has no dedicated minio call; the object is copied onto itself
// with a replaced metadata set carrying the x-amz-acl header. The stored
// content type is carried over so the copy does not reset it.
func (b *MinioBucket) SetObjectACL(ctx context.Context, key, acl string) error {
	stat, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return b.translate(key, err)
	}

	meta := map[string]string{"x-amz-acl": acl}
	if stat.ContentType != "" {
		meta["Content-Type"] = stat.ContentType
	}

	_, err = b.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          b.bucket,
			Object:          key,
			ReplaceMetadata: true,
			UserMetadata:    meta,
		},
		minio.CopySrcOptions{
			Bucket: b.bucket,
			Object: key,
		},
	)
	if err != nil {
		return fmt.Errorf("minio acl %s/%s failed: %w", b.bucket, key, err)
	}
	return nil
}

var (
	_ Opener      = (*MinioOpener)(nil)
	_ Source      = (*MinioBucket)(nil)
	_ Destination = (*MinioBucket)(nil)
)
