package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/chartmuseum/storage"
)

// SevallaConfig encapsulates the connection info for Sevalla (S3-compatible) storage.
type SevallaConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// SevallaOpener serves Sevalla buckets as artifact sources. chartmuseum's
// backend has no content-type or ACL support, so it cannot publish a site.
type SevallaOpener struct {
	endpoint    string
	region      string
	credentials *credentials.Credentials
}

// NewSevallaOpener validates the connection info. The keys are bound to the
// Sevalla clients only and never leak into the process AWS credential chain.
func NewSevallaOpener(cfg SevallaConfig) (*SevallaOpener, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("sevalla endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("sevalla credentials must be provided")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	return &SevallaOpener{
		endpoint:    endpoint,
		region:      region,
		credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}, nil
}

func (o *SevallaOpener) Source(bucket string) (Source, error) {
	backend := storage.NewAmazonS3BackendWithCredentials(
		bucket,
		"", // no prefix
		o.region,
		o.endpoint,
		"",
		o.credentials,
	)
	return &SevallaBucket{backend: backend, lister: backend.Client, bucket: bucket}, nil
}

func (o *SevallaOpener) Destination(bucket string) (Destination, error) {
	return nil, fmt.Errorf("sevalla destination %s: %w", bucket, ErrUnsupported)
}

// sevallaLister is the listing call of the S3 client behind the chartmuseum
// backend.
type sevallaLister interface {
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// SevallaBucket reads artifacts through a chartmuseum storage backend.
// Listing goes to the backend's S3 client directly since chartmuseum skips
// keys nested under a prefix.
type SevallaBucket struct {
	backend *storage.AmazonS3Backend
	lister  sevallaLister
	bucket  string
}

func (b *SevallaBucket) Name() string { return b.bucket }

// ListObjects lists every object in the bucket, nested keys included.
func (b *SevallaBucket) ListObjects(ctx context.Context) ([]ObjectInfo, error) {
	var results []ObjectInfo
	input := &s3.ListObjectsV2Input{Bucket: aws.String(b.bucket)}
	err := b.lister.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, object := range page.Contents {
			results = append(results, ObjectInfo{
				Key:          aws.StringValue(object.Key),
				Size:         aws.Int64Value(object.Size),
				LastModified: aws.TimeValue(object.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("sevalla list %s failed: %w", b.bucket, err)
	}
	return results, nil
}

// GetObject downloads an object into memory.
func (b *SevallaBucket) GetObject(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("sevalla %s: empty key: %w", b.bucket, ErrObjectNotFound)
	}
	object, err := b.backend.GetObject(key)
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") {
			return nil, fmt.Errorf("sevalla %s/%s: %w", b.bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("sevalla get %s/%s failed: %w", b.bucket, key, err)
	}
	return object.Content, nil
}

var (
	_ Opener = (*SevallaOpener)(nil)
	_ Source = (*SevallaBucket)(nil)
)
