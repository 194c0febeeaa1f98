package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCS predefined ACL names differ from the S3 canned ones.
var gcsPredefinedACL = map[string]string{
	ACLPublicRead: "publicRead",
}

// GCSOpener opens Google Cloud Storage buckets.
type GCSOpener struct {
	srv *gcs.Service
}

// NewGCSOpener builds a storage service from a service-account JSON, or from
// application default credentials when credentialsJSON is empty.
func NewGCSOpener(ctx context.Context, credentialsJSON string) (*GCSOpener, error) {
	var client *http.Client
	if credentialsJSON != "" {
		config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), gcs.DevstorageReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse gcs credentials: %w", err)
		}
		client = config.Client(ctx)
	} else {
		c, err := google.DefaultClient(ctx, gcs.DevstorageReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("unable to find default gcs credentials: %w", err)
		}
		client = c
	}

	srv, err := gcs.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create gcs client: %w", err)
	}
	return &GCSOpener{srv: srv}, nil
}

func (o *GCSOpener) Source(bucket string) (Source, error) {
	return &GCSBucket{srv: o.srv, bucket: bucket}, nil
}

func (o *GCSOpener) Destination(bucket string) (Destination, error) {
	return &GCSBucket{srv: o.srv, bucket: bucket}, nil
}

// GCSBucket is a single GCS bucket.
type GCSBucket struct {
	srv    *gcs.Service
	bucket string
}

func (b *GCSBucket) Name() string { return b.bucket }

func (b *GCSBucket) ListObjects(ctx context.Context) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	err := b.srv.Objects.List(b.bucket).Context(ctx).Pages(ctx, func(page *gcs.Objects) error {
		for _, object := range page.Items {
			results = append(results, ObjectInfo{
				Key:          object.Name,
				Size:         int64(object.Size),
				LastModified: parseGCSTime(object.Updated),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gcs list %s failed: %w", b.bucket, err)
	}
	return results, nil
}

func (b *GCSBucket) GetObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := b.srv.Objects.Get(b.bucket, key).Context(ctx).Download()
	if err != nil {
		if isGCSNotFound(err) {
			return nil, fmt.Errorf("gs://%s/%s: %w", b.bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("gcs get gs://%s/%s failed: %w", b.bucket, key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gcs read gs://%s/%s failed: %w", b.bucket, key, err)
	}
	return data, nil
}

// PutObject uploads data. GCS sniffs a content type when none is given.
func (b *GCSBucket) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	object := &gcs.Object{Name: key, ContentType: contentType}
	call := b.srv.Objects.Insert(b.bucket, object).Context(ctx)
	if contentType != "" {
		call = call.Media(bytes.NewReader(data), googleapi.ContentType(contentType))
	} else {
		call = call.Media(bytes.NewReader(data))
	}
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("gcs put gs://%s/%s failed: %w", b.bucket, key, err)
	}
	return nil
}

func (b *GCSBucket) SetObjectACL(ctx context.Context, key, acl string) error {
	predefined, ok := gcsPredefinedACL[acl]
	if !ok {
		return fmt.Errorf("gcs acl %q: %w", acl, ErrUnsupported)
	}
	_, err := b.srv.Objects.Patch(b.bucket, key, &gcs.Object{}).
		PredefinedAcl(predefined).
		Context(ctx).
		Do()
	if err != nil {
		if isGCSNotFound(err) {
			return fmt.Errorf("gs://%s/%s: %w", b.bucket, key, ErrObjectNotFound)
		}
		return fmt.Errorf("gcs acl gs://%s/%s failed: %w", b.bucket, key, err)
	}
	return nil
}

func parseGCSTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isGCSNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

var (
	_ Opener      = (*GCSOpener)(nil)
	_ Source      = (*GCSBucket)(nil)
	_ Destination = (*GCSBucket)(nil)
)
