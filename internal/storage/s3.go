package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the stores use.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
}

// S3Opener opens buckets on a shared S3 client.
type S3Opener struct {
	client S3API
}

// NewS3Opener wraps an S3 client.
func NewS3Opener(client S3API) *S3Opener {
	return &S3Opener{client: client}
}

func (o *S3Opener) Source(bucket string) (Source, error) {
	return &S3Bucket{client: o.client, bucket: bucket}, nil
}

func (o *S3Opener) Destination(bucket string) (Destination, error) {
	return &S3Bucket{client: o.client, bucket: bucket}, nil
}

// S3Bucket is a single S3 bucket acting as source or destination.
type S3Bucket struct {
	client S3API
	bucket string
}

func (b *S3Bucket) Name() string { return b.bucket }

// ListObjects lists every object in the bucket, following continuation tokens.
func (b *S3Bucket) ListObjects(ctx context.Context) ([]ObjectInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
	})

	results := make([]ObjectInfo, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s failed: %w", b.bucket, err)
		}
		for _, object := range page.Contents {
			results = append(results, ObjectInfo{
				Key:          aws.ToString(object.Key),
				Size:         aws.ToInt64(object.Size),
				LastModified: aws.ToTime(object.LastModified),
			})
		}
	}
	return results, nil
}

// GetObject downloads the whole object into memory.
func (b *S3Bucket) GetObject(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("s3://%s/%s: %w", b.bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("s3 get s3://%s/%s failed: %w", b.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read s3://%s/%s failed: %w", b.bucket, key, err)
	}
	return data, nil
}

// PutObject uploads data under key. An empty contentType is left unset.
func (b *S3Bucket) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put s3://%s/%s failed: %w", b.bucket, key, err)
	}
	return nil
}

// SetObjectACL applies a canned ACL to an existing object.
func (b *S3Bucket) SetObjectACL(ctx context.Context, key, acl string) error {
	_, err := b.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACL(acl),
	})
	if err != nil {
		return fmt.Errorf("s3 acl s3://%s/%s failed: %w", b.bucket, key, err)
	}
	return nil
}

var (
	_ Opener      = (*S3Opener)(nil)
	_ Source      = (*S3Bucket)(nil)
	_ Destination = (*S3Bucket)(nil)
)
