package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrObjectNotFound is returned when a key does not exist in a store.
	ErrObjectNotFound = errors.New("object not found")
	// ErrUnsupported is returned when a backend cannot serve a role.
	ErrUnsupported = errors.New("operation not supported by storage backend")
)

// ACLPublicRead is the canned access policy applied to published site files.
const ACLPublicRead = "public-read"

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Source is the read side of a store: listing and whole-object download.
type Source interface {
	Name() string
	ListObjects(ctx context.Context) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// Destination is the write side of a store used to publish site files.
type Destination interface {
	Name() string
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	SetObjectACL(ctx context.Context, key, acl string) error
}

// Opener hands out store handles by bucket name. Opening never checks that
// the bucket exists; a bad name surfaces on first use.
type Opener interface {
	Source(bucket string) (Source, error)
	Destination(bucket string) (Destination, error)
}
