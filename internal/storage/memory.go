package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryObject is an object held by a MemoryStore.
type MemoryObject struct {
	Data         []byte
	ContentType  string
	ACL          string
	LastModified time.Time
}

// MemoryStore is an in-memory bucket. Listing order is insertion order, which
// makes the latest-object tie-break observable in tests.
type MemoryStore struct {
	name    string
	mu      sync.Mutex
	keys    []string
	objects map[string]*MemoryObject
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:    name,
		objects: make(map[string]*MemoryObject),
		now:     time.Now,
	}
}

func (m *MemoryStore) Name() string { return m.name }

// Seed stores an object with an explicit modification time.
func (m *MemoryStore) Seed(key string, data []byte, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, &MemoryObject{Data: append([]byte(nil), data...), LastModified: modified})
}

func (m *MemoryStore) set(key string, obj *MemoryObject) {
	if _, ok := m.objects[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.objects[key] = obj
}

// Object returns a copy of the stored object.
func (m *MemoryStore) Object(key string) (MemoryObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return MemoryObject{}, false
	}
	out := *obj
	out.Data = append([]byte(nil), obj.Data...)
	return out, true
}

// Keys returns the stored keys in insertion order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

func (m *MemoryStore) ListObjects(ctx context.Context) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]ObjectInfo, 0, len(m.keys))
	for _, key := range m.keys {
		obj := m.objects[key]
		results = append(results, ObjectInfo{Key: key, Size: int64(len(obj.Data)), LastModified: obj.LastModified})
	}
	return results, nil
}

func (m *MemoryStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	obj, ok := m.Object(key)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", m.name, key, ErrObjectNotFound)
	}
	return obj.Data, nil
}

func (m *MemoryStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, &MemoryObject{
		Data:         append([]byte(nil), data...),
		ContentType:  contentType,
		LastModified: m.now(),
	})
	return nil
}

func (m *MemoryStore) SetObjectACL(ctx context.Context, key, acl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return fmt.Errorf("%s/%s: %w", m.name, key, ErrObjectNotFound)
	}
	obj.ACL = acl
	return nil
}

// MemoryOpener hands out MemoryStores by name, creating them on demand, and
// records every open.
type MemoryOpener struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
	opened []string
}

func NewMemoryOpener(stores ...*MemoryStore) *MemoryOpener {
	o := &MemoryOpener{stores: make(map[string]*MemoryStore)}
	for _, s := range stores {
		o.stores[s.name] = s
	}
	return o
}

// Store returns the named store, creating it if needed.
func (o *MemoryOpener) Store(bucket string) *MemoryStore {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.stores[bucket]
	if !ok {
		s = NewMemoryStore(bucket)
		o.stores[bucket] = s
	}
	return s
}

// Opened lists bucket names in open order.
func (o *MemoryOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

func (o *MemoryOpener) record(bucket string) {
	o.mu.Lock()
	o.opened = append(o.opened, bucket)
	o.mu.Unlock()
}

func (o *MemoryOpener) Source(bucket string) (Source, error) {
	o.record(bucket)
	return o.Store(bucket), nil
}

func (o *MemoryOpener) Destination(bucket string) (Destination, error) {
	o.record(bucket)
	return o.Store(bucket), nil
}

var (
	_ Opener      = (*MemoryOpener)(nil)
	_ Source      = (*MemoryStore)(nil)
	_ Destination = (*MemoryStore)(nil)
)
