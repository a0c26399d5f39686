package storage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Storage for development and tests. Presigned URLs
// point at a memory:// scheme; Put stands in for the client-side upload.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]ObjectInfo
	expiry  time.Duration
	now     func() time.Time
}

func NewMemory(expiry time.Duration) *Memory {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Memory{
		objects: make(map[string]ObjectInfo),
		expiry:  expiry,
		now:     time.Now,
	}
}

// Put records an object as if a client had uploaded it.
func (m *Memory) Put(key, contentType string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = ObjectInfo{Key: key, Size: size, ContentType: contentType, LastModified: m.now()}
}

func (m *Memory) PresignPut(ctx context.Context, key, contentType string, size int64) (*PresignedURL, error) {
	return m.sign("PUT", key)
}

func (m *Memory) PresignGet(ctx context.Context, key string) (*PresignedURL, error) {
	return m.sign("GET", key)
}

func (m *Memory) sign(method, key string) (*PresignedURL, error) {
	expiresAt := m.now().Add(m.expiry)
	q := url.Values{}
	q.Set("method", method)
	q.Set("expires", fmt.Sprint(expiresAt.Unix()))
	return &PresignedURL{
		URL:       "memory:///" + key + "?" + q.Encode(),
		ExpiresAt: expiresAt,
	}, nil
}

func (m *Memory) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &obj, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
