package objectstore

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Gateway for local runs and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
	base    string
	writes  int
}

type MemoryObject struct {
	Content      []byte
	ContentType  string
	CacheControl string
}

func NewMemory(publicBase string) *Memory {
	return &Memory{objects: map[string]MemoryObject{}, base: strings.TrimRight(publicBase, "/")}
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[cleanKey(key)]
	return ok, nil
}

func (m *Memory) Write(_ context.Context, key string, content []byte, contentType, cacheControl string) error {
	buf := make([]byte, len(content))
	copy(buf, content)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[cleanKey(key)] = MemoryObject{Content: buf, ContentType: contentType, CacheControl: cacheControl}
	m.writes++
	return nil
}

func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[cleanKey(key)]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := make([]byte, len(obj.Content))
	copy(out, obj.Content)
	return out, nil
}

func (m *Memory) PublicURL(key string) string {
	return m.base + "/" + cleanKey(key)
}

// Object returns the stored object and whether it exists.
func (m *Memory) Object(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[cleanKey(key)]
	return obj, ok
}

// Writes counts successful Write calls.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
