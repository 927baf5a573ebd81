package platform

import (
	"time"

	"github.com/D3fc0n3-1/Deal-hunter/services/cache"
)

// memoryCache implements a simple in-memory cache.Service for testing
type memoryCache struct {
	values map[string][]byte
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if val, ok := m.values[key]; ok {
		return val, nil
	}
	return nil, cache.ErrMiss
}

func (m *memoryCache) Set(key string, value []byte, _ time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memoryCache) Delete(key string) error {
	delete(m.values, key)
	return nil
}
