package cache

import (
	"sync"
)

// SynchronizedCache guards a BoundedCache with a read/write lock so it can be
// shared between goroutines, e.g. a feed writing while request handlers read.
type SynchronizedCache[K comparable, V any] struct {
	mu    sync.RWMutex
	local *BoundedCache[K, V]
}

func NewSynchronizedCache[K comparable, V any](options *BoundedCacheOptions[K, V]) (*SynchronizedCache[K, V], error) {
	local, err := NewBoundedCache[K, V](options)
	if err != nil {
		return nil, err
	}
	return &SynchronizedCache[K, V]{local: local}, nil
}

// Insert holds the write lock for the policy check as well as the mutation.
// OnEvict callbacks run under the lock and must not call back into the cache.
func (c *SynchronizedCache[K, V]) Insert(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local.Insert(key, value)
}

func (c *SynchronizedCache[K, V]) Get(key K) (*V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local.Get(key)
}

func (c *SynchronizedCache[K, V]) Contains(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local.Contains(key)
}

func (c *SynchronizedCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local.Len()
}

func (c *SynchronizedCache[K, V]) Capacity() int {
	return c.local.Capacity()
}

func (c *SynchronizedCache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local.Keys()
}
