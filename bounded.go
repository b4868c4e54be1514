package cache

import (
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Options passed to NewBoundedCache
//
// Policy: decides admission on every insert. Defaults to AdmitAll when nil
// MaxCapacity: maximum number of entries held at once. Must be positive
// OnEvict: optional, called after an entry was evicted to make room
type BoundedCacheOptions[K comparable, V any] struct {
	Policy      AdmissionPolicy[K, V]
	MaxCapacity int
	OnEvict     func(key K, value V)
}

// BoundedCache holds at most MaxCapacity entries. Every insert is checked
// against the admission policy; when the cache is full and a new key is
// admitted, the earliest-inserted key still present is evicted first.
//
// Overwriting a key keeps its original insertion position, and reads never
// change the order. BoundedCache is not safe for concurrent use, see
// SynchronizedCache.
type BoundedCache[K comparable, V any] struct {
	policy   AdmissionPolicy[K, V]
	capacity int
	onEvict  func(key K, value V)
	// the LRU is never promoted (only Peek and Add of new keys), so its
	// oldest element is always the earliest insertion
	entries *simplelru.LRU[K, *CacheEntry[K, V]]
}

func NewBoundedCache[K comparable, V any](options *BoundedCacheOptions[K, V]) (*BoundedCache[K, V], error) {
	if options == nil || options.MaxCapacity <= 0 {
		capacity := 0
		if options != nil {
			capacity = options.MaxCapacity
		}
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	policy := options.Policy
	if policy == nil {
		policy = AdmitAll[K, V]{}
	}

	entries, err := simplelru.NewLRU[K, *CacheEntry[K, V]](options.MaxCapacity, nil)
	if err != nil {
		return nil, err
	}

	return &BoundedCache[K, V]{
		policy:   policy,
		capacity: options.MaxCapacity,
		onEvict:  options.OnEvict,
		entries:  entries,
	}, nil
}

// Insert offers a pair to the cache. It returns false, without touching the
// cache, if the policy rejects the pair. Otherwise the value is stored and
// Insert returns true.
func (c *BoundedCache[K, V]) Insert(key K, value V) bool {
	if !c.policy.Admit(key, value) {
		Logger().Debug("admission rejected", "key", key)
		return false
	}

	if entry, ok := c.entries.Peek(key); ok {
		entry.Value = &value
		return true
	}

	if c.entries.Len() >= c.capacity {
		c.evict()
	}

	c.entries.Add(key, &CacheEntry[K, V]{
		Key:   key,
		Value: &value,
	})
	return true
}

func (c *BoundedCache[K, V]) evict() {
	key, entry, ok := c.entries.RemoveOldest()
	if !ok {
		return
	}
	Logger().Debug("evicted entry", "key", key)
	if c.onEvict != nil {
		c.onEvict(key, *entry.Value)
	}
}

func (c *BoundedCache[K, V]) Get(key K) (*V, bool) {
	entry, ok := c.entries.Peek(key)
	if !ok || entry == nil {
		return nil, false
	}
	return entry.Value, true
}

func (c *BoundedCache[K, V]) Contains(key K) bool {
	return c.entries.Contains(key)
}

func (c *BoundedCache[K, V]) Len() int {
	return c.entries.Len()
}

func (c *BoundedCache[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the stored keys, earliest-inserted first. The next key to be
// evicted is the first one.
func (c *BoundedCache[K, V]) Keys() []K {
	return c.entries.Keys()
}
