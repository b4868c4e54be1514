package cache

import (
	"errors"
)

// ErrInvalidCapacity is returned by the cache constructors when the configured
// maximum capacity is zero or negative.
var ErrInvalidCapacity = errors.New("max capacity must be positive")

type CacheEntry[K comparable, V any] struct {
	Key   K
	Value *V
}

type CacheEventType int

const (
	CacheEventAdmitted CacheEventType = iota
	CacheEventRejected
)

func (t CacheEventType) String() string {
	switch t {
	case CacheEventAdmitted:
		return "admitted"
	case CacheEventRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type CacheEvent[K comparable, V any] struct {
	Entry *CacheEntry[K, V]
	Type  CacheEventType
}

// Cache is the insert/lookup contract shared by BoundedCache and
// SynchronizedCache. Feeds only depend on this.
type Cache[K comparable, V any] interface {
	Insert(K, V) bool
	Get(K) (*V, bool)
	Len() int
}
