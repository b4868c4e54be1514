package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronized(t *testing.T) {
	cache, err := NewSynchronizedCache[string, string](&BoundedCacheOptions[string, string]{
		Policy:      NewDisplayLengthPolicy[string, string](8),
		MaxCapacity: 2,
	})
	require.NoError(t, err)

	assert.False(t, cache.Insert("a", "this is longer than 8"))
	assert.True(t, cache.Insert("a", "short"))
	assert.True(t, cache.Insert("b", "small"))
	assert.True(t, cache.Insert("c", "tiny"))
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 2, cache.Capacity())
	assert.Equal(t, []string{"b", "c"}, cache.Keys())

	value, ok := cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, "tiny", *value)
	assert.False(t, cache.Contains("a"))
}

func TestSynchronizedInvalidCapacity(t *testing.T) {
	cache, err := NewSynchronizedCache[string, string](&BoundedCacheOptions[string, string]{})
	assert.Nil(t, cache)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestSynchronizedConcurrentInsert(t *testing.T) {
	const capacity = 10

	var evictions int
	cache, err := NewSynchronizedCache[string, int](&BoundedCacheOptions[string, int]{
		MaxCapacity: capacity,
		OnEvict: func(string, int) {
			evictions++
		},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("%d:%d", i, j)
				assert.True(t, cache.Insert(key, j))
				assert.LessOrEqual(t, cache.Len(), capacity)
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, cache.Len())
	// every key is distinct, so all but the last capacity inserts were evicted
	assert.Equal(t, 8*200-capacity, evictions)
}

func TestCacheInterface(t *testing.T) {
	var _ Cache[string, string] = &BoundedCache[string, string]{}
	var _ Cache[string, string] = &SynchronizedCache[string, string]{}
}
