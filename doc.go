/*
Package cache provides a capacity-bounded key/value cache with a pluggable
admission policy.

Every insert is first offered to an AdmissionPolicy. Rejected pairs are never
stored. Admitted pairs are stored, and when the cache is full and the key is
new, the earliest-inserted key still present is evicted to make room.
Overwriting an existing key neither evicts nor changes its position.

BoundedCache requires exclusive access for Insert; SynchronizedCache adds the
locking needed to share one between goroutines. Policies themselves must be
safe for concurrent use, since one policy may back several caches.

RedisFeed consumes entries published on a Redis channel and offers them to a
cache, applying the same admission and eviction rules. The feed inserts from
its receive goroutine and from Backfill callers, but never from two at once;
a target the host also reads while the feed runs must be a SynchronizedCache.
*/
package cache
