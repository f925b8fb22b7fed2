// Package shardmap implements a fixed-shard concurrent map: each key
// hashes to one of a power-of-two number of shards, and each shard has
// its own RWMutex. Reads and writes to different shards never contend.
//
// The shape follows a single RWMutex guarding a plain Go map, with
// ForEach taking a snapshot under the lock and then iterating outside
// it. Values here are kept as plain structs, so a map read already
// returns an independent copy and no deep-copy step is needed.
package shardmap

import "sync"

// Key constrains the map to the small integer id types the engine uses.
type Key interface {
	~uint16 | ~uint32 | ~uint64 | ~int
}

type shard[K Key, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// Map is a sharded concurrent map from K to V. The zero value is not
// usable; construct with New.
type Map[K Key, V any] struct {
	shards []*shard[K, V]
	mask   uint64
}

// New constructs a Map with shardCount shards. shardCount must be a
// power of two; it is rounded up to the next one if it isn't.
func New[K Key, V any](shardCount int) *Map[K, V] {
	if shardCount < 1 {
		shardCount = 1
	}
	shardCount = nextPowerOfTwo(shardCount)

	m := &Map[K, V]{
		shards: make([]*shard[K, V], shardCount),
		mask:   uint64(shardCount - 1),
	}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{data: make(map[K]V)}
	}
	return m
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[uint64(key)&m.mask]
}

// Get returns the value stored for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Put unconditionally stores value under key.
func (m *Map[K, V]) Put(key K, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Update runs fn against the current value for key (and whether it was
// present) under the shard's write lock, then stores fn's result if fn
// asks to keep it. This is the only safe way to do a check-then-mutate
// step (e.g. "load account, validate, adjust balance, store") without a
// race against a concurrent writer touching the same key.
func (m *Map[K, V]) Update(key K, fn func(current V, ok bool) (next V, store bool, err error)) error {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[key]
	next, store, err := fn(current, ok)
	if err != nil {
		return err
	}
	if store {
		s.data[key] = next
	}
	return nil
}

// Delete removes key, if present.
func (m *Map[K, V]) Delete(key K) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Len returns the total number of entries across all shards. Since
// shards are locked one at a time, this is a point-in-time estimate
// under concurrent writers, not an atomic snapshot of the whole map.
func (m *Map[K, V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.data)
		s.mu.RUnlock()
	}
	return total
}

// ForEach calls fn once per entry, in shard order. Each shard is
// snapshotted into a slice under its own read lock and then iterated
// with no lock held, so fn may safely call back into the Map (e.g. to
// read a different key) without deadlocking, at the cost of possibly
// missing or double-seeing concurrent mutations within a shard. If fn
// returns false, iteration stops early.
func (m *Map[K, V]) ForEach(fn func(key K, value V) bool) {
	type entry struct {
		key   K
		value V
	}
	for _, s := range m.shards {
		s.mu.RLock()
		snapshot := make([]entry, 0, len(s.data))
		for k, v := range s.data {
			snapshot = append(snapshot, entry{k, v})
		}
		s.mu.RUnlock()

		for _, e := range snapshot {
			if !fn(e.key, e.value) {
				return
			}
		}
	}
}
