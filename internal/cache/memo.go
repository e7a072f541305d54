package cache

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

// Key identifies a memoized value by the xxh3-128 digest of its inputs.
type Key [16]byte

// KeyOf hashes the literal parts. Each part is length-prefixed so
// ("ab","c") and ("a","bc") differ.
func KeyOf(parts ...string) Key {
	h := xxh3.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.WriteString(p)
	}
	return Key(h.Sum128().Bytes())
}

// KeyOfBytes hashes raw content.
func KeyOfBytes(b []byte) Key {
	return Key(xxh3.Hash128(b).Bytes())
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Stats counts lookups.
type Stats struct {
	Hits    int64 `json:"hits" yaml:"hits"`
	Misses  int64 `json:"misses" yaml:"misses"`
	Entries int   `json:"entries" yaml:"entries"`
}

// Memo is a process-local memo table. With maxEntries > 0 it evicts the
// least recently used entry once full; otherwise entries live until Purge.
// Safe for concurrent use.
type Memo[V any] struct {
	mu      sync.Mutex
	max     int
	lru     *simplelru.LRU[Key, V]
	hits    int64
	misses  int64
	flights singleflight.Group
}

// New returns an empty Memo bounded to maxEntries (0 = unbounded).
func New[V any](maxEntries int) *Memo[V] {
	if maxEntries < 0 {
		maxEntries = 0
	}
	m := &Memo[V]{max: maxEntries}
	m.lru = m.newLRU()
	return m
}

func (m *Memo[V]) newLRU() *simplelru.LRU[Key, V] {
	size := m.max
	if size == 0 {
		size = math.MaxInt
	}
	// NewLRU only fails for a non-positive size.
	l, _ := simplelru.NewLRU[Key, V](size, nil)
	return l
}

// Get returns the cached value for k.
func (m *Memo[V]) Get(k Key) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lru.Get(k)
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return v, ok
}

// Put stores v under k.
func (m *Memo[V]) Put(k Key, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Add(k, v)
}

// Do returns the cached value for k or computes it with fn. Concurrent
// callers for the same key share one computation. Errors are not cached.
func (m *Memo[V]) Do(k Key, fn func() (V, error)) (V, error) {
	if v, ok := m.Get(k); ok {
		return v, nil
	}
	res, err, _ := m.flights.Do(k.String(), func() (any, error) {
		if v, ok := m.peek(k); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return v, err
		}
		m.Put(k, v)
		return v, nil
	})
	v, _ := res.(V)
	return v, err
}

func (m *Memo[V]) peek(k Key) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Peek(k)
}

// Len returns the number of entries.
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Stats returns lookup counters.
func (m *Memo[V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Hits: m.hits, Misses: m.misses, Entries: m.lru.Len()}
}

// Purge drops every entry and resets the counters.
func (m *Memo[V]) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Purge()
	m.hits, m.misses = 0, 0
}
