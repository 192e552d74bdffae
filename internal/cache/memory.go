package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const defaultSweepInterval = time.Minute

type memoryEntry struct {
	value []byte
	// expiresAt is unix nanos, updated atomically so concurrent readers can
	// slide the window without taking the map's write lock.
	expiresAt atomic.Int64
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.UnixNano() > e.expiresAt.Load()
}

// Memory is the in-process Store. Reads take only the shared lock; the
// per-entry expiration clock is atomic, so unrelated keys never serialize
// on a global write lock. A background janitor sweeps expired entries.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemory returns a running Memory store. Call Close to stop its janitor.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
	}
	go m.janitor(defaultSweepInterval)
	return m
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
}

// Get returns the entry's value and slides its expiration window. An expired
// entry is a miss; its removal is left to the janitor.
func (m *Memory) Get(_ context.Context, key string, slide time.Duration) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	now := time.Now()
	if e.expired(now) {
		return nil, false, nil
	}
	if slide > 0 {
		e.expiresAt.Store(now.Add(slide).UnixNano())
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &memoryEntry{value: value}
	e.expiresAt.Store(time.Now().Add(ttl).UnixNano())

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) RemoveByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}

// Len reports the number of entries including not-yet-swept expired ones.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the janitor. The store remains usable afterwards; expired
// entries are then only dropped lazily on overwrite.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
