package cache

import (
	"sync"
	"time"
)

// entry is a stored value with its expiration
type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// expiringMap is a mutex-guarded map whose entries expire. A background
// goroutine drops expired entries until close is called.
type expiringMap[T any] struct {
	mu        sync.RWMutex
	entries   map[string]entry[T]
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newExpiringMap[T any](cleanupInterval time.Duration) *expiringMap[T] {
	m := &expiringMap[T]{
		entries:  make(map[string]entry[T]),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	m.wg.Add(1)
	go m.cleanupLoop(cleanupInterval)
	return m
}

func (m *expiringMap[T]) get(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// set stores value under key; a non-positive ttl never expires
func (m *expiringMap[T]) set(key string, value T, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry[T]{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
}

// touch returns the live value under key and restarts its ttl in the same
// critical section. Missing or expired keys are left alone.
func (m *expiringMap[T]) touch(key string, ttl time.Duration) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || e.expired(now) {
		var zero T
		return zero, false
	}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
		m.entries[key] = e
	}
	return e.value, true
}

func (m *expiringMap[T]) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *expiringMap[T]) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *expiringMap[T]) close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}

func (m *expiringMap[T]) cleanupLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *expiringMap[T]) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
}
