package redisession

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

func (r memoryRecord) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && now.After(r.expiresAt)
}

// MemoryStore implements Store using in-memory storage with per-key
// expiration. Intended for tests and local development; it mirrors the
// Redis semantics the handler relies on, including SET clearing a key's
// previous TTL.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	ticker  *time.Ticker
	done    chan struct{}
}

// NewMemoryStore creates an in-memory store. When cleanupInterval is
// positive a background goroutine drops expired records periodically;
// records are also dropped lazily on Get either way.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		records: make(map[string]memoryRecord),
		done:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

// Get returns the value stored under key, dropping it first if expired.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	record, exists := m.records[key]
	m.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if record.expired(time.Now()) {
		m.mu.Lock()
		delete(m.records, key)
		m.mu.Unlock()
		return nil, false, nil
	}

	value := make([]byte, len(record.value))
	copy(value, record.value)
	return value, true, nil
}

// Set stores a copy of value under key with no expiration, matching the
// Redis behavior of SET discarding any previous TTL.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[key] = memoryRecord{value: stored}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

// Expire sets the remaining lifetime of key. Missing keys are ignored, as
// with the Redis EXPIRE command.
func (m *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.records[key]
	if !exists || record.expired(time.Now()) {
		return nil
	}

	record.expiresAt = time.Now().Add(ttl)
	m.records[key] = record
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// TTL reports the remaining lifetime of key. The second return is false when
// the key does not exist or carries no expiration.
func (m *MemoryStore) TTL(key string) (time.Duration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.records[key]
	if !exists || record.expiresAt.IsZero() || record.expired(time.Now()) {
		return 0, false
	}
	return time.Until(record.expiresAt), true
}

// DeleteExpired removes all expired records.
func (m *MemoryStore) DeleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, record := range m.records {
		if record.expired(now) {
			delete(m.records, key)
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (m *MemoryStore) Close() error {
	if m.ticker != nil {
		m.ticker.Stop()
		select {
		case <-m.done:
		default:
			close(m.done)
		}
	}
	return nil
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.DeleteExpired()
		case <-m.done:
			return
		}
	}
}
