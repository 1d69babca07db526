package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/kvstore"
)

const defaultIdleTTL = 30 * time.Minute

// Manager hands out one Store per browser session, loading it from kv on first use.
// Concurrent requests from the same session share the cached Store and its mutex.
type Manager struct {
	kv      kvstore.Store
	logger  *zap.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*managedStore
}

type managedStore struct {
	store    *Store
	lastUsed time.Time
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithIdleTTL evicts cached stores not used within ttl. Evicted carts reload from kv.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.idleTTL = ttl
		}
	}
}

// WithClock overrides the clock used for eviction.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager builds a Manager over kv. A nil kv keeps carts in memory.
func NewManager(kv kvstore.Store, logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		kv:       kv,
		logger:   logger,
		idleTTL:  defaultIdleTTL,
		now:      time.Now,
		sessions: make(map[string]*managedStore),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// For returns the cart of sessionID. The stored cart is read outside the manager lock.
// A store whose read failed is handed out but not cached, so the next request retries.
func (m *Manager) For(ctx context.Context, sessionID string) *Store {
	sessionID = strings.TrimSpace(sessionID)
	if store := m.cached(sessionID); store != nil {
		return store
	}

	var p Persister
	if m.kv != nil && sessionID != "" {
		p = NewKVPersister(m.kv, sessionID)
	}
	store := Load(ctx, p, m.logger.With(zap.String("cartKey", SessionKey(sessionID))))
	if store.loadFailed {
		return store
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ms, ok := m.sessions[sessionID]; ok {
		ms.lastUsed = m.now()
		return ms.store
	}
	m.sessions[sessionID] = &managedStore{store: store, lastUsed: m.now()}
	return store
}

func (m *Manager) cached(sessionID string) *Store {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(now)
	if ms, ok := m.sessions[sessionID]; ok {
		ms.lastUsed = now
		return ms.store
	}
	return nil
}

func (m *Manager) evictLocked(now time.Time) {
	for id, ms := range m.sessions {
		if now.Sub(ms.lastUsed) > m.idleTTL {
			delete(m.sessions, id)
		}
	}
}
