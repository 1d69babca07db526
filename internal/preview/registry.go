package preview

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/domain"
)

const defaultRegistryTTL = 20 * time.Minute

type registryKey struct {
	session  string
	template domain.ID
}

type registryEntry struct {
	coord    *Coordinator
	lastUsed time.Time
}

// Registry holds one Coordinator per (browser session, base template) so concurrent htmx
// requests from the same editor share a sequence counter.
type Registry struct {
	renderer Renderer
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[registryKey]*registryEntry
}

// NewRegistry builds a registry; coordinators idle longer than ttl are dropped.
func NewRegistry(r Renderer, logger *zap.Logger, ttl time.Duration) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultRegistryTTL
	}
	return &Registry{
		renderer: r,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[registryKey]*registryEntry),
	}
}

// Get returns the coordinator for the editing session, creating it when missing.
func (r *Registry) Get(sessionID string, templateID domain.ID) *Coordinator {
	key := registryKey{session: sessionID, template: templateID}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, e := range r.entries {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.entries, k)
		}
	}
	if e, ok := r.entries[key]; ok {
		e.lastUsed = now
		return e.coord
	}
	coord := NewCoordinator(r.renderer, r.logger.With(
		zap.String("session", sessionID),
		zap.String("templateId", templateID.String()),
	))
	r.entries[key] = &registryEntry{coord: coord, lastUsed: now}
	return coord
}

// Len reports the number of live coordinators.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
