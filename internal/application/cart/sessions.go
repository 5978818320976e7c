package cart

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RegistryConfig controls how long idle sessions keep their synchronizer
type RegistryConfig struct {
	LocationID        string
	FulfillmentMethod string
	IdleTimeout       time.Duration
	CleanupInterval   time.Duration
	// OnEvict is called with the id of every evicted session
	OnEvict func(sessionID string)
}

// Registry hands out one Synchronizer per session, creating them lazily.
// A background goroutine evicts synchronizers idle for longer than IdleTimeout.
// The remote cart identity survives eviction in the identity store.
type Registry struct {
	cfg  RegistryConfig
	deps Dependencies
	now  func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Synchronizer
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRegistry creates a registry and starts its cleanup loop
func NewRegistry(cfg RegistryConfig, deps Dependencies) *Registry {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := &Registry{
		cfg:      cfg,
		deps:     deps,
		now:      time.Now,
		sessions: make(map[string]*Synchronizer),
		stopChan: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Get returns the synchronizer of a session, creating it on first use
func (r *Registry) Get(sessionID string) *Synchronizer {
	now := r.now()

	r.mu.Lock()
	synchronizer, ok := r.sessions[sessionID]
	if !ok {
		synchronizer = NewSynchronizer(sessionID, r.cfg.LocationID, r.cfg.FulfillmentMethod, r.deps)
		r.sessions[sessionID] = synchronizer
	}
	r.mu.Unlock()

	synchronizer.Touch(now)
	return synchronizer
}

// Lookup returns the synchronizer of a session without creating one
func (r *Registry) Lookup(sessionID string) (*Synchronizer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	synchronizer, ok := r.sessions[sessionID]
	return synchronizer, ok
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops every synchronizer not used since IdleTimeout before now
// and not busy with a request. It returns how many were dropped.
func (r *Registry) EvictIdle(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	var evicted []string
	for id, synchronizer := range r.sessions {
		if synchronizer.IsLoading() || synchronizer.LastUsed().After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		evicted = append(evicted, id)
	}
	r.mu.Unlock()

	if r.cfg.OnEvict != nil {
		for _, id := range evicted {
			r.cfg.OnEvict(id)
		}
	}
	return len(evicted)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
	return nil
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			if n := r.EvictIdle(r.now()); n > 0 {
				r.deps.Logger.Debug("evicted idle cart sessions", zap.Int("count", n))
			}
		}
	}
}
