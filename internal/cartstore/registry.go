package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"printshop-storefront/internal/repository/slot"
)

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// pendingOpen marks a slot read in flight. Close flips cancelled so the
// finished read does not resurrect the session.
type pendingOpen struct {
	cancelled bool
}

// Registry owns one Store per session. A store is created on first use and
// lives until the session is closed, sits idle past EvictIdle's limit, or the
// registry shuts down.
type Registry struct {
	repo   slot.Repository
	logger zerolog.Logger

	mu      sync.Mutex
	stores  map[string]*registryEntry
	opening map[string]*pendingOpen
	sfg     singleflight.Group

	now func() time.Time
}

func NewRegistry(repo slot.Repository, logger zerolog.Logger) *Registry {
	return &Registry{
		repo:    repo,
		logger:  logger,
		stores:  make(map[string]*registryEntry),
		opening: make(map[string]*pendingOpen),
		now:     time.Now,
	}
}

// Open returns the session's store, reading its slot on first use. Concurrent
// first opens of the same session share a single slot read.
func (r *Registry) Open(ctx context.Context, sessionID string) *Store {
	if s, ok := r.touch(sessionID); ok {
		return s
	}

	// The loaded store outlives this request, so the read must not be cut short
	// by the caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, _, _ := r.sfg.Do(sessionID, func() (interface{}, error) {
		r.mu.Lock()
		if e, ok := r.stores[sessionID]; ok {
			e.lastUsed = r.now()
			r.mu.Unlock()
			return e.store, nil
		}
		pending := &pendingOpen{}
		r.opening[sessionID] = pending
		r.mu.Unlock()

		s := Open(loadCtx, r.repo, slot.CartKey(sessionID), r.logger)

		r.mu.Lock()
		if r.opening[sessionID] == pending {
			delete(r.opening, sessionID)
		}
		if pending.cancelled {
			r.mu.Unlock()
			s.Close()
			r.logger.Debug().Str("session_id", sessionID).Msg("cart store closed while opening")
			return s, nil
		}
		r.stores[sessionID] = &registryEntry{store: s, lastUsed: r.now()}
		r.mu.Unlock()
		r.logger.Debug().Str("session_id", sessionID).Int("items", s.ItemCount()).Msg("cart store opened")
		return s, nil
	})
	return v.(*Store)
}

func (r *Registry) touch(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.stores[sessionID]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.store, true
}

// Close ends a session: subscribers are released and the in-memory store is
// dropped. A slot read still in flight for the session is discarded. The
// persisted slot is left untouched.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	if p, ok := r.opening[sessionID]; ok {
		p.cancelled = true
	}
	e, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	r.mu.Unlock()
	if ok {
		e.store.Close()
	}
}

// EvictIdle closes stores not opened within maxIdle that have no live
// subscribers, and returns how many it closed. Their slots stay persisted, so
// the next Open reloads the cart.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Store
	for id, e := range r.stores {
		if e.lastUsed.After(cutoff) || e.store.Subscribers() > 0 {
			continue
		}
		delete(r.stores, id)
		idle = append(idle, e.store)
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// Shutdown closes every open store and discards reads still in flight.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	entries := r.stores
	r.stores = make(map[string]*registryEntry)
	for _, p := range r.opening {
		p.cancelled = true
	}
	r.mu.Unlock()
	for _, e := range entries {
		e.store.Close()
	}
}

// Len reports the number of open stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
