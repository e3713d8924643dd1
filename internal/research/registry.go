package research

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/browserd/browserd/internal/connection"
	"github.com/browserd/browserd/internal/logging"
)

// sessionExpiry is the supplemental auto-expiry window: a session still
// incomplete this long after creation is killed by the sweeper (its run
// is cancelled and it is marked completed; no error is recorded for the
// expiry). It runs alongside the per-session TimeoutSeconds the engine's
// own run context enforces; for a TimeoutSeconds above five minutes the
// sweeper ends the session first.
const sessionExpiry = 5 * time.Minute

const sweepInterval = 30 * time.Second

// Registry tracks one Session per (connection, task number) key.
type Registry struct {
	mu       sync.RWMutex
	sessions map[connection.Key]*entry
	engine   *Engine
	log      *logging.Logger
	stopCh   <-chan struct{}
}

type entry struct {
	session   *Session
	createdAt time.Time
}

// NewRegistry starts a registry bound to engine, with its auto-expiry
// sweeper already running against stopCh. stopCh is also handed to every
// session this registry creates, so a server shutdown cancels in-flight
// runs instead of abandoning their goroutines.
func NewRegistry(engine *Engine, log *logging.Logger, stopCh <-chan struct{}) *Registry {
	r := &Registry{
		sessions: make(map[connection.Key]*entry),
		engine:   engine,
		log:      log,
		stopCh:   stopCh,
	}
	go r.sweep(stopCh)
	return r
}

// FindOrCreate returns the existing session for key, or creates one from
// query/opts if none exists yet. Concurrent EXEC calls with the same key
// observe the same session instance.
func (r *Registry) FindOrCreate(key connection.Key, query string, opts Options) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[key]; ok {
		return e.session
	}
	s := NewSession(query, opts, r.stopCh)
	r.sessions[key] = &entry{session: s, createdAt: time.Now()}
	return s
}

// Start launches the session's background run, if it hasn't been started.
func (r *Registry) Start(ctx context.Context, key connection.Key) {
	r.mu.RLock()
	e, ok := r.sessions[key]
	r.mu.RUnlock()
	if !ok {
		return
	}
	e.session.Start(ctx, r.engine)
}

// Read returns a snapshot of the session for key, or ok=false if absent.
func (r *Registry) Read(key connection.Key) (results []Result, completed bool, err error, ok bool) {
	r.mu.RLock()
	e, exists := r.sessions[key]
	r.mu.RUnlock()
	if !exists {
		return nil, false, nil, false
	}
	results, completed, err = e.session.Snapshot()
	return results, completed, err, true
}

// Kill aborts the session for key and marks it completed, if present.
func (r *Registry) Kill(key connection.Key) bool {
	r.mu.RLock()
	e, ok := r.sessions[key]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.session.Kill()
	return true
}

// List returns the task numbers for connID, sorted ascending.
func (r *Registry) List(connID string) []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var numbers []uint32
	for k := range r.sessions {
		if k.ConnID == connID {
			numbers = append(numbers, k.Number)
		}
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

// CleanupConnection kills and removes every session belonging to connID.
// Idempotent: safe to call more than once, and safe to race with Kill.
func (r *Registry) CleanupConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, e := range r.sessions {
		if k.ConnID != connID {
			continue
		}
		e.session.Kill()
		delete(r.sessions, k)
	}
}

func (r *Registry) sweep(stopCh <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.expireStale()
		}
	}
}

func (r *Registry) expireStale() {
	r.mu.RLock()
	var stale []*entry
	for _, e := range r.sessions {
		if _, completed, _ := e.session.Snapshot(); !completed && time.Since(e.createdAt) > sessionExpiry {
			stale = append(stale, e)
		}
	}
	r.mu.RUnlock()

	for _, e := range stale {
		e.session.Kill()
		if r.log != nil {
			r.log.Warn("research session expired after " + sessionExpiry.String())
		}
	}
}
