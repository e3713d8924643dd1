package agent

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/browserd/browserd/internal/appctx"
	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/connection"
	"github.com/browserd/browserd/internal/llm"
	"github.com/browserd/browserd/internal/logging"
)

// runCeiling is the outer safety bound on a detached agent run,
// independent of MaxSteps: a generous multiple of the usual 5-minute
// background-task timeout, sized for a multi-step loop rather than a
// single subprocess start.
const runCeiling = 30 * time.Minute

// Registry tracks one agent Session per (connection, task number) key.
// Unlike the Browser Manager, an agent Registry is scoped to a single
// server instance rather than being a process-global singleton (the
// research Registry is constructed the same way).
type Registry struct {
	mu       sync.RWMutex
	sessions map[connection.Key]*Session

	browser *browser.Manager
	llm     llm.Client
	log     *logging.Logger
	stopCh  <-chan struct{}
}

// NewRegistry builds an empty registry bound to the shared browser and
// LLM client every session it creates will use. stopCh is the server's
// shutdown signal: it cancels every in-flight run when the server stops,
// instead of abandoning those goroutines.
func NewRegistry(mgr *browser.Manager, llmClient llm.Client, log *logging.Logger, stopCh <-chan struct{}) *Registry {
	return &Registry{
		sessions: make(map[connection.Key]*Session),
		browser:  mgr,
		llm:      llmClient,
		log:      log,
		stopCh:   stopCh,
	}
}

// FindOrCreate returns the existing session for key, or creates one.
func (r *Registry) FindOrCreate(key connection.Key, task, additionalInfo string, maxSteps int, tunables Tunables) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := NewSession(task, additionalInfo, maxSteps, tunables, r.browser, r.llm, r.log)
	r.sessions[key] = s
	return s
}

// Start runs the session for key to completion in a background goroutine,
// detached from the EXEC request's own context so the run survives past
// that call returning.
func (r *Registry) Start(ctx context.Context, key connection.Key) {
	if ctx.Err() != nil {
		return
	}
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if !ok {
		return
	}
	runCtx, cancel := appctx.Detached(r.stopCh, runCeiling)
	go func() {
		defer cancel()
		s.Run(runCtx)
	}()
}

// Read returns a snapshot of the session for key, or ok=false if absent.
func (r *Registry) Read(key connection.Key) (history HistoryList, completed bool, err error, ok bool) {
	r.mu.RLock()
	s, exists := r.sessions[key]
	r.mu.RUnlock()
	if !exists {
		return HistoryList{}, false, nil, false
	}
	history, completed, err = s.Snapshot()
	return history, completed, err, true
}

// Kill stops the session for key gracefully, then marks it completed
// regardless of whether the graceful stop succeeded. The session stays
// in the registry; CleanupConnection is what removes sessions.
func (r *Registry) Kill(key connection.Key) bool {
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	s.Kill()
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
	for k, s := range r.sessions {
		if k.ConnID != connID {
			continue
		}
		s.Kill()
		delete(r.sessions, k)
	}
}
