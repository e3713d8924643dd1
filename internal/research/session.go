package research

import (
	"context"
	"sync"
	"time"

	"github.com/browserd/browserd/internal/appctx"
)

// Session tracks one in-flight or completed research run. Results are
// appended incrementally as pages finish; Snapshot is safe to call while
// the run is still in progress.
type Session struct {
	Query   string
	Options Options

	mu        sync.RWMutex
	results   []Result
	completed bool
	err       error
	cancel    context.CancelFunc
	stopCh    <-chan struct{}
	startedAt time.Time
}

// NewSession builds a session in its not-yet-started state. stopCh is the
// owning registry's shutdown signal; closing it cancels the run early,
// the same as Kill.
func NewSession(query string, opts Options, stopCh <-chan struct{}) *Session {
	return &Session{
		Query:     query,
		Options:   opts.withDefaults(),
		stopCh:    stopCh,
		startedAt: time.Now(),
	}
}

// Start launches the engine run in a background goroutine, detached from
// the calling request's own context so the run survives past the EXEC
// call that started it. Calling Start twice on the same session is a
// no-op — a session runs at most once.
func (s *Session) Start(ctx context.Context, engine *Engine) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := appctx.Detached(s.stopCh, time.Duration(s.Options.TimeoutSeconds)*time.Second)
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		err := engine.Run(runCtx, s.Query, s.Options, s.appendResult)
		s.mu.Lock()
		s.completed = true
		s.err = err
		s.mu.Unlock()
	}()
}

func (s *Session) appendResult(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// Snapshot returns a copy of the session's current results, completion
// state and terminal error.
func (s *Session) Snapshot() (results []Result, completed bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out, s.completed, s.err
}

// Kill aborts the session's background run, if any, and marks it
// completed. Safe to call more than once.
func (s *Session) Kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.completed = true
}
