package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/llm"
	"github.com/browserd/browserd/internal/logging"
)

// Session is one browser_agent run: its task, its actor, and the history
// of steps it has taken so far.
type Session struct {
	Task     string
	MaxSteps int

	actor *Actor

	mu        sync.RWMutex
	history   HistoryList
	completed bool
	err       error
}

// NewSession builds and starts the actor for a new agent run.
func NewSession(task, additionalInfo string, maxSteps int, tunables Tunables, mgr *browser.Manager, llmClient llm.Client, log *logging.Logger) *Session {
	caller := &BrowserToolCaller{Browser: mgr, Log: log}
	inner := NewInner(task, additionalInfo, tunables, caller, mgr, llmClient, log)
	return &Session{
		Task:     task,
		MaxSteps: maxSteps,
		actor:    NewActor(inner),
	}
}

// Run drives the session to completion: it issues RunStep sequentially
// up to MaxSteps times, stopping early the moment any action in a step
// is named "done" (any casing) or the run is externally stopped.
// MaxSteps == 0 returns immediately with an empty, incomplete history.
// ctx should already be detached from the EXEC request that started the
// run (see Registry.Start) — the run is expected to keep going well past
// that request's own lifetime.
func (s *Session) Run(ctx context.Context) {
	if s.MaxSteps <= 0 {
		s.mu.Lock()
		s.completed = true
		s.mu.Unlock()
		return
	}

	for step := 0; step < s.MaxSteps; step++ {
		select {
		case <-ctx.Done():
			s.finish(ctx.Err())
			return
		default:
		}

		output, err := s.actor.RunStep(ctx)
		if err != nil {
			s.finish(err)
			return
		}

		isComplete := containsDoneAction(output.Action)
		s.mu.Lock()
		s.history.Items = append(s.history.Items, HistoryItem{
			StepIndex:  step,
			Timestamp:  time.Now(),
			Output:     output,
			IsComplete: isComplete,
		})
		s.mu.Unlock()

		if isComplete {
			s.finish(nil)
			return
		}
	}
	s.finish(nil)
}

func containsDoneAction(actions []ActionModel) bool {
	for _, a := range actions {
		if strings.EqualFold(a.Name, "done") {
			return true
		}
	}
	return false
}

func (s *Session) finish(err error) {
	s.mu.Lock()
	s.completed = true
	s.err = err
	s.mu.Unlock()
}

// Snapshot returns a copy of the session's history, completion state,
// and terminal error.
func (s *Session) Snapshot() (HistoryList, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]HistoryItem, len(s.history.Items))
	copy(items, s.history.Items)
	return HistoryList{Items: items}, s.completed, s.err
}

// Kill stops the run gracefully first (bounded by the actor's 5s stop
// deadline), then marks the session completed regardless of whether the
// graceful stop succeeded — the guillotine fallback the registry's Kill
// relies on.
func (s *Session) Kill() {
	_ = s.actor.Stop()
	s.mu.Lock()
	s.completed = true
	s.mu.Unlock()
}

// IsRunning reports whether the session's actor is still alive.
func (s *Session) IsRunning() bool {
	return s.actor.IsRunning()
}
