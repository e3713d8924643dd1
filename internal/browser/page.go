package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// CurrentPage returns the context for the system's single open tab.
// Returns ErrNotRunning if navigate has never been called successfully.
func (m *Manager) CurrentPage() (context.Context, error) {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()

	if h == nil {
		return nil, ErrNotRunning
	}
	return h.PageCtx, nil
}

// Run executes fn against the current page with a bounded timeout,
// propagating early cancellation from callCtx. The Manager's own mutex is
// not held across this call — the lock only serializes handle
// acquisition, never page operations themselves, so multiple page
// operations can run concurrently.
func (m *Manager) Run(callCtx context.Context, timeout time.Duration, fn chromedp.ActionFunc) error {
	pageCtx, err := m.CurrentPage()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(pageCtx, timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		select {
		case <-callCtx.Done():
			cancel()
		case <-done:
		}
	}()
	defer close(done)

	return chromedp.Run(runCtx, fn)
}
