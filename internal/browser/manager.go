package browser

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/browserd/browserd/internal/logging"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Manager is the process-global singleton owning the one Chromium handle.
// Construction is race-free: Get() returns the same *Manager for the life
// of the process via sync.Once, and the handle itself is built lazily on
// first GetOrLaunch, guarded by a plain mutex — the idiomatic Go
// substitute for a once-cell wrapping a mutex-guarded optional value.
type Manager struct {
	mu     sync.Mutex
	handle *Handle
	opts   LaunchOptions
	log    *logging.Logger
}

var (
	managerOnce sync.Once
	managerInst *Manager
)

// Get returns the process-wide Manager, constructing it on first call.
func Get(log *logging.Logger, opts LaunchOptions) *Manager {
	managerOnce.Do(func() {
		managerInst = &Manager{opts: opts, log: log}
	})
	return managerInst
}

// NewManager constructs a standalone Manager, bypassing the process
// global. Exists for tests that want an isolated instance.
func NewManager(log *logging.Logger, opts LaunchOptions) *Manager {
	return &Manager{opts: opts, log: log}
}

// GetOrLaunch returns the live handle, launching Chromium on first call.
// Concurrent first-callers serialize on m.mu; later callers pay only the
// cost of acquiring an uncontended mutex.
func (m *Manager) GetOrLaunch(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return m.handle, nil
	}

	h, err := Launch(ctx, m.log, m.opts)
	if err != nil {
		return nil, err
	}
	m.handle = h
	return h, nil
}

// ResetPage closes every existing target on the shared browser and
// installs a fresh page context, rooted on the same allocator, as the
// Manager's current page — then returns it. A CDP target that has been
// closed cannot be reused, so Navigate calls this before issuing its own
// navigation rather than reusing the context whose target it just closed.
func (m *Manager) ResetPage(ctx context.Context) (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.handle == nil {
		return nil, ErrNotRunning
	}
	h := m.handle

	if targets, err := chromedp.Targets(h.PageCtx); err == nil {
		for _, t := range targets {
			if t.Type != "page" {
				continue
			}
			_ = chromedp.Run(h.PageCtx, target.CloseTarget(t.TargetID))
		}
	}

	newPageCtx, newCancel := chromedp.NewContext(h.AllocCtx)
	if err := chromedp.Run(newPageCtx, chromedp.Navigate("about:blank")); err != nil {
		newCancel()
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	oldCancel := h.pageCancel
	h.PageCtx = newPageCtx
	h.pageCancel = newCancel
	oldCancel()

	return newPageCtx, nil
}

// NewPage creates an independent page context rooted on the shared
// allocator, separate from the Manager's own current page. Callers that
// need a dedicated tab instead of the single shared one — the research
// engine's concurrent per-URL workers, for instance — use this, and must
// call the returned cancel func when done with it.
func (m *Manager) NewPage(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()
	if h == nil {
		return nil, nil, ErrNotRunning
	}

	pageCtx, cancel := chromedp.NewContext(h.AllocCtx)
	if err := chromedp.Run(pageCtx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	return pageCtx, cancel, nil
}

// IsRunning reports whether a browser handle currently exists, without
// blocking on the launch path.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

// Shutdown is idempotent. If a handle exists it: (1) requests CDP close,
// (2) the close call itself blocks until the process exits, (3) removes
// the scratch profile directory, (4) drops the handle, cancelling the
// allocator context and aborting chromedp's event pump. Sub-step errors
// are logged, never returned — shutdown must not fail the caller.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return
	}
	h := m.handle
	m.handle = nil

	if err := h.Close(ctx); err != nil {
		m.log.Warn("error closing browser", zap.Error(err))
	}
	if h.ownsProfile {
		if err := os.RemoveAll(h.ProfileDir); err != nil {
			m.log.Warn("error removing scratch profile directory", zap.String("dir", h.ProfileDir), zap.Error(err))
		}
	}
}
