package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/browserd/browserd/internal/logging"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// benign CDP deserialization error substrings, filtered to debug level; a
// known upstream quirk where Chrome emits events chromedp's protocol
// bindings don't (yet) recognize.
var benignHandlerErrors = []string{
	"data did not match any variant of untagged enum Message",
	"Failed to deserialize WS response",
}

// LaunchOptions configures a Chromium launch.
type LaunchOptions struct {
	Headless        bool
	ProfileDir      string // if empty, a scratch directory is created
	DisableSecurity bool
	ChromiumPath    string // overrides CHROMIUM_PATH / search-path resolution
}

// Handle is a live Chromium allocator plus the blank tab context used for
// all page operations, and the scratch profile directory it owns.
type Handle struct {
	AllocCtx    context.Context
	allocCancel context.CancelFunc
	PageCtx     context.Context
	pageCancel  context.CancelFunc
	ProfileDir  string
	ownsProfile bool
}

// Launch locates (or fails to locate) a Chromium executable, creates a
// scratch profile directory, and starts an allocator plus one blank tab.
// On any failure the scratch directory is unconditionally removed via an
// RAII-style guard (a deferred cleanup that runs unless launch succeeds).
func Launch(ctx context.Context, log *logging.Logger, opts LaunchOptions) (*Handle, error) {
	execPath := opts.ChromiumPath
	if execPath == "" {
		found, err := findExecutable()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		execPath = found
	}

	profileDir := opts.ProfileDir
	ownsProfile := false
	if profileDir == "" {
		profileDir = filepath.Join(os.TempDir(), fmt.Sprintf("browserd-profile-%d-%d-%s",
			os.Getpid(), time.Now().UnixNano(), uuid.NewString()[:8]))
		ownsProfile = true
	}
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoError, err)
	}

	guardActive := true
	defer func() {
		if guardActive && ownsProfile {
			if err := os.RemoveAll(profileDir); err != nil {
				log.Warn("failed to remove scratch profile directory after launch failure",
					zap.String("dir", profileDir), zap.Error(err))
			}
		}
	}()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.UserDataDir(profileDir),
		chromedp.UserAgent(ChromeUserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("headless", opts.Headless),
	)
	for _, arg := range stealthArgs {
		name, val := splitFlag(arg)
		allocOpts = append(allocOpts, chromedp.Flag(name, val))
	}
	if opts.DisableSecurity {
		log.Warn("disable_security is set: weakening browser protections",
			zap.String("profile_dir", profileDir))
		for _, arg := range disableSecurityArgs {
			name, val := splitFlag(arg)
			allocOpts = append(allocOpts, chromedp.Flag(name, val))
		}
	}
	if shouldDisableSandbox() || opts.DisableSecurity {
		for _, arg := range containerSandboxArgs {
			name, val := splitFlag(arg)
			allocOpts = append(allocOpts, chromedp.Flag(name, val))
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	pageCtx, pageCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			msg := fmt.Sprintf(format, args...)
			for _, benign := range benignHandlerErrors {
				if strings.Contains(msg, benign) {
					log.Debug("suppressed benign CDP deserialization error", zap.String("detail", msg))
					return
				}
			}
			log.Error("browser event pump error", zap.String("detail", msg))
		}),
	)

	if err := chromedp.Run(pageCtx, chromedp.Navigate("about:blank")); err != nil {
		pageCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	guardActive = false
	return &Handle{
		AllocCtx:    allocCtx,
		allocCancel: allocCancel,
		PageCtx:     pageCtx,
		pageCancel:  pageCancel,
		ProfileDir:  profileDir,
		ownsProfile: ownsProfile,
	}, nil
}

// Close requests CDP close on the current tab/allocator and cancels both
// contexts, aborting the event pump goroutines chromedp owns internally.
func (h *Handle) Close(ctx context.Context) error {
	var closeErr error
	if err := chromedp.Cancel(h.PageCtx); err != nil {
		closeErr = err
	}
	h.pageCancel()
	h.allocCancel()
	return closeErr
}

// findExecutable implements the resolution order: CHROMIUM_PATH env var,
// then a platform-specific list of common install locations, then `which`
// on Unix for a handful of common binary names.
func findExecutable() (string, error) {
	if p := os.Getenv("CHROMIUM_PATH"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	for _, p := range candidatePaths() {
		expanded := expandPath(p)
		if _, err := os.Stat(expanded); err == nil {
			return expanded, nil
		}
	}

	if runtime.GOOS != "windows" {
		for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "chrome"} {
			if p, err := exec.LookPath(name); err == nil {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("no chromium/chrome executable found on PATH or in common install locations")
}

func candidatePaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`%PROGRAMFILES%\Google\Chrome\Application\chrome.exe`,
			`%PROGRAMFILES(X86)%\Google\Chrome\Application\chrome.exe`,
			`%LOCALAPPDATA%\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Chromium\Application\chrome.exe`,
		}
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"~/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"~/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/opt/homebrew/bin/chromium",
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/usr/local/bin/chromium",
			"/opt/google/chrome/chrome",
		}
	}
}

// expandPath expands a leading "~" and, on Windows, %VAR% environment
// variable tokens.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		return p
	}
	if runtime.GOOS == "windows" && strings.Contains(p, "%") {
		return expandWindowsEnvVars(p)
	}
	return p
}

func expandWindowsEnvVars(p string) string {
	var b strings.Builder
	runes := []rune(p)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			b.WriteRune(runes[i])
			continue
		}
		end := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '%' {
				end = j
				break
			}
		}
		if end == -1 {
			b.WriteRune('%')
			continue
		}
		name := string(runes[i+1 : end])
		if val := os.Getenv(name); val != "" {
			b.WriteString(val)
		} else {
			b.WriteRune('%')
			b.WriteString(name)
			b.WriteRune('%')
		}
		i = end
	}
	return b.String()
}

// shouldDisableSandbox detects a containerized environment, where setuid
// sandboxing does not work.
func shouldDisableSandbox() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, ok := os.LookupEnv("container"); ok {
		return true
	}
	if _, ok := os.LookupEnv("KUBERNETES_SERVICE_HOST"); ok {
		return true
	}
	return false
}

// splitFlag turns a "--name" or "--name=value" string into the
// (name, value) pair chromedp.Flag expects. Bare flags are passed as
// boolean true (e.g. "--mute-audio" -> Flag("mute-audio", true)).
func splitFlag(arg string) (string, interface{}) {
	arg = strings.TrimPrefix(arg, "--")
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		name := arg[:idx]
		val := arg[idx+1:]
		if b, err := strconv.ParseBool(val); err == nil {
			return name, b
		}
		return name, val
	}
	return arg, true
}
