package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/llm"
	"github.com/browserd/browserd/internal/logging"
	"github.com/browserd/browserd/internal/tools"
	"go.uber.org/zap"
)

const visionPrompt = "Describe what is visible in this browser screenshot: " +
	"the page layout, any visible text, forms, buttons, and anything " +
	"relevant to completing a browser automation task."

const sampleContentChars = 500

// Inner holds everything one agent run needs across its steps: the task
// description, tunables captured at creation, the loopback tool caller,
// the LLM client, and the small amount of state that must survive
// between ProcessStep calls (the stop flag and the cached vision
// description).
type Inner struct {
	Task           string
	AdditionalInfo string
	Tunables       Tunables

	caller  ToolCaller
	browser *browser.Manager
	llm     llm.Client
	log     *logging.Logger

	mu               sync.Mutex
	stopped          bool
	lastValidState   *AgentOutput
	visionCache      string
	visionCacheValid bool

	// previousActionResults accumulates every step's ActionResult list.
	// Nothing currently reads this back into a prompt; it exists as
	// scaffolding for a future "reflect on prior failures" step per the
	// open question about the same field in the system this was modeled
	// on. Left write-only rather than removed, and rather than guessed at.
	previousActionResults [][]ActionResult
}

// NewInner builds the per-run agent core.
func NewInner(task, additionalInfo string, tunables Tunables, caller ToolCaller, browserMgr *browser.Manager, llmClient llm.Client, log *logging.Logger) *Inner {
	return &Inner{
		Task:           task,
		AdditionalInfo: additionalInfo,
		Tunables:       tunables.withDefaults(),
		caller:         caller,
		browser:        browserMgr,
		llm:            llmClient,
		log:            log,
	}
}

// Stop raises the cooperative stop flag checked at the top of every step.
func (in *Inner) Stop() {
	in.mu.Lock()
	in.stopped = true
	in.mu.Unlock()
}

func (in *Inner) isStopped() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stopped
}

// LastValidState returns the most recent successfully-decided step
// output, or nil if no step has completed yet.
func (in *Inner) LastValidState() *AgentOutput {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lastValidState
}

// ProcessStep runs one perceive → decide → act cycle and returns the
// step's output. A step only fails (returns a non-nil error) when the
// stop flag is already raised or on an LLM-generation or JSON-parse
// failure — perception failures degrade to empty content, and per-action
// failures during act are recorded in the returned ActionResults, never
// surfaced as a step error. Those results are not included in the next
// step's prompt.
func (in *Inner) ProcessStep(ctx context.Context) (AgentOutput, []ActionResult, error) {
	if in.isStopped() {
		return AgentOutput{}, nil, errStopped
	}

	perception, screenshotPath := in.perceive(ctx)
	defer cleanupScreenshot(screenshotPath, in.log)

	visualDescription := in.describeVision(ctx, screenshotPath)

	output, err := in.decide(ctx, perception, visualDescription)
	if err != nil {
		return AgentOutput{}, nil, err
	}

	_, results, _ := translateAndAct(ctx, in.caller, output.Action, in.Tunables.MaxActionsPerStep)
	in.mu.Lock()
	in.previousActionResults = append(in.previousActionResults, results)
	in.lastValidState = &output
	in.mu.Unlock()

	return output, results, nil
}

// perceive gathers the page's text content and a screenshot. Extraction
// failure degrades to an empty string rather than failing the step —
// only decide/LLM failures are step-fatal.
func (in *Inner) perceive(ctx context.Context) (string, string) {
	text, err := tools.ExtractText(ctx, in.browser, tools.ExtractTextArgs{})
	content := ""
	if err == nil {
		content = text.Text
	}

	shot, err := tools.Screenshot(ctx, in.browser, tools.ScreenshotArgs{Format: "png"})
	var path string
	if err == nil {
		path = in.writeScreenshot(shot.Image)
	}

	sample := content
	if len(sample) > sampleContentChars {
		sample = sample[:sampleContentChars]
	}
	summary := fmt.Sprintf("Content Length: %d characters\nContent Sample: %s...", len(content), sample)
	return summary, path
}

func (in *Inner) writeScreenshot(imageBase64 string) string {
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		in.log.Warn("could not decode screenshot", zap.Error(err))
		return ""
	}
	now := time.Now()
	name := fmt.Sprintf("browser_screenshot_%d_%09d_%d.png", now.Unix(), now.Nanosecond(), os.Getpid())
	path := fmt.Sprintf("%s/%s", os.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		in.log.Warn("could not write screenshot to disk", zap.Error(err))
		return ""
	}
	return path
}

func cleanupScreenshot(path string, log *logging.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && log != nil {
		log.Debug("screenshot cleanup failed", zap.String("path", path), zap.Error(err))
	}
}

// describeVision calls the vision LLM once per screenshot, caching the
// description so a later step without a fresh screenshot can still reuse
// it. Timeout or error produces a bracketed placeholder and a warning,
// never a step failure.
func (in *Inner) describeVision(ctx context.Context, screenshotPath string) string {
	if screenshotPath == "" {
		in.mu.Lock()
		cached := in.visionCache
		in.mu.Unlock()
		return cached
	}

	data, err := os.ReadFile(screenshotPath)
	if err != nil {
		in.log.Warn("could not read screenshot for vision", zap.Error(err))
		return "[visual description unavailable: could not read screenshot]"
	}

	req := llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: visionPrompt,
			Images:  []llm.Image{{Data: base64.StdEncoding.EncodeToString(data), MediaType: "image/png"}},
		}},
		Temperature: in.Tunables.Temperature,
		MaxTokens:   in.Tunables.MaxTokens,
	}

	ch, err := in.llm.Stream(ctx, req)
	if err != nil {
		in.log.Warn("vision stream failed to start", zap.Error(err))
		return "[visual description unavailable: vision request failed]"
	}

	description, err := llm.CollectStreamWithDeadline(ctx, ch, time.Duration(in.Tunables.VisionTimeoutSecs)*time.Second)
	if err != nil {
		in.log.Warn("vision description timed out or failed", zap.Error(err))
		return "[visual description unavailable: " + err.Error() + "]"
	}

	in.mu.Lock()
	in.visionCache = description
	in.visionCacheValid = true
	in.mu.Unlock()
	return description
}

// decide asks the LLM for the next AgentOutput, streaming under the
// decide deadline and parsing the final text as strict JSON.
func (in *Inner) decide(ctx context.Context, contentSummary, visualDescription string) (AgentOutput, error) {
	system := in.decideSystemPrompt()
	userContent := fmt.Sprintf(
		"Task: %s\n\nAdditional info: %s\n\nPage content:\n%s\n\nVisual description:\n%s\n\n"+
			"Respond with valid JSON matching the AgentLLMResponse schema: "+
			`{"current_state": {...}, "action": [...]}`,
		in.Task, in.AdditionalInfo, contentSummary, visualDescription,
	)

	req := llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userContent}},
		Temperature: in.Tunables.Temperature,
		MaxTokens:   in.Tunables.MaxTokens,
	}

	ch, err := in.llm.Stream(ctx, req)
	if err != nil {
		return AgentOutput{}, fmt.Errorf("decide step: llm stream failed to start: %w", err)
	}

	raw, err := llm.CollectStreamWithDeadline(ctx, ch, time.Duration(in.Tunables.LLMTimeoutSecs)*time.Second)
	if err != nil {
		return AgentOutput{}, fmt.Errorf("decide step: llm stream failed: %w", err)
	}

	var output AgentOutput
	if err := json.Unmarshal([]byte(extractJSON(raw)), &output); err != nil {
		return AgentOutput{}, fmt.Errorf("decide step: could not parse model response as JSON: %w (raw response: %s)", err, raw)
	}

	if len(output.Action) > in.Tunables.MaxActionsPerStep {
		in.log.Warn("truncating actions to max_actions_per_step",
			zap.Int("requested", len(output.Action)), zap.Int("max", in.Tunables.MaxActionsPerStep))
		output.Action = output.Action[:in.Tunables.MaxActionsPerStep]
	}

	return output, nil
}

func (in *Inner) decideSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are an autonomous browser agent. Perceive the page, decide the next actions, ")
	b.WriteString("and respond only with JSON matching the AgentLLMResponse schema.\n\n")
	b.WriteString("Available actions: go_to_url{url}, click_element{selector|index}, ")
	b.WriteString("input_text{selector|index, text}, scroll{direction, amount}, ")
	b.WriteString("extract_page_content{}, done{result}.\n")
	return b.String()
}

// extractJSON trims a streamed response down to its outermost JSON object,
// tolerating surrounding prose some models still emit despite instructions.
func extractJSON(raw string) string {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}
