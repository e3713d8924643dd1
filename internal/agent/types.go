// Package agent implements the autonomous agent loop: a perceive-decide-act
// step function driven by an LLM, run one step at a time by a single actor
// goroutine, tracked per (connection, task number) by a registry.
package agent

import "time"

// ActionModel is one action the model asked for: a name plus a flat
// string-keyed parameter map, the wire shape an LLM's JSON response uses.
type ActionModel struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

// CurrentState is the model's free-form self-report of where it thinks
// the task stands, echoed back into HistoryList verbatim.
type CurrentState struct {
	PrevActionEvaluation string `json:"prev_action_evaluation"`
	ImportantContents    string `json:"important_contents"`
	TaskProgress         string `json:"task_progress"`
	FuturePlans          string `json:"future_plans"`
	Thought              string `json:"thought"`
	Summary              string `json:"summary"`
}

// AgentOutput is what one decide step produces: the model's self-report
// plus the (possibly truncated) list of actions to act on.
type AgentOutput struct {
	CurrentState CurrentState  `json:"current_state"`
	Action       []ActionModel `json:"action"`
}

// HistoryItem records one completed step.
type HistoryItem struct {
	StepIndex  int         `json:"step_index"`
	Timestamp  time.Time   `json:"timestamp"`
	Output     AgentOutput `json:"output"`
	IsComplete bool        `json:"is_complete"`
}

// HistoryList is the ordered record of every step a run has taken.
type HistoryList struct {
	Items []HistoryItem `json:"items"`
}

// IsComplete reports whether the last step in the list was the
// terminating one.
func (h HistoryList) IsComplete() bool {
	if len(h.Items) == 0 {
		return false
	}
	return h.Items[len(h.Items)-1].IsComplete
}

// ActionResult is what a single loopback tool call produced.
type ActionResult struct {
	Success          bool   `json:"success"`
	ExtractedContent string `json:"extracted_content,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Tunables are the per-run knobs the caller of browser_agent EXEC may set.
type Tunables struct {
	Temperature       float64
	MaxTokens         int
	MaxActionsPerStep int
	VisionTimeoutSecs int
	LLMTimeoutSecs    int
	AdditionalInfo    string
}

// DefaultTunables mirrors the config.yaml defaults.
func DefaultTunables() Tunables {
	return Tunables{
		Temperature:       0.7,
		MaxTokens:         2048,
		MaxActionsPerStep: 5,
		VisionTimeoutSecs: 30,
		LLMTimeoutSecs:    120,
	}
}

func (t Tunables) withDefaults() Tunables {
	d := DefaultTunables()
	if t.Temperature == 0 {
		t.Temperature = d.Temperature
	}
	if t.MaxTokens == 0 {
		t.MaxTokens = d.MaxTokens
	}
	if t.MaxActionsPerStep <= 0 {
		t.MaxActionsPerStep = d.MaxActionsPerStep
	}
	if t.VisionTimeoutSecs <= 0 {
		t.VisionTimeoutSecs = d.VisionTimeoutSecs
	}
	if t.LLMTimeoutSecs <= 0 {
		t.LLMTimeoutSecs = d.LLMTimeoutSecs
	}
	return t
}
