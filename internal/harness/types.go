package harness

import "github.com/roach88/tandem/internal/model"

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Transcript has one entry per step, in order.
	Transcript []Entry `json:"transcript"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// Entry records what the engine did with one step.
type Entry struct {
	Step  int          `json:"step"`
	User  model.UserID `json:"user"`
	Input string       `json:"input"`

	// Action is the applied action, or empty when there was none.
	Action string `json:"action,omitempty"`

	// Ignored is set when the engine produced no reply, as for a reaction
	// to a message that is no longer current.
	Ignored bool `json:"ignored,omitempty"`

	Deliveries []Message `json:"deliveries,omitempty"`

	// Error is the error returned by the engine, if any.
	Error string `json:"error,omitempty"`
}

// Message is a prompt delivered while handling a step.
type Message struct {
	Role      string          `json:"role"` // "reply" or "interrupt"
	Recipient model.UserID    `json:"recipient"`
	MessageID model.MessageID `json:"message_id"`
	Prompt    model.Prompt    `json:"prompt"`
	Text      string          `json:"text"`
	Reactions []model.Emoji   `json:"reactions,omitempty"`
}

// NewResult creates a passing result with no entries.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []Entry{},
		Errors:     []string{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
