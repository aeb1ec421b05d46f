package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/policy"
)

// Scenario is a scripted conversation with the engine.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Policy overrides fields of policy.Default.
	Policy *PolicyOverrides `yaml:"policy,omitempty"`

	// Steps are delivered to the engine one at a time, in order.
	Steps []Step `yaml:"steps"`

	// Expect checks participant rows after the last step.
	Expect []Expectation `yaml:"expect,omitempty"`

	// Ledger checks response rows after the last step.
	Ledger []LedgerExpectation `yaml:"ledger,omitempty"`
}

// PolicyOverrides holds the policy fields a scenario sets explicitly.
type PolicyOverrides struct {
	RequireProfileImage        *bool   `yaml:"require_profile_image,omitempty"`
	Exclusion                  *string `yaml:"exclusion,omitempty"`
	PreferAccepted             *bool   `yaml:"prefer_accepted,omitempty"`
	RequireQuiescentCandidates *bool   `yaml:"require_quiescent_candidates,omitempty"`
}

// Step is one inbound response.
type Step struct {
	User  int64   `yaml:"user"`
	Say   *string `yaml:"say,omitempty"`
	Image string  `yaml:"image,omitempty"`
	React string  `yaml:"react,omitempty"`

	// On names the message a reaction answers. See the package docs.
	On string `yaml:"on,omitempty"`

	// FailRender makes the renderer reject the reply to this step.
	FailRender bool `yaml:"fail_render,omitempty"`
}

// Expectation checks a participant row. Unset fields are not checked.
type Expectation struct {
	User         int64   `yaml:"user"`
	Prompt       string  `yaml:"prompt,omitempty"`
	Welcomed     *bool   `yaml:"welcomed,omitempty"`
	Bio          *string `yaml:"bio,omitempty"`
	ProfileImage *string `yaml:"profile_image,omitempty"`
}

// LedgerExpectation checks one response row.
type LedgerExpectation struct {
	Responder int64 `yaml:"responder"`
	Subject   int64 `yaml:"subject"`
	Accepted  bool  `yaml:"accepted"`
	Dismissed bool  `yaml:"dismissed,omitempty"`
}

// OnCurrent targets the message carrying the participant's current prompt.
const OnCurrent = "current"

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks that required fields are present and well formed.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}

	if _, err := s.ResolvePolicy(); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, exp := range s.Expect {
		if exp.User <= 0 {
			return fmt.Errorf("expect[%d]: user is required", i)
		}
		if exp.Prompt != "" {
			if _, err := model.ParsePrompt(exp.Prompt); err != nil {
				return fmt.Errorf("expect[%d]: %w", i, err)
			}
		}
	}

	for i, l := range s.Ledger {
		if l.Responder <= 0 || l.Subject <= 0 {
			return fmt.Errorf("ledger[%d]: responder and subject are required", i)
		}
	}
	return nil
}

// ResolvePolicy applies the scenario's overrides to policy.Default.
func (s *Scenario) ResolvePolicy() (policy.Policy, error) {
	pol := policy.Default()
	if o := s.Policy; o != nil {
		if o.RequireProfileImage != nil {
			pol.RequireProfileImage = *o.RequireProfileImage
		}
		if o.Exclusion != nil {
			pol.Exclusion = policy.Exclusion(*o.Exclusion)
		}
		if o.PreferAccepted != nil {
			pol.PreferAccepted = *o.PreferAccepted
		}
		if o.RequireQuiescentCandidates != nil {
			pol.RequireQuiescentCandidates = *o.RequireQuiescentCandidates
		}
	}
	if err := pol.Validate(); err != nil {
		return policy.Policy{}, fmt.Errorf("policy: %w", err)
	}
	return pol, nil
}

func (s Step) validate() error {
	if s.User <= 0 {
		return errors.New("user is required")
	}

	n := 0
	if s.Say != nil {
		n++
	}
	if s.Image != "" {
		n++
		if _, err := model.ParseImageURL(s.Image); err != nil {
			return err
		}
	}
	if s.React != "" {
		n++
	}
	if n != 1 {
		return errors.New("exactly one of say, image or react is required")
	}

	if s.On != "" {
		if s.React == "" {
			return errors.New("on only applies to react")
		}
		if s.On != OnCurrent {
			if _, err := strconv.ParseInt(s.On, 10, 64); err != nil {
				return fmt.Errorf("on must be %q or a message id, got %q", OnCurrent, s.On)
			}
		}
	}
	return nil
}

// response builds the engine input for s. current is the id of the message
// carrying the participant's current prompt.
func (s Step) response(current model.MessageID) (model.Response, error) {
	switch {
	case s.Say != nil:
		return model.Message{Text: *s.Say}, nil
	case s.Image != "":
		return model.ParseImage(s.Image)
	}

	var target model.MessageID
	switch s.On {
	case "":
	case OnCurrent:
		target = current
	default:
		n, err := strconv.ParseInt(s.On, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad message id %q", s.On)
		}
		target = model.MessageID(n)
	}

	if e, ok := model.EmojiFromName(s.React); ok {
		return model.Reaction{Emoji: e, MessageID: target}, nil
	}
	return model.UnicodeReaction(s.React, target), nil
}

// describe renders the step for the transcript, with the reaction target
// resolved.
func (s Step) describe(target model.MessageID) string {
	switch {
	case s.Say != nil:
		return fmt.Sprintf("say %q", *s.Say)
	case s.Image != "":
		return "image " + s.Image
	case target != 0:
		return fmt.Sprintf("react %s on #%d", s.React, target)
	default:
		return "react " + s.React
	}
}
