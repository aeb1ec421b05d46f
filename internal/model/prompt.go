package model

import (
	"fmt"
	"strings"
)

// PromptKind is the discriminant of a Prompt. The numeric values define
// urgency and are persisted, so they must never be renumbered.
type PromptKind int

const (
	PromptWelcome      PromptKind = 10
	PromptBio          PromptKind = 20
	PromptProfileImage PromptKind = 30
	PromptQuiescent    PromptKind = 40
	PromptCandidate    PromptKind = 50
	PromptMatch        PromptKind = 60
)

var promptKindNames = map[PromptKind]string{
	PromptWelcome:      "welcome",
	PromptBio:          "bio",
	PromptProfileImage: "profile_image",
	PromptQuiescent:    "quiescent",
	PromptCandidate:    "candidate",
	PromptMatch:        "match",
}

// Valid reports whether k is one of the declared kinds.
func (k PromptKind) Valid() bool {
	_, ok := promptKindNames[k]
	return ok
}

// HasSubject reports whether prompts of this kind reference another
// participant.
func (k PromptKind) HasSubject() bool {
	return k == PromptCandidate || k == PromptMatch
}

func (k PromptKind) String() string {
	if name, ok := promptKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PromptKind(%d)", int(k))
}

// Prompt is the conversational state presented to a participant.
//
// Subject is only meaningful for Candidate and Match, where it names the
// other participant. It is a weak reference: the row it names is looked up
// on demand and never cached here.
type Prompt struct {
	Kind    PromptKind
	Subject UserID
}

var (
	Welcome      = Prompt{Kind: PromptWelcome}
	Bio          = Prompt{Kind: PromptBio}
	ProfileImage = Prompt{Kind: PromptProfileImage}
	Quiescent    = Prompt{Kind: PromptQuiescent}
)

// Candidate offers id as a prospective match.
func Candidate(id UserID) Prompt {
	return Prompt{Kind: PromptCandidate, Subject: id}
}

// Match announces a mutual acceptance with id.
func Match(id UserID) Prompt {
	return Prompt{Kind: PromptMatch, Subject: id}
}

// Quiescent reports whether p is the resting "nothing owed" state.
func (p Prompt) Quiescent() bool {
	return p.Kind == PromptQuiescent
}

// Urgency orders prompts. Higher values are more urgent.
func (p Prompt) Urgency() int {
	return int(p.Kind)
}

// CannotInterrupt reports whether pushing p to a participant currently shown
// current would replace something at least as urgent.
func (p Prompt) CannotInterrupt(current Prompt) bool {
	return current.Urgency() >= p.Urgency()
}

// Reactions lists the reactions a transport attaches to the rendered prompt.
func (p Prompt) Reactions() []Emoji {
	switch p.Kind {
	case PromptWelcome, PromptMatch:
		return []Emoji{ThumbsUp}
	case PromptCandidate:
		return []Emoji{ThumbsUp, ThumbsDown}
	default:
		return nil
	}
}

// String renders p as "kind" or "kind(subject)", the form ParsePrompt reads.
func (p Prompt) String() string {
	if p.Kind.HasSubject() {
		return fmt.Sprintf("%s(%d)", p.Kind, p.Subject)
	}
	return p.Kind.String()
}

// ParsePrompt reads the form produced by Prompt.String.
func ParsePrompt(s string) (Prompt, error) {
	s = strings.TrimSpace(s)
	name, arg, hasArg := strings.Cut(s, "(")

	var kind PromptKind
	for k, n := range promptKindNames {
		if n == name {
			kind = k
		}
	}
	if !kind.Valid() {
		return Prompt{}, fmt.Errorf("unknown prompt %q", s)
	}

	if !kind.HasSubject() {
		if hasArg {
			return Prompt{}, fmt.Errorf("prompt %q takes no subject", name)
		}
		return Prompt{Kind: kind}, nil
	}

	if !hasArg || !strings.HasSuffix(arg, ")") {
		return Prompt{}, fmt.Errorf("prompt %q requires a subject", name)
	}
	id, err := ParseUserID(strings.TrimSuffix(arg, ")"))
	if err != nil {
		return Prompt{}, fmt.Errorf("prompt %q: bad subject: %w", s, err)
	}
	return Prompt{Kind: kind, Subject: id}, nil
}

// PromptMessage pairs a prompt with the rendered message that carries it.
type PromptMessage struct {
	Prompt    Prompt
	MessageID MessageID
}
