package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	welcomeWords = []string{"ok"}
	acceptWords  = []string{"ok", "yes", "y"}
	declineWords = []string{"no", "n"}
	dismissWords = []string{"ok"}
)

// Interpret maps a response to an action using only the current prompt.
// It returns nil when the response means nothing in that state; off-topic
// text and unknown reactions are never errors.
func Interpret(prompt Prompt, r Response) Action {
	switch r := r.(type) {
	case Message:
		return interpretMessage(prompt, r.Text)
	case Reaction:
		return interpretReaction(prompt, r.Emoji)
	case Image:
		if prompt.Kind == PromptProfileImage && r.URL != nil {
			return SetProfileImage{URL: r.URL}
		}
		return nil
	case UnrecognizedReaction, CustomReaction:
		return nil
	default:
		return nil
	}
}

func interpretMessage(prompt Prompt, text string) Action {
	switch prompt.Kind {
	case PromptWelcome:
		if matchesWord(text, welcomeWords) {
			return AcknowledgeWelcome{}
		}
	case PromptBio:
		if bio := NormalizeText(text); bio != "" {
			return SetBio{Text: bio}
		}
	case PromptCandidate:
		switch {
		case matchesWord(text, acceptWords):
			return AcceptCandidate{ID: prompt.Subject}
		case matchesWord(text, declineWords):
			return DeclineCandidate{ID: prompt.Subject}
		}
	case PromptMatch:
		if matchesWord(text, dismissWords) {
			return DismissMatch{ID: prompt.Subject}
		}
	case PromptProfileImage, PromptQuiescent:
	}
	return nil
}

func interpretReaction(prompt Prompt, e Emoji) Action {
	switch prompt.Kind {
	case PromptWelcome:
		if e == ThumbsUp {
			return AcknowledgeWelcome{}
		}
	case PromptCandidate:
		switch e {
		case ThumbsUp:
			return AcceptCandidate{ID: prompt.Subject}
		case ThumbsDown:
			return DeclineCandidate{ID: prompt.Subject}
		}
	case PromptMatch:
		if e == ThumbsUp {
			return DismissMatch{ID: prompt.Subject}
		}
	case PromptBio, PromptProfileImage, PromptQuiescent:
	}
	return nil
}

// NormalizeText trims surrounding whitespace and puts text in NFC form so
// visually identical bios compare and store identically.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

func matchesWord(text string, words []string) bool {
	folded := cases.Fold().String(strings.TrimSpace(text))
	for _, w := range words {
		if folded == w {
			return true
		}
	}
	return false
}
