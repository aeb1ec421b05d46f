package model

import (
	"net/url"

	"github.com/roach88/tandem/internal/policy"
)

// User is a participant and their profile.
type User struct {
	ID            UserID
	Welcomed      bool
	Bio           *string
	ProfileImage  *url.URL
	PromptMessage *PromptMessage
}

// CurrentPrompt returns the prompt last delivered to the user.
// ok is false if nothing has been delivered yet.
func (u User) CurrentPrompt() (p Prompt, ok bool) {
	if u.PromptMessage == nil {
		return Prompt{}, false
	}
	return u.PromptMessage.Prompt, true
}

// ProfileComplete reports whether u may be offered to others.
func (u User) ProfileComplete(pol policy.Policy) bool {
	if !u.Welcomed || u.Bio == nil {
		return false
	}
	return !pol.RequireProfileImage || u.ProfileImage != nil
}

// Update is the result of interpreting a response: an optional action and
// the prompt that follows it unless a pending match or candidate pre-empts a
// quiescent one.
type Update struct {
	Action     Action
	NextPrompt Prompt
}

// Update interprets r against the user's current prompt.
func (u User) Update(pol policy.Policy, r Response) Update {
	current, ok := u.CurrentPrompt()
	if !ok {
		return Update{NextPrompt: Welcome}
	}

	action := Interpret(current, r)
	if action == nil {
		if gate := u.NextPrompt(pol, nil); !gate.Quiescent() {
			return Update{NextPrompt: gate}
		}
		return Update{NextPrompt: current}
	}

	return Update{
		Action:     action,
		NextPrompt: u.NextPrompt(pol, action),
	}
}

// NextPrompt is the intrinsic prompt after action is applied. An incomplete
// profile always wins: each missing field forces its prompt until the action
// that fills it arrives. A nil action checks the gate only.
func (u User) NextPrompt(pol policy.Policy, action Action) Prompt {
	if _, ok := action.(AcknowledgeWelcome); !u.Welcomed && !ok {
		return Welcome
	}
	if _, ok := action.(SetBio); u.Bio == nil && !ok {
		return Bio
	}
	if _, ok := action.(SetProfileImage); pol.RequireProfileImage && u.ProfileImage == nil && !ok {
		return ProfileImage
	}
	return Quiescent
}
