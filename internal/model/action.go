package model

import (
	"fmt"
	"net/url"
)

// Action is a store mutation derived from an interpreted Response.
// Only the types in this file implement it.
type Action interface {
	action()
	fmt.Stringer
}

// AcknowledgeWelcome marks the participant as welcomed.
type AcknowledgeWelcome struct{}

// SetBio replaces the participant's bio.
type SetBio struct {
	Text string
}

// SetProfileImage replaces the participant's profile image.
type SetProfileImage struct {
	URL *url.URL
}

// AcceptCandidate records interest in another participant.
type AcceptCandidate struct {
	ID UserID
}

// DeclineCandidate records disinterest in another participant.
type DeclineCandidate struct {
	ID UserID
}

// DismissMatch acknowledges a match so it is no longer surfaced.
type DismissMatch struct {
	ID UserID
}

func (AcknowledgeWelcome) action() {}
func (SetBio) action()             {}
func (SetProfileImage) action()    {}
func (AcceptCandidate) action()    {}
func (DeclineCandidate) action()   {}
func (DismissMatch) action()       {}

func (AcknowledgeWelcome) String() string { return "welcome" }
func (a SetBio) String() string           { return fmt.Sprintf("set_bio(%q)", a.Text) }
func (a SetProfileImage) String() string  { return fmt.Sprintf("set_profile_image(%s)", a.URL) }
func (a AcceptCandidate) String() string  { return fmt.Sprintf("accept(%d)", a.ID) }
func (a DeclineCandidate) String() string { return fmt.Sprintf("decline(%d)", a.ID) }
func (a DismissMatch) String() string     { return fmt.Sprintf("dismiss(%d)", a.ID) }
