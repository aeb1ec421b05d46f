package model

import (
	"fmt"
	"net/url"
)

// Response is an inbound event from a participant, already typed by the
// transport. Only the types in this file implement it.
type Response interface {
	response()
}

// Message is freeform text.
type Message struct {
	Text string
}

// Image is an uploaded or embedded image.
type Image struct {
	URL *url.URL
}

// Reaction is a known emoji reaction. MessageID names the message reacted to,
// or zero when the transport cannot tell.
type Reaction struct {
	Emoji     Emoji
	MessageID MessageID
}

// UnrecognizedReaction is a unicode reaction with no meaning to the engine.
type UnrecognizedReaction struct {
	Name      string
	MessageID MessageID
}

// CustomReaction is a server-specific emoji.
type CustomReaction struct {
	EmojiID   int64
	MessageID MessageID
}

func (Message) response()              {}
func (Image) response()                {}
func (Reaction) response()             {}
func (UnrecognizedReaction) response() {}
func (CustomReaction) response()       {}

// UnicodeReaction classifies a raw unicode reaction.
func UnicodeReaction(chars string, messageID MessageID) Response {
	if e, ok := EmojiFromChars(chars); ok {
		return Reaction{Emoji: e, MessageID: messageID}
	}
	return UnrecognizedReaction{Name: chars, MessageID: messageID}
}

// ParseImage builds an Image response from a raw URL. Only absolute http and
// https URLs are accepted.
func ParseImage(raw string) (Image, error) {
	u, err := ParseImageURL(raw)
	if err != nil {
		return Image{}, err
	}
	return Image{URL: u}, nil
}

// ParseImageURL parses and checks a profile image URL.
func ParseImageURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("image url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("image url %q: missing host", raw)
	}
	return u, nil
}

// ReactionTarget returns the message a reaction response refers to.
// ok is false for non-reactions.
func ReactionTarget(r Response) (id MessageID, ok bool) {
	switch r := r.(type) {
	case Reaction:
		return r.MessageID, true
	case UnrecognizedReaction:
		return r.MessageID, true
	case CustomReaction:
		return r.MessageID, true
	default:
		return 0, false
	}
}
