package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/tandem/internal/model"
)

// userReader is satisfied by *store.Store and *store.Tx.
type userReader interface {
	User(ctx context.Context, id model.UserID) (model.User, error)
}

const (
	welcomeText = "Hi!\n" +
		"Tandem pairs you up with other people who want to meet.\n" +
		"Your handle is only revealed to people you match with.\n" +
		"First, let's set up your profile.\n" +
		"React with %s or type `ok` to continue."
	bioText          = "Please enter a bio to show to other users."
	profileImageText = "Please upload a profile image to show to other users."
	quiescentText    = "You've seen all available matches. We'll message you when we have new matches to show you!"
)

func (e *Engine) promptText(ctx context.Context, r userReader, p model.Prompt) (string, error) {
	switch p.Kind {
	case model.PromptWelcome:
		return fmt.Sprintf(welcomeText, model.ThumbsUp.Markup()), nil
	case model.PromptBio:
		return bioText, nil
	case model.PromptProfileImage:
		return profileImageText, nil
	case model.PromptQuiescent:
		return quiescentText, nil
	case model.PromptCandidate:
		profile, err := e.profile(ctx, r, p.Subject)
		if err != nil {
			return "", err
		}
		return "New potential match:\n" + profile, nil
	case model.PromptMatch:
		profile, err := e.profile(ctx, r, p.Subject)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("You matched with %s:\n%s\nSend them a message!\nReact with %s or type `ok` to continue.",
			mention(p.Subject), profile, model.ThumbsUp.Markup()), nil
	default:
		return "", fmt.Errorf("no text for prompt %s", p)
	}
}

// profile renders the bio of id, followed by their profile image when they
// have one.
func (e *Engine) profile(ctx context.Context, r userReader, id model.UserID) (string, error) {
	u, err := r.User(ctx, id)
	if err != nil {
		return "", classify(id, err)
	}
	if u.Bio == nil {
		return "", NewMissingBioError(id)
	}
	if u.ProfileImage == nil {
		if e.policy.RequireProfileImage {
			return "", NewMissingProfileImageError(id)
		}
		return *u.Bio, nil
	}

	var b strings.Builder
	b.WriteString(*u.Bio)
	b.WriteString("\n")
	b.WriteString(u.ProfileImage.String())
	return b.String(), nil
}

// mention renders a reference to a participant that transports can turn
// into a link.
func mention(id model.UserID) string {
	return "<@" + id.String() + ">"
}
