package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/store"
)

// checkExpectations compares the final store against the scenario's expect
// and ledger sections. It returns one message per failed check.
func checkExpectations(ctx context.Context, st *store.Store, sc *Scenario) ([]string, error) {
	var failures []string

	for i, exp := range sc.Expect {
		id := model.UserID(exp.User)
		u, err := st.User(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			failures = append(failures, fmt.Sprintf("expect[%d]: user %d not found", i, id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("expect[%d]: %w", i, err)
		}
		for _, msg := range compareUser(u, exp) {
			failures = append(failures, fmt.Sprintf("expect[%d]: user %d: %s", i, id, msg))
		}
	}

	for i, exp := range sc.Ledger {
		responder, subject := model.UserID(exp.Responder), model.UserID(exp.Subject)
		entry, ok, err := st.Entry(ctx, responder, subject)
		if err != nil {
			return nil, fmt.Errorf("ledger[%d]: %w", i, err)
		}
		if !ok {
			failures = append(failures, fmt.Sprintf("ledger[%d]: no response from %d about %d", i, responder, subject))
			continue
		}
		if entry.Accepted != exp.Accepted {
			failures = append(failures, fmt.Sprintf("ledger[%d]: %d about %d: accepted = %t, want %t",
				i, responder, subject, entry.Accepted, exp.Accepted))
		}
		if entry.Dismissed != exp.Dismissed {
			failures = append(failures, fmt.Sprintf("ledger[%d]: %d about %d: dismissed = %t, want %t",
				i, responder, subject, entry.Dismissed, exp.Dismissed))
		}
	}

	return failures, nil
}

func compareUser(u model.User, exp Expectation) []string {
	var diffs []string

	if exp.Prompt != "" {
		want, _ := model.ParsePrompt(exp.Prompt)
		got, ok := u.CurrentPrompt()
		switch {
		case !ok:
			diffs = append(diffs, fmt.Sprintf("prompt = none, want %s", want))
		case got != want:
			diffs = append(diffs, fmt.Sprintf("prompt = %s, want %s", got, want))
		}
	}

	if exp.Welcomed != nil && u.Welcomed != *exp.Welcomed {
		diffs = append(diffs, fmt.Sprintf("welcomed = %t, want %t", u.Welcomed, *exp.Welcomed))
	}

	if exp.Bio != nil {
		got := "<none>"
		if u.Bio != nil {
			got = *u.Bio
		}
		if u.Bio == nil || *u.Bio != *exp.Bio {
			diffs = append(diffs, fmt.Sprintf("bio = %q, want %q", got, *exp.Bio))
		}
	}

	if exp.ProfileImage != nil {
		got := ""
		if u.ProfileImage != nil {
			got = u.ProfileImage.String()
		}
		if got != *exp.ProfileImage {
			diffs = append(diffs, fmt.Sprintf("profile image = %q, want %q", got, *exp.ProfileImage))
		}
	}

	return diffs
}
