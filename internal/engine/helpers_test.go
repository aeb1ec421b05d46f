package engine

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/policy"
	"github.com/roach88/tandem/internal/store"
	"github.com/roach88/tandem/internal/testutil"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func setupEngine(t *testing.T, pol policy.Policy) (*Engine, *store.Store, *testutil.Recorder) {
	t.Helper()
	s := setupTestStore(t)
	return New(s, pol), s, testutil.NewRecorder()
}

func imageURL(id model.UserID) *url.URL {
	u, err := url.Parse(fmt.Sprintf("https://example.com/%d.png", id))
	if err != nil {
		panic(err)
	}
	return u
}

func bioOf(id model.UserID) string {
	return fmt.Sprintf("I am %d", id)
}

// handle runs one response through the engine and fails the test on error.
func handle(t *testing.T, e *Engine, r *testutil.Recorder, id model.UserID, resp model.Response) Outcome {
	t.Helper()
	out, err := e.Handle(context.Background(), id, resp, r)
	require.NoError(t, err)
	return out
}

// onboard walks id through welcome, bio and (if the policy asks for one)
// profile image, returning the outcome of the final step.
func onboard(t *testing.T, e *Engine, r *testutil.Recorder, id model.UserID) Outcome {
	t.Helper()
	handle(t, e, r, id, model.Message{Text: "hello"})
	handle(t, e, r, id, model.Message{Text: "ok"})
	out := handle(t, e, r, id, model.Message{Text: bioOf(id)})
	if e.Policy().RequireProfileImage {
		out = handle(t, e, r, id, model.Image{URL: imageURL(id)})
	}
	return out
}

func currentPrompt(t *testing.T, s *store.Store, id model.UserID) model.Prompt {
	t.Helper()
	u, err := s.User(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u.PromptMessage, "user %d has no prompt", id)
	return u.PromptMessage.Prompt
}
