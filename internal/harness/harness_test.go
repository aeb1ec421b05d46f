package harness

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tandem/internal/model"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	sc, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return sc
}

func TestRun_Onboarding(t *testing.T) {
	sc := mustParse(t, `
name: onboarding
description: "Welcome then bio"
policy:
  require_profile_image: false
steps:
  - user: 5
    say: hello
  - user: 5
    react: thumbsup
    on: current
  - user: 5
    say: "about me"
expect:
  - user: 5
    prompt: quiescent
    welcomed: true
    bio: "about me"
`)

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Transcript, 3)

	first := result.Transcript[0]
	assert.Empty(t, first.Action)
	require.Len(t, first.Deliveries, 1)
	assert.Equal(t, "reply", first.Deliveries[0].Role)
	assert.Equal(t, model.Welcome, first.Deliveries[0].Prompt)
	assert.Equal(t, model.MessageID(1), first.Deliveries[0].MessageID)
	assert.Equal(t, []model.Emoji{model.ThumbsUp}, first.Deliveries[0].Reactions)

	second := result.Transcript[1]
	assert.Equal(t, "react thumbsup on #1", second.Input)
	assert.Equal(t, "welcome", second.Action)

	third := result.Transcript[2]
	assert.Equal(t, `set_bio("about me")`, third.Action)
	assert.Equal(t, model.Quiescent, third.Deliveries[0].Prompt)
}

func TestRun_FailedExpectations(t *testing.T) {
	sc := mustParse(t, `
name: wrong
description: "Expectations that do not hold"
steps:
  - user: 5
    say: hello
expect:
  - user: 5
    prompt: bio
    welcomed: true
    bio: "x"
  - user: 6
    prompt: welcome
ledger:
  - responder: 5
    subject: 6
    accepted: true
`)

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"expect[0]: user 5: prompt = welcome, want bio",
		"expect[0]: user 5: welcomed = false, want true",
		`expect[0]: user 5: bio = "<none>", want "x"`,
		"expect[1]: user 6 not found",
		"ledger[0]: no response from 5 about 6",
	}, result.Errors)

	out := FormatTranscript(sc.Name, result)
	assert.True(t, strings.HasSuffix(out, "\nFAILED\n  expect[0]: user 5: prompt = welcome, want bio\n"+
		"  expect[0]: user 5: welcomed = false, want true\n"+
		"  expect[0]: user 5: bio = \"<none>\", want \"x\"\n"+
		"  expect[1]: user 6 not found\n"+
		"  ledger[0]: no response from 5 about 6\n"), out)
}

func TestRun_RenderFailureRollsBack(t *testing.T) {
	sc := mustParse(t, `
name: rollback
description: "A failed render leaves the participant where they were"
steps:
  - user: 9
    say: hi
  - user: 9
    say: ok
    fail_render: true
expect:
  - user: 9
    prompt: welcome
    welcomed: false
`)

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	failed := result.Transcript[1]
	assert.Empty(t, failed.Deliveries)
	assert.False(t, failed.Ignored)
	assert.Contains(t, failed.Error, "render failed")
}

func TestRun_StaleReactionIgnored(t *testing.T) {
	sc := mustParse(t, `
name: stale
description: "Reactions to old messages are dropped"
steps:
  - user: 3
    say: hi
  - user: 3
    react: thumbsup
    on: "42"
expect:
  - user: 3
    prompt: welcome
    welcomed: false
`)

	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, result.Transcript[1].Ignored)
	assert.Empty(t, result.Transcript[1].Deliveries)
}

func TestRun_Isolated(t *testing.T) {
	sc := mustParse(t, `
name: isolated
description: "Every run starts from an empty store"
steps:
  - user: 1
    say: hi
`)

	for i := 0; i < 2; i++ {
		result, err := Run(context.Background(), sc)
		require.NoError(t, err)
		assert.Equal(t, model.MessageID(1), result.Transcript[0].Deliveries[0].MessageID)
	}
}
