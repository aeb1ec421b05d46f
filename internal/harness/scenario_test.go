package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/policy"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
name: onboarding
description: "First contact gets the welcome prompt"
policy:
  require_profile_image: false
steps:
  - user: 7
    say: hello
  - user: 7
    react: thumbsup
    on: current
expect:
  - user: 7
    prompt: bio
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "onboarding", sc.Name)
	assert.Len(t, sc.Steps, 2)
	require.NotNil(t, sc.Steps[0].Say)
	assert.Equal(t, "hello", *sc.Steps[0].Say)
	assert.Equal(t, OnCurrent, sc.Steps[1].On)
	assert.Equal(t, "bio", sc.Expect[0].Prompt)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "misspelt steps"
step:
  - user: 1
    say: hi
`))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "description: d\nsteps: [{user: 1, say: hi}]", "name is required"},
		{"no description", "name: n\nsteps: [{user: 1, say: hi}]", "description is required"},
		{"no steps", "name: n\ndescription: d", "steps list is required"},
		{"no user", "name: n\ndescription: d\nsteps: [{say: hi}]", "steps[0]: user is required"},
		{"two inputs", "name: n\ndescription: d\nsteps: [{user: 1, say: hi, react: thumbsup}]", "exactly one of"},
		{"no input", "name: n\ndescription: d\nsteps: [{user: 1}]", "exactly one of"},
		{"bad image", "name: n\ndescription: d\nsteps: [{user: 1, image: 'ftp://x/y.png'}]", "scheme must be http"},
		{"on without react", "name: n\ndescription: d\nsteps: [{user: 1, say: hi, on: current}]", "on only applies to react"},
		{"bad on", "name: n\ndescription: d\nsteps: [{user: 1, react: thumbsup, on: latest}]", "on must be"},
		{"bad prompt", "name: n\ndescription: d\nsteps: [{user: 1, say: hi}]\nexpect: [{user: 1, prompt: lobby}]", "unknown prompt"},
		{"bad exclusion", "name: n\ndescription: d\npolicy: {exclusion: everyone}\nsteps: [{user: 1, say: hi}]", "unknown exclusion"},
		{"bad ledger", "name: n\ndescription: d\nsteps: [{user: 1, say: hi}]\nledger: [{responder: 1}]", "ledger[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestResolvePolicy(t *testing.T) {
	sc := &Scenario{}
	pol, err := sc.ResolvePolicy()
	require.NoError(t, err)
	assert.Equal(t, policy.Default(), pol)

	off, none := false, string(policy.ExcludeNone)
	sc.Policy = &PolicyOverrides{RequireProfileImage: &off, Exclusion: &none, PreferAccepted: &off}
	pol, err = sc.ResolvePolicy()
	require.NoError(t, err)
	assert.False(t, pol.RequireProfileImage)
	assert.Equal(t, policy.ExcludeNone, pol.Exclusion)
	assert.False(t, pol.PreferAccepted)
	assert.False(t, pol.RequireQuiescentCandidates)
}

func TestStep_Response(t *testing.T) {
	hi := "hi"
	tests := []struct {
		name string
		step Step
		want model.Response
	}{
		{"say", Step{User: 1, Say: &hi}, model.Message{Text: "hi"}},
		{"react untargeted", Step{User: 1, React: "thumbsdown"}, model.Reaction{Emoji: model.ThumbsDown}},
		{"react current", Step{User: 1, React: "thumbsup", On: OnCurrent}, model.Reaction{Emoji: model.ThumbsUp, MessageID: 5}},
		{"react literal", Step{User: 1, React: ":thumbsup:", On: "2"}, model.Reaction{Emoji: model.ThumbsUp, MessageID: 2}},
		{"react unicode", Step{User: 1, React: "👎"}, model.Reaction{Emoji: model.ThumbsDown}},
		{"react unknown", Step{User: 1, React: "🦀", On: OnCurrent}, model.UnrecognizedReaction{Name: "🦀", MessageID: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.step.response(5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
