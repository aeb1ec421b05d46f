package cli

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes made by
// serve's reader, renderer and logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// execute runs the root command with args and returns stdout and stderr.
// TANDEM_* variables are cleared so only flags configure the run.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	for _, key := range []string{"TANDEM_DB_PATH", "TANDEM_POLICY_PATH", "TANDEM_LOG_LEVEL", "TANDEM_RENDER_INTERVAL", "TANDEM_WORKERS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	out, errOut := &syncBuffer{}, &syncBuffer{}

	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
