package executil

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_StderrCappedAtMaxLen(t *testing.T) {
	ctx := context.Background()

	// Write twice the cap to stderr; only the first maxStderrLen bytes should appear in the error.
	longStderr := strings.Repeat("A", maxStderrLen*2)
	script := fmt.Sprintf("printf '%%s' '%s' >&2; exit 1", longStderr)

	_, err := (&RealExecutor{}).Run(ctx, "sh", "-c", script)
	require.Error(t, err)

	errMsg := err.Error()
	assert.Contains(t, errMsg, strings.Repeat("A", maxStderrLen))
	assert.NotContains(t, errMsg, strings.Repeat("A", maxStderrLen+1), "stderr should be capped")
}

func TestRealExecutor_PreservesExitError(t *testing.T) {
	ctx := context.Background()

	_, err := (&RealExecutor{}).Run(ctx, "sh", "-c", "echo 'error message' >&2; exit 2")
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "original ExitError should be preserved via wrapping")
	assert.Equal(t, 2, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "error message")
}

func TestRealExecutor_Run(t *testing.T) {
	exec := &RealExecutor{}
	ctx := context.Background()

	t.Run("successful command", func(t *testing.T) {
		out, err := exec.Run(ctx, "echo", "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := exec.Run(ctx, "nonexistent-command-12345")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exec nonexistent-command-12345")
	})

	t.Run("command fails", func(t *testing.T) {
		_, err := exec.Run(ctx, "false")
		require.Error(t, err)
	})
}

func TestRealExecutor_RunDir(t *testing.T) {
	exec := &RealExecutor{}
	ctx := context.Background()

	t.Run("runs in specified directory", func(t *testing.T) {
		out, err := exec.RunDir(ctx, "/tmp", "pwd")
		require.NoError(t, err)
		assert.Contains(t, string(out), "/tmp")
	})

	t.Run("invalid directory", func(t *testing.T) {
		_, err := exec.RunDir(ctx, "/nonexistent-dir-12345", "pwd")
		require.Error(t, err)
	})
}

func TestRecordingExecutor_Run(t *testing.T) {
	t.Run("records commands", func(t *testing.T) {
		exec := &RecordingExecutor{}
		ctx := context.Background()

		_, _ = exec.Run(ctx, "pandoc", "-f", "html")
		_, _ = exec.Run(ctx, "pandoc", "--version")

		require.Len(t, exec.Commands, 2)
		assert.Equal(t, "pandoc", exec.Commands[0].Cmd)
		assert.Equal(t, []string{"-f", "html"}, exec.Commands[0].Args)
		assert.Empty(t, exec.Commands[0].Dir)
	})

	t.Run("records directory", func(t *testing.T) {
		exec := &RecordingExecutor{}
		ctx := context.Background()

		_, _ = exec.RunDir(ctx, "/tmp/out", "pandoc", "--version")

		require.Len(t, exec.Commands, 1)
		assert.Equal(t, "/tmp/out", exec.Commands[0].Dir)
	})

	t.Run("returns configured output", func(t *testing.T) {
		exec := &RecordingExecutor{
			Outputs: map[string][]byte{
				"pandoc": []byte("output"),
			},
		}
		ctx := context.Background()

		out, err := exec.Run(ctx, "pandoc", "--version")
		require.NoError(t, err)
		assert.Equal(t, []byte("output"), out)
	})

	t.Run("returns configured error", func(t *testing.T) {
		expectedErr := errors.New("command failed")
		exec := &RecordingExecutor{
			Errors: map[string]error{
				"pandoc": expectedErr,
			},
		}
		ctx := context.Background()

		_, err := exec.Run(ctx, "pandoc", "--version")
		assert.Equal(t, expectedErr, err)
	})

	t.Run("reset clears commands", func(t *testing.T) {
		exec := &RecordingExecutor{}
		ctx := context.Background()

		_, _ = exec.Run(ctx, "echo", "hello")
		require.Len(t, exec.Commands, 1)

		exec.Reset()
		assert.Empty(t, exec.Commands)
	})
}

func TestRecordingExecutor_LookPathAndOnRun(t *testing.T) {
	exec := &RecordingExecutor{Missing: map[string]bool{"pandoc": true}}

	_, err := exec.LookPath("pandoc")
	require.Error(t, err)
	path, err := exec.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	var seen []string
	exec.OnRun = func(rc RecordedCommand) error {
		seen = append(seen, rc.Cmd)
		return errors.New("boom")
	}
	_, err = exec.Run(context.Background(), "pandoc", "-o", "out.docx")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"pandoc"}, seen)
}
