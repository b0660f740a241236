package executor

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecute(t *testing.T) {
	requireShell(t)

	out, err := New().Execute(context.Background(), "sh", "-c", "printf hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestExecuteIncludesStderr(t *testing.T) {
	requireShell(t)

	_, err := New().Execute(context.Background(), "sh", "-c", "echo broken pipe >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command 'sh' failed")
	assert.Contains(t, err.Error(), "stderr: broken pipe")
}

func TestExecuteInDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	out, err := New().ExecuteInDir(context.Background(), dir, "sh", "-c", "pwd")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), strings.TrimPrefix(dir, "/private")))
}

func TestRunWithEnv(t *testing.T) {
	requireShell(t)
	t.Setenv("MEDSCRIBE_INHERITED", "kept")

	out, err := New().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `printf "%s %s" "$HF_TOKEN" "$MEDSCRIBE_INHERITED"`},
		Env:  []string{"HF_TOKEN=hf_test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hf_test kept", out)
}
