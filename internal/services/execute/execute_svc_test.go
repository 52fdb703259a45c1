package execute

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRun_EmptyCode(t *testing.T) {
	svc := NewExecuteService("sh", time.Second, t.TempDir(), ".sh")

	_, err := svc.Run(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyCode)

	_, err = svc.Run(context.Background(), "   \n\t")
	require.ErrorIs(t, err, ErrEmptyCode)
}

func TestRun_CapturesStdout(t *testing.T) {
	requireShell(t)
	req := require.New(t)
	svc := NewExecuteService("sh", 5*time.Second, t.TempDir(), ".sh")

	out, err := svc.Run(context.Background(), "echo hello")
	req.NoError(err)
	req.Equal("hello\n", out)
}

func TestRun_ProgramErrorSurfacesStderr(t *testing.T) {
	requireShell(t)
	req := require.New(t)
	svc := NewExecuteService("sh", 5*time.Second, t.TempDir(), ".sh")

	_, err := svc.Run(context.Background(), "echo boom >&2; exit 1")
	req.Error(err)
	req.NotErrorIs(err, ErrTimeout)
	req.Contains(err.Error(), "boom")
}

func TestRun_TimeoutIsDistinct(t *testing.T) {
	requireShell(t)
	svc := NewExecuteService("sh", 100*time.Millisecond, t.TempDir(), ".sh")

	_, err := svc.Run(context.Background(), "sleep 5")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestRun_FileSuffixMatchesConfig(t *testing.T) {
	requireShell(t)
	req := require.New(t)
	svc := NewExecuteService("sh", 5*time.Second, t.TempDir(), ".sh")

	// $0 is the snippet file the interpreter was handed.
	out, err := svc.Run(context.Background(), `printf '%s' "$0"`)
	req.NoError(err)
	req.True(strings.HasSuffix(out, ".sh"), "snippet path %q should carry the configured suffix", out)
}

func TestRun_RemovesTempFile(t *testing.T) {
	requireShell(t)
	req := require.New(t)
	dir := t.TempDir()
	svc := NewExecuteService("sh", 5*time.Second, dir, ".sh")

	_, err := svc.Run(context.Background(), "true")
	req.NoError(err)

	entries, err := os.ReadDir(dir)
	req.NoError(err)
	req.Empty(entries)
}
