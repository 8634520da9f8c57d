package backend

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// shRunner returns a Runner that uses sh as the engine. The output flags the
// runner appends end up as positional parameters of the script and are
// ignored.
func shRunner(t *testing.T) *Runner {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return NewRunner("sh", t.TempDir())
}

func TestOutputArgs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"--no-pager", "--color", "always", "--quiet"}, OutputArgs(true, true))
	require.Equal(t, []string{"--no-pager", "--color", "never"}, OutputArgs(false, false))
}

func TestRunnerExecuteSuccess(t *testing.T) {
	t.Parallel()

	r := shRunner(t)
	out, err := r.Execute([]string{"-c", "pwd"}, false, true)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(r.Root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(RemoveEndLine(out))
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.Equal(t, 1, r.History.Len())
	rec, _ := r.History.Last()
	require.Equal(t, "sh", rec.Program)
	require.Equal(t, []string{"-c", "pwd", "--no-pager", "--color", "never", "--quiet"}, rec.Args)
	require.NotNil(t, rec.Output)
	require.Equal(t, 0, rec.Output.ExitCode)
	require.Equal(t, out, string(rec.Output.Stdout))
	require.False(t, rec.IssuedAt.IsZero())
}

func TestRunnerExecuteStatusError(t *testing.T) {
	t.Parallel()

	r := shRunner(t)
	before := r.History.Len()
	_, err := r.Execute([]string{"-c", "echo partial; echo 'no such revision' >&2; exit 3"}, false, true)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, KindStatus, cmdErr.Kind)
	require.Equal(t, 3, cmdErr.ExitCode)
	require.True(t, cmdErr.HasExitCode())
	require.Equal(t, "no such revision\n", cmdErr.Stderr)
	require.True(t, IsStatus(err, 3))
	require.False(t, IsStatus(err, 2))

	require.Equal(t, before+1, r.History.Len())
	rec, _ := r.History.Last()
	require.True(t, rec.Failed())
	require.Equal(t, 3, rec.Output.ExitCode)
	require.Equal(t, "partial\n", string(rec.Output.Stdout))
	require.Equal(t, "no such revision\n", string(rec.Output.Stderr))
}

func TestRunnerExecuteSpawnFailureIsRecorded(t *testing.T) {
	t.Parallel()

	r := NewRunner(filepath.Join(t.TempDir(), "missing-jj"), t.TempDir())
	_, err := r.Execute([]string{"status"}, true, true)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, KindOutput, cmdErr.Kind)
	require.False(t, cmdErr.HasExitCode())
	require.ErrorContains(t, err, "error getting output")

	require.Equal(t, 1, r.History.Len())
	rec, _ := r.History.Last()
	require.Nil(t, rec.Output)
	require.Error(t, rec.Err)
	require.True(t, rec.Failed())
}

func TestRunnerExecuteInvalidUTF8(t *testing.T) {
	t.Parallel()

	r := shRunner(t)
	_, err := r.Execute([]string{"-c", `printf '\377\376'`}, false, true)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, KindUTF8, cmdErr.Kind)
	require.True(t, errors.Is(err, ErrInvalidUTF8))

	// The raw bytes are kept in the record even though decoding failed.
	rec, _ := r.History.Last()
	require.Equal(t, []byte{0xff, 0xfe}, rec.Output.Stdout)
	require.False(t, rec.Failed())
}

func TestRunnerExecuteVoid(t *testing.T) {
	t.Parallel()

	r := shRunner(t)
	require.NoError(t, r.ExecuteVoid([]string{"-c", "echo ignored"}))
	require.Error(t, r.ExecuteVoid([]string{"-c", "exit 1"}))
	require.Equal(t, 2, r.History.Len())

	rec, _ := r.History.At(0)
	require.Contains(t, rec.Args, "always")
}

func TestRunnerForceNoColorAndExtraConfig(t *testing.T) {
	t.Parallel()

	r := shRunner(t)
	r.ForceNoColor = true
	r.ExtraConfig = []string{`user.name="jjk"`}
	_, err := r.Execute([]string{"-c", "true"}, true, false)
	require.NoError(t, err)

	rec, _ := r.History.Last()
	require.Equal(t, []string{"-c", "true", "--no-pager", "--color", "never", "--config", `user.name="jjk"`}, rec.Args)
}

func TestCommandErrorRender(t *testing.T) {
	t.Parallel()

	err := &CommandError{Kind: KindStatus, Stderr: "Error: boom", ExitCode: 1}
	require.Equal(t, "Error: boom", err.Render(""))
	require.Equal(t, "Push error\n\n\nError: boom", err.Render("Push error"))
}

func TestRemoveEndLine(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a", RemoveEndLine("a\n"))
	require.Equal(t, "a", RemoveEndLine("a\r\n"))
	require.Equal(t, "a\n", RemoveEndLine("a\n\n"))
	require.Equal(t, "a\r", RemoveEndLine("a\r"))
	require.Equal(t, "", RemoveEndLine(""))
}
