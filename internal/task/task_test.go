package task

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollBeforeAndAfterCompletion(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	tk := Start("push", func() (string, error) {
		<-release
		return "pushed", nil
	})
	require.Equal(t, "push", tk.Name())

	_, ok := tk.Poll()
	require.False(t, ok)

	close(release)
	r := tk.Wait()
	require.Equal(t, "pushed", r.Output)
	require.NoError(t, r.Err)

	again, ok := tk.Poll()
	require.True(t, ok)
	require.Equal(t, r, again)
}

func TestPollReportsError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tk := Start("fetch", func() (string, error) { return "", boom })

	var r Result
	require.Eventually(t, func() bool {
		var ok bool
		r, ok = tk.Poll()
		return ok
	}, time.Second, time.Millisecond)
	require.ErrorIs(t, r.Err, boom)
}

func TestDismissedTaskRunsToCompletion(t *testing.T) {
	t.Parallel()

	var finished atomic.Bool
	release := make(chan struct{})
	_ = Start("detached", func() (string, error) {
		<-release
		finished.Store(true)
		return "", nil
	})
	close(release)
	require.Eventually(t, finished.Load, time.Second, time.Millisecond)
}
