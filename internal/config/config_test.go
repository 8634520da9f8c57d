package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
jj_bin: /opt/jj/bin/jj
idle_interval: 2s
notify_delay: 250ms
watch: false
theme: dark
revset: "trunk()..@"
`))
	require.NoError(t, err)
	require.Equal(t, "/opt/jj/bin/jj", cfg.JJBin)
	require.Equal(t, 2*time.Second, cfg.IdleInterval)
	require.Equal(t, 250*time.Millisecond, cfg.NotifyDelay)
	require.False(t, cfg.Watch)
	require.True(t, cfg.Syntax)
	require.Equal(t, ThemeDark, cfg.Theme)
	require.Equal(t, "trunk()..@", cfg.Revset)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "theme", body: "theme: neon\n", want: "invalid theme"},
		{name: "idle", body: "idle_interval: 0s\n", want: "idle_interval must be positive"},
		{name: "zero notify delay", body: "notify_delay: 0s\n", want: "notify_delay must be positive"},
		{name: "negative notify delay", body: "notify_delay: -1s\n", want: "notify_delay must be positive"},
		{name: "syntax", body: "watch: [\n", want: "parse config"},
		{name: "duration", body: "notify_delay: soon\n", want: "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.body))
			require.ErrorContains(t, err, tt.want)
		})
	}
}
