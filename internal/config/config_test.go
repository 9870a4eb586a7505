package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadReadsYamlAndEnvOverrides(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
http:
  addr: ":9090"
draw:
  interval: 10ms
  min_steps: 5
  max_steps: 8
grouping:
  default_size: 4
naming:
  model: "test-model"
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("SESSION_IDLE_TTL", "2h")
	t.Setenv("GROUP_DEFAULT_SIZE", "6")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 10*time.Millisecond, cfg.Draw.Interval)
	require.Equal(t, 5, cfg.Draw.MinSteps)
	require.Equal(t, 8, cfg.Draw.MaxSteps)
	require.Equal(t, 6, cfg.Grouping.DefaultSize)
	require.Equal(t, 2*time.Hour, cfg.Session.IdleTTL)
	require.Equal(t, "secret", cfg.Naming.APIKey)
	require.Equal(t, "test-model", cfg.Naming.Model)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, time.Hour, cfg.Session.IdleTTL)
	require.Equal(t, 10*time.Minute, cfg.Session.JanitorInterval)
	require.Equal(t, 50*time.Millisecond, cfg.Draw.Interval)
	require.Equal(t, 0.7, cfg.Draw.SlowdownAfter)
	require.Equal(t, 20*time.Millisecond, cfg.Draw.SlowdownStep)
	require.Equal(t, 30, cfg.Draw.MinSteps)
	require.Equal(t, 50, cfg.Draw.MaxSteps)
	require.Equal(t, 3, cfg.Grouping.DefaultSize)
	require.Equal(t, "superheroes", cfg.Grouping.DefaultTheme)
	require.Equal(t, "legacy-key", cfg.Naming.APIKey)
}

func TestLoadMissingExplicitFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestLoadRejectsBadYaml(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "http: [")
	_, err := Load(path)
	require.Error(t, err)
}

func TestMustLoadPanicsOnError(t *testing.T) {
	require.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := writeTempFile(t, ".env", "FUNHUB_DOTENV_TEST=from-file\n")
	require.NoError(t, os.Unsetenv("FUNHUB_DOTENV_TEST"))
	t.Cleanup(func() { os.Unsetenv("FUNHUB_DOTENV_TEST") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	require.Equal(t, "from-file", os.Getenv("FUNHUB_DOTENV_TEST"))
}
