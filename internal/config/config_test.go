package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, set map[string]any) Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	for k, val := range set {
		v.Set(k, val)
	}
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvImageKey, "")
	cfg := load(t, nil)

	assert.Equal(t, "gpt-4o-mini", cfg.Describer.Model)
	assert.InDelta(t, 0.1, cfg.Describer.Temperature, 1e-9)
	assert.EqualValues(t, 500, cfg.Describer.MaxTokens)
	assert.EqualValues(t, 150, cfg.Enhancer.MaxTokens)
	assert.NotEmpty(t, cfg.Creator.SystemPrompt)
	assert.Equal(t, "png", cfg.Image.OutputFormat)
	assert.EqualValues(t, 55, cfg.Image.Seed)
	assert.Equal(t, 5, cfg.Video.Duration)
	assert.Equal(t, 5*time.Second, cfg.Video.PollInterval)
	assert.Equal(t, BackendJSON, cfg.RunLog.Backend)
	assert.Equal(t, filepath.Join("logs", "process_log.json"), cfg.RunLog.Path)
	assert.Equal(t, filepath.Join("logs", "app.log"), cfg.LogFile)
}

func TestLoadOverrides(t *testing.T) {
	cfg := load(t, map[string]any{
		"image.output_format": ".JPEG",
		"runlog.backend":      "sqlite",
		"paths.log_dir":       "var",
	})
	assert.Equal(t, "jpg", cfg.Image.OutputFormat)
	assert.Equal(t, filepath.Join("var", "runs.db"), cfg.RunLog.Path)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("runlog.backend", "postgres")
	_, err := Load(v)
	assert.Error(t, err)
}

func TestCredentialsFromEnvironment(t *testing.T) {
	t.Setenv(EnvImageKey, "gem-key")
	t.Setenv(EnvVideoKey, "")
	cfg := load(t, nil)

	assert.Equal(t, "gem-key", cfg.Image.APIKey)
	assert.NoError(t, cfg.RequireCredentials(false))

	err := cfg.RequireCredentials(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvVideoKey)
}

func TestRequireCredentialsMissingImageKey(t *testing.T) {
	t.Setenv(EnvImageKey, "")
	cfg := load(t, nil)
	err := cfg.RequireCredentials(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvImageKey)
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := load(t, map[string]any{
		"paths.input_dir": filepath.Join(root, "in"),
		"paths.image_dir": filepath.Join(root, "img"),
		"paths.video_dir": filepath.Join(root, "vid"),
		"paths.log_dir":   filepath.Join(root, "logs"),
	})
	require.NoError(t, cfg.EnsureDirs())
	for _, d := range []string{"in", "img", "vid", "logs"} {
		info, err := os.Stat(filepath.Join(root, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLoadDotEnv(t *testing.T) {
	const fresh = "RESTYLE_TEST_DOTENV_FRESH"
	t.Setenv("RESTYLE_TEST_DOTENV_SET", "kept")
	t.Cleanup(func() { os.Unsetenv(fresh) })

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nRESTYLE_TEST_DOTENV_SET=overwritten\nexport " + fresh + "=\"loaded\"\nbroken line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "kept", os.Getenv("RESTYLE_TEST_DOTENV_SET"))
	assert.Equal(t, "loaded", os.Getenv(fresh))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadRejectsUnsupportedOutputFormat(t *testing.T) {
	for _, f := range []string{"webp", "gif", "tiff"} {
		v := viper.New()
		SetDefaults(v)
		v.Set("image.output_format", f)
		_, err := Load(v)
		assert.ErrorContains(t, err, "want png or jpg", f)
	}
}
