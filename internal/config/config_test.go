package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hugoify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv(EnvInputPath, "")
	t.Setenv(EnvOutputPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultInputDir, cfg.InputDir)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultExceptionSuffix, cfg.ExceptionSuffix)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.WarnOnce)
}

func TestLoad_FileValuesResolveAgainstFileDir(t *testing.T) {
	t.Setenv(EnvInputPath, "")
	t.Setenv(EnvOutputPath, "")
	path := writeConfig(t, `
input_dir: xml
output_dir: site/content
exception_suffix: Error
warn_once: true
history_db: history.db
log_level: DEBUG
log_format: Pretty
`)
	base := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "xml"), cfg.InputDir)
	assert.Equal(t, filepath.Join(base, "site/content"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(base, "history.db"), cfg.HistoryDB)
	assert.Equal(t, "Error", cfg.ExceptionSuffix)
	assert.True(t, cfg.WarnOnce)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, LogFormatPretty, cfg.LogFormat)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv(EnvInputPath, "/data/raw")
	t.Setenv(EnvOutputPath, "/data/out")
	path := writeConfig(t, "input_dir: xml\noutput_dir: out\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/raw", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
}

func TestLoad_ExpandsVariablesInFile(t *testing.T) {
	t.Setenv(EnvInputPath, "")
	t.Setenv(EnvOutputPath, "")
	t.Setenv("HUGOIFY_TEST_ROOT", "/srv/docs")
	path := writeConfig(t, "output_dir: ${HUGOIFY_TEST_ROOT}/content\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs/content", cfg.OutputDir)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvInputPath, "")
	t.Setenv(EnvOutputPath, "")

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "input_dir: [unclosed\n"))
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	})
	t.Run("bad log level", func(t *testing.T) {
		_, err := Load(writeConfig(t, "log_level: chatty\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log_level")
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.OutputDir = cfg.InputDir
	cfg.ExceptionSuffix = "Err-or"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "output_dir")
	assert.Contains(t, err.Error(), "exception_suffix")

	cfg = Default()
	cfg.InputDir = " "
	assert.ErrorContains(t, cfg.Validate(), "input_dir")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, slog.LevelDebug, LogLevelDebug.Slog())
	assert.Equal(t, slog.LevelError, LogLevelError.Slog())
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
}

func TestLoadEnvFiles_WarnsOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("-BROKEN=1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("HUGOIFY_ENV_TEST=local\n"), 0o600))
	t.Setenv("HUGOIFY_ENV_TEST", "")
	require.NoError(t, os.Unsetenv("HUGOIFY_ENV_TEST"))

	var buf bytes.Buffer
	loadEnvFiles(dir, slog.New(slog.NewTextHandler(&buf, nil)))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), filepath.Join(dir, ".env"))
	assert.Equal(t, "local", os.Getenv("HUGOIFY_ENV_TEST"))
}
