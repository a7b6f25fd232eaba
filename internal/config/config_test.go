package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigValue(t *testing.T) {
	t.Setenv("SOMNIA_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "SOMNIA_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "SOMNIA_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "SOMNIA_TEST_MISSING", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\n\nSOMNIA_ENVFILE_A=hello\nSOMNIA_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("SOMNIA_ENVFILE_A")
		os.Unsetenv("SOMNIA_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("SOMNIA_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("SOMNIA_ENVFILE_B"))
}

func TestLoadEnvFile_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SOMNIA_ENVFILE_C=file\n"), 0o600))

	t.Setenv("SOMNIA_ENVFILE_C", "already-set")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "already-set", os.Getenv("SOMNIA_ENVFILE_C"))
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/tmp/somnia"},
	}
	require.NoError(t, cfg.Validate())

	cfg.App.Environment = "bogus"
	assert.Error(t, cfg.Validate())

	cfg.App.Environment = "production"
	cfg.Logger.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg.Logger.Level = "warn"
	cfg.Storage.DataPath = ""
	assert.Error(t, cfg.Validate())
}

func TestStoragePaths(t *testing.T) {
	s := StorageConfig{DataPath: "/data"}
	assert.Equal(t, filepath.Join("/data", "somnia.db"), s.DatabasePath())
	assert.Equal(t, filepath.Join("/data", "search.bleve"), s.SearchIndexPath())
}
