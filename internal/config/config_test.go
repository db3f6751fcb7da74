package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/themis/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the loader at files that do not exist so only the test's variables apply.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("CONFIG_PATH", "")
}

func Test_MustLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("THEMIS_ENV", "local")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("PAGE_DEFAULT_SIZE", "10")
	t.Setenv("REVALIDATE_EMAIL_ON_UPDATE", "true")
	t.Setenv("NOT_FOUND_STATUS", "404")
	t.Setenv("HIDE_FAULT_MESSAGES", "true")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, config.StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "testHost", cfg.Postgres.Host)
	assert.Equal(t, "12345", cfg.Postgres.Port)
	assert.Equal(t, "admin", cfg.Postgres.User)
	assert.Equal(t, "adminpass", cfg.Postgres.Password)
	assert.Equal(t, "testName", cfg.Postgres.Dbname)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 8081, cfg.HTTP.MonitoringPort)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10, cfg.Paging.DefaultSize)
	assert.Equal(t, 100, cfg.Paging.MaxSize)
	assert.True(t, cfg.Policy.RevalidateEmailOnUpdate)
	assert.Equal(t, 404, cfg.Policy.NotFoundStatus)
	assert.Equal(t, 400, cfg.Policy.ConflictStatus)
	assert.True(t, cfg.Policy.HideFaultMessages)
	assert.Equal(t, 3, cfg.Directory.Retries)
	assert.Equal(t, 5*time.Second, cfg.Directory.RetryBackoff)
}

func Test_MustLoadFromFile(t *testing.T) {
	isolate(t)
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	configPath := filepath.Join(dir, "config.yaml")
	filet.File(t, configPath, `
env: development
storage:
  driver: memory
postgres:
  host: db.internal
  db_name: registry
http:
  port: 7070
  idle_timeout: 2m
paging:
  default_size: 5
  max_size: 50
directory:
  url: https://staff.example.com/
  login_retries: 5
`)
	t.Setenv("CONFIG_PATH", configPath)
	t.Setenv("DB_NAME", "fromEnv")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, config.StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "fromEnv", cfg.Postgres.Dbname, "environment must take precedence over the file")
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, 2*time.Minute, cfg.HTTP.IdleTimeout)
	assert.Equal(t, 5, cfg.Paging.DefaultSize)
	assert.Equal(t, 50, cfg.Paging.MaxSize)
	assert.Equal(t, "https://staff.example.com/", cfg.Directory.BaseURL)
	assert.Equal(t, 5, cfg.Directory.Retries)
}

func Test_MustLoadFromDotenv(t *testing.T) {
	isolate(t)
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	dotenvPath := filepath.Join(dir, ".env")
	filet.File(t, dotenvPath, "DIRECTORY_USERNAME=importer\n")
	t.Setenv("DOTENV_PATH", dotenvPath)
	t.Cleanup(func() { _ = os.Unsetenv("DIRECTORY_USERNAME") })

	cfg := config.MustLoad()

	assert.Equal(t, "importer", cfg.Directory.Username)
}

func TestMustLoad_MissingConfigFile(t *testing.T) {
	isolate(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	require.Panics(t, func() { config.MustLoad() })
}

func TestMustLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
		panic string
	}{
		{"port", "HTTP_PORT", "eighty", "failed to parse http.port from configuration"},
		{"timeout", "HTTP_READ_TIMEOUT", "error_value", "failed to parse http.read_timeout from configuration"},
		{"policy flag", "REVALIDATE_EMAIL_ON_UPDATE", "maybe",
			"failed to parse policy.revalidate_email_on_update from configuration"},
		{"storage driver", "STORAGE_DRIVER", "mongo", "unsupported storage driver: mongo"},
		{"page size", "PAGE_DEFAULT_SIZE", "500", "paging sizes must satisfy 1 <= default_size <= max_size"},
		{"status", "NOT_FOUND_STATUS", "200", "policy statuses must be HTTP error codes, got 200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.value)

			assert.PanicsWithValue(t, tt.panic, func() {
				config.MustLoad()
			})
		})
	}
}
