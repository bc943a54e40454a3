package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jobrelay/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobrelay.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
base_url = "https://app.example.com"

[queue]
provider_url = "https://queue.example.com"
token = "tok"
signing_key = "sk-current"
next_signing_key = "sk-next"

[store]
backend = "redis"
redis_addr = "redis:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "https://app.example.com", cfg.Server.BaseURL)
	require.Equal(t, "sk-next", cfg.Queue.NextSigningKey)
	require.Equal(t, "redis", cfg.Store.Backend)
	require.Equal(t, "redis:6379", cfg.Store.RedisAddr)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[queue]
token = "file-token"
`)
	t.Setenv("JOBRELAY_QUEUE_TOKEN", "env-token")
	t.Setenv("JOBRELAY_PORT", "7070")
	t.Setenv("JOBRELAY_CALLBACK_URL", "https://override.example.com/api/worker")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-token", cfg.Queue.Token)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "https://override.example.com/api/worker", cfg.Queue.CallbackURL)
}

func TestCallbackURL(t *testing.T) {
	cfg := Default()
	require.Equal(t, "", cfg.CallbackURL())

	cfg.Server.BaseURL = "https://app.example.com"
	require.Equal(t, "https://app.example.com/api/worker", cfg.CallbackURL())

	cfg.Queue.CallbackURL = "https://other.example.com/hook"
	require.Equal(t, "https://other.example.com/hook", cfg.CallbackURL())
}

func TestValidate(t *testing.T) {
	cfg := Default()

	err := cfg.Validate()
	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "queue.provider_url", ce.Field)

	cfg.Queue.ProviderURL = "https://queue.example.com"
	err = cfg.Validate()
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "queue.token", ce.Field)

	cfg.Queue.Token = "tok"
	err = cfg.Validate()
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "queue.signing_key", ce.Field)

	cfg.Queue.SigningKey = "sk"
	err = cfg.Validate()
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "queue.callback_url", ce.Field)

	cfg.Server.BaseURL = "https://app.example.com"
	require.NoError(t, cfg.Validate())

	cfg.Store.Backend = "postgres"
	err = cfg.Validate()
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "store.backend", ce.Field)
}

func TestValidate_LocalModeSkipsProvider(t *testing.T) {
	cfg := Default()
	cfg.Queue.Local = true
	cfg.Queue.SigningKey = "sk"
	cfg.Server.BaseURL = "http://localhost:8080"
	require.NoError(t, cfg.Validate())
}
