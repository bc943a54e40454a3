package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"jobrelay/internal/domain"
)

// WorkerPath is the fixed path the push queue delivers job callbacks to.
const WorkerPath = "/api/worker"

// Config holds application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Queue  QueueConfig  `toml:"queue"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port    int    `toml:"port"`
	BaseURL string `toml:"base_url"`
}

// QueueConfig configures the push-queue provider boundary.
type QueueConfig struct {
	ProviderURL    string `toml:"provider_url"`
	Token          string `toml:"token"`
	SigningKey     string `toml:"signing_key"`
	NextSigningKey string `toml:"next_signing_key"`
	// CallbackURL overrides the base_url+worker-path derivation.
	CallbackURL string `toml:"callback_url"`
	// Local delivers messages in-process instead of publishing to the
	// provider. Development only.
	Local bool `toml:"local"`
}

// StoreConfig selects and configures the job store backend.
type StoreConfig struct {
	Backend   string `toml:"backend"` // "sqlite" or "redis"
	DBPath    string `toml:"db_path"`
	RedisAddr string `toml:"redis_addr"`
}

// DefaultDBPath returns the default database path using XDG_STATE_HOME.
func DefaultDBPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, _ := os.UserHomeDir()
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "jobrelay", "jobs.db")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Store:  StoreConfig{Backend: "sqlite", DBPath: DefaultDBPath(), RedisAddr: "localhost:6379"},
	}
}

// Load reads the optional TOML file at path and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv applies JOBRELAY_* environment overrides on top of the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("JOBRELAY_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("JOBRELAY_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("JOBRELAY_QUEUE_URL"); v != "" {
		cfg.Queue.ProviderURL = v
	}
	if v := os.Getenv("JOBRELAY_QUEUE_TOKEN"); v != "" {
		cfg.Queue.Token = v
	}
	if v := os.Getenv("JOBRELAY_SIGNING_KEY"); v != "" {
		cfg.Queue.SigningKey = v
	}
	if v := os.Getenv("JOBRELAY_NEXT_SIGNING_KEY"); v != "" {
		cfg.Queue.NextSigningKey = v
	}
	if v := os.Getenv("JOBRELAY_CALLBACK_URL"); v != "" {
		cfg.Queue.CallbackURL = v
	}
	if v := os.Getenv("JOBRELAY_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("JOBRELAY_DB"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("JOBRELAY_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
}

// CallbackURL resolves the webhook URL the queue should deliver to:
// the explicit override if set, otherwise base_url plus the worker path.
func (c *Config) CallbackURL() string {
	if c.Queue.CallbackURL != "" {
		return c.Queue.CallbackURL
	}
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL + WorkerPath
	}
	return ""
}

// Validate checks the deployment preconditions for enqueueing and
// receiving jobs. It fails fast with a ConfigError naming the first
// missing field.
func (c *Config) Validate() error {
	if !c.Queue.Local {
		if c.Queue.ProviderURL == "" {
			return &domain.ConfigError{Field: "queue.provider_url"}
		}
		if c.Queue.Token == "" {
			return &domain.ConfigError{Field: "queue.token"}
		}
	}
	if c.Queue.SigningKey == "" {
		return &domain.ConfigError{Field: "queue.signing_key"}
	}
	if c.CallbackURL() == "" {
		return &domain.ConfigError{Field: "queue.callback_url"}
	}
	switch c.Store.Backend {
	case "sqlite", "redis":
	default:
		return &domain.ConfigError{Field: "store.backend"}
	}
	return nil
}
