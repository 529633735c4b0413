// Package config loads gateway configuration from TRIPD_* environment
// variables with sensible defaults for everything except credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Search  SearchConfig
	Storage StorageConfig
	Auth    AuthConfig
	Log     LogConfig
	Chat    ChatConfig
}

type ServerConfig struct {
	Host string `env:"TRIPD_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"TRIPD_PORT" envDefault:"4700"`
	// PublicBaseURL is the externally visible URL prefix used when building
	// public links to uploaded assets.
	PublicBaseURL string `env:"TRIPD_PUBLIC_BASE_URL"`
}

type LLMConfig struct {
	APIKey  string `env:"TRIPD_DEEPSEEK_API_KEY"`
	BaseURL string `env:"TRIPD_DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com"`
	Model   string `env:"TRIPD_MODEL" envDefault:"deepseek-chat"`
}

type SearchConfig struct {
	APIKey  string `env:"TRIPD_SEARCH_API_KEY"`
	BaseURL string `env:"TRIPD_SEARCH_BASE_URL" envDefault:"https://google.serper.dev"`
}

type StorageConfig struct {
	DataDir string `env:"TRIPD_DATA_DIR"`
}

type AuthConfig struct {
	// Tokens maps bearer tokens to user IDs, e.g.
	// TRIPD_AUTH_TOKENS="tok1=user-a,tok2=user-b".
	Tokens map[string]string `env:"TRIPD_AUTH_TOKENS"`
}

type LogConfig struct {
	Level string `env:"TRIPD_LOG_LEVEL" envDefault:"info"`
}

type ChatConfig struct {
	// HistoryWindow is the number of trailing history entries forwarded to
	// the model.
	HistoryWindow int `env:"TRIPD_HISTORY_WINDOW" envDefault:"6"`
	// MemoryLimit is the number of recent memories injected into the system
	// prompt.
	MemoryLimit int `env:"TRIPD_MEMORY_LIMIT" envDefault:"5"`
}

// Load parses the environment and validates required credentials. A missing
// LLM API key is a configuration error: the gateway must refuse to serve
// rather than fail every chat request at stream time.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir()
	}

	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: DeepSeek API key (set TRIPD_DEEPSEEK_API_KEY)")
	}
	cfg.LLM.BaseURL = strings.TrimRight(cfg.LLM.BaseURL, "/")
	cfg.Search.BaseURL = strings.TrimRight(cfg.Search.BaseURL, "/")

	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultDataDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".tripd")
	}
	return ".tripd"
}
