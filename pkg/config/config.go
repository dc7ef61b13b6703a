package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProviderConfig holds the settings for one AI provider
type ProviderConfig struct {
	Name    string        `mapstructure:"name"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RequiresAPIKey reports whether the provider needs a key at all. Local
// providers (ollama) authenticate by reachability only.
func (p ProviderConfig) RequiresAPIKey() bool {
	return p.BaseURL == "" || !strings.Contains(p.BaseURL, "localhost") && !strings.Contains(p.BaseURL, "127.0.0.1")
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	LogFile string `mapstructure:"log_file"`
	Persist bool   `mapstructure:"persist"`
}

// ArchiveConfig holds session archive configuration
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// Config is the application configuration
type Config struct {
	Logging         LoggingConfig             `mapstructure:"logging"`
	DefaultProvider string                    `mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
	Archive         ArchiveConfig             `mapstructure:"archive"`
}

var current *Config

// SetDefaults registers defaults on viper for every known provider
func SetDefaults() {
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.log_file", ".aida/aida.log")
	viper.SetDefault("logging.persist", false)

	viper.SetDefault("default_provider", "ollama")
	viper.SetDefault("archive.path", ".aida/sessions.db")

	viper.SetDefault("providers.openai.name", "OpenAI")
	viper.SetDefault("providers.openai.model", "gpt-4o-mini")
	viper.SetDefault("providers.openai.enabled", true)
	viper.SetDefault("providers.openai.timeout", "60s")

	viper.SetDefault("providers.anthropic.name", "Anthropic")
	viper.SetDefault("providers.anthropic.model", "claude-3-5-sonnet-latest")
	viper.SetDefault("providers.anthropic.enabled", true)
	viper.SetDefault("providers.anthropic.timeout", "60s")

	viper.SetDefault("providers.deepseek.name", "DeepSeek")
	viper.SetDefault("providers.deepseek.base_url", "https://api.deepseek.com/v1")
	viper.SetDefault("providers.deepseek.model", "deepseek-chat")
	viper.SetDefault("providers.deepseek.enabled", true)
	viper.SetDefault("providers.deepseek.timeout", "60s")

	viper.SetDefault("providers.moonshot.name", "Moonshot")
	viper.SetDefault("providers.moonshot.base_url", "https://api.moonshot.cn/v1")
	viper.SetDefault("providers.moonshot.model", "moonshot-v1-8k")
	viper.SetDefault("providers.moonshot.enabled", true)
	viper.SetDefault("providers.moonshot.timeout", "60s")

	viper.SetDefault("providers.ollama.name", "Ollama")
	viper.SetDefault("providers.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("providers.ollama.model", "llama3.1:8b")
	viper.SetDefault("providers.ollama.enabled", true)
	viper.SetDefault("providers.ollama.timeout", "120s")
}

// Load reads the configuration file (optional) plus environment overrides
// and unmarshals the result. A `.env` file next to the working directory is
// loaded first so provider keys can live outside the settings file.
func Load(cfgFile string) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load()

	SetDefaults()

	viper.SetEnvPrefix("AIDA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			// A missing file is acceptable, a malformed one is not
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	current = cfg
	return cfg, nil
}

// Get returns the last loaded configuration, loading defaults if needed
func Get() *Config {
	if current == nil {
		cfg, err := Load("")
		if err != nil {
			cfg = &Config{}
		}
		current = cfg
	}
	return current
}

// Provider returns one provider block by id
func (c *Config) Provider(id string) (ProviderConfig, bool) {
	p, ok := c.Providers[id]
	return p, ok
}

// ProviderIDs returns the configured provider ids, sorted for stable output
func (c *Config) ProviderIDs() []string {
	ids := make([]string, 0, len(c.Providers))
	for id := range c.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
