package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cagandemirsamli/personalassistant/logging"
)

// EnvPrefix prefixes environment overrides: ASSISTANT_DATA_DIR,
// ASSISTANT_MODEL_PROVIDER, ...
const EnvPrefix = "ASSISTANT"

// Default model names per provider.
const (
	DefaultOpenAIModel    = "gpt-4.1-mini"
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
)

// Config is the effective assistant configuration.
type Config struct {
	DataDir string        `mapstructure:"data_dir" yaml:"data_dir"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Model   ModelConfig   `mapstructure:"model" yaml:"model"`
	Guard   GuardConfig   `mapstructure:"guard" yaml:"guard"`
	Mail    MailConfig    `mapstructure:"mail" yaml:"mail"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// SessionConfig selects the conversation store.
type SessionConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // sqlite or memory
	Path   string `mapstructure:"path" yaml:"path"`
	Name   string `mapstructure:"name" yaml:"name"`
}

// ModelConfig selects the oracle.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"` // openai or anthropic
	Name        string  `mapstructure:"name" yaml:"name"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxCalls    int     `mapstructure:"max_calls" yaml:"max_calls"`
}

// GuardConfig tunes the rate limiter and circuit breaker around the oracle.
type GuardConfig struct {
	RequestsPerMinute float64       `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
	MaxFailures       uint32        `mapstructure:"max_failures" yaml:"max_failures"`
	OpenTimeout       time.Duration `mapstructure:"open_timeout" yaml:"open_timeout"`
}

// MailConfig locates mailbox exports.
type MailConfig struct {
	Dir      string        `mapstructure:"dir" yaml:"dir"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("session.driver", "sqlite")
	v.SetDefault("session.path", "")
	v.SetDefault("session.name", "PersonalAssistant")
	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.name", "")
	v.SetDefault("model.temperature", 0.7)
	v.SetDefault("model.max_tokens", 4096)
	v.SetDefault("model.max_calls", 25)
	v.SetDefault("guard.requests_per_minute", 60)
	v.SetDefault("guard.burst", 5)
	v.SetDefault("guard.max_failures", 5)
	v.SetDefault("guard.open_timeout", 30*time.Second)
	v.SetDefault("mail.dir", "")
	v.SetDefault("mail.cache_ttl", 10*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads .env (if present), then path or the first assistant.yaml found
// in the working directory or $HOME/.config/personal-assistant, then
// ASSISTANT_* environment overrides. An explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("assistant")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "personal-assistant"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve fills values derived from other fields.
func (c *Config) resolve() {
	if c.Session.Path == "" {
		c.Session.Path = filepath.Join(c.DataDir, "conversations.db")
	}
	if c.Mail.Dir == "" {
		c.Mail.Dir = filepath.Join(c.DataDir, "mail")
	}
	c.Model.Provider = strings.ToLower(c.Model.Provider)
	if c.Model.Name == "" {
		if c.Model.Provider == "anthropic" {
			c.Model.Name = DefaultAnthropicModel
		} else {
			c.Model.Name = DefaultOpenAIModel
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir must not be empty")
	}
	switch c.Session.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown session.driver %q (want sqlite or memory)", c.Session.Driver)
	}
	if strings.TrimSpace(c.Session.Name) == "" {
		return errors.New("config: session.name must not be empty")
	}
	switch c.Model.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown model.provider %q (want openai or anthropic)", c.Model.Provider)
	}
	if c.Model.MaxCalls < 1 {
		return fmt.Errorf("config: model.max_calls must be positive, got %d", c.Model.MaxCalls)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Logger builds the process logger. Output goes to stderr.
func (c *Config) Logger() logging.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = logging.LogLevelInfo
	}
	return logging.New(&logging.Config{
		Level:     level,
		Format:    c.Log.Format,
		Output:    os.Stderr,
		Component: "assistant",
	})
}
