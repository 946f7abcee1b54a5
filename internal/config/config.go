package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/hamiltonlab/bluebook/internal/docparse"
	"github.com/hamiltonlab/bluebook/internal/providers"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("parser", defaults.Parser)
	viper.SetDefault("llm", defaults.LLM)
	viper.SetDefault("pipeline", defaults.Pipeline)

	// Environment variables with BLUEBOOK_ prefix
	viper.SetEnvPrefix("BLUEBOOK")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.bluebook")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// LoadDotEnv loads a .env file from the working directory when present, so
// API keys referenced as ${ENV_VAR} resolve without exporting.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToClientConfig converts the llm section into a provider client config,
// resolving ${ENV_VAR} references in the API key.
func (c *Config) ToClientConfig() providers.ClientConfig {
	return providers.ClientConfig{
		Type:       c.LLM.Type,
		Model:      c.LLM.Model,
		APIKey:     ResolveEnvVars(c.LLM.APIKey),
		RateLimit:  c.LLM.RateLimit,
		MaxRetries: c.LLM.MaxRetries,
		Timeout:    time.Duration(c.LLM.TimeoutSeconds) * time.Second,
	}
}

// ToParserConfig converts the parser section into a docparse config,
// resolving ${ENV_VAR} references in the API key.
func (c *Config) ToParserConfig() docparse.Config {
	return docparse.Config{
		Mode:       c.Parser.Mode,
		Endpoint:   c.Parser.Endpoint,
		APIKey:     ResolveEnvVars(c.Parser.APIKey),
		Timeout:    time.Duration(c.Parser.TimeoutSeconds) * time.Second,
		MaxRetries: c.Parser.MaxRetries,
		BatchPages: c.Parser.BatchPages,
		Port:       c.Parser.Port,
	}
}

// ResolvedParserAPIKey returns the parser API key with ${ENV_VAR} references
// expanded.
func (c *Config) ResolvedParserAPIKey() string {
	return ResolveEnvVars(c.Parser.APIKey)
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Bluebook configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx VISION_AGENT_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
