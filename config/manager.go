package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tehsphinx/nsub"
)

// Manager handles configuration loading from a config file and the environment.
type Manager struct {
	v *viper.Viper
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// NewManager creates a new configuration manager with defaults.
func NewManager(opts ...Option) *Manager {
	v := viper.New()

	v.SetConfigName("nsub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.nsub")

	v.SetEnvPrefix("NSUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	m := &Manager{v: v}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithConfigFile sets a specific config file path.
func WithConfigFile(path string) Option {
	return func(m *Manager) {
		m.v.SetConfigFile(path)
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(m *Manager) {
		m.v.SetEnvPrefix(prefix)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.name", "nsub")
	v.SetDefault("nats.timeout", 5*time.Second)

	v.SetDefault("subscription.subject", "")
	v.SetDefault("subscription.queue", "")
	v.SetDefault("subscription.pending_msgs_limit", nsub.DefaultPendingMsgsLimit)
	v.SetDefault("subscription.pending_bytes_limit", nsub.DefaultPendingBytesLimit)
	v.SetDefault("subscription.queue_depth", 0)
	v.SetDefault("subscription.drain_timeout", nsub.DefaultDrainTimeout)
	v.SetDefault("subscription.max_msgs", 0)

	v.SetDefault("logger.dev", false)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.namespace", "nsub")
}

// Load reads the config file if there is one. A missing file is not an error.
func (m *Manager) Load() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Set overrides a configuration value.
func (m *Manager) Set(key string, value interface{}) {
	m.v.Set(key, value)
}
