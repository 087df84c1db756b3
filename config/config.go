// Package config loads the configuration of nsub based tools with viper.
package config

import (
	"fmt"
	"time"

	"github.com/tehsphinx/nsub"
)

// Config represents the complete configuration.
type Config struct {
	NATS         NATSConfig         `mapstructure:"nats"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// NATSConfig holds the connection settings.
type NATSConfig struct {
	URL     string        `mapstructure:"url"`
	Name    string        `mapstructure:"name"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SubscriptionConfig holds the subscription settings. Negative limits disable them.
type SubscriptionConfig struct {
	Subject           string        `mapstructure:"subject"`
	Queue             string        `mapstructure:"queue"`
	PendingMsgsLimit  int           `mapstructure:"pending_msgs_limit"`
	PendingBytesLimit int64         `mapstructure:"pending_bytes_limit"`
	QueueDepth        int           `mapstructure:"queue_depth"`
	DrainTimeout      time.Duration `mapstructure:"drain_timeout"`
	MaxMsgs           int           `mapstructure:"max_msgs"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Dev bool `mapstructure:"dev"`
}

// MetricsConfig holds the prometheus endpoint settings. An empty Addr disables it.
type MetricsConfig struct {
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

// Validate checks the subscription settings.
func (c *Config) Validate() error {
	s := c.Subscription
	if !nsub.IsValidSubject(s.Subject) {
		return fmt.Errorf("%w: subscription.subject %q", nsub.ErrInvalidArg, s.Subject)
	}
	if s.Queue != "" && !nsub.IsValidQueueGroupName(s.Queue) {
		return fmt.Errorf("%w: subscription.queue %q", nsub.ErrInvalidArg, s.Queue)
	}
	if s.PendingMsgsLimit == 0 || s.PendingBytesLimit == 0 {
		return fmt.Errorf("%w: pending limits cannot be zero", nsub.ErrInvalidArg)
	}
	if s.DrainTimeout <= 0 {
		return fmt.Errorf("%w: subscription.drain_timeout must be positive", nsub.ErrInvalidArg)
	}
	return nil
}

// SubscriptionOptions returns the nsub options for the configured subscription.
func (c *Config) SubscriptionOptions() []nsub.Option {
	return []nsub.Option{
		nsub.WithPendingLimits(c.Subscription.PendingMsgsLimit, c.Subscription.PendingBytesLimit),
		nsub.WithQueueDepth(c.Subscription.QueueDepth),
	}
}
