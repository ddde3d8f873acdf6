// Package config loads process configuration with viper, bound to pflag
// command-line flags and environment variables. WatchReload can watch the
// config file with fsnotify; values that components already read at
// construction (such as the janitor's intervals) are not changed by a
// reload.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	v *viper.Viper
}

func defaults(v *viper.Viper) {
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("janitor.interval", 30*time.Second)
	v.SetDefault("janitor.disconnect_grace", 60*time.Second)
	v.SetDefault("janitor.collab_ttl", 5*time.Minute)

	v.SetDefault("chat.thread_cache_size", 256)
	v.SetDefault("chat.anthropic_api_key", "")
	v.SetDefault("chat.model", "claude-3-5-sonnet-latest")
	v.SetDefault("chat.breaker_max_requests", uint32(1))
	v.SetDefault("chat.breaker_open_timeout", 30*time.Second)
}

// Load reads /etc/floorqueue/config.yaml (or ./config.yaml), overlays
// FLOORQUEUE_-prefixed environment variables and the given flags. It does
// not watch the file; see WatchReload.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/floorqueue")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FLOORQUEUE")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// WatchReload watches the config file and calls onChange each time viper
// has re-read it.
func (c *Config) WatchReload(logger *slog.Logger, onChange func(*Config)) {
	c.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("CONFIG_RELOADED", slog.String("file", e.Name))
		onChange(c)
	})
	c.v.WatchConfig()
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.v.GetString("host"), c.v.GetInt("port"))
}

func (c *Config) LogLevel() string  { return c.v.GetString("log_level") }
func (c *Config) LogFormat() string { return c.v.GetString("log_format") }

func (c *Config) JanitorInterval() time.Duration        { return c.v.GetDuration("janitor.interval") }
func (c *Config) JanitorDisconnectGrace() time.Duration { return c.v.GetDuration("janitor.disconnect_grace") }
func (c *Config) JanitorCollabTTL() time.Duration       { return c.v.GetDuration("janitor.collab_ttl") }

func (c *Config) ChatThreadCacheSize() int       { return c.v.GetInt("chat.thread_cache_size") }
func (c *Config) ChatAnthropicAPIKey() string    { return c.v.GetString("chat.anthropic_api_key") }
func (c *Config) ChatModel() string              { return c.v.GetString("chat.model") }
func (c *Config) ChatBreakerMaxRequests() uint32 { return uint32(c.v.GetUint("chat.breaker_max_requests")) }
func (c *Config) ChatBreakerOpenTimeout() time.Duration {
	return c.v.GetDuration("chat.breaker_open_timeout")
}
