// Package config loads daemon configuration from a yaml file, GOGOGATE_*
// environment variables, and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultHTTPAddr     = ":9309"
	DefaultPollInterval = 30 * time.Second
	DefaultTopicPrefix  = "gogogate2"
	DefaultTimeout      = 10 * time.Second
)

// Config is the fully resolved daemon configuration.
type Config struct {
	Device  DeviceConfig `mapstructure:"device"`
	HTTP    HTTPConfig   `mapstructure:"http"`
	MQTT    MQTTConfig   `mapstructure:"mqtt"`
	LogMode string       `mapstructure:"log_mode"`
}

type DeviceConfig struct {
	Host     string        `mapstructure:"host"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MQTTConfig struct {
	// Enabled turns the MQTT bridge on. Metrics are served either way.
	Enabled      bool          `mapstructure:"enabled"`
	Broker       string        `mapstructure:"broker"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	TLS          bool          `mapstructure:"tls"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Load reads the config file at path (optional when empty: env and
// defaults only) and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()

	// Every key gets a default so AutomaticEnv can see it.
	v.SetDefault("device.host", "")
	v.SetDefault("device.username", "")
	v.SetDefault("device.password", "")
	v.SetDefault("device.timeout", DefaultTimeout)
	v.SetDefault("http.addr", DefaultHTTPAddr)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.tls", false)
	v.SetDefault("mqtt.topic_prefix", DefaultTopicPrefix)
	v.SetDefault("mqtt.poll_interval", DefaultPollInterval)
	v.SetDefault("log_mode", "production")

	v.SetEnvPrefix("gogogate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Device.Host) == "" {
		return fmt.Errorf("device.host is required")
	}
	if cfg.MQTT.Enabled && strings.TrimSpace(cfg.MQTT.Broker) == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt.enabled is set")
	}
	return nil
}
