// Package config loads the cachefeed configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Cache struct {
		Capacity        int `yaml:"capacity"`
		MaxChars        int `yaml:"max_chars"`
		MaxEncodedBytes int `yaml:"max_encoded_bytes"` // 0 disables the check
	} `yaml:"cache"`

	Redis struct {
		Addr        string        `yaml:"addr"`
		Password    string        `yaml:"password"`
		DB          int           `yaml:"db"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"redis"`

	Feed struct {
		Channel   string `yaml:"channel"`
		KeyPrefix string `yaml:"key_prefix"`
		Backfill  bool   `yaml:"backfill"`
	} `yaml:"feed"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used for fields missing from the file.
func Default() *Config {
	c := &Config{}
	c.Cache.Capacity = 1024
	c.Cache.MaxChars = 256
	c.Redis.Addr = "localhost:6379"
	c.Redis.DialTimeout = 5 * time.Second
	c.Feed.Channel = "cache-feed"
	c.Log.Level = "info"
	c.Log.Format = "text"
	return c
}

// Load reads path on top of Default and validates the result. REDIS_ADDR,
// when set, overrides the configured address.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity))
	}
	if c.Cache.MaxChars < 0 {
		errs = append(errs, fmt.Errorf("cache.max_chars must not be negative, got %d", c.Cache.MaxChars))
	}
	if c.Cache.MaxEncodedBytes < 0 {
		errs = append(errs, fmt.Errorf("cache.max_encoded_bytes must not be negative, got %d", c.Cache.MaxEncodedBytes))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.Feed.Channel == "" {
		errs = append(errs, errors.New("feed.channel is required"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
