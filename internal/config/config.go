// Package config resolves runtime settings from defaults, an optional YAML
// file and DIAGRAPH_* environment variables, in that order.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. DIAGRAPH_REDIS_ADDR.
const EnvPrefix = "DIAGRAPH_"

// Config is the resolved runtime configuration.
type Config struct {
	// Graph sources. The first non-empty one wins: graph_file, sqlite_path, loam_dir.
	GraphFile  string `mapstructure:"graph_file" yaml:"graph_file"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	LoamDir    string `mapstructure:"loam_dir" yaml:"loam_dir"`

	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	Publish PublishConfig `mapstructure:"publish" yaml:"publish"`

	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	MaxCandidates int    `mapstructure:"max_candidates" yaml:"max_candidates"`
	CacheSize     int    `mapstructure:"cache_size" yaml:"cache_size"`
	MaxInputSize  int    `mapstructure:"max_input_size" yaml:"max_input_size"`
}

// RedisConfig enables the Redis session store, locker and publisher when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// PublishConfig shapes what the publisher sends out.
type PublishConfig struct {
	// MaskKeys are regular expressions; matching belief variables are masked.
	// The environment form is comma separated.
	MaskKeys []string `mapstructure:"mask_keys" yaml:"mask_keys"`
	// EncryptionKey is a base64 encoded 32 byte AES key sealing every payload.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key"`
}

// Key decodes EncryptionKey. It returns nil when encryption is off.
func (p PublishConfig) Key() ([]byte, error) {
	if p.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(p.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("publish.encryption_key is not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("publish.encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Keys lists every setting in dotted form. Each has an environment override
// named EnvPrefix + upper-cased key with dots replaced by underscores.
var Keys = []string{
	"graph_file",
	"sqlite_path",
	"loam_dir",
	"redis.addr",
	"redis.password",
	"redis.db",
	"redis.prefix",
	"redis.ttl",
	"http.addr",
	"publish.mask_keys",
	"publish.encryption_key",
	"log_level",
	"max_candidates",
	"cache_size",
	"max_input_size",
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"redis": map[string]any{
			"db":     0,
			"prefix": "diagraph:",
			"ttl":    "0s",
		},
		"http": map[string]any{
			"addr": ":8080",
		},
		"log_level":      "info",
		"max_candidates": 0,
		"cache_size":     1024,
		"max_input_size": 4096,
	}
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load resolves the configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	raw := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		merge(raw, file)
	}

	for _, key := range Keys {
		if v, ok := os.LookupEnv(EnvName(key)); ok {
			set(raw, key, v)
		}
	}

	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MaxCandidates < 0:
		return fmt.Errorf("max_candidates must not be negative, got %d", c.MaxCandidates)
	case c.CacheSize <= 0:
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	case c.MaxInputSize <= 0:
		return fmt.Errorf("max_input_size must be positive, got %d", c.MaxInputSize)
	case c.Redis.TTL < 0:
		return fmt.Errorf("redis.ttl must not be negative, got %s", c.Redis.TTL)
	}
	_, err := c.Publish.Key()
	return err
}

func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		existing, ok := dst[k].(map[string]any)
		if !ok {
			existing = make(map[string]any)
			dst[k] = existing
		}
		merge(existing, sub)
	}
}

func set(m map[string]any, key, value string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		sub, ok := m[p].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			m[p] = sub
		}
		m = sub
	}
	m[parts[len(parts)-1]] = value
}

// Source returns the graph source to open: graph_file, sqlite_path or
// loam_dir, whichever is set first. Empty when none is configured.
func (c *Config) Source() string {
	for _, s := range []string{c.GraphFile, c.SQLitePath, c.LoamDir} {
		if s != "" {
			return s
		}
	}
	return ""
}
