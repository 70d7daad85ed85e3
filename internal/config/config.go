// Package config loads runtime settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CALC_ADDR.
const EnvPrefix = "CALC_"

// Config holds every tunable of the calc binary.
type Config struct {
	Addr          string        `mapstructure:"addr"`
	ServiceName   string        `mapstructure:"service_name"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFile       string        `mapstructure:"log_file"`
	OTLP          bool          `mapstructure:"otlp"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SessionPrefix string        `mapstructure:"session_prefix"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Addr:          ":8080",
		ServiceName:   "calc-editor",
		LogLevel:      "info",
		SessionTTL:    time.Hour,
		SessionPrefix: "calc:session:",
	}
}

var keys = []string{
	"addr", "service_name", "log_level", "log_file", "otlp",
	"redis_addr", "redis_password", "redis_db", "session_ttl", "session_prefix",
}

// Load layers defaults, the YAML file at path (skipped when path is empty or
// the file does not exist) and environment variables, in that order.
func Load(fsys afero.Fs, path string) (Config, error) {
	return load(fsys, path, os.LookupEnv)
}

func load(fsys afero.Fs, path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := afero.ReadFile(fsys, path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	for _, key := range keys {
		if v, ok := lookup(EnvPrefix + strings.ToUpper(key)); ok {
			raw[key] = v
		}
	}
	// The OTel SDK convention wins over our own variable.
	if v, ok := lookup("OTEL_SERVICE_NAME"); ok && v != "" {
		raw["service_name"] = v
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, fmt.Errorf("config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
