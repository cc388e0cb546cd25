package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "TEAMPICKER_"
	envConfig  = envPrefix + "CONFIG"
	envDotFile = envPrefix + "ENV_FILE"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if TEAMPICKER_CONFIG is set
//  3. env (prefix TEAMPICKER_), including values from a .env file
//
// The .env file never overrides variables already set in the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadFailed(path, err)
		}
	}

	// TEAMPICKER_QUEUE_SIZE -> queue_size. Underscores are kept so keys match
	// the koanf tags; nested tier overrides come from the file only.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadFailed("env", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadFailed("unmarshal", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotFile)
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return loadFailed(path, err)
}
