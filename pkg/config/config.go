// Package config loads typed configuration structs from environment
// variables using `env` struct tags.
//
//	type HTTPConfig struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
//	}
//
//	cfg, err := config.Load[HTTPConfig]()
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrLoadFailed wraps parse failures so callers can match without caring
// about the underlying library.
var ErrLoadFailed = errors.New("config: load failed")

// Load parses environment variables into a fresh T.
func Load[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return cfg, nil
}

// LoadWithPrefix parses environment variables whose names start with the
// given prefix, e.g. prefix "APP_" resolves `env:"PORT"` from APP_PORT.
func LoadWithPrefix[T any](prefix string) (T, error) {
	var cfg T
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return cfg, nil
}

// LoadWithFile seeds T from a YAML file, then lets environment variables
// override the file values. Missing files are not an error, so a single
// binary works with or without a local config file.
func LoadWithFile[T any](path string) (T, error) {
	var cfg T
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fall through to env-only
	case err != nil:
		return cfg, fmt.Errorf("%w: read %s: %w", ErrLoadFailed, path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: parse %s: %w", ErrLoadFailed, path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on failure, for use during startup wiring.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(err)
	}
	return cfg
}
