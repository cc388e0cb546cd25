// Package config defines service configuration and its layered loader.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// ShardCount sets the number of dispatcher shards.
	ShardCount int `koanf:"shard_count"`
	// QueueSize bounds pending commands per shard.
	QueueSize int `koanf:"queue_size"`
	// DedupeSize sets how many message and request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`
	// CommandTimeoutMS bounds how long a caller waits for a room command.
	CommandTimeoutMS int `koanf:"command_timeout_ms"`
	// DiscordToken enables the chat bot when set.
	DiscordToken string `koanf:"discord_token"`
	// CommandPrefix starts every chat command, e.g. "!".
	CommandPrefix string `koanf:"command_prefix"`
	// Tiers overrides the built-in skill tier table. Empty keeps the default.
	Tiers map[string]int `koanf:"tiers"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		ShardCount:       runtime.NumCPU(),
		QueueSize:        256,
		DedupeSize:       10_000,
		CommandTimeoutMS: 5_000,
		CommandPrefix:    "!",
	}
}

// CommandTimeout returns CommandTimeoutMS as a duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMS) * time.Millisecond
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.CommandPrefix == "":
		return invalid("command_prefix must not be empty")
	case c.ShardCount < 0 || c.QueueSize < 0 || c.DedupeSize < 0 || c.CommandTimeoutMS < 0:
		return invalid("sizes and timeouts must not be negative")
	}
	for name, r := range c.Tiers {
		if r <= 0 {
			return invalid("tier " + name + " must have a positive rating")
		}
	}
	return nil
}
