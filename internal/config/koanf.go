// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chanscribe/config.yaml",
	"/etc/chanscribe/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration with layered sources: defaults, then an optional
// YAML config file, then environment variables (highest priority). The
// result is validated; a *MissingSettingsError is returned when any
// required setting is absent.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// SLACK_BOT_TOKEN -> slack.bot_token, CHANNEL_ID -> channel.id, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps flat environment variable names (lowercased) to nested
// koanf config paths. Unmapped variables are ignored so arbitrary
// environment noise cannot pollute the configuration.
var envMappings = map[string]string{
	// Slack credentials and client tuning
	"slack_bot_token": "slack.bot_token",
	"slack_app_token": "slack.app_token",
	"slack_api_url":   "slack.api_url",
	"slack_api_rate":  "slack.rate_per_second",

	// Tracked channel
	"channel_id":   "channel.id",
	"channel_name": "channel.name",

	// Archive store
	"messages_file": "store.path",

	// Ingestion pipeline
	"ingest_queue_size": "ingest.queue_size",
	"ingest_dedup":      "ingest.dedup",

	// Ops endpoint
	"ops_enabled": "ops.enabled",
	"ops_host":    "ops.host",
	"ops_port":    "ops.port",
	"ops_timeout": "ops.timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config
// paths using envMappings. Returning empty string skips the variable.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[lowerASCII(key)]; ok {
		return mapped
	}
	return ""
}

// lowerASCII lowercases without locale surprises; env var names are ASCII.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
