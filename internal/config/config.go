// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

// Package config loads and validates Chanscribe configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, /etc/chanscribe/config.yaml,
//     or CONFIG_PATH)
//  3. Environment variables
//
// Four settings are required and have no defaults: SLACK_BOT_TOKEN,
// SLACK_APP_TOKEN, CHANNEL_ID and CHANNEL_NAME. Load returns a
// *MissingSettingsError naming every absent one so startup can fail with a
// complete diagnostic rather than one variable at a time.
package config

import (
	"time"
)

// Config is the immutable top-level configuration, constructed once at
// startup and passed explicitly into every component.
type Config struct {
	Slack   SlackConfig   `koanf:"slack"`
	Channel ChannelConfig `koanf:"channel"`
	Store   StoreConfig   `koanf:"store"`
	Ingest  IngestConfig  `koanf:"ingest"`
	Ops     OpsConfig     `koanf:"ops"`
	Logging LoggingConfig `koanf:"logging"`
}

// SlackConfig holds Slack API credentials and client tuning.
type SlackConfig struct {
	// BotToken is the xoxb- token used for Web API calls (users.info,
	// conversations.info).
	BotToken string `koanf:"bot_token" validate:"required"`

	// AppToken is the xapp- app-level token used to open a Socket Mode
	// connection (apps.connections.open).
	AppToken string `koanf:"app_token" validate:"required"`

	// APIURL overrides the Web API base URL. Empty means the public
	// https://slack.com/api endpoint. Used by tests.
	APIURL string `koanf:"api_url"`

	// RatePerSecond caps outbound Web API requests. Slack's Tier 4
	// methods allow ~100/min; 1/s is conservative for a per-message
	// users.info lookup.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// ChannelConfig identifies the single tracked channel.
type ChannelConfig struct {
	ID   string `koanf:"id" validate:"required"`
	Name string `koanf:"name" validate:"required"`
}

// StoreConfig holds archive file settings.
type StoreConfig struct {
	// Path is the JSON archive file location.
	Path string `koanf:"path"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// QueueSize bounds the single-consumer envelope queue between the
	// transport reader and the pipeline worker.
	QueueSize int `koanf:"queue_size"`

	// Dedup, when enabled, drops an accepted event whose Slack timestamp
	// equals the most recently appended one. Off by default: the
	// transport is assumed not to redeliver, and silently deduplicating
	// would mask transport misbehavior.
	Dedup bool `koanf:"dedup"`
}

// OpsConfig holds the operational HTTP endpoint settings.
type OpsConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Required
// credentials and channel identity deliberately have no defaults.
func defaultConfig() *Config {
	return &Config{
		Slack: SlackConfig{
			BotToken:      "",
			AppToken:      "",
			APIURL:        "", // public slack.com endpoint
			RatePerSecond: 1.0,
		},
		Channel: ChannelConfig{
			ID:   "",
			Name: "",
		},
		Store: StoreConfig{
			Path: "slack_messages.json",
		},
		Ingest: IngestConfig{
			QueueSize: 64,
			Dedup:     false,
		},
		Ops: OpsConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    9477,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}
