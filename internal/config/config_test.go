// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package config

import (
	"errors"
	"strings"
	"testing"
)

// setRequiredEnv sets all four required variables; individual tests unset
// the ones they exercise.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("CHANNEL_ID", "C123")
	t.Setenv("CHANNEL_NAME", "general")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.Path != "slack_messages.json" {
		t.Errorf("default store path = %q, want slack_messages.json", cfg.Store.Path)
	}
	if cfg.Ingest.QueueSize != 64 {
		t.Errorf("default queue size = %d, want 64", cfg.Ingest.QueueSize)
	}
	if cfg.Ingest.Dedup {
		t.Error("dedup should default to off")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
	if !cfg.Ops.Enabled || cfg.Ops.Port != 9477 {
		t.Errorf("ops defaults = enabled:%v port:%d, want enabled on 9477", cfg.Ops.Enabled, cfg.Ops.Port)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MESSAGES_FILE", "/tmp/archive.json")
	t.Setenv("INGEST_QUEUE_SIZE", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SLACK_API_URL", "http://127.0.0.1:9999/api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.Path != "/tmp/archive.json" {
		t.Errorf("store path = %q, want /tmp/archive.json", cfg.Store.Path)
	}
	if cfg.Ingest.QueueSize != 8 {
		t.Errorf("queue size = %d, want 8", cfg.Ingest.QueueSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Slack.APIURL != "http://127.0.0.1:9999/api" {
		t.Errorf("api url = %q", cfg.Slack.APIURL)
	}
}

func TestLoadMissingSettingsListsAll(t *testing.T) {
	tests := []struct {
		name    string
		unset   []string
		missing []string
	}{
		{
			name:    "all missing",
			unset:   []string{"SLACK_BOT_TOKEN", "SLACK_APP_TOKEN", "CHANNEL_ID", "CHANNEL_NAME"},
			missing: []string{"CHANNEL_ID", "CHANNEL_NAME", "SLACK_APP_TOKEN", "SLACK_BOT_TOKEN"},
		},
		{
			name:    "bot token missing",
			unset:   []string{"SLACK_BOT_TOKEN"},
			missing: []string{"SLACK_BOT_TOKEN"},
		},
		{
			name:    "channel identity missing",
			unset:   []string{"CHANNEL_ID", "CHANNEL_NAME"},
			missing: []string{"CHANNEL_ID", "CHANNEL_NAME"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for _, name := range tt.unset {
				t.Setenv(name, "")
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail with missing settings")
			}

			var merr *MissingSettingsError
			if !errors.As(err, &merr) {
				t.Fatalf("error type = %T, want *MissingSettingsError (%v)", err, err)
			}

			if len(merr.Names) != len(tt.missing) {
				t.Fatalf("missing = %v, want %v", merr.Names, tt.missing)
			}
			for i, name := range tt.missing {
				if merr.Names[i] != name {
					t.Errorf("missing[%d] = %q, want %q", i, merr.Names[i], name)
				}
			}
			for _, name := range tt.missing {
				if !strings.Contains(merr.Error(), name) {
					t.Errorf("error message %q should name %s", merr.Error(), name)
				}
			}
		})
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero queue size", func(c *Config) { c.Ingest.QueueSize = 0 }},
		{"negative rate", func(c *Config) { c.Slack.RatePerSecond = -1 }},
		{"ops port out of range", func(c *Config) { c.Ops.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Slack.BotToken = "xoxb-test"
			cfg.Slack.AppToken = "xapp-test"
			cfg.Channel.ID = "C123"
			cfg.Channel.Name = "general"
			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should reject out-of-range setting")
			}
		})
	}
}

func TestEnvTransformIgnoresUnknownVars(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("envTransformFunc(PATH) = %q, want skip", got)
	}
	if got := envTransformFunc("SLACK_BOT_TOKEN"); got != "slack.bot_token" {
		t.Errorf("envTransformFunc(SLACK_BOT_TOKEN) = %q", got)
	}
}
