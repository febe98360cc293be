// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// envVarForField maps validator struct namespaces to the environment
// variable a user must set. The startup diagnostic speaks in environment
// variable names, not Go field paths.
var envVarForField = map[string]string{
	"Config.Slack.BotToken": "SLACK_BOT_TOKEN",
	"Config.Slack.AppToken": "SLACK_APP_TOKEN",
	"Config.Channel.ID":     "CHANNEL_ID",
	"Config.Channel.Name":   "CHANNEL_NAME",
}

// MissingSettingsError reports every required setting that is absent.
type MissingSettingsError struct {
	// Names holds the missing environment variable names, sorted.
	Names []string
}

// Error implements the error interface with a full listing.
func (e *MissingSettingsError) Error() string {
	return "missing required settings: " + strings.Join(e.Names, ", ")
}

// Validate checks the configuration. Required-field violations are
// aggregated into a single *MissingSettingsError; other constraint
// violations are returned as plain errors.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(c)
	if err == nil {
		return c.validateRanges()
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate configuration: %w", err)
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() != "required" {
			return fmt.Errorf("invalid setting %s: failed %q constraint", fe.Namespace(), fe.Tag())
		}
		if name, ok := envVarForField[fe.Namespace()]; ok {
			missing = append(missing, name)
		} else {
			missing = append(missing, fe.Namespace())
		}
	}
	sort.Strings(missing)

	return &MissingSettingsError{Names: missing}
}

// validateRanges checks numeric settings that validator tags do not cover.
func (c *Config) validateRanges() error {
	if c.Ingest.QueueSize < 1 {
		return fmt.Errorf("ingest queue size must be at least 1, got %d", c.Ingest.QueueSize)
	}
	if c.Slack.RatePerSecond <= 0 {
		return fmt.Errorf("slack api rate must be positive, got %g", c.Slack.RatePerSecond)
	}
	if c.Ops.Enabled && (c.Ops.Port < 1 || c.Ops.Port > 65535) {
		return fmt.Errorf("ops port must be in 1-65535, got %d", c.Ops.Port)
	}
	return nil
}
