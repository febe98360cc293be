// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package slack

import "errors"

// ErrNotConnected is returned when an acknowledgment is attempted while the
// Socket Mode connection is down.
var ErrNotConnected = errors.New("socket mode connection not established")

// APIError is a Slack Web API ok:false response.
type APIError struct {
	// Method is the Web API method that failed (e.g. "users.info").
	Method string

	// Code is Slack's machine-readable error string
	// (e.g. "user_not_found", "missing_scope", "channel_not_found").
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return "slack " + e.Method + ": " + e.Code
}
