// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package ingest

import (
	"github.com/chanscribe/chanscribe/internal/slack"
)

// Filter decides whether an inbound envelope carries a plain user message
// in the tracked channel worth archiving.
type Filter struct {
	channelID string
}

// NewFilter creates a filter for one tracked channel.
func NewFilter(channelID string) *Filter {
	return &Filter{channelID: channelID}
}

// Accept reports whether the envelope should be archived. All predicates
// must hold:
//   - the envelope is an Events API envelope (interactive and other
//     envelope types are never archived regardless of shape)
//   - the inner event type is exactly "message"
//   - the event's channel matches the tracked channel
//   - a user field is present (channel- and bot-authored events lack one)
//   - no subtype is set (edits, deletions, joins, and other system
//     messages carry one)
func (f *Filter) Accept(env slack.Envelope) bool {
	if env.Type != slack.EnvelopeTypeEventsAPI {
		return false
	}
	ev := env.Payload.Event
	if ev.Type != slack.EventTypeMessage {
		return false
	}
	if ev.Channel != f.channelID {
		return false
	}
	if ev.User == "" {
		return false
	}
	if ev.Subtype != "" {
		return false
	}
	return true
}
