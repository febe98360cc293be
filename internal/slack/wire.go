// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package slack

import (
	"github.com/goccy/go-json"
)

// Envelope type constants as sent on the Socket Mode stream.
const (
	EnvelopeTypeHello       = "hello"
	EnvelopeTypeDisconnect  = "disconnect"
	EnvelopeTypeEventsAPI   = "events_api"
	EnvelopeTypeInteractive = "interactive"
)

// EventTypeMessage is the inner event type for posted messages.
const EventTypeMessage = "message"

// Envelope is one inbound unit of data from the Socket Mode stream. Only
// envelopes carrying an EnvelopeID require acknowledgment; hello and
// disconnect frames are connection management.
type Envelope struct {
	Type       string `json:"type"`
	EnvelopeID string `json:"envelope_id"`

	// Reason is set on disconnect frames (e.g. "refresh_requested").
	Reason string `json:"reason"`

	Payload Payload `json:"payload"`
}

// Payload is the inner payload of an events_api envelope.
type Payload struct {
	Type  string `json:"type"` // event_callback
	Event Event  `json:"event"`
}

// Event describes a platform occurrence inside an events_api payload.
// Optional fields decode to their zero value when absent; Slack never sends
// empty strings for user, subtype, or ts, so "" reliably means absent.
type Event struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Channel string `json:"channel"`
	User    string `json:"user"`
	Text    string `json:"text"`
	TS      string `json:"ts"`

	ClientMsgID  string `json:"client_msg_id"`
	ThreadTS     string `json:"thread_ts"`
	ParentUserID string `json:"parent_user_id"`

	// Pass-through sub-objects, not interpreted.
	Reactions   []json.RawMessage `json:"reactions"`
	Attachments []json.RawMessage `json:"attachments"`
	Files       []json.RawMessage `json:"files"`
}

// acknowledgment is the response frame sent back for an envelope.
type acknowledgment struct {
	EnvelopeID string `json:"envelope_id"`
}

// AuthIdentity is the auth.test view of the authenticated bot.
type AuthIdentity struct {
	Team   string `json:"team"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
	BotID  string `json:"bot_id"`
}

// User is the users.info view of a workspace member.
type User struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	RealName string      `json:"real_name"`
	Profile  UserProfile `json:"profile"`
}

// UserProfile carries the profile sub-object of a user.
type UserProfile struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Channel is the conversations.info view of a channel.
type Channel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsChannel bool   `json:"is_channel"`
	IsMember  bool   `json:"is_member"`
}
