// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package store

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Profile is a snapshot of a message sender's identity at ingestion time.
// Every field defaults to the empty string when the lookup fails or the
// response omits it; consumers of the archive never see null.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RealName    string `json:"real_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// RawList is an ordered sequence of opaque structured sub-objects carried
// through from the event without interpretation. A nil list marshals as []
// so the archive format stays stable for downstream consumers.
type RawList []json.RawMessage

// MarshalJSON emits [] for a nil list.
func (l RawList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]json.RawMessage(l))
}

// Record is the normalized, enriched, persisted representation of one
// accepted message event. Field order matches the on-disk key order of the
// archive format and must not be rearranged.
type Record struct {
	// Timestamp is the human-readable local time the message was posted,
	// derived from SlackTimestamp.
	Timestamp string `json:"timestamp"`

	// SlackTimestamp is the opaque platform-native timestamp string. It
	// is the ordering and deduplication key within a channel.
	SlackTimestamp string `json:"slack_timestamp"`

	User Profile `json:"user"`

	// Message is the message text; may be empty.
	Message string `json:"message"`

	ChannelName string `json:"channel_name"`
	ChannelID   string `json:"channel_id"`

	// MessageID is the client message ID; empty when absent.
	MessageID string `json:"message_id"`

	// ThreadTimestamp links a reply to its thread root; empty when absent.
	ThreadTimestamp string `json:"thread_ts"`

	// ParentUserID is the thread root author; empty when absent.
	ParentUserID string `json:"parent_user_id"`

	Reactions   RawList `json:"reactions"`
	Attachments RawList `json:"attachments"`
	Files       RawList `json:"files"`
}

// Archive is the persisted container for one tracked channel.
type Archive struct {
	ChannelName string   `json:"channel_name"`
	ChannelID   string   `json:"channel_id"`
	Messages    []Record `json:"messages"`
}

// newArchive creates an empty archive with the given channel metadata.
// Messages is non-nil so an empty archive marshals with "messages": [].
func newArchive(channelName, channelID string) *Archive {
	return &Archive{
		ChannelName: channelName,
		ChannelID:   channelID,
		Messages:    make([]Record, 0),
	}
}

// timestampLayout is the archive's human-readable time format.
const timestampLayout = "2006-01-02 15:04:05"

// LocalTimestamp converts a Slack timestamp ("1700000000.000001") to the
// archive's human-readable local time. A malformed timestamp falls back to
// the current time; Slack event timestamps are always numeric in practice.
func LocalTimestamp(slackTS string) string {
	secs, err := strconv.ParseFloat(slackTS, 64)
	if err != nil {
		return time.Now().Format(timestampLayout)
	}
	return time.Unix(int64(secs), 0).Format(timestampLayout)
}
