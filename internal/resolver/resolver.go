// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

// Package resolver turns Slack user IDs into archived sender profiles.
// Resolution is best-effort: a lookup failure degrades to a placeholder
// profile so a flaky users.info call can never lose a message.
package resolver

import (
	"context"
	"time"

	"github.com/chanscribe/chanscribe/internal/logging"
	"github.com/chanscribe/chanscribe/internal/metrics"
	"github.com/chanscribe/chanscribe/internal/slack"
	"github.com/chanscribe/chanscribe/internal/store"
)

// placeholderName is recorded when a sender's profile cannot be fetched.
const placeholderName = "Unknown"

// Resolver maps a user ID to the profile that gets archived with each
// message. Implementations never return an error: resolution failures
// produce a placeholder profile instead.
type Resolver interface {
	Resolve(ctx context.Context, userID string) store.Profile
}

// UserInfoClient is the slice of the Slack Web API the resolver needs.
type UserInfoClient interface {
	UserInfo(ctx context.Context, userID string) (*slack.User, error)
}

// SlackResolver resolves profiles through users.info.
type SlackResolver struct {
	api UserInfoClient
}

// NewSlackResolver creates a resolver backed by the Slack Web API.
func NewSlackResolver(api UserInfoClient) *SlackResolver {
	return &SlackResolver{api: api}
}

// Resolve fetches the user's profile. Absent profile fields map to empty
// strings; any lookup error maps to a placeholder so processing continues.
func (r *SlackResolver) Resolve(ctx context.Context, userID string) store.Profile {
	start := time.Now()
	user, err := r.api.UserInfo(ctx, userID)
	metrics.ProfileLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProfileLookups.WithLabelValues("failure").Inc()
		logging.Warn().Err(err).Str("user_id", userID).Msg("profile lookup failed, using placeholder")
		return Placeholder(userID)
	}

	metrics.ProfileLookups.WithLabelValues("success").Inc()
	return store.Profile{
		ID:          user.ID,
		Name:        user.Name,
		RealName:    user.RealName,
		DisplayName: user.Profile.DisplayName,
		Email:       user.Profile.Email,
	}
}

// Placeholder is the profile recorded when resolution is unavailable.
// The user ID is preserved so the archive entry stays attributable.
func Placeholder(userID string) store.Profile {
	return store.Profile{
		ID:   userID,
		Name: placeholderName,
	}
}
