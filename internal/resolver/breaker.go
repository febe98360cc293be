// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package resolver

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/chanscribe/chanscribe/internal/logging"
	"github.com/chanscribe/chanscribe/internal/metrics"
	"github.com/chanscribe/chanscribe/internal/store"
)

const breakerName = "users-info"

// BreakerResolver wraps a resolver's underlying API with a circuit breaker
// so a Slack Web API outage does not stall the ingest pipeline: once the
// circuit opens, lookups short-circuit to placeholder profiles until Slack
// recovers.
//
// The breaker uses real time for its interval and timeout calculations;
// the timing governs recovery, not data integrity.
type BreakerResolver struct {
	api UserInfoClient
	cb  *gobreaker.CircuitBreaker[store.Profile]
}

// NewBreakerResolver wraps api with circuit breaker protection.
// Breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 30 second timeout before attempting recovery
// - Opens after 60% failure rate with minimum 5 requests
func NewBreakerResolver(api UserInfoClient) *BreakerResolver {
	metrics.BreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[store.Profile](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening profile lookup circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("profile lookup circuit state change")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.BreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerResolver{api: api, cb: cb}
}

// Resolve fetches the profile through the breaker. Rejected and failed
// lookups both degrade to a placeholder; the distinction only shows up in
// metrics and logs.
func (r *BreakerResolver) Resolve(ctx context.Context, userID string) store.Profile {
	start := time.Now()
	profile, err := r.cb.Execute(func() (store.Profile, error) {
		user, err := r.api.UserInfo(ctx, userID)
		if err != nil {
			return store.Profile{}, err
		}
		return store.Profile{
			ID:          user.ID,
			Name:        user.Name,
			RealName:    user.RealName,
			DisplayName: user.Profile.DisplayName,
			Email:       user.Profile.Email,
		}, nil
	})
	metrics.ProfileLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ProfileLookups.WithLabelValues("rejected").Inc()
			logging.Debug().Str("user_id", userID).Msg("profile lookup rejected by open circuit")
		} else {
			metrics.ProfileLookups.WithLabelValues("failure").Inc()
			logging.Warn().Err(err).Str("user_id", userID).Msg("profile lookup failed, using placeholder")
		}
		return Placeholder(userID)
	}

	metrics.ProfileLookups.WithLabelValues("success").Inc()
	return profile
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
