// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

// Package ingest implements the message ingestion pipeline: receive
// envelope, acknowledge, filter, resolve the sender's profile, append to
// the archive, notify the observer. A bounded single-consumer queue
// serializes processing so the archive file never sees concurrent writers.
package ingest

import (
	"context"

	"github.com/chanscribe/chanscribe/internal/logging"
	"github.com/chanscribe/chanscribe/internal/metrics"
	"github.com/chanscribe/chanscribe/internal/resolver"
	"github.com/chanscribe/chanscribe/internal/slack"
	"github.com/chanscribe/chanscribe/internal/store"
)

// Acker sends the envelope acknowledgment back on the transport.
type Acker interface {
	Ack(envelopeID string) error
}

// Appender durably appends one record to the archive.
type Appender interface {
	Append(rec store.Record) error
}

// Options tune pipeline behavior beyond the required collaborators.
type Options struct {
	// QueueSize bounds the envelope queue. Values below 1 fall back to 1.
	QueueSize int

	// Dedup drops an event whose timestamp equals the previously appended
	// one. Off by default: the transport is assumed not to redeliver.
	Dedup bool
}

// Pipeline drives each envelope through the state machine
// received, acknowledged, filtered, then either dropped or
// enriched, recorded, notified.
type Pipeline struct {
	filter   *Filter
	resolver resolver.Resolver
	archive  Appender
	observer Observer
	acker    Acker

	channelName string
	channelID   string

	queue chan slack.Envelope
	dedup bool

	// lastTS is the timestamp of the most recently appended record; only
	// the worker goroutine touches it.
	lastTS string
}

// New assembles a pipeline for one tracked channel.
func New(filter *Filter, res resolver.Resolver, archive Appender, observer Observer, acker Acker, channelName, channelID string, opts Options) *Pipeline {
	size := opts.QueueSize
	if size < 1 {
		size = 1
	}
	return &Pipeline{
		filter:      filter,
		resolver:    res,
		archive:     archive,
		observer:    observer,
		acker:       acker,
		channelName: channelName,
		channelID:   channelID,
		queue:       make(chan slack.Envelope, size),
		dedup:       opts.Dedup,
	}
}

// BindAcker attaches the transport's acknowledgment channel. The socket
// client and the pipeline reference each other (the client delivers
// envelopes, the pipeline acks on the client), so the acker is bound
// after both exist and before the transport starts.
func (p *Pipeline) BindAcker(a Acker) {
	p.acker = a
}

// OnEvent receives one envelope from the transport. The acknowledgment is
// sent before any further work, whether or not the event is ultimately
// accepted; deferring the ack until after filtering would invite
// transport-side timeout and redelivery storms. The envelope then joins
// the queue for the single worker to drain.
//
// Called from the transport's read goroutine; a full queue blocks it,
// which is the intended backpressure.
func (p *Pipeline) OnEvent(env slack.Envelope) {
	if p.acker != nil {
		if err := p.acker.Ack(env.EnvelopeID); err != nil {
			logging.Warn().Err(err).Str("envelope_id", env.EnvelopeID).Msg("failed to acknowledge envelope")
		}
	}

	p.queue <- env
	metrics.QueueDepth.Set(float64(len(p.queue)))
}

// Serve drains the queue one envelope at a time until the context is
// canceled. An envelope already being processed finishes its append before
// Serve returns, so shutdown never persists a partial record. It
// implements the suture.Service contract.
func (p *Pipeline) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-p.queue:
			metrics.QueueDepth.Set(float64(len(p.queue)))
			p.process(ctx, env)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (p *Pipeline) String() string {
	return "ingest-pipeline"
}

// process runs one envelope through filter, enrichment, append, notify.
func (p *Pipeline) process(ctx context.Context, env slack.Envelope) {
	if !p.filter.Accept(env) {
		metrics.EventsDropped.WithLabelValues("filtered").Inc()
		return
	}
	ev := env.Payload.Event

	if p.dedup && ev.TS != "" && ev.TS == p.lastTS {
		metrics.EventsDropped.WithLabelValues("duplicate").Inc()
		logging.Debug().Str("ts", ev.TS).Msg("dropping redelivered event")
		return
	}

	metrics.EventsAccepted.Inc()

	profile := p.resolver.Resolve(ctx, ev.User)
	rec := p.buildRecord(ev, profile)

	if err := p.archive.Append(rec); err != nil {
		// The message is lost but the listener keeps running; prior
		// records are untouched on disk.
		logging.Error().Err(err).Str("ts", ev.TS).Msg("failed to append record, message lost")
		return
	}
	p.lastTS = ev.TS

	p.notify(rec)
}

// buildRecord normalizes an accepted event into its archived form.
func (p *Pipeline) buildRecord(ev slack.Event, profile store.Profile) store.Record {
	return store.Record{
		Timestamp:       store.LocalTimestamp(ev.TS),
		SlackTimestamp:  ev.TS,
		User:            profile,
		Message:         ev.Text,
		ChannelName:     p.channelName,
		ChannelID:       p.channelID,
		MessageID:       ev.ClientMsgID,
		ThreadTimestamp: ev.ThreadTS,
		ParentUserID:    ev.ParentUserID,
		Reactions:       store.RawList(ev.Reactions),
		Attachments:     store.RawList(ev.Attachments),
		Files:           store.RawList(ev.Files),
	}
}

// notify hands the finished record to the observer. A panicking or
// misbehaving observer must not break ingestion of subsequent events.
func (p *Pipeline) notify(rec store.Record) {
	if p.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("observer panicked, continuing")
		}
	}()
	p.observer.Notify(rec)
}
