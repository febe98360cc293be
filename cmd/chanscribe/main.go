// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

// Package main is the entry point for the Chanscribe archiver.
//
// Chanscribe connects to a Slack workspace over Socket Mode, watches one
// channel, and appends every plain user message to a local JSON archive
// after enriching it with the sender's profile. A console observer echoes
// each archived message.
//
// # Startup order
//
//  1. Configuration: environment variables over config.yaml over defaults
//     (Koanf v2); the four required settings are SLACK_BOT_TOKEN,
//     SLACK_APP_TOKEN, CHANNEL_ID, and CHANNEL_NAME
//  2. Archive store: create the backing file if absent
//  3. Channel access check: conversations.info must succeed before the
//     listener starts
//  4. Supervisor tree: socket listener, pipeline worker, and the ops
//     HTTP listener (/healthz, /readyz, /metrics)
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops, the
// pipeline finishes the append in flight, and the ops server drains.
//
// # Example usage
//
//	export SLACK_BOT_TOKEN=xoxb-...
//	export SLACK_APP_TOKEN=xapp-...
//	export CHANNEL_ID=C0123456789
//	export CHANNEL_NAME=general
//	./chanscribe
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/chanscribe/chanscribe/internal/config"
	"github.com/chanscribe/chanscribe/internal/ingest"
	"github.com/chanscribe/chanscribe/internal/logging"
	"github.com/chanscribe/chanscribe/internal/ops"
	"github.com/chanscribe/chanscribe/internal/resolver"
	"github.com/chanscribe/chanscribe/internal/slack"
	"github.com/chanscribe/chanscribe/internal/store"
	"github.com/chanscribe/chanscribe/internal/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		var missing *config.MissingSettingsError
		if errors.As(err, &missing) {
			for _, name := range missing.Names {
				logging.Error().Str("setting", name).Msg("required setting is not set")
			}
			logging.Error().Msg("startup aborted: incomplete configuration")
			return 1
		}
		logging.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("channel", cfg.Channel.Name).
		Str("channel_id", cfg.Channel.ID).
		Str("archive", cfg.Store.Path).
		Msg("starting chanscribe")

	api := slack.NewClient(cfg.Slack.APIURL, cfg.Slack.BotToken, cfg.Slack.AppToken, cfg.Slack.RatePerSecond)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	identity, err := api.AuthTest(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("bot token rejected by auth.test")
		return 1
	}
	logging.Info().Str("team", identity.Team).Str("bot_user", identity.User).Msg("authenticated")

	// The listener must not start if the bot cannot see the tracked
	// channel; a clean exit with a diagnostic beats a silent idle loop.
	channel, err := api.ChannelInfo(ctx, cfg.Channel.ID)
	if err != nil {
		logging.Error().Err(err).Str("channel_id", cfg.Channel.ID).Msg("cannot access tracked channel")
		return 1
	}
	if !channel.IsMember {
		logging.Error().Str("channel", channel.Name).Msg("bot is not a member of the tracked channel, invite it first")
		return 1
	}

	archive := store.New(cfg.Store.Path, cfg.Channel.Name, cfg.Channel.ID)
	if err := archive.Initialize(); err != nil {
		logging.Error().Err(err).Str("path", cfg.Store.Path).Msg("failed to initialize archive")
		return 1
	}

	pipeline := ingest.New(
		ingest.NewFilter(cfg.Channel.ID),
		resolver.NewBreakerResolver(api),
		archive,
		ingest.NewConsoleObserver(nil),
		nil, // acker bound below once the socket client exists
		cfg.Channel.Name,
		cfg.Channel.ID,
		ingest.Options{
			QueueSize: cfg.Ingest.QueueSize,
			Dedup:     cfg.Ingest.Dedup,
		},
	)

	socket := slack.NewSocketClient(api, pipeline.OnEvent)
	pipeline.BindAcker(socket)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIngestService(socket)
	tree.AddIngestService(pipeline)

	if cfg.Ops.Enabled {
		opsSrv := ops.NewServer(cfg.Ops.Host, cfg.Ops.Port, cfg.Ops.Timeout, socket.IsConnected)
		tree.AddOpsService(opsSrv)
	}

	logging.Info().Str("channel", channel.Name).Msg("listening for messages")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree stopped abnormally")
		return 1
	}

	logging.Info().Msg("shutdown complete")
	return 0
}
