// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// mockService runs until its context is canceled and records starts.
type mockService struct {
	name   string
	starts atomic.Int32
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewTreeAppliesDefaults(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{})

	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %f, want 5.0", tree.config.FailureThreshold)
	}
	if tree.config.FailureDecay != 30.0 {
		t.Errorf("FailureDecay = %f, want 30.0", tree.config.FailureDecay)
	}
	if tree.config.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", tree.config.FailureBackoff)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", tree.config.ShutdownTimeout)
	}
}

func TestTreeStartsAndStopsServices(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})

	listener := &mockService{name: "mock-listener"}
	pipeline := &mockService{name: "mock-pipeline"}
	ops := &mockService{name: "mock-ops"}
	tree.AddIngestService(listener)
	tree.AddIngestService(pipeline)
	tree.AddOpsService(ops)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for listener.starts.Load() == 0 || pipeline.starts.Load() == 0 || ops.starts.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("services never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want nil or context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeRestartsCrashedService(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})

	crasher := &crashOnceService{}
	tree.AddIngestService(crasher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for crasher.starts.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("service started %d times, want restart after crash", crasher.starts.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// crashOnceService fails its first run and then behaves.
type crashOnceService struct {
	starts atomic.Int32
}

func (c *crashOnceService) Serve(ctx context.Context) error {
	if c.starts.Add(1) == 1 {
		return errors.New("transient failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *crashOnceService) String() string { return "crash-once" }
