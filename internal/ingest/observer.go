// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package ingest

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chanscribe/chanscribe/internal/store"
)

// Observer receives each record after it has been durably appended.
// Observer failures never propagate back into the pipeline.
type Observer interface {
	Notify(rec store.Record)
}

// ConsoleObserver echoes a one-line summary of each archived message.
type ConsoleObserver struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleObserver creates an observer writing to out; nil means stdout.
func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleObserver{out: out}
}

// Notify prints the archived message. The sender's display name is
// preferred, falling back to the workspace handle.
func (o *ConsoleObserver) Notify(rec store.Record) {
	name := rec.User.DisplayName
	if name == "" {
		name = rec.User.Name
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "[%s] #%s %s: %s\n", rec.Timestamp, rec.ChannelName, name, rec.Message)
}
