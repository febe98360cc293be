// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

// Package store persists message records to a whole-file JSON archive.
//
// The archive is deliberately simple: every append loads the full file,
// appends one record in memory, and rewrites the file. For a single tracked
// channel this keeps the format bit-compatible with existing consumers and
// avoids any index or log machinery. The rewrite goes through a temporary
// file in the same directory followed by an atomic rename, so a reader can
// never observe a partially-written archive.
//
// Recovery policy: when the backing file exists but does not parse, the
// append recovers by writing a fresh archive containing only the new record
// (channel metadata from the constructor). Prior unparseable content is
// discarded, not quarantined. This trades "may lose prior messages if the
// file was corrupted" for "never lose the new message".
//
// The store assumes a single process and a single writer; there is no
// locking or versioning.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/chanscribe/chanscribe/internal/logging"
	"github.com/chanscribe/chanscribe/internal/metrics"
)

// Store is a durable append-only archive of message records for one
// channel. Channel metadata is fixed at construction and used whenever the
// backing file must be (re)created.
type Store struct {
	path        string
	channelName string
	channelID   string
}

// New creates a store backed by the file at path. The file is not touched
// until Initialize or Append is called.
func New(path, channelName, channelID string) *Store {
	return &Store{
		path:        path,
		channelName: channelName,
		channelID:   channelID,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Initialize creates the backing file with an empty archive if it does not
// exist. Calling it on an existing file is a no-op, regardless of the
// file's content.
func (s *Store) Initialize() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat archive %s: %w", s.path, err)
	}

	if err := s.write(newArchive(s.channelName, s.channelID)); err != nil {
		return fmt.Errorf("create archive %s: %w", s.path, err)
	}

	logging.Info().Str("path", s.path).Msg("created new archive file")
	return nil
}

// Append durably adds one record to the archive. The current archive is
// loaded, the record appended preserving order, and the whole file
// rewritten atomically. An absent or empty file is replaced by a fresh
// archive; an unparseable file is replaced by a fresh archive containing
// only the new record (see the package recovery policy). The returned error
// is non-nil only when the final write fails, in which case the record is
// lost and the caller keeps running.
func (s *Store) Append(record Record) error {
	start := time.Now()

	archive := s.load()
	archive.Messages = append(archive.Messages, record)

	if err := s.write(archive); err != nil {
		metrics.AppendFailures.Inc()
		return fmt.Errorf("write archive %s: %w", s.path, err)
	}

	metrics.RecordsAppended.Inc()
	metrics.AppendDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Len returns the number of records currently in the backing file.
// Unparseable content counts as zero.
func (s *Store) Len() int {
	return len(s.load().Messages)
}

// load reads the current archive from disk. Absent and empty files yield a
// fresh empty archive with constructor metadata; unparseable content is
// discarded the same way, with a diagnostic.
func (s *Store) load() *Archive {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", s.path).Msg("archive unreadable, starting fresh")
			metrics.StoreRecoveries.Inc()
		}
		return newArchive(s.channelName, s.channelID)
	}

	if len(data) == 0 {
		return newArchive(s.channelName, s.channelID)
	}

	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		logging.Warn().
			Err(err).
			Str("path", s.path).
			Int("discarded_bytes", len(data)).
			Msg("archive did not parse, prior content discarded")
		metrics.StoreRecoveries.Inc()
		return newArchive(s.channelName, s.channelID)
	}

	if archive.Messages == nil {
		archive.Messages = make([]Record, 0)
	}
	return &archive
}

// write marshals the archive and replaces the backing file atomically:
// temp file in the same directory, sync, rename.
func (s *Store) write(archive *Archive) error {
	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure path below.
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // archive is user data, not a secret
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	tmpName = ""

	return nil
}
