// Package store implements the durable incident event log.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dublimator.xyz/paned/internal/dos"
)

// EventLog persists closed incidents as a single ordered JSON array. Every
// append is a read-modify-write of the whole file so record order is
// preserved; writes go through a unique temp file + atomic rename. Safe for
// concurrent use.
type EventLog struct {
	path string
	mu   sync.Mutex
}

// NewEventLog creates an event log backed by the file at path. The file is
// created lazily on first append.
func NewEventLog(path string) *EventLog {
	return &EventLog{path: path}
}

// Persist appends one closed incident to the log. The context deadline is
// checked before the write starts; the write itself is not interrupted.
func (l *EventLog) Persist(ctx context.Context, inc dos.Incident) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	records, err := l.read()
	if err != nil {
		return err
	}
	records = append(records, inc)
	return l.write(records)
}

// Load returns all persisted incidents. A missing file is an empty log.
func (l *EventLog) Load(ctx context.Context) ([]dos.Incident, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.read()
}

// Snapshot returns a deep copy of the persisted incidents for read surfaces.
func (l *EventLog) Snapshot(ctx context.Context) ([]dos.Incident, error) {
	records, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dos.Incident, len(records))
	copy(out, records)
	return out, nil
}

// Clear rewrites the log as an empty array.
func (l *EventLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return l.write([]dos.Incident{})
}

func (l *EventLog) read() ([]dos.Incident, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []dos.Incident{}, nil
		}
		return nil, fmt.Errorf("event log: read %q: %w", l.path, err)
	}
	if len(data) == 0 {
		return []dos.Incident{}, nil
	}
	var records []dos.Incident
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("event log: unmarshal %q: %w", l.path, err)
	}
	return records, nil
}

// write marshals records pretty-printed with 4-space indent and swaps the
// file in atomically.
func (l *EventLog) write(records []dos.Incident) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("event log: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".events.*.tmp")
	if err != nil {
		return fmt.Errorf("event log: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("event log: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("event log: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("event log: rename temp -> %q: %w", l.path, err)
	}
	return nil
}
