package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// AlertSetting is a single alert toggle with an optional percent threshold.
type AlertSetting struct {
	Condition bool `json:"condition" mapstructure:"condition"`
	Percent   int  `json:"percent" mapstructure:"percent"`
}

// NotificationSettings holds all runtime-mutable alert settings. Unlike the
// static Config these can be changed through the HTTP API and are persisted
// back to the settings file.
type NotificationSettings struct {
	ContainerStopped AlertSetting `json:"container_stopped" mapstructure:"container_stopped"`
	RAM              AlertSetting `json:"ram" mapstructure:"ram"`
	CPU              AlertSetting `json:"cpu" mapstructure:"cpu"`
	Storage          AlertSetting `json:"storage" mapstructure:"storage"`
	DOS              AlertSetting `json:"dos" mapstructure:"dos"`
}

// SettingsStore persists NotificationSettings to a JSON file. Safe for
// concurrent use.
type SettingsStore struct {
	path string

	mu sync.RWMutex
	s  NotificationSettings
}

// NewSettingsStore loads the settings file at path, falling back to zero
// settings when the file does not exist yet.
func NewSettingsStore(path string) (*SettingsStore, error) {
	st := &SettingsStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return nil, fmt.Errorf("settings: read %q: %w", path, err)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st.s); err != nil {
		return nil, fmt.Errorf("settings: unmarshal %q: %w", path, err)
	}
	return st, nil
}

// Get returns a copy of the current settings.
func (st *SettingsStore) Get() NotificationSettings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Update applies a partial update from a decoded JSON body. Only keys present
// in patch are changed. The result is persisted before it becomes visible.
func (st *SettingsStore) Update(patch map[string]interface{}) (NotificationSettings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.s
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &next,
		ErrorUnused: true,
	})
	if err != nil {
		return st.s, fmt.Errorf("settings: build decoder: %w", err)
	}
	if err := dec.Decode(patch); err != nil {
		return st.s, fmt.Errorf("settings: invalid update: %w", err)
	}

	if err := st.save(next); err != nil {
		return st.s, err
	}
	st.s = next
	return next, nil
}

func (st *SettingsStore) save(s NotificationSettings) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	// Same-directory temp file so the rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(st.path), ".settings.*.tmp")
	if err != nil {
		return fmt.Errorf("settings: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("settings: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("settings: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, st.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("settings: rename temp -> %q: %w", st.path, err)
	}
	return nil
}
