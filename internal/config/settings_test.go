package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(t *testing.T) (*SettingsStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := NewSettingsStore(path)
	require.NoError(t, err)
	return st, path
}

func TestSettingsDefaultsToZero(t *testing.T) {
	st, _ := newTestSettings(t)

	s := st.Get()
	assert.False(t, s.DOS.Condition)
	assert.False(t, s.CPU.Condition)
	assert.Equal(t, 0, s.RAM.Percent)
}

func TestSettingsPartialUpdate(t *testing.T) {
	st, _ := newTestSettings(t)

	updated, err := st.Update(map[string]interface{}{
		"dos": map[string]interface{}{"condition": true},
		"ram": map[string]interface{}{"condition": true, "percent": 90},
	})
	require.NoError(t, err)

	assert.True(t, updated.DOS.Condition)
	assert.True(t, updated.RAM.Condition)
	assert.Equal(t, 90, updated.RAM.Percent)
	// Untouched sections keep their values.
	assert.False(t, updated.CPU.Condition)
}

func TestSettingsRejectsUnknownKeys(t *testing.T) {
	st, _ := newTestSettings(t)

	_, err := st.Update(map[string]interface{}{"bogus": true})
	require.Error(t, err)
	// A failed update leaves the settings untouched.
	assert.False(t, st.Get().DOS.Condition)
}

func TestSettingsPersistAcrossReload(t *testing.T) {
	st, path := newTestSettings(t)

	_, err := st.Update(map[string]interface{}{
		"storage": map[string]interface{}{"condition": true, "percent": 85},
	})
	require.NoError(t, err)

	reloaded, err := NewSettingsStore(path)
	require.NoError(t, err)
	s := reloaded.Get()
	assert.True(t, s.Storage.Condition)
	assert.Equal(t, 85, s.Storage.Percent)
}

func TestSettingsMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	st, err := NewSettingsStore(path)
	require.NoError(t, err)
	assert.False(t, st.Get().DOS.Condition)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "store must not create the file eagerly")
}
