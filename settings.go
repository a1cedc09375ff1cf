package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is the settings file name used when none is configured.
const DefaultSettingsFile = "bridge.json"

// Settings is the persisted bridge session.
type Settings struct {
	Address    string `json:"address" yaml:"address"`
	Credential string `json:"credential" yaml:"credential"`
}

// Valid reports whether both the address and the credential are set.
func (s Settings) Valid() bool {
	return s.Address != "" && s.Credential != ""
}

// SettingsStore persists the bridge address and credential between runs.
//
// Load reports found=false with a nil error when nothing has been saved.
// Unreadable content is reported as an error wrapping ErrCorruptSettings.
type SettingsStore interface {
	Load(ctx context.Context) (settings Settings, found bool, err error)
	Save(ctx context.Context, settings Settings) error
	Delete(ctx context.Context) error
}

// FileSettingsStore stores settings in a file. Paths ending in .yaml or .yml
// are written as YAML, anything else as JSON.
type FileSettingsStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileSettingsStore creates a new FileSettingsStore.
func NewFileSettingsStore(path string) *FileSettingsStore {
	if path == "" {
		path = DefaultSettingsFile
	}
	return &FileSettingsStore{path: path}
}

// Path returns the settings file location.
func (f *FileSettingsStore) Path() string {
	return f.path
}

func (f *FileSettingsStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the settings to the file.
func (f *FileSettingsStore) Save(ctx context.Context, settings Settings) error {
	if !settings.Valid() {
		return ErrIncompleteSettings
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	var (
		data []byte
		err  error
	)
	if f.isYAML() {
		data, err = yaml.Marshal(settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity
	tmpFile := f.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmpFile, f.path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to save settings file: %w", err)
	}

	return nil
}

// Load reads the settings from the file. A missing file is not an error.
func (f *FileSettingsStore) Load(ctx context.Context) (Settings, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, false, nil
		}
		return Settings{}, false, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if f.isYAML() {
		err = yaml.Unmarshal(data, &settings)
	} else {
		settings, err = decodeSettingsJSON(data)
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("%w: %s: %w", ErrCorruptSettings, f.path, err)
	}
	if !settings.Valid() {
		return Settings{}, false, fmt.Errorf("%w: %s: %w", ErrCorruptSettings, f.path, ErrIncompleteSettings)
	}

	return settings, true, nil
}

// decodeSettingsJSON accepts the object form and the legacy ["ip","username"] form.
func decodeSettingsJSON(data []byte) (Settings, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []string
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return Settings{}, err
		}
		if len(pair) != 2 {
			return Settings{}, fmt.Errorf("expected [address, credential], got %d values", len(pair))
		}
		return Settings{Address: pair[0], Credential: pair[1]}, nil
	}

	var settings Settings
	err := json.Unmarshal(trimmed, &settings)
	return settings, err
}

// Delete removes the settings file. A missing file is not an error.
func (f *FileSettingsStore) Delete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete settings file: %w", err)
	}
	return nil
}

// MemorySettingsStore keeps settings in memory (useful for testing).
type MemorySettingsStore struct {
	settings *Settings
	mu       sync.RWMutex

	loads, saves, deletes int
}

// NewMemorySettingsStore creates a new in-memory settings store.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{}
}

// Save stores settings in memory.
func (m *MemorySettingsStore) Save(ctx context.Context, settings Settings) error {
	if !settings.Valid() {
		return ErrIncompleteSettings
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.settings = &settings
	return nil
}

// Load returns the stored settings, if any.
func (m *MemorySettingsStore) Load(ctx context.Context) (Settings, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.settings == nil {
		return Settings{}, false, nil
	}
	return *m.settings, true, nil
}

// Delete clears the stored settings.
func (m *MemorySettingsStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.settings = nil
	return nil
}

// Counts returns how many times Load, Save and Delete have been called.
func (m *MemorySettingsStore) Counts() (loads, saves, deletes int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads, m.saves, m.deletes
}
