// Package settings persists the user-facing speaker settings and restores
// them at startup.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-speaker/speaker"
)

// CurrentVersion is the layout version written by Save. Stored settings
// with another version are replaced by the defaults on load.
const CurrentVersion = 1

// Settings is the persisted subset of the engine state.
type Settings struct {
	Version   int            `json:"version"`
	Preset    speaker.Preset `json:"preset"`
	Loudness  bool           `json:"loudness"`
	BassBoost bool           `json:"bass_boost"`
}

// Defaults returns Office with loudness and bass boost off.
func Defaults() Settings {
	return Settings{Version: CurrentVersion, Preset: speaker.Office}
}

// sanitize replaces settings of another version with the defaults and an
// unknown preset with Office.
func (s Settings) sanitize() Settings {
	if s.Version != CurrentVersion {
		return Defaults()
	}

	if !s.Preset.Valid() {
		s.Preset = speaker.Office
	}

	return s
}

// Store loads and saves Settings.
type Store interface {
	Load() (Settings, error)
	Save(s Settings) error
}

// FileStore keeps Settings in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// Load reads the settings. A missing file yields the defaults.
func (f *FileStore) Load() (Settings, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}

	if err != nil {
		return Defaults(), fmt.Errorf("settings: read %s: %w", f.path, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("settings: decode %s: %w", f.path, err)
	}

	return s.sanitize(), nil
}

// Save writes s through a temporary file and an atomic rename.
func (f *FileStore) Save(s Settings) error {
	s.Version = CurrentVersion

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}

	dir := filepath.Dir(f.path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("settings: create temp file: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("settings: write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("settings: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("settings: rename: %w", err)
	}

	return nil
}

// Engine is the part of the speaker engine that settings read and write.
type Engine interface {
	SetPreset(p speaker.Preset) error
	SetLoudness(on bool) error
	SetBassBoost(on bool) error
	Snapshot() speaker.Snapshot
}

// Capture reads the persisted subset from e.
func Capture(e Engine) Settings {
	snap := e.Snapshot()

	return Settings{
		Version:   CurrentVersion,
		Preset:    snap.Preset,
		Loudness:  snap.Loudness,
		BassBoost: snap.BassBoost,
	}
}

// Restore applies s to e through its public setters.
func Restore(e Engine, s Settings) error {
	s = s.sanitize()

	return errors.Join(
		e.SetPreset(s.Preset),
		e.SetLoudness(s.Loudness),
		e.SetBassBoost(s.BassBoost),
	)
}
