// Package settings reads the user-editable settings file that holds API
// credentials. The file is JSON (settings.json) or YAML (.yaml/.yml) and is
// re-read on every lookup, so edits apply without a restart.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvOpenAIKey overrides the file's openaiApiKey when set.
const EnvOpenAIKey = "OPENAI_API_KEY"

// Settings holds the keys of settings.json read here. Other keys in the file
// belong to the app that edits it and are ignored.
type Settings struct {
	OpenAIAPIKey string `json:"openaiApiKey" yaml:"openaiApiKey"`
}

// Store reads one settings file.
type Store struct {
	Path string
	// FallbackKey is used when neither the environment nor the file has a key.
	FallbackKey string
}

// New returns a Store for path.
func New(path, fallbackKey string) *Store {
	return &Store{Path: path, FallbackKey: fallbackKey}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the file. A missing or empty file yields zero Settings.
func (s *Store) Load() (Settings, error) {
	var out Settings
	if s.Path == "" {
		return out, nil
	}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("settings: read %s: %w", s.Path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if isYAML(s.Path) {
		err = yaml.Unmarshal(data, &out)
	} else {
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: parse %s: %w", s.Path, err)
	}
	return out, nil
}

// WhisperAPIKey returns the speech-recognition key: the environment first,
// then the file, then FallbackKey. An unreadable file is an error only when
// no other source has a key.
func (s *Store) WhisperAPIKey(_ context.Context) (string, error) {
	if k := strings.TrimSpace(os.Getenv(EnvOpenAIKey)); k != "" {
		return k, nil
	}
	st, err := s.Load()
	if k := strings.TrimSpace(st.OpenAIAPIKey); err == nil && k != "" {
		return k, nil
	}
	if k := strings.TrimSpace(s.FallbackKey); k != "" {
		return k, nil
	}
	return "", err
}
