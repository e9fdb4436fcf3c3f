package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
)

// FileStore keeps the configuration as a JSON document on disk
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a FileStore for path on the given filesystem
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Path returns the document location
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the document and merges it over the defaults. A missing file
// yields the defaults; a corrupt one is logged and also yields the defaults.
func (fs *FileStore) Load() (*models.Config, error) {
	data, err := afero.ReadFile(fs.fs, fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", fs.path, err)
	}

	var stored map[string]any
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("Config file is not valid JSON, using defaults", "path", fs.path, "error", err)
		return models.DefaultConfig(), nil
	}

	return models.ConfigFromMap(stored), nil
}

// Save writes the document, creating its directory when needed
func (fs *FileStore) Save(cfg *models.Config) error {
	data, err := json.MarshalIndent(cfg.ToMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := fs.fs.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// Write to a sibling file first so a crash never leaves half a document
	tmp := fs.path + ".tmp"
	if err := afero.WriteFile(fs.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := fs.fs.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
