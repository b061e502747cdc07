// ABOUTME: File-backed credential store writing a small YAML document
// ABOUTME: Lives under the XDG config directory and survives process restarts

package credential

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore persists the credential as YAML at a fixed path.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore at path. The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: slog.Default().With("component", "credential", "backend", "file"),
	}
}

// DefaultFilePath returns the credential file location.
// Priority: XDG_CONFIG_HOME/itemdesk/credentials.yaml > ~/.config/itemdesk/credentials.yaml
func DefaultFilePath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "credentials.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "itemdesk", "credentials.yaml")
}

// Path returns the file location backing the store.
func (f *FileStore) Path() string {
	return f.path
}

// Set implements Store. The file is replaced atomically.
func (f *FileStore) Set(c Credential) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credential: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting credential file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing credential file: %w", err)
	}
	return nil
}

// Get implements Store.
func (f *FileStore) Get() (Credential, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("reading credential file", "path", f.path, "error", err)
		}
		return Credential{}, false
	}

	var c Credential
	if err := yaml.Unmarshal(data, &c); err != nil {
		f.logger.Warn("parsing credential file", "path", f.path, "error", err)
		return Credential{}, false
	}
	if c.IsZero() {
		return Credential{}, false
	}
	return c, true
}

// Clear implements Store.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credential file: %w", err)
	}
	return nil
}
