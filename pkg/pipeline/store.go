package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists pipeline artifacts. Implementations must create parent
// directories as needed and overwrite existing content.
type Store interface {
	Save(content string, path string) error
}

// DirStore writes artifacts as UTF-8 text files on the local filesystem.
type DirStore struct{}

// Save writes content to path, creating parent directories first.
func (DirStore) Save(content string, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
