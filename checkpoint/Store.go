package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/gorl/agent"
)

// Store saves and loads agents by name
type Store interface {
	Save(name string, a agent.Typed) error
	Load(name string, a agent.Typed) error
	Close() error
}

// FileStore stores each agent as a JSON file under a directory. Names
// may contain slashes to nest agents in subdirectories.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is
// created on the first Save if it does not exist.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory of the store
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, filepath.FromSlash(name)+".json")
}

// Save implements the Store interface
func (f *FileStore) Save(name string, a agent.Typed) error {
	data, err := Encode(a)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	path := f.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Load implements the Store interface
func (f *FileStore) Load(name string, a agent.Typed) error {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load: %q: %w", name, ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if err := Decode(data, a); err != nil {
		return fmt.Errorf("load: %q: %w", name, err)
	}
	return nil
}

// Close implements the Store interface
func (f *FileStore) Close() error {
	return nil
}
