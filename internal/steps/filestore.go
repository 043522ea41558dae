package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPath is where FileStore keeps baselines when no path is configured.
const DefaultPath = "~/.config/snaptrip/steps.toml"

// FileStore persists baselines in a single TOML file keyed by trip id, so
// step counts survive a server restart. Every Put/Delete rewrites the file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// fileContents is the on-disk shape of the baseline file.
type fileContents struct {
	Trips map[string]Baseline `toml:"trips"`
}

// NewFileStore returns a FileStore writing to path (DefaultPath when blank).
// The file and its directory are created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("steps.NewFileStore: %w", err)
	}
	return &FileStore{path: resolved}, nil
}

// Path returns the resolved file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get(_ context.Context, tripID string) (Baseline, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := f.load()
	if err != nil {
		return Baseline{}, false, err
	}
	b, ok := contents.Trips[tripID]
	return b, ok, nil
}

func (f *FileStore) Put(_ context.Context, tripID string, b Baseline) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := f.load()
	if err != nil {
		return err
	}
	contents.Trips[tripID] = b
	return f.save(contents)
}

func (f *FileStore) Delete(_ context.Context, tripID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := contents.Trips[tripID]; !ok {
		return nil
	}
	delete(contents.Trips, tripID)
	return f.save(contents)
}

// load reads the file. A missing file is an empty store.
func (f *FileStore) load() (fileContents, error) {
	contents := fileContents{Trips: map[string]Baseline{}}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return contents, nil
		}
		return contents, fmt.Errorf("read step baselines: %w", err)
	}
	if err := toml.Unmarshal(data, &contents); err != nil {
		return contents, fmt.Errorf("parse step baselines: %w", err)
	}
	if contents.Trips == nil {
		contents.Trips = map[string]Baseline{}
	}
	return contents, nil
}

// save replaces the file atomically through a sibling temp file.
func (f *FileStore) save(contents fileContents) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create step baselines dir: %w", err)
	}
	data, err := toml.Marshal(contents)
	if err != nil {
		return fmt.Errorf("marshal step baselines: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write step baselines: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace step baselines: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
