package hook

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
)

// ErrHookNotFound is returned when a requested hook does not exist.
var ErrHookNotFound = goerr.New("hook not found")

// Manager discovers hooks in a directory.
type Manager struct {
	dir   string
	hooks map[string]*Hook
	mu    sync.RWMutex
}

// NewManager creates a Manager for dir. Nothing is loaded until Discover.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:   dir,
		hooks: make(map[string]*Hook),
	}
}

// Dir returns the hooks directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Discover replaces the loaded hooks with the ones found in the hooks
// directory. A missing directory yields no hooks. Subdirectories without a
// readable manifest are skipped with a warning.
func (m *Manager) Discover(ctx context.Context) error {
	logger := logging.From(ctx)
	found := make(map[string]*Hook)

	entries, err := os.ReadDir(m.dir)
	switch {
	case os.IsNotExist(err):
		entries = nil
	case err != nil:
		return goerr.Wrap(err, "failed to read hooks directory", goerr.V("dir", m.dir))
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		h, err := loadHook(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("skipping hook", "path", path, "error", err)
			}
			continue
		}
		found[h.Manifest.Name] = h
	}

	m.mu.Lock()
	m.hooks = found
	m.mu.Unlock()

	logger.Info("hooks discovered", "dir", m.dir, "count", len(found))
	return nil
}

func loadHook(path string) (*Hook, error) {
	manifestPath := filepath.Join(path, ManifestFile)
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest", goerr.V("path", manifestPath))
	}

	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest", goerr.V("path", manifestPath))
	}
	if manifest.Name == "" || manifest.Executable == "" {
		return nil, goerr.New("manifest requires name and executable", goerr.V("path", manifestPath))
	}

	return &Hook{
		Manifest:   manifest,
		Path:       path,
		Executable: filepath.Join(path, manifest.Executable),
	}, nil
}

// Get returns the hook called name.
func (m *Manager) Get(name string) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hooks[name]
	if !ok {
		return nil, goerr.Wrap(ErrHookNotFound, "lookup failed", goerr.V("name", name))
	}
	return h, nil
}

// List returns all loaded hooks sorted by name.
func (m *Manager) List() []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Hook, 0, len(m.hooks))
	for _, h := range m.hooks {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Manifest.Name < out[j].Manifest.Name
	})
	return out
}

// For returns the hooks bound to g, sorted by name.
func (m *Manager) For(g gesture.Gesture) []*Hook {
	var out []*Hook
	for _, h := range m.List() {
		if h.Handles(g) {
			out = append(out, h)
		}
	}
	return out
}
