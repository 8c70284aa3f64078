package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/renameio/v2"
)

// Manifest is the list of game ids whose final artifacts are published,
// kept at <root>/<prefix>manifest.json as a sorted JSON array.
type Manifest struct {
	path string
	mu   sync.Mutex
}

func NewManifest(root, prefix string) *Manifest {
	return &Manifest{path: filepath.Join(root, filepath.FromSlash(prefix+"manifest.json"))}
}

// IDs returns the ids currently in the manifest. A missing or unreadable
// manifest reads as empty.
func (m *Manifest) IDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Manifest) load() ([]string, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// a corrupt manifest is rebuilt from scratch
		return []string{}, nil
	}
	return ids, nil
}

func (m *Manifest) store(ids []string) error {
	slices.Sort(ids)
	ids = slices.Compact(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := renameio.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// MarkFinal adds gameID to the manifest. It does nothing when the id is already present.
func (m *Manifest) MarkFinal(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.load()
	if err != nil {
		return err
	}
	if slices.Contains(ids, gameID) {
		return nil
	}
	return m.store(append(ids, gameID))
}

// Rebuild replaces the manifest with exactly ids.
func (m *Manifest) Rebuild(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store(append([]string{}, ids...))
}
