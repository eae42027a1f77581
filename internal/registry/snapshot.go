package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/boosterdraft/draftd/internal/draft"
)

// FileStore persists one JSON-encoded draft.Snapshot per draft, named by
// DraftId, in a configured data directory. It implements hub.Snapshotter.
type FileStore struct {
	dataDir string
}

// NewFileStore binds a FileStore to dataDir, creating it if necessary.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (s *FileStore) path(id draft.DraftID) string {
	return filepath.Join(s.dataDir, string(id))
}

// Save writes e's full state atomically: encode to a temp file in the
// same directory, fsync, then rename over the final path. A reader never
// observes a partially written snapshot.
func (s *FileStore) Save(e *draft.Engine) error {
	data, err := json.Marshal(e.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	final := s.path(e.ID)
	tmp, err := os.CreateTemp(s.dataDir, "."+string(e.ID)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp snapshot file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot file: %w", err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

// Load reads and decodes one draft's snapshot file. A missing file is
// reported via the wrapped os.ErrNotExist, not a sentinel of our own.
func (s *FileStore) Load(id draft.DraftID) (draft.Snapshot, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return draft.Snapshot{}, fmt.Errorf("reading snapshot %s: %w", id, err)
	}
	var snap draft.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return draft.Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns every DraftId with a snapshot file in the data directory.
func (s *FileStore) List() ([]draft.DraftID, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning data dir %s: %w", s.dataDir, err)
	}

	ids := make([]draft.DraftID, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue // in-progress or leaked temp file
		}
		ids = append(ids, draft.DraftID(name))
	}
	return ids, nil
}
