package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/graphlens/dashboard/pkg/chat"
	"github.com/graphlens/dashboard/pkg/logger"
)

const defaultSnapshotKey = "chat-session"

// SnapshotStore keeps the chat engine's persisted snapshot in a single
// JSON file slot. Every save overwrites the whole slot
// (last-writer-wins, single writer); a snapshot that cannot be read
// back is ignored, never fatal.
type SnapshotStore struct {
	path string
}

// NewSnapshotStoreParams defines the configuration for creating a
// SnapshotStore. Key defaults to a fixed identifier so one engine
// instance always maps to the same slot.
type NewSnapshotStoreParams struct {
	Dir string
	Key string
}

// NewSnapshotStore creates a file-backed snapshot store under the
// given directory, creating it when absent.
func NewSnapshotStore(params NewSnapshotStoreParams) (*SnapshotStore, error) {
	key := params.Key
	if key == "" {
		key = defaultSnapshotKey
	}

	if err := os.MkdirAll(params.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &SnapshotStore{
		path: filepath.Join(params.Dir, key+".json"),
	}, nil
}

// Save overwrites the slot with the given snapshot. The write goes
// through a temp file and rename so a crash never leaves a torn slot.
func (s *SnapshotStore) Save(snapshot chat.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}

// Load reads the slot once at engine start-up. A missing or malformed
// snapshot reports ok=false and is otherwise ignored.
func (s *SnapshotStore) Load() (chat.Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("[Storage] Failed to read snapshot, ignoring", "path", s.path, "err", err)
		}
		return chat.Snapshot{}, false
	}

	var snapshot chat.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		logger.Warn("[Storage] Malformed snapshot, ignoring", "path", s.path, "err", err)
		return chat.Snapshot{}, false
	}

	return snapshot, true
}

// Clear removes the slot. Clearing an already-empty slot is a no-op.
func (s *SnapshotStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
