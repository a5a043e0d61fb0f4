package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Storage persists one cart state per user. Load must treat absent content as
// an empty state rather than an error.
type Storage interface {
	Load(ctx context.Context, userID uuid.UUID) (State, error)
	Save(ctx context.Context, userID uuid.UUID, state State) error
}

// FileStorage keeps one JSON document per user under a directory.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

func (f *FileStorage) path(userID uuid.UUID) string {
	return filepath.Join(f.dir, userID.String()+".json")
}

// Load reads the user's document. A missing file is an empty cart; a file
// that fails to parse is treated the same way, after a warning.
func (f *FileStorage) Load(_ context.Context, userID uuid.UUID) (State, error) {
	data, err := os.ReadFile(f.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("storage: failed to read cart file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("storage: corrupt cart file, treating as empty")
		return State{}, nil
	}

	return state, nil
}

func (f *FileStorage) Save(_ context.Context, userID uuid.UUID, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal cart state: %w", err)
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("storage: failed to create cart dir: %w", err)
	}

	if err := os.WriteFile(f.path(userID), data, 0o644); err != nil {
		return fmt.Errorf("storage: failed to write cart file: %w", err)
	}

	return nil
}
