// Package credstore persists the bearer token together with a snapshot of
// the identity it belongs to, so a restart can restore the session without a
// network round trip. The pair is written and cleared as a unit, never
// independently.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/washlink/app/internal/api"
)

// Credentials is the persisted token + identity pair.
type Credentials struct {
	AccessToken string   `json:"access_token"`
	User        api.User `json:"user"`
}

// Store reads and writes credentials at a fixed file path.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored credentials. ok is false when nothing is stored.
// A corrupt file is treated as absent after removing it, so a bad write can
// never wedge the login flow.
func (s *Store) Load() (Credentials, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		_ = os.Remove(s.path)
		return Credentials{}, false, nil
	}
	if creds.AccessToken == "" {
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

// Save writes the pair atomically (temp file + rename) so a crash mid-write
// leaves either the old pair or the new one, never a torn file.
func (s *Store) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// Clear removes the stored pair. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
