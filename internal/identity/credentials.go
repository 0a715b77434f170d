package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkordes/travel-guide/internal/domain"
)

// Credential is what survives a restart: enough to mint a new ID token.
type Credential struct {
	UserID       string `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

// FileStore keeps the credential in a JSON file readable only by the user.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored credential or domain.ErrNotFound.
func (s *FileStore) Load() (Credential, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credential{}, fmt.Errorf("identity.FileStore.Load: %w", domain.ErrNotFound)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("identity.FileStore.Load: %w", err)
	}
	var c Credential
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credential{}, fmt.Errorf("identity.FileStore.Load: decode: %w", err)
	}
	if c.RefreshToken == "" {
		return Credential{}, fmt.Errorf("identity.FileStore.Load: %w", domain.ErrNotFound)
	}
	return c, nil
}

// Save replaces the stored credential.
func (s *FileStore) Save(c Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("identity.FileStore.Save: %w", err)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("identity.FileStore.Save: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("identity.FileStore.Save: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("identity.FileStore.Save: %w", err)
	}
	return nil
}

// Delete removes the stored credential. Deleting a missing file is not an
// error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("identity.FileStore.Delete: %w", err)
	}
	return nil
}
