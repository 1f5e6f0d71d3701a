package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fintrack/internal/core"
)

const (
	LedgerFileSuffix = "_expenses.json"
	UsersFile        = "users.json"
)

// FileStore keeps one pretty-printed JSON file per owner in a directory,
// plus a shared users file for credentials.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

// Dir returns the directory holding the files.
func (s *FileStore) Dir() string {
	return s.dir
}

// ResolvePath returns the ledger file for owner. Owners that would escape
// the store directory are rejected.
func (s *FileStore) ResolvePath(owner string) (string, error) {
	if err := core.ValidateOwner(owner); err != nil {
		return "", err
	}
	name := owner + LedgerFileSuffix
	if filepath.Base(name) != name {
		return "", fmt.Errorf("%w %q", core.ErrInvalidOwner, owner)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *FileStore) Load(_ context.Context, owner string) (core.LedgerState, error) {
	path, err := s.ResolvePath(owner)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.LedgerState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrStorage, path, err)
	}

	var state core.LedgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", core.ErrStorage, path, err)
	}
	return state, nil
}

func (s *FileStore) Save(_ context.Context, owner string, state core.LedgerState) error {
	path, err := s.ResolvePath(owner)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %w", core.ErrStorage, err)
	}
	if err := writeFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("%w: write %s: %w", core.ErrStorage, path, err)
	}
	return nil
}

// LoadSecrets reads the users file. A missing file yields an empty map.
func (s *FileStore) LoadSecrets(_ context.Context) (map[string]string, error) {
	path := filepath.Join(s.dir, UsersFile)

	// #nosec G304 -- fixed file name inside the store directory
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrStorage, path, err)
	}

	secrets := map[string]string{}
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", core.ErrStorage, path, err)
	}
	if secrets == nil {
		secrets = map[string]string{}
	}
	return secrets, nil
}

func (s *FileStore) SaveSecrets(_ context.Context, secrets map[string]string) error {
	path := filepath.Join(s.dir, UsersFile)
	data, err := json.MarshalIndent(secrets, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode users: %w", core.ErrStorage, err)
	}
	if err := writeFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("%w: write %s: %w", core.ErrStorage, path, err)
	}
	return nil
}
