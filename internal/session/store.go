// Package session keeps the logged in user between CLI invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"climbing/logbook/internal/domain"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var ErrNoSession = errors.New("not logged in")

type Store struct {
	fs   afero.Fs
	path string

	mu   sync.Mutex
	user *domain.User
}

// NewStore keeps the session at path on fs. Environment variables in path are expanded.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: os.ExpandEnv(path)}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the stored user. A missing or unreadable blob yields ErrNoSession; an
// unparsable one is removed.
func (s *Store) Load() (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil || user.Username == "" {
		log.Warnf("⚠️ Discarding corrupt session file %s", s.path)
		if rmErr := s.fs.Remove(s.path); rmErr != nil {
			log.Errorf("Failed to remove corrupt session: %v", rmErr)
		}
		return nil, ErrNoSession
	}

	s.user = &user
	return &user, nil
}

func (s *Store) Save(user *domain.User) error {
	if user == nil || user.Username == "" {
		return errors.New("cannot save a session without a username")
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	s.user = user
	return nil
}

// Clear logs out. Clearing without a session is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// CurrentUser returns the last loaded or saved user, or nil.
func (s *Store) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}
