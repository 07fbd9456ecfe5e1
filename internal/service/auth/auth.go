// Package auth keeps the signed in user of a client.
//
// It is a local stand-in for authentication: the only credential check is the password length,
// the username is taken as is and nothing is verified against any authority.
// Do not rely on it to protect anything.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nkiryanov/qrgen/internal/apperrors"
	"github.com/nkiryanov/qrgen/internal/models"
)

const (
	// Storage key the signed in user is persisted under
	StorageKey = "user"

	MinPasswordLength = 6
)

// Client side key-value storage
type Storage interface {
	// Return value and whether the key exists
	Get(key string) (string, bool)

	Set(key string, value string) error

	// Remove the key, removing unknown key is not an error
	Remove(key string)
}

// Session holds the current user of one client
// Lifecycle: NewSession -> Init (restore from storage) -> SignIn/SignOut... -> Close
type Session struct {
	mu      sync.RWMutex
	storage Storage
	user    *models.User
	loading bool
	err     error
}

func NewSession(storage Storage) *Session {
	return &Session{storage: storage}
}

// Init restores the user from storage
// Unreadable value is dropped: the session stays signed out
func (s *Session) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage == nil {
		return fmt.Errorf("session is closed")
	}

	raw, ok := s.storage.Get(StorageKey)
	if !ok {
		s.user = nil
		return nil
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.storage.Remove(StorageKey)
		s.user = nil
		return fmt.Errorf("stored user dropped, can't decode it. Err: %w", err)
	}

	s.user = &u
	return nil
}

// User returns the signed in user
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Loading is true while sign in is in progress
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last sign in error
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// SignIn sets the current user
// Surrounding spaces of the username are dropped, blank username is apperrors.ErrUsernameRequired.
// The only credential check is the password length: apperrors.ErrPasswordTooShort if it is shorter than MinPasswordLength
func (s *Session) SignIn(ctx context.Context, username string, password string) error {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	err := s.signIn(ctx, username, password)

	s.mu.Lock()
	s.loading = false
	s.err = err
	s.mu.Unlock()

	return err
}

func (s *Session) signIn(ctx context.Context, username string, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return apperrors.ErrUsernameRequired
	}

	if len(password) < MinPasswordLength {
		return apperrors.ErrPasswordTooShort
	}

	u := models.User{Username: username}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("can't encode user. Err: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage == nil {
		return fmt.Errorf("session is closed")
	}
	if err := s.storage.Set(StorageKey, string(raw)); err != nil {
		return fmt.Errorf("can't persist user. Err: %w", err)
	}

	s.user = &u
	return nil
}

// SignOut clears the user in session and storage
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage != nil {
		s.storage.Remove(StorageKey)
	}
	s.user = nil
	s.err = nil
}

// Close detaches the storage, session can't be used after it
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storage = nil
	s.user = nil
}

// MapStorage is in-memory Storage
type MapStorage map[string]string

func (m MapStorage) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapStorage) Set(key string, value string) error {
	m[key] = value
	return nil
}

func (m MapStorage) Remove(key string) {
	delete(m, key)
}
