// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/instalite-tui/internal/logging"
)

// =============================================================================
// KEYS AND ERRORS
// =============================================================================

const (
	// KeyLoggedUser is the canonical session identity key.
	KeyLoggedUser = "loggedUser"

	// KeySearchQuery holds the last profile search query.
	KeySearchQuery = "searchQuery"
)

var (
	// ErrEmptyToken is returned when storing an empty token.
	ErrEmptyToken = errors.New("session: empty token")

	// ErrClosed is returned by a KV used after Close.
	ErrClosed = errors.New("session: store closed")
)

// Token is the opaque identity of the logged-in user.
type Token string

// String returns the token value.
func (t Token) String() string { return string(t) }

// =============================================================================
// INTERFACES
// =============================================================================

// Store is the session identity contract.
//
// Get reports absence as ok == false. Clear on an empty store succeeds.
type Store interface {
	Get() (Token, bool)
	Set(Token) error
	Clear() error
}

// KV is a persistent string key/value area.
//
// Get reports a missing key as ok == false with a nil error. Delete of a
// missing key is not an error.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Watcher is implemented by KV backends that can report changes made
// outside this process.
type Watcher interface {
	// Watch sends on the returned channel whenever the underlying storage
	// changes. The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// =============================================================================
// KV-BACKED STORE
// =============================================================================

// KVStore implements Store on top of a KV under KeyLoggedUser.
type KVStore struct {
	kv  KV
	log logging.Logger
}

// NewStore returns a Store persisting the token in kv.
func NewStore(kv KV, log logging.Logger) *KVStore {
	if log == nil {
		log = logging.Nop()
	}
	return &KVStore{kv: kv, log: log.With("component", "session")}
}

// Get returns the stored token. An unreadable store counts as absent.
func (s *KVStore) Get() (Token, bool) {
	v, ok, err := s.kv.Get(KeyLoggedUser)
	if err != nil {
		s.log.Warn(context.Background(), "session read failed", "error", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return Token(v), true
}

// Set stores tok, replacing any previous token.
func (s *KVStore) Set(tok Token) error {
	if tok == "" {
		return ErrEmptyToken
	}
	if err := s.kv.Set(KeyLoggedUser, string(tok)); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Clear removes the token. Clearing an empty store is a no-op.
func (s *KVStore) Clear() error {
	if err := s.kv.Delete(KeyLoggedUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// KV returns the underlying key/value area.
func (s *KVStore) KV() KV {
	return s.kv
}

// LoggedIn reports whether s holds a token.
func LoggedIn(s Store) bool {
	_, ok := s.Get()
	return ok
}
