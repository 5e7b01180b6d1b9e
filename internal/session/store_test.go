// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:5000"

// backends returns one fresh KV per driver.
func backends(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(t.TempDir(), testOrigin)
	require.NoError(t, err)

	sqliteKV, err := NewSQLiteKV(t.TempDir(), testOrigin)
	require.NoError(t, err)
	t.Cleanup(func() { sqliteKV.Close() })

	return map[string]KV{
		DriverMemory: NewMemoryKV(),
		DriverFile:   fileKV,
		DriverSQLite: sqliteKV,
	}
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

func TestStore_SetGetClear(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(kv, nil)

			_, ok := store.Get()
			assert.False(t, ok, "fresh store must be empty")

			require.NoError(t, store.Set("alice"))
			tok, ok := store.Get()
			require.True(t, ok)
			assert.Equal(t, Token("alice"), tok)
			assert.True(t, LoggedIn(store))

			require.NoError(t, store.Set("bob"))
			tok, _ = store.Get()
			assert.Equal(t, Token("bob"), tok, "set replaces the previous token")

			require.NoError(t, store.Clear())
			_, ok = store.Get()
			assert.False(t, ok)
			assert.False(t, LoggedIn(store))
		})
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(kv, nil)

			require.NoError(t, store.Clear())
			require.NoError(t, store.Clear())
			_, ok := store.Get()
			assert.False(t, ok)
		})
	}
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	store := NewStore(NewMemoryKV(), nil)
	err := store.Set("")
	assert.True(t, errors.Is(err, ErrEmptyToken))
}

func TestStore_EmptyValueCountsAsAbsent(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(KeyLoggedUser, ""))

	_, ok := NewStore(kv, nil).Get()
	assert.False(t, ok)
}

func TestStore_OtherKeysUntouched(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(kv, nil)
			require.NoError(t, kv.Set(KeySearchQuery, "ali"))
			require.NoError(t, store.Set("alice"))
			require.NoError(t, store.Clear())

			v, ok, err := kv.Get(KeySearchQuery)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "ali", v)
		})
	}
}

func TestStore_ClosedBackend(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, nil)
	require.NoError(t, kv.Close())

	_, ok := store.Get()
	assert.False(t, ok, "unreadable store counts as absent")
	assert.True(t, errors.Is(store.Set("alice"), ErrClosed))
	assert.True(t, errors.Is(store.Clear(), ErrClosed))
}

// =============================================================================
// FILE KV
// =============================================================================

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileKV(dir, testOrigin)
	require.NoError(t, err)
	require.NoError(t, NewStore(first, nil).Set("alice"))

	second, err := NewFileKV(dir, testOrigin)
	require.NoError(t, err)
	tok, ok := NewStore(second, nil).Get()
	require.True(t, ok)
	assert.Equal(t, Token("alice"), tok)

	info, err := os.Stat(first.Path())
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 {
		t.Errorf("store permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestFileKV_ScopedByOrigin(t *testing.T) {
	dir := t.TempDir()

	a, err := NewFileKV(dir, "http://localhost:5000")
	require.NoError(t, err)
	b, err := NewFileKV(dir, "https://insta.example.com")
	require.NoError(t, err)

	require.NoError(t, NewStore(a, nil).Set("alice"))
	_, ok := NewStore(b, nil).Get()
	assert.False(t, ok, "other origin must not see the token")
}

func TestFileKV_ClearOnMissingFileDoesNotCreateIt(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), testOrigin)
	require.NoError(t, err)

	require.NoError(t, kv.Delete(KeyLoggedUser))
	_, err = os.Stat(kv.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestFileKV_CorruptFile(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), testOrigin)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(kv.Path(), []byte("{not json"), 0600))

	_, _, err = kv.Get(KeyLoggedUser)
	assert.Error(t, err)

	_, ok := NewStore(kv, nil).Get()
	assert.False(t, ok)
}

func TestOriginFileName(t *testing.T) {
	tests := map[string]string{
		"http://localhost:5000":     "http_localhost_5000",
		"https://Insta.Example.com": "https_insta.example.com",
		"":                          "default",
	}
	for in, want := range tests {
		assert.Equal(t, want, OriginFileName(in), in)
	}
}

func TestFileKV_WatchSeesOtherWriter(t *testing.T) {
	dir := t.TempDir()
	watched, err := NewFileKV(dir, testOrigin)
	require.NoError(t, err)
	other, err := NewFileKV(dir, testOrigin)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := watched.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, NewStore(other, nil).Set("alice"))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	tok, ok := NewStore(watched, nil).Get()
	require.True(t, ok)
	assert.Equal(t, Token("alice"), tok)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-changes:
			return !open
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond, "channel closes after cancel")
}

// =============================================================================
// SQLITE KV
// =============================================================================

func TestSQLiteKV_SharedDatabase(t *testing.T) {
	dir := t.TempDir()

	a, err := NewSQLiteKV(dir, testOrigin)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSQLiteKV(dir, testOrigin)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, NewStore(a, nil).Set("alice"))
	tok, ok := NewStore(b, nil).Get()
	require.True(t, ok)
	assert.Equal(t, Token("alice"), tok)

	require.NoError(t, NewStore(b, nil).Clear())
	_, ok = NewStore(a, nil).Get()
	assert.False(t, ok, "last writer wins")

	assert.Equal(t, filepath.Join(dir, SQLiteFileName), a.Path())
}

func TestSQLiteKV_CloseTwice(t *testing.T) {
	kv, err := NewSQLiteKV(t.TempDir(), testOrigin)
	require.NoError(t, err)
	require.NoError(t, kv.Close())
	require.NoError(t, kv.Close())
}

// =============================================================================
// OPEN
// =============================================================================

func TestOpen(t *testing.T) {
	for _, driver := range []string{DriverFile, DriverSQLite, DriverMemory} {
		kv, err := Open(Options{Driver: driver, Dir: t.TempDir(), Origin: testOrigin})
		require.NoError(t, err, driver)
		require.NoError(t, kv.Close())
	}

	_, err := Open(Options{Driver: "redis"})
	assert.Error(t, err)
}
