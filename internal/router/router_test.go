// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/instalite-tui/internal/session"
)

func newGuard(t *testing.T) (*Guard, *session.KVStore) {
	t.Helper()
	store := session.NewStore(session.NewMemoryKV(), nil)
	return NewGuard(DefaultTable(), store), store
}

// ============================================================================
// TABLE
// ============================================================================

func TestMatch(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		path   string
		screen Screen
		params map[string]string
	}{
		{"/login", ScreenLogin, nil},
		{"/home/", ScreenHome, nil},
		{"//profile//edit", ScreenEditProfile, nil},
		{"/profile", ScreenProfile, nil},
		{"/posts/42", ScreenPost, map[string]string{"id": "42"}},
		{"/u/alice.smith", ScreenUser, map[string]string{"username": "alice.smith"}},
		{"/u/a%20b", ScreenUser, map[string]string{"username": "a b"}},
		{"/search?q=ali", ScreenSearch, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			loc, ok := table.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.screen, loc.Screen())
			assert.Equal(t, tt.params, loc.Params)
		})
	}

	_, ok := table.Match("/posts")
	assert.False(t, ok)
	_, ok = table.Match("/posts/1/2")
	assert.False(t, ok)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "/", Clean(""))
	assert.Equal(t, "/", Clean("///"))
	assert.Equal(t, "/home", Clean("home/"))
	assert.Equal(t, "/posts/7", Clean("/posts/7#comments"))
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "/posts/12", PostPath("12"))
	assert.Equal(t, "/u/a%20b", UserPath("a b"))

	loc, ok := DefaultTable().Match(UserPath("a b"))
	require.True(t, ok)
	assert.Equal(t, "a b", loc.Param("username"))
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable(Route{Pattern: "home"})
	assert.Error(t, err)
	_, err = NewTable(Route{Pattern: "/posts/:"})
	assert.Error(t, err)
}

func TestProtectedSet(t *testing.T) {
	public := map[string]bool{PathRoot: true, PathLogin: true, PathRegister: true}
	for _, r := range DefaultTable().Routes() {
		assert.Equal(t, !public[r.Pattern], r.Protected, r.Pattern)
	}
}

// ============================================================================
// GUARD
// ============================================================================

var protectedPaths = []string{
	PathHome, PathProfile, PathEditProfile, PathCreateProfile,
	PathCreatePost, "/posts/1", "/u/alice", PathSearch,
}

func TestGuard_ProtectedFollowsStorePresence(t *testing.T) {
	guard, store := newGuard(t)

	for _, path := range protectedPaths {
		require.NoError(t, store.Set("alice"))
		dec := guard.Resolve(path)
		assert.False(t, dec.Redirected, path)
		assert.False(t, dec.Denied, path)
		assert.Equal(t, Clean(path), dec.Location.Path)

		require.NoError(t, store.Clear())
		dec = guard.Resolve(path)
		assert.True(t, dec.Redirected, path)
		assert.True(t, dec.Denied, path)
		assert.Equal(t, PathLogin, dec.Location.Path)
		assert.Equal(t, ScreenLogin, dec.Location.Screen())
	}
}

func TestGuard_PublicRoutesAlwaysRender(t *testing.T) {
	guard, store := newGuard(t)

	for _, loggedIn := range []bool{false, true} {
		if loggedIn {
			require.NoError(t, store.Set("alice"))
		}
		for _, path := range []string{PathLogin, PathRegister} {
			dec := guard.Resolve(path)
			assert.False(t, dec.Redirected)
			assert.Equal(t, path, dec.Location.Path)
		}
	}
}

func TestGuard_RootRedirectsToLogin(t *testing.T) {
	guard, store := newGuard(t)
	require.NoError(t, store.Set("alice"))

	dec := guard.Resolve("/")
	assert.True(t, dec.Redirected)
	assert.False(t, dec.Denied)
	assert.Equal(t, PathLogin, dec.Location.Path)
}

func TestGuard_UnknownPath(t *testing.T) {
	guard, store := newGuard(t)

	assert.Equal(t, PathLogin, guard.Resolve("/nope").Location.Path)

	require.NoError(t, store.Set("alice"))
	assert.Equal(t, PathHome, guard.Resolve("/nope").Location.Path)
}

// The decision is never cached: it tracks the store from call to call.
func TestGuard_NoCaching(t *testing.T) {
	guard, store := newGuard(t)

	require.NoError(t, store.Set("alice"))
	assert.False(t, guard.Resolve(PathHome).Denied)

	require.NoError(t, store.Clear())
	assert.True(t, guard.Resolve(PathHome).Denied)

	require.NoError(t, store.Set("bob"))
	assert.False(t, guard.Resolve(PathHome).Denied)
}

func TestGuard_RedirectLoop(t *testing.T) {
	table, err := NewTable(
		Route{Pattern: "/a", Redirect: "/b"},
		Route{Pattern: "/b", Redirect: "/a"},
		Route{Pattern: PathLogin, Screen: ScreenLogin},
	)
	require.NoError(t, err)
	guard := NewGuard(table, session.NewStore(session.NewMemoryKV(), nil))

	dec := guard.Resolve("/a")
	assert.True(t, dec.Redirected)
	assert.Equal(t, PathLogin, dec.Location.Path)
}

func TestGuard_Allowed(t *testing.T) {
	guard, store := newGuard(t)
	home, _ := guard.Table().Match(PathHome)
	login, _ := guard.Table().Match(PathLogin)

	assert.False(t, guard.Allowed(home.Route))
	assert.True(t, guard.Allowed(login.Route))
	assert.True(t, guard.Allowed(nil))

	require.NoError(t, store.Set("alice"))
	assert.True(t, guard.Allowed(home.Route))
}
