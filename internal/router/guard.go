// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"github.com/jeranaias/instalite-tui/internal/session"
)

// maxRedirects bounds redirect chains in a misconfigured table.
const maxRedirects = 8

// Decision is the outcome of a guarded navigation.
type Decision struct {
	// Requested is the path that was asked for.
	Requested string
	// Location is where the client ends up.
	Location Location
	// Redirected is true when Location differs from Requested.
	Redirected bool
	// Denied is true when a protected route was refused for lack of a token.
	Denied bool
}

// Guard resolves navigation requests against a Table and the session store.
type Guard struct {
	table *Table
	store session.Store
}

// NewGuard returns a Guard over table that reads presence from store.
func NewGuard(table *Table, store session.Store) *Guard {
	return &Guard{table: table, store: store}
}

// Table returns the guarded table.
func (g *Guard) Table() *Table {
	return g.table
}

// Allowed reports whether a route may be entered right now.
func (g *Guard) Allowed(r *Route) bool {
	if r == nil || !r.Protected {
		return true
	}
	return session.LoggedIn(g.store)
}

// Resolve decides where a navigation to path lands. Public routes render
// as asked. Protected routes render only while the store holds a token and
// otherwise resolve to /login. Unknown paths go to /home when logged in and
// /login when not. Nothing is cached; the store is read on every call.
func (g *Guard) Resolve(path string) Decision {
	dec := Decision{Requested: Clean(path)}
	target := dec.Requested

	for i := 0; i < maxRedirects; i++ {
		loc, ok := g.table.Match(target)
		switch {
		case !ok:
			if session.LoggedIn(g.store) {
				target = PathHome
			} else {
				target = PathLogin
			}
		case loc.Route.Redirect != "":
			target = loc.Route.Redirect
		case !g.Allowed(loc.Route):
			dec.Denied = true
			target = PathLogin
		default:
			dec.Location = loc
			dec.Redirected = loc.Path != dec.Requested
			return dec
		}
	}

	// Redirect loop: fall back to the login screen directly.
	loc, _ := g.table.Match(PathLogin)
	dec.Location = loc
	dec.Redirected = true
	return dec
}
