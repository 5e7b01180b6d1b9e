// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"
	"net/url"
	"strings"
)

// ============================================================================
// SCREENS
// ============================================================================

// Screen identifies the view a route renders.
type Screen string

const (
	ScreenLogin         Screen = "login"
	ScreenRegister      Screen = "register"
	ScreenHome          Screen = "home"
	ScreenProfile       Screen = "profile"
	ScreenEditProfile   Screen = "edit-profile"
	ScreenCreateProfile Screen = "create-profile"
	ScreenCreatePost    Screen = "create-post"
	ScreenPost          Screen = "post"
	ScreenUser          Screen = "user"
	ScreenSearch        Screen = "search"
)

// Well-known paths.
const (
	PathRoot          = "/"
	PathLogin         = "/login"
	PathRegister      = "/register"
	PathHome          = "/home"
	PathProfile       = "/profile"
	PathEditProfile   = "/profile/edit"
	PathCreateProfile = "/create-profile"
	PathCreatePost    = "/create-post"
	PathSearch        = "/search"
)

// PostPath returns the detail path of a post.
func PostPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}

// UserPath returns the public profile path of a user.
func UserPath(username string) string {
	return "/u/" + url.PathEscape(username)
}

// ============================================================================
// ROUTES
// ============================================================================

// Route is one entry of a Table.
type Route struct {
	// Pattern is a slash separated path; ":name" segments capture.
	Pattern string
	Screen  Screen
	// Protected routes require a session token.
	Protected bool
	// Redirect, when set, sends the client elsewhere instead of rendering.
	Redirect string

	segments []string
}

// Location is a path matched against a Table.
type Location struct {
	Path   string
	Route  *Route
	Params map[string]string
}

// Param returns a captured path parameter.
func (l Location) Param(name string) string {
	return l.Params[name]
}

// Screen returns the matched screen, or "" for an unmatched location.
func (l Location) Screen() Screen {
	if l.Route == nil {
		return ""
	}
	return l.Route.Screen
}

// Table is an ordered set of routes. The first match wins.
type Table struct {
	routes []*Route
}

// NewTable builds a table. Patterns must start with "/".
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{}
	for i := range routes {
		r := routes[i]
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("router: pattern %q must start with /", r.Pattern)
		}
		r.segments = splitPath(r.Pattern)
		for _, seg := range r.segments {
			if seg == ":" {
				return nil, fmt.Errorf("router: pattern %q has an unnamed parameter", r.Pattern)
			}
		}
		t.routes = append(t.routes, &r)
	}
	return t, nil
}

// DefaultTable returns the client's route table.
func DefaultTable() *Table {
	t, err := NewTable(
		Route{Pattern: PathRoot, Redirect: PathLogin},
		Route{Pattern: PathLogin, Screen: ScreenLogin},
		Route{Pattern: PathRegister, Screen: ScreenRegister},
		Route{Pattern: PathHome, Screen: ScreenHome, Protected: true},
		Route{Pattern: PathEditProfile, Screen: ScreenEditProfile, Protected: true},
		Route{Pattern: PathProfile, Screen: ScreenProfile, Protected: true},
		Route{Pattern: PathCreateProfile, Screen: ScreenCreateProfile, Protected: true},
		Route{Pattern: PathCreatePost, Screen: ScreenCreatePost, Protected: true},
		Route{Pattern: "/posts/:id", Screen: ScreenPost, Protected: true},
		Route{Pattern: "/u/:username", Screen: ScreenUser, Protected: true},
		Route{Pattern: PathSearch, Screen: ScreenSearch, Protected: true},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the routes in match order.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, *r)
	}
	return out
}

// Match finds the first route matching path.
func (t *Table) Match(path string) (Location, bool) {
	path = Clean(path)
	segs := splitPath(path)

	for _, r := range t.routes {
		params, ok := r.match(segs)
		if ok {
			return Location{Path: path, Route: r, Params: params}, true
		}
	}
	return Location{Path: path}, false
}

func (r *Route) match(segs []string) (map[string]string, bool) {
	if len(segs) != len(r.segments) {
		return nil, false
	}
	var params map[string]string
	for i, want := range r.segments {
		if strings.HasPrefix(want, ":") {
			value, err := url.PathUnescape(segs[i])
			if err != nil || value == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[want[1:]] = value
			continue
		}
		if want != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Clean normalizes a client path: query and fragment dropped, leading
// slash added, trailing slash and empty segments removed.
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := splitPath(path)
	if len(segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(segs, "/")
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
