// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Status values returned by the profile endpoints.
const (
	StatusAvailable = "available"
	StatusSuccess   = "success"
)

// EditProfile returns user's editable profile. A user who has not created
// a profile yet comes back with an empty Username.
func (c *Client) EditProfile(ctx context.Context, user string) (*Profile, error) {
	req := request{method: http.MethodGet, path: "/api/profile/edit", query: url.Values{"loggedUser": {user}}}
	var p Profile
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// OwnProfile returns user's profile with their posts.
func (c *Client) OwnProfile(ctx context.Context, user string) (*ProfileWithPosts, error) {
	req := request{method: http.MethodGet, path: "/api/profile/profile", query: url.Values{"loggedUser": {user}}}
	var p ProfileWithPosts
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile saves user's profile. The result's LoggedUser is the new
// session identity when the username changed.
func (c *Client) UpdateProfile(ctx context.Context, user string, u ProfileUpdate) (*UpdateResult, error) {
	req, err := multipartRequest(http.MethodPut, "/api/profile/update",
		[][2]string{
			{"username", u.Username},
			{"fullname", u.Fullname},
			{"bio", u.Bio},
			{"career", u.Career},
		},
		formFile{field: "photo", path: u.PhotoPath},
	)
	if err != nil {
		return nil, err
	}
	req.query = url.Values{"loggedUser": {user}}

	var res UpdateResult
	if err := c.do(ctx, req, &res); err != nil {
		return nil, err
	}
	if res.Status != StatusSuccess {
		msg := res.Message
		if msg == "" {
			msg = "profile update was not accepted"
		}
		return nil, &Error{Status: http.StatusOK, Message: msg}
	}
	return &res, nil
}

// CheckUsername reports whether username is free.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	req := request{method: http.MethodGet, path: "/api/profile/check-username", query: url.Values{"username": {username}}}
	var res struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, req, &res); err != nil {
		return false, err
	}
	return res.Status == StatusAvailable, nil
}

// PublicProfile returns another user's profile with their posts.
func (c *Client) PublicProfile(ctx context.Context, username string) (*ProfileWithPosts, error) {
	req := request{method: http.MethodGet, path: "/api/profile/" + url.PathEscape(username)}
	var p ProfileWithPosts
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Search finds profiles whose username matches query. An empty query
// returns no results without calling the backend.
func (c *Client) Search(ctx context.Context, query, user string) ([]ProfileSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	req := request{
		method: http.MethodGet,
		path:   "/api/profile/search/" + url.PathEscape(query),
		query:  url.Values{"loggedUser": {user}},
	}
	var hits []ProfileSummary
	if err := c.do(ctx, req, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}
