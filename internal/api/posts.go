// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// ErrIncompletePost is returned by CreatePost without an image or caption.
var ErrIncompletePost = errors.New("a post needs both an image and a caption")

// Home returns the feed for user.
func (c *Client) Home(ctx context.Context, user string) (*Feed, error) {
	req := request{method: http.MethodGet, path: "/api/home", query: url.Values{"userId": {user}}}
	var feed Feed
	if err := c.do(ctx, req, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// CreatePost uploads a new post and returns the backend's message.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (string, error) {
	if p.ImagePath == "" || strings.TrimSpace(p.Caption) == "" {
		return "", ErrIncompletePost
	}
	req, err := multipartRequest(http.MethodPost, "/api/post/store",
		[][2]string{{"caption", p.Caption}, {"loggedUser", p.LoggedUser}},
		formFile{field: "content", path: p.ImagePath},
	)
	if err != nil {
		return "", err
	}
	var res struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, req, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// Post returns a post with its comments and like state for the caller.
func (c *Client) Post(ctx context.Context, id ID) (*PostDetail, error) {
	req := request{method: http.MethodGet, path: "/api/post/" + url.PathEscape(id.String())}
	var detail PostDetail
	if err := c.do(ctx, req, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id ID) error {
	req, err := jsonRequest(http.MethodDelete, "/api/post/"+url.PathEscape(id.String()),
		map[string]string{"postId": id.String()})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// ToggleLike likes or unlikes a post for user. It reports whether the
// backend accepted the toggle.
func (c *Client) ToggleLike(ctx context.Context, id ID, user string) (bool, error) {
	req, err := jsonRequest(http.MethodPost, "/api/post/"+url.PathEscape(id.String())+"/like",
		map[string]string{"loggedUser": user})
	if err != nil {
		return false, err
	}
	var res struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, req, &res); err != nil {
		return false, err
	}
	return res.Success, nil
}

// AddComment stores a comment by user on a post.
func (c *Client) AddComment(ctx context.Context, id ID, text, user string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("comment is empty")
	}
	req, err := jsonRequest(http.MethodPost, "/api/post/"+url.PathEscape(id.String())+"/comment",
		map[string]string{"text": text, "loggedUser": user})
	if err != nil {
		return nil, err
	}
	var res struct {
		Comment Comment `json:"comment"`
	}
	if err := c.do(ctx, req, &res); err != nil {
		return nil, err
	}
	return &res.Comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id ID) error {
	req := request{method: http.MethodDelete, path: "/api/post/comment/" + url.PathEscape(id.String())}
	return c.do(ctx, req, nil)
}
