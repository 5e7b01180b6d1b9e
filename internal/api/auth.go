// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
)

// LoginSuccessMessage is the backend's success marker for a login.
const LoginSuccessMessage = "Login successful"

// ErrLoginRejected is returned when the backend answers a login without a
// session identity.
var ErrLoginRejected = errors.New("login rejected")

// Register creates an account and returns the backend's message.
func (c *Client) Register(ctx context.Context, form RegisterRequest) (string, error) {
	req, err := jsonRequest(http.MethodPost, "/api/auth/register", form)
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

// Login authenticates with a username or email and returns the session
// identity. A reply without "Login successful" and a loggedUser is
// ErrLoginRejected.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	req, err := jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"UsernameOrEmail": usernameOrEmail,
		"Password":        password,
	})
	if err != nil {
		return nil, err
	}
	var res LoginResult
	if err := c.do(ctx, req, &res); err != nil {
		return nil, err
	}
	if res.Message != LoginSuccessMessage || res.LoggedUser == "" {
		return nil, ErrLoginRejected
	}
	return &res, nil
}

// Logout tells the backend the session ended. The client clears its own
// store regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/auth/logout"}, nil)
}
