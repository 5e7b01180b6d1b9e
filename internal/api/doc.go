// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the instalite backend.
//
// All business logic lives in the backend; this package only shapes
// requests and decodes responses. Backend failures come back as *Error
// (decoded from {"error": "..."} bodies). Transport failures that survive
// the retry budget wrap ErrUnavailable.
//
// # Retries
//
// Transport errors and 5xx responses to GET requests are retried with
// exponential backoff (500ms, 1s, 2s, ... capped at 10s). Writes (likes,
// comments, uploads, logins, deletes) are sent once, and 4xx responses are
// never retried.
// Every attempt waits on the client-side rate limiter first.
//
// # Usage
//
//	c := api.NewClient(cfg.API.BaseURL).
//	    WithTimeout(cfg.APITimeout()).
//	    WithMaxRetries(cfg.API.MaxRetries)
//
//	res, err := c.Login(ctx, "alice", "Secret1!")
//	if err != nil {
//	    var apiErr *api.Error
//	    if errors.As(err, &apiErr) {
//	        fmt.Println(apiErr.Message)
//	    }
//	}
package api
