// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router maps client paths to screens and gates protected ones.
//
// # Key Types
//
//   - Table: the ordered route table ("/posts/:id" style patterns)
//   - Location: a matched path with its route and parameters
//   - Guard: re-evaluated on every navigation; protected routes need a
//     session token, otherwise the client is sent to /login
//
// # Trust Model
//
// The guard only checks that a token is present in the session store. It
// never asks the backend whether the token is still valid.
//
// # Usage
//
//	guard := router.NewGuard(router.DefaultTable(), store)
//	dec := guard.Resolve("/posts/42")
//	if dec.Redirected {
//	    // dec.Location is /login
//	}
package router
