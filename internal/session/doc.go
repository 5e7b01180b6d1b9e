// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the client-side session identity.
//
// At most one Token is stored, under the key "loggedUser", in a persistent
// key/value area scoped to the backend origin. The token is written at
// login, read by anything that needs to know who is logged in, and cleared
// at logout or idle expiry. No expiry metadata is stored with it.
//
// # Key Types
//
//   - Store: the get/set/clear contract used by the rest of the client
//   - KV: the persistent key/value area behind a Store
//   - MemoryKV, FileKV, SQLiteKV: KV backends
//
// # Usage
//
//	kv, err := session.Open(session.Options{Driver: "file", Dir: dir, Origin: origin})
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//
//	store := session.NewStore(kv, logger)
//	if tok, ok := store.Get(); ok {
//	    fmt.Println("logged in as", tok)
//	}
//
// Several client processes may share one FileKV or SQLiteKV. Writes are last
// writer wins; Watch reports changes made by other processes.
package session
