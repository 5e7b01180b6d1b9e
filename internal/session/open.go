// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "fmt"

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Options selects and locates a KV backend.
type Options struct {
	Driver string
	Dir    string
	Origin string
}

// Open returns the KV backend named by opts.Driver.
func Open(opts Options) (KV, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileKV(opts.Dir, opts.Origin)
	case DriverSQLite:
		return NewSQLiteKV(opts.Dir, opts.Origin)
	case DriverMemory:
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("session: unknown driver %q", opts.Driver)
}
