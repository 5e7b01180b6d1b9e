// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/config"
	"github.com/jeranaias/instalite-tui/internal/logging"
	"github.com/jeranaias/instalite-tui/internal/session"
)

// =============================================================================
// RUNTIME
// =============================================================================

// Runtime is everything a command needs: configuration, logger, session
// storage and the backend client.
type Runtime struct {
	Config *config.Config
	Log    logging.Logger
	KV     session.KV
	Store  *session.KVStore
	API    *api.Client

	closers []io.Closer
}

// LoadConfig loads the configuration named by args (or the default file)
// and applies the command line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return nil, &ConfigError{Err: err}
	}
	if err != nil {
		// Load fell back to defaults; keep going.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: "+err.Error()))
	}

	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if args.Ephemeral {
		cfg.Session.Driver = session.DriverMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// Bootstrap opens the log file, the session storage and the API client.
// Close releases them.
func Bootstrap(args Args) (_ *Runtime, err error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, Log: logging.Nop()}
	// Anything opened before a failure is released here.
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	if logPath, err := cfg.LogPath(); err == nil {
		log, closer, err := logging.OpenFile(logPath, cfg.Log.Level)
		if err != nil {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: logging disabled: "+err.Error()))
		} else {
			rt.Log = log
			rt.closers = append(rt.closers, closer)
		}
	}

	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	kv, err := session.Open(session.Options{Driver: cfg.Session.Driver, Dir: dir, Origin: cfg.Origin()})
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}
	rt.KV = kv
	rt.closers = append(rt.closers, kv)
	rt.Store = session.NewStore(kv, rt.Log)

	rt.API = api.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.APITimeout()).
		WithMaxRetries(cfg.API.MaxRetries).
		WithRateLimit(cfg.API.RateLimit).
		WithLogger(rt.Log)

	rt.Log.Info(context.Background(), "runtime ready", "api", cfg.API.BaseURL, "store", cfg.Session.Driver)
	return rt, nil
}

// Close releases the storage and the log file, newest first.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
