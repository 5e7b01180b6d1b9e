// instalite - a terminal client for the Instalite photo sharing service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/instalite-tui/internal/app"
	"github.com/jeranaias/instalite-tui/internal/cli"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/session"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
	"github.com/jeranaias/instalite-tui/internal/ui/styles"
	"github.com/jeranaias/instalite-tui/internal/ui/views"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdWhoami:
		err = cli.HandleWhoami(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	default:
		cli.PrintUsage()
	}
	if err != nil {
		cli.Fail(err)
	}
}

// runTUI starts the terminal interface.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("run the client"); err != nil {
		return err
	}
	rt, err := cli.Bootstrap(args)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config

	theme := styles.NewTheme(cfg.UI.Theme)
	deps := &views.Deps{
		API:            rt.API,
		Store:          rt.Store,
		KV:             rt.KV,
		Theme:          theme,
		Markdown:       components.NewMarkdown(theme.GlamourStyle(), cfg.UI.Markdown),
		Log:            rt.Log,
		Timeout:        cfg.APITimeout(),
		SearchDebounce: views.DefaultSearchDebounce,
	}

	// A restored session skips the login screen.
	start := "/"
	if session.LoggedIn(rt.Store) {
		start = router.PathHome
	}

	m := app.New(app.Options{
		Deps:         deps,
		Guard:        router.NewGuard(router.DefaultTable(), rt.Store),
		IdleTimeout:  cfg.IdleTimeout(),
		WarnBefore:   cfg.WarnBefore(),
		StartPath:    start,
		ExpiryNotice: cfg.UI.ExpiryNotice,
	})
	defer m.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)
	m.SetSender(p.Send)

	rt.Log.Info(context.Background(), "tui started", "start", start)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run instalite: %w", err)
	}
	return nil
}
