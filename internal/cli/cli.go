// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdConfig
	CmdVersion
	CmdHelp
)

func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdWhoami:
		return "whoami"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config FILE
	APIURL     string // --api URL
	Ephemeral  bool   // --ephemeral: keep the session in memory only
	Verbose    bool   // -v: debug logging

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	User       string // login --user

	// Raw args remaining after the command name
	Raw []string
}

const usageText = `instalite - terminal client for the instalite photo sharing app

Usage:
  instalite [flags]                 Start the TUI (default)
  instalite login [--user NAME]     Sign in and store the session
  instalite logout                  Sign out and clear the session
  instalite whoami                  Print the signed-in user
  instalite config show             Print the effective configuration
  instalite config get KEY          Print one setting (dot notation)
  instalite config set KEY VALUE    Change one setting and save
  instalite config path             Print the config file location
  instalite version                 Print version information
  instalite help                    Show this help

Flags:
  --config FILE     Read configuration from FILE (.toml or .json)
  --api URL         Backend base URL (overrides api.base_url)
  --ephemeral       Keep the session in memory; nothing is written to disk
  -v, --verbose     Log at debug level

Environment:
  INSTALITE_API_URL, INSTALITE_IDLE_TIMEOUT, INSTALITE_STORE_DRIVER and the
  other INSTALITE_* variables override the config file.

TUI keys:
  F1 home  F2 search  F3 new post  F4 profile  ctrl+c quit
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("instalite %s (%s, built %s, %s/%s)\n", Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses a command line without the program name.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "login", "signin":
		p := NewArgParser(remaining)
		args.User = p.FlagOr("user", p.Positional(0))
		return CmdLogin, args

	case "logout", "signout":
		return CmdLogout, args

	case "whoami":
		return CmdWhoami, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "version", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args
	}

	args.Raw = append([]string{cmd}, remaining...)
	return CmdHelp, args
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--ephemeral":
			args.Ephemeral = true
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--config" || arg == "--api":
			if i+1 < len(argv) {
				i++
				if arg == "--config" {
					args.ConfigPath = argv[i]
				} else {
					args.APIURL = argv[i]
				}
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "--api="):
			args.APIURL = strings.TrimPrefix(arg, "--api=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Subcommand = p.Subcommand()
	if args.Subcommand == "" {
		args.Subcommand = "show"
	}
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
}
