// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/instalite-tui/internal/config"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig runs "config show|get|set|path".
func HandleConfig(args Args) error {
	return runConfig(args, os.Stdout)
}

func runConfig(args Args, out io.Writer) error {
	switch args.Subcommand {
	case "show", "":
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		return showConfig(cfg, out, ColorsEnabled())

	case "get":
		if args.ConfigKey == "" {
			return &UsageError{Message: "usage: instalite config get KEY\n\nkeys:\n  " + strings.Join(sortedKeys(), "\n  ")}
		}
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		v, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return &UsageError{Message: err.Error()}
		}
		fmt.Fprintln(out, v)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return &UsageError{Message: "usage: instalite config set KEY VALUE"}
		}
		return setConfig(args, out)

	case "path":
		path, err := configPath(args)
		if err != nil {
			return &ConfigError{Err: err}
		}
		fmt.Fprintln(out, path)
		return nil
	}
	return &UsageError{Message: fmt.Sprintf("unknown config subcommand %q (show, get, set, path)", args.Subcommand)}
}

// showConfig prints cfg as TOML, highlighted when color is set.
func showConfig(cfg *config.Config, out io.Writer, color bool) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return &ConfigError{Err: err}
	}
	block := components.CodeBlock{Language: "toml", Code: buf.String(), Color: color, Dark: DarkBackground()}
	fmt.Fprintln(out, block.Render())
	return nil
}

func setConfig(args Args, out io.Writer) error {
	path, err := configPath(args)
	if err != nil {
		return &ConfigError{Err: err}
	}

	// Decode the file alone so environment overrides are not written back.
	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		load := config.LoadTOML
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return &ConfigError{Err: err}
		}
		if err := cfg.Migrate(); err != nil {
			return &ConfigError{Err: err}
		}
		cfg.SetDefaults()
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &UsageError{Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return &UsageError{Message: err.Error()}
	}

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return &ConfigError{Err: err}
	}
	fmt.Fprintln(out, SuccessStyle.Render("Set "+args.ConfigKey+" = "+args.ConfigVal))
	return nil
}

func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func sortedKeys() []string {
	keys := config.GetAllKeys()
	sort.Strings(keys)
	return keys
}
