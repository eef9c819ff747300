// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// init.go - Writes a starter config file.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jeranaias/supportdesk-tui/internal/config"
)

// InitData is the --json payload of the init command.
type InitData struct {
	Path string `json:"path"`
}

// HandleInit writes the built-in defaults to the --config path, or to
// ~/.supportdesk/config.toml. apply puts flag values on top of the defaults.
// An existing file is only replaced with --force.
func HandleInit(w io.Writer, args Args, apply func(*config.Config)) error {
	path := args.ConfigPath
	if path == "" {
		p, err := config.ConfigPathTOML()
		if err != nil {
			return NewConfigError(err)
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !args.Force {
		return &CommandError{
			Command: "init",
			Reason:  fmt.Sprintf("%s already exists (use --force to overwrite)", path),
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewCommandError("init", "cannot check "+path, err)
	}

	cfg := config.Default()
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return NewConfigError(err)
	}

	var err error
	if args.ConfigPath == "" {
		err = config.Save(cfg)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return NewCommandError("init", "could not write "+path, err)
	}

	if args.JSON {
		return NewJSONResponse("init", InitData{Path: path}).Write(w)
	}
	fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}
