// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive commands
// of supportdesk.
//
// # Key Types
//
//   - Command: the subcommand to run (console, serve, status, init, version, help)
//   - Args: parsed global and command flags
//   - JSONResponse: envelope for --json output
//   - StatusClient: the service calls the status command needs
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    return err
//	}
//	switch cmd {
//	case cli.CmdStatus:
//	    return cli.HandleStatus(ctx, client, args, os.Stdout)
//	case cli.CmdVersion:
//	    return cli.HandleVersion(os.Stdout, args)
//	}
//
// Errors returned by handlers carry an exit code; use ExitCodeFor.
package cli
