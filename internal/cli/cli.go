// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for supportdesk.
package cli

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdServe
	CmdStatus
	CmdInit
	CmdVersion
	CmdHelp
)

// String returns the command word as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdServe:
		return "serve"
	case CmdStatus:
		return "status"
	case CmdInit:
		return "init"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "tui"
	}
}

var commandWords = map[string]Command{
	"tui":     CmdTUI,
	"serve":   CmdServe,
	"server":  CmdServe,
	"status":  CmdStatus,
	"s":       CmdStatus,
	"init":    CmdInit,
	"version": CmdVersion,
	"help":    CmdHelp,
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	APIURL     string
	LogFile    string
	LogLevel   string
	JSON       bool
	NoMouse    bool
	Force      bool

	// serve
	Addr   string
	DBPath string

	// Raw args (remaining after the command word)
	Raw []string
}

const usageText = `supportdesk - terminal console for a multi-agent customer support service

Usage:
  supportdesk [flags]            Start the console (default)
  supportdesk serve [flags]      Run the bundled demo support service
  supportdesk status, s          Show service health, tickets and agents
  supportdesk init [--force]     Write a config file with the defaults
  supportdesk version            Show version information
  supportdesk help               Show this help

Console keys:
  alt+1..5         Switch view (Chat, Dashboard, Tickets, Agents, Settings)
  tab / shift+tab  Next / previous view (fields in Settings)
  ctrl+left/right  Previous / next view from any view
  enter            Send message
  ctrl+c           Quit

Examples:
  supportdesk --api-url http://10.0.0.5:8000
  supportdesk serve --addr 127.0.0.1:9000 --db /tmp/desk.db
  supportdesk status --json
  supportdesk init --api-url http://10.0.0.5:8000

Flags:
%s
Version: %s
`

func newFlagSet(args *Args) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("supportdesk", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&args.ConfigPath, "config", "c", "", "config file (default ~/.supportdesk/config.toml)")
	flagSet.StringVar(&args.APIURL, "api-url", "", "support service base URL")
	flagSet.StringVar(&args.LogFile, "log-file", "", "write logs to this file")
	flagSet.StringVar(&args.LogLevel, "log-level", "", "debug, info, warn or error")
	flagSet.BoolVar(&args.JSON, "json", false, "JSON output (status, version)")
	flagSet.BoolVar(&args.NoMouse, "no-mouse", false, "disable mouse support in the console")
	flagSet.StringVar(&args.Addr, "addr", "", "listen address for serve")
	flagSet.StringVar(&args.DBPath, "db", "", "SQLite database for serve")
	flagSet.BoolVar(&args.Force, "force", false, "overwrite an existing config file (init)")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.BoolP("version", "v", false, "show version")
	return flagSet
}

// Parse parses argv (without the program name) into a command and its args.
// Flags may appear before or after the command word.
func Parse(argv []string) (Command, Args, error) {
	var args Args
	flagSet := newFlagSet(&args)

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return CmdHelp, args, nil
		}
		return CmdHelp, args, NewUsageError(err.Error())
	}

	if help, _ := flagSet.GetBool("help"); help {
		return CmdHelp, args, nil
	}
	if version, _ := flagSet.GetBool("version"); version {
		return CmdVersion, args, nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return CmdTUI, args, nil
	}

	cmd, ok := commandWords[strings.ToLower(rest[0])]
	if !ok {
		return CmdHelp, args, NewUsageError(fmt.Sprintf("unknown command %q", rest[0]))
	}
	args.Raw = rest[1:]
	if len(args.Raw) > 0 && cmd != CmdHelp {
		return cmd, args, NewUsageError(fmt.Sprintf("unexpected argument: %s", args.Raw[0]))
	}
	return cmd, args, nil
}

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	flagSet := newFlagSet(&Args{})
	fmt.Fprintf(w, usageText, flagSet.FlagUsages(), Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "supportdesk version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		return NewJSONResponse("version", data).Write(w)
	}
	PrintVersion(w)
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp(w io.Writer) {
	PrintUsage(w)
}
