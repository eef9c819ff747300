// supportdesk - A terminal console for a multi-agent customer support service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/supportdesk-tui/internal/cli"
	"github.com/jeranaias/supportdesk-tui/internal/config"
	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/server"
	"github.com/jeranaias/supportdesk-tui/internal/support"
)

// Version information (set at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// reloadDebounce collapses the burst of events an editor save produces.
const reloadDebounce = 250 * time.Millisecond

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		cli.DisplayError(os.Stderr, "", err, false)
		os.Exit(cli.ExitCodeFor(err))
	}
}

func run(argv []string) error {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		return err
	}

	switch cmd {
	case cli.CmdHelp:
		cli.HandleHelp(os.Stdout)
		return nil
	case cli.CmdVersion:
		return cli.HandleVersion(os.Stdout, args)
	case cli.CmdInit:
		return cli.HandleInit(os.Stdout, args, applyFlagOverrides(args))
	}

	if err := config.LoadDotEnv(); err != nil {
		return cli.NewConfigError(err)
	}
	cfg, cfgPath, err := loadConfig(args)
	if err != nil {
		return cli.NewConfigError(err)
	}

	switch cmd {
	case cli.CmdServe:
		return runServe(cfg)
	case cli.CmdStatus:
		return runStatus(cfg, args)
	default:
		return runTUI(cfg, cfgPath, args)
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadConfig reads the config file named by --config, or the default one,
// and applies flag overrides. The returned path is the file to watch, empty
// when running on defaults.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)

	if args.ConfigPath != "" {
		path = args.ConfigPath
		cfg, err = config.LoadFromPath(path)
		if err != nil {
			return nil, "", err
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			return nil, "", err
		}
		for _, pathFn := range []func() (string, error){config.ConfigPathTOML, config.ConfigPathJSON} {
			if p, perr := pathFn(); perr == nil && fileExists(p) {
				path = p
				break
			}
		}
	}

	applyFlagOverrides(args)(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// applyFlagOverrides returns a function that puts command-line values on top
// of a loaded config. It is applied again after every live reload.
func applyFlagOverrides(args cli.Args) func(*config.Config) {
	return func(cfg *config.Config) {
		if args.APIURL != "" {
			cfg.API.BaseURL = args.APIURL
		}
		if args.LogLevel != "" {
			cfg.Log.Level = args.LogLevel
		}
		if args.LogFile != "" {
			cfg.Log.File = args.LogFile
		}
		if args.NoMouse {
			cfg.UI.Mouse = false
		}
		if args.Addr != "" {
			cfg.Server.Addr = args.Addr
		}
		if args.DBPath != "" {
			cfg.Server.DBPath = args.DBPath
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// =============================================================================
// CONSOLE
// =============================================================================

// runTUI starts the interactive console.
func runTUI(cfg *config.Config, cfgPath string, args cli.Args) error {
	if err := cli.RequiresTTY("start the console"); err != nil {
		return err
	}

	// The console owns the terminal, so logs always go to a file.
	logFile := cfg.Log.File
	if logFile == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return cli.NewConfigError(err)
		}
		logFile = p
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: logging.FormatJSON,
		File:   logFile,
	})
	if err != nil {
		return cli.NewConfigError(err)
	}
	defer closeLog()

	var watcher *config.Watcher
	if cfgPath != "" {
		watcher, err = config.Watch(cfgPath, reloadDebounce)
		if err != nil {
			logger.Warn("config watch disabled", "path", cfgPath, "error", err)
		} else {
			defer watcher.Close()
		}
	}

	client := support.NewClientWithConfig(cfg.API.ClientConfig())
	logger.Info("console starting", "version", Version, "api", client.BaseURL(), "config", cfgPath)

	m := NewModel(Options{
		Config:   cfg,
		Client:   client,
		Logger:   logger,
		Watcher:  watcher,
		Override: applyFlagOverrides(args),
	})

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, programOpts...)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running supportdesk: %w", err)
	}
	logger.Info("console stopped")
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

func runStatus(cfg *config.Config, args cli.Args) error {
	client := support.NewClientWithConfig(cfg.API.ClientConfig())
	err := cli.HandleStatus(context.Background(), client, args, os.Stdout)
	if err != nil && args.JSON {
		cli.DisplayError(os.Stdout, "status", err, true)
	}
	return err
}

// =============================================================================
// DEMO SERVICE
// =============================================================================

// runServe runs the bundled support service until SIGINT or SIGTERM.
func runServe(cfg *config.Config) error {
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: logging.FormatJSON,
		Writer: os.Stdout,
	})
	if err != nil {
		return cli.NewConfigError(err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	dbPath := cfg.Server.DBPath
	if dbPath == "" {
		if dbPath, err = config.DefaultDBPath(); err != nil {
			return cli.NewConfigError(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStore(ctx, dbPath)
	if err != nil {
		return cli.NewCommandError("serve", "could not open database "+dbPath, err)
	}
	defer store.Close()

	srv, err := server.New(server.Options{
		Store:     store,
		Logger:    logger,
		Routes:    cfg.API.Routes.Targets(),
		Paths:     cfg.API.Paths(),
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
		CORS:      server.DefaultCORSConfig(),
	})
	if err != nil {
		return cli.NewCommandError("serve", "could not start", err)
	}

	logger.Info("database opened", "path", dbPath)
	for target, route := range srv.Routes() {
		logger.Debug("agent route", "target", target.String(), "route", route)
	}

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return cli.NewCommandError("serve", "server error", err)
	}
	return nil
}
