// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for supportdesk commands.
//
// Handlers always return errors; main decides how to display them and
// which exit code to use.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/supportdesk-tui/internal/support"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the support service could not be reached
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "status", "serve")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
	Code    int    // Exit code, ExitGeneralError when zero
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode implements the exit code convention used by main.
func (e *CommandError) ExitCode() int {
	if e.Code == 0 {
		return ExitGeneralError
	}
	return e.Code
}

// UsageError is returned for unknown commands and bad flags.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message + "\nRun 'supportdesk help' for usage."
}

// ExitCode implements the exit code convention used by main.
func (e *UsageError) ExitCode() int {
	return ExitUsageError
}

// NewUsageError creates a usage error.
func NewUsageError(msg string) error {
	return &UsageError{Message: msg}
}

// NewCommandError creates a command error. The exit code is derived from
// err when it is a support client failure.
func NewCommandError(command, reason string, err error) error {
	code := ExitGeneralError
	switch {
	case support.IsTimeout(err):
		code = ExitTimeoutError
	case support.IsUnreachable(err):
		code = ExitNetworkError
	}
	return &CommandError{Command: command, Reason: reason, Err: err, Code: code}
}

// NewConfigError wraps a configuration failure.
func NewConfigError(err error) error {
	return &CommandError{Command: "config", Reason: "could not load configuration", Err: err, Code: ExitConfigError}
}

// ExitCodeFor returns the exit code for err.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w in a consistent format. In JSON mode the
// error is written as a JSONResponse for command.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		NewJSONErrorResponse(command, err).Write(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}
