package internal

import (
	"context"
	"errors"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/graphmap/internal/conn"
	"github.com/zero-day-ai/graphmap/internal/ogm"
	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/types"
)

// Exit codes. Codes 2 to 5 describe the graph operation; 10 and above
// describe the environment it ran in.
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitConflict    = 2 // unique create mismatch or node still connected
	ExitTimeout     = 3
	ExitCancelled   = 4
	ExitNotFound    = 5
	ExitConfigError = 10
	ExitStoreError  = 12 // store unreachable or closed
)

// CLIError carries the exit code a command failed with. Message is shown
// to the user; Cause only with --verbose.
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CLIError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *CLIError) Unwrap() error { return e.Cause }

// NewCLIError returns a CLIError without a cause.
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapError returns a CLIError reporting err under message.
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Cause: err}
}

// HandleError prints err to the command's error output and returns the
// exit code for it.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, context.Canceled):
		cmd.PrintErrln("Interrupted; writes already acknowledged by the store are kept")
		return ExitCancelled
	case errors.Is(err, context.DeadlineExceeded):
		cmd.PrintErrln("Timed out waiting for the store")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil && verboseChanged(cmd) {
			cmd.PrintErrln("Cause:", cliErr.Cause)
		}
		return cliErr.Code
	}

	var gerr *types.GraphmapError
	if errors.As(err, &gerr) {
		cmd.PrintErrln("Error:", gerr.Error())
		if verboseChanged(cmd) && types.IsRetryable(err) {
			cmd.PrintErrln("The failure is transient; retrying may succeed")
		}
		return ExitCodeFor(err)
	}

	cmd.PrintErrln("Error:", err)
	return ExitError
}

// ExitCodeFor maps a graphmap error chain to an exit code. Any error in
// the chain may decide it.
func ExitCodeFor(err error) int {
	switch {
	case errors.Is(err, ogm.ErrConflict), errors.Is(err, ogm.ErrHasRelationships):
		return ExitConflict
	case errors.Is(err, store.ErrNotFound):
		return ExitNotFound
	case hasCode(err,
		store.ErrCodeStoreConnectionFailed,
		store.ErrCodeStoreUnavailable,
		store.ErrCodeStoreClosed,
		conn.ErrCodeOpenFailed,
		conn.ErrCodeNoConnection):
		return ExitStoreError
	case hasCode(err,
		store.ErrCodeStoreInvalidConfig,
		types.CONFIG_LOAD_FAILED,
		types.CONFIG_PARSE_FAILED,
		types.CONFIG_VALIDATION_FAILED,
		types.CONFIG_NOT_FOUND):
		return ExitConfigError
	default:
		return ExitError
	}
}

func hasCode(err error, codes ...types.ErrorCode) bool {
	for _, code := range codes {
		if errors.Is(err, types.NewError(code, "")) {
			return true
		}
	}
	return false
}

func verboseChanged(cmd *cobra.Command) bool {
	f := cmd.Flag("verbose")
	return f != nil && f.Changed
}

// IsVerbose reports whether GRAPHMAP_VERBOSE is set or -v/--verbose appears
// in os.Args. Panic recovery runs before flags are parsed.
func IsVerbose() bool {
	if os.Getenv("GRAPHMAP_VERBOSE") != "" {
		return true
	}
	return slices.ContainsFunc(os.Args, func(arg string) bool {
		return arg == "-v" || arg == "--verbose"
	})
}
