package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/f/cmcp/pkg/client"
	"github.com/f/cmcp/pkg/items"
	"github.com/f/cmcp/pkg/transport"
	"go.uber.org/zap"
)

// exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// UsageError marks errors in the command line itself. Nothing has been started
// when one is returned.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by the root command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsUsageError(err) {
		return ExitUsage
	}
	return ExitError
}

// IsUsageError reports whether err was caused by invalid command-line input.
func IsUsageError(err error) bool {
	var usageErr *UsageError
	switch {
	case errors.As(err, &usageErr),
		errors.Is(err, client.ErrInvalidMethod),
		errors.Is(err, items.ErrInvalidItem),
		errors.Is(err, items.ErrInvalidJSON),
		errors.Is(err, transport.ErrEmptyCommand),
		errors.Is(err, transport.ErrBadCommand):
		return true
	default:
		return false
	}
}

// CreateConnectFunc builds the connector used to reach servers.
// This can be replaced in tests to connect to an in-process server.
var CreateConnectFunc = func(config *Config, logger *zap.Logger, stderr io.Writer) client.ConnectFunc {
	opts := []transport.Option{transport.WithStderr(stderr)}
	if config.Verbose {
		opts = append(opts, transport.WithHTTPClient(transport.NewTracingClient(logger)))
	}
	return client.NewConnector(opts...)
}
