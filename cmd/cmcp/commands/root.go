/*
Package commands implements the cmcp command line.
*/
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/f/cmcp/pkg/client"
	"github.com/f/cmcp/pkg/items"
	"github.com/f/cmcp/pkg/jsonutils"
	"github.com/f/cmcp/pkg/logging"
	"github.com/f/cmcp/pkg/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// flags.
const (
	FlagVerbose      = "--verbose"
	FlagVerboseShort = "-v"
	FlagConfig       = "--config"
	FlagTimeout      = "--timeout"
	FlagColor        = "--color"
	FlagDebug        = "--debug"
	FlagLogFile      = "--log-file"
)

const rootLong = `cmcp sends a single Model Context Protocol request to a server and prints the
result as JSON.

The target is a stdio command line ("python server.py"), an SSE endpoint
("http://localhost:8000/sse") or a streamable HTTP endpoint
("http://localhost:8000/mcp"). It may also name an alias from the config file.

Items build the request:
  key=value     string parameter
  key:=json     JSON parameter
  Key:Value     HTTP header, or environment variable for stdio servers

Methods: `

const rootExample = `  cmcp "python server.py" tools/list
  cmcp "python server.py" tools/call name=add arguments:='{"a": 1, "b": 2}'
  cmcp http://localhost:8000/mcp resources/read uri=file:///README.md Authorization:"Bearer token"
  cmcp "npx -y @modelcontextprotocol/server-filesystem ~" prompts/list -v`

// RootCmd creates the root command.
func RootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "cmcp <target> <method> [item ...]",
		Short:         "cmcp sends one request to an MCP server and prints the result",
		Long:          rootLong + client.MethodNames(),
		Example:       rootExample,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 2 {
				return usageErrorf("requires a target and a method, received %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd, config, args)
		},
	}
	cmd.SetVersionTemplate(versionTemplate)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	flags := cmd.Flags()
	flags.BoolP("verbose", "v", false, "Print the request and response envelopes")
	flags.StringVar(&configFile, "config", "", "Config file (default $HOME/.cmcp/config.yaml)")
	flags.Duration("timeout", 0, "Abort the invocation after this duration (0 disables)")
	flags.String("color", string(jsonutils.ColorAuto), "Colorize output: auto, always or never")
	flags.Bool("debug", false, "Log debug information to stderr")
	flags.String("log-file", "", "Write logs to this file instead of stderr")

	if err := bindFlags(v, flags); err != nil {
		panic(err)
	}

	return cmd
}

func run(cmd *cobra.Command, config *Config, args []string) error {
	logger := logging.New(logging.Config{
		Level:  config.LogLevel(),
		File:   config.LogFile,
		Stderr: cmd.ErrOrStderr(),
	})
	defer func() { _ = logger.Sync() }()

	target, method := args[0], args[1]

	if _, err := client.ParseMethod(method); err != nil {
		return &UsageError{Err: err}
	}

	target, rawItems, aliased := config.Servers.Resolve(target, args[2:])
	if aliased {
		logger.Debug("resolved alias", zap.String("alias", args[0]), zap.String("target", target))
	}

	params, metadata, err := items.Parse(rawItems)
	if err != nil {
		return &UsageError{Err: err}
	}

	req, err := client.NewRequest(target, method, params, metadata)
	if err != nil {
		return &UsageError{Err: err}
	}

	colorMode, err := jsonutils.ParseColorMode(config.Color)
	if err != nil {
		return &UsageError{Err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	invoker := &client.Invoker{
		Connect:  CreateConnectFunc(config, logger, cmd.ErrOrStderr()),
		Renderer: jsonutils.NewRenderer(cmd.OutOrStdout(), colorMode, logger),
		Verbose:  config.Verbose,
		Logger:   logger,
		ClientInfo: mcp.Implementation{
			Name:    ClientName,
			Version: Version,
		},
	}

	if _, err := invoker.Invoke(ctx, req); err != nil {
		if errors.Is(err, transport.ErrEmptyCommand) || errors.Is(err, transport.ErrBadCommand) {
			return &UsageError{Err: err}
		}
		if errors.Is(err, context.DeadlineExceeded) && config.Timeout > 0 {
			return fmt.Errorf("timed out after %s: %w", config.Timeout, err)
		}
		return err
	}

	return nil
}
