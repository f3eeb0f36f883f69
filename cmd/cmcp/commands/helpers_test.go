package commands

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/f/cmcp/pkg/client"
	"github.com/f/cmcp/pkg/mock"
	"github.com/f/cmcp/pkg/transport"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// connectRecorder replaces CreateConnectFunc for the duration of a test.
type connectRecorder struct {
	bindings []*transport.Binding
	config   *Config
}

// useMockServer connects every invocation to an in-process mock server.
func useMockServer(t *testing.T) *connectRecorder {
	t.Helper()
	return useConnectFunc(t, func(ctx context.Context, _ *transport.Binding) (client.Session, error) {
		c, err := mcpclient.NewInProcessClient(mock.NewServer())
		if err != nil {
			return nil, err
		}
		if err := c.Start(ctx); err != nil {
			return nil, err
		}
		return c, nil
	})
}

func useConnectFunc(t *testing.T, connect client.ConnectFunc) *connectRecorder {
	t.Helper()

	recorder := &connectRecorder{}
	original := CreateConnectFunc
	CreateConnectFunc = func(config *Config, _ *zap.Logger, _ io.Writer) client.ConnectFunc {
		recorder.config = config
		return func(ctx context.Context, binding *transport.Binding) (client.Session, error) {
			recorder.bindings = append(recorder.bindings, binding)
			return connect(ctx, binding)
		}
	}
	t.Cleanup(func() { CreateConnectFunc = original })

	return recorder
}

// isolateHome points $HOME at an empty directory so no user config is read.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// execute runs the root command with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := RootCmd()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireUsageError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err), "expected usage error, got %v", err)
}
