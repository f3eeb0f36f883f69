package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/f/cmcp/pkg/client"
	"github.com/f/cmcp/pkg/items"
	"github.com/f/cmcp/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_ToolsList(t *testing.T) {
	isolateHome(t)
	recorder := useMockServer(t)

	stdout, _, err := execute(t, "python server.py", "tools/list")
	require.NoError(t, err)

	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Len(t, result.Tools, 3)
	assert.True(t, strings.HasSuffix(stdout, "}\n"))

	require.Len(t, recorder.bindings, 1)
	assert.Equal(t, transport.KindStdio, recorder.bindings[0].Kind)
	assert.Equal(t, "python", recorder.bindings[0].Command)
	assert.Equal(t, []string{"server.py"}, recorder.bindings[0].Args)
}

func TestRootCmd_ToolsCall(t *testing.T) {
	isolateHome(t)
	useMockServer(t)

	stdout, _, err := execute(t, "server", "tools/call", "name=echo", `arguments:={"message": "hello"}`)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"text": "hello"`)
	assert.NotContains(t, stdout, "null")
}

func TestRootCmd_PromptsGet(t *testing.T) {
	isolateHome(t)
	useMockServer(t)

	stdout, _, err := execute(t, "server", "prompts/get", "name=greet", `arguments:={"name": "Ada"}`)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hello Ada, welcome!")
}

func TestRootCmd_Verbose(t *testing.T) {
	isolateHome(t)
	useMockServer(t)

	for _, flag := range []string{"-v", "--verbose"} {
		t.Run(flag, func(t *testing.T) {
			stdout, _, err := execute(t, "server", flag, "resources/read", "uri=test://static/readme")
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(stdout, "Request:\n"), stdout)
			assert.Contains(t, stdout, `"method": "resources/read"`)
			assert.Contains(t, stdout, `"uri": "test://static/readme"`)
			assert.Contains(t, stdout, "Response:\n")
			assert.Contains(t, stdout, `"jsonrpc": "2.0"`)
			assert.Contains(t, stdout, "Mock MCP Server")
		})
	}
}

func TestRootCmd_VerboseFromEnv(t *testing.T) {
	isolateHome(t)
	useMockServer(t)
	t.Setenv("CMCP_VERBOSE", "true")

	stdout, _, err := execute(t, "server", "prompts/list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Request:\n"), stdout)
}

func TestRootCmd_HeadersFromItems(t *testing.T) {
	isolateHome(t)
	recorder := useMockServer(t)

	_, _, err := execute(t, "http://localhost:8000/mcp", "tools/list", "Authorization:Bearer token", "X-Trace:1")
	require.NoError(t, err)

	require.Len(t, recorder.bindings, 1)
	binding := recorder.bindings[0]
	assert.Equal(t, transport.KindStreamableHTTP, binding.Kind)
	assert.Equal(t, "http://localhost:8000/mcp/", binding.Endpoint)
	assert.Equal(t, map[string]string{"Authorization": "Bearer token", "X-Trace": "1"}, binding.Headers)
}

func TestRootCmd_UsageErrors(t *testing.T) {
	isolateHome(t)

	testCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "invalid method",
			args:    []string{"server", "tools/remove"},
			wantErr: client.ErrInvalidMethod,
		},
		{
			name:    "malformed item",
			args:    []string{"server", "tools/call", "name"},
			wantErr: items.ErrInvalidItem,
		},
		{
			name:    "invalid json item",
			args:    []string{"server", "tools/call", "arguments:={oops"},
			wantErr: items.ErrInvalidJSON,
		},
		{
			name:    "empty stdio command",
			args:    []string{"  ", "tools/list"},
			wantErr: transport.ErrEmptyCommand,
		},
		{
			name: "missing method",
			args: []string{"server"},
		},
		{
			name: "unknown flag",
			args: []string{"server", "tools/list", "--nope"},
		},
		{
			name: "invalid color",
			args: []string{"server", "tools/list", "--color", "sometimes"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := useMockServer(t)

			stdout, _, err := execute(t, tc.args...)
			requireUsageError(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Empty(t, stdout)
			assert.Empty(t, recorder.bindings, "no connection expected")
		})
	}
}

func TestRootCmd_InvalidMethodListsChoices(t *testing.T) {
	isolateHome(t)
	useMockServer(t)

	_, _, err := execute(t, "server", "tools/remove")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid method: tools/remove")
	assert.Contains(t, err.Error(), client.MethodNames())
}

func TestRootCmd_RemoteError(t *testing.T) {
	isolateHome(t)
	useMockServer(t)

	stdout, _, err := execute(t, "server", "tools/call", "name=fail")
	require.Error(t, err)
	assert.Equal(t, ExitError, ExitCode(err))
	assert.Empty(t, stdout)
}

func TestRootCmd_ConnectError(t *testing.T) {
	isolateHome(t)
	useConnectFunc(t, func(_ context.Context, binding *transport.Binding) (client.Session, error) {
		return nil, &transport.ConnectionError{Target: binding.Target, Err: errors.New("connection refused")}
	})

	_, _, err := execute(t, "http://localhost:1/sse", "tools/list")
	require.Error(t, err)
	assert.Equal(t, ExitError, ExitCode(err))
	assert.Contains(t, err.Error(), "failed to connect to http://localhost:1/sse")
}

func TestRootCmd_Timeout(t *testing.T) {
	isolateHome(t)
	useConnectFunc(t, func(ctx context.Context, _ *transport.Binding) (client.Session, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, _, err := execute(t, "server", "tools/list", "--timeout", "50ms")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out after 50ms")
	assert.Equal(t, ExitError, ExitCode(err))
}

func TestRootCmd_Alias(t *testing.T) {
	isolateHome(t)
	recorder := useMockServer(t)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	config := `servers:
  Mock:
    target: "node mock.js --stdio"
    items:
      - "API_KEY:Secret"
      - "name=echo"
`
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0o600))

	stdout, _, err := execute(t, "--config", configFile, "mock", "tools/call", `arguments:={"message": "via alias"}`)
	require.NoError(t, err)
	assert.Contains(t, stdout, "via alias")

	require.Len(t, recorder.bindings, 1)
	binding := recorder.bindings[0]
	assert.Equal(t, "node", binding.Command)
	assert.Equal(t, []string{"mock.js", "--stdio"}, binding.Args)
	assert.Equal(t, []string{"API_KEY=Secret"}, binding.Env)
}

func TestRootCmd_FlagOverridesConfig(t *testing.T) {
	isolateHome(t)
	recorder := useMockServer(t)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("color: always\nverbose: true\n"), 0o600))

	stdout, _, err := execute(t, "--config", configFile, "--color", "never", "server", "tools/list")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "\x1b[")
	assert.True(t, strings.HasPrefix(stdout, "Request:\n"), stdout)
	require.NotNil(t, recorder.config)
	assert.Equal(t, "never", recorder.config.Color)
	assert.True(t, recorder.config.Verbose)
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	isolateHome(t)
	recorder := useMockServer(t)

	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "server", "tools/list")
	require.Error(t, err)
	assert.Equal(t, ExitError, ExitCode(err))
	assert.Empty(t, recorder.bindings)
}

func TestRootCmd_Version(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("cmcp version %s\n", Version), stdout)
}

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "usage", err: &UsageError{Err: errors.New("bad")}, want: ExitUsage},
		{name: "wrapped usage", err: fmt.Errorf("run: %w", &UsageError{Err: errors.New("bad")}), want: ExitUsage},
		{name: "invalid method", err: fmt.Errorf("x: %w", client.ErrInvalidMethod), want: ExitUsage},
		{name: "bad command", err: transport.ErrBadCommand, want: ExitUsage},
		{name: "handshake", err: &client.HandshakeError{Target: "srv", Err: errors.New("eof")}, want: ExitError},
		{name: "other", err: errors.New("boom"), want: ExitError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}
