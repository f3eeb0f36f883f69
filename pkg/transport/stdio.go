package transport

import (
	"context"
	"io"
	"os/exec"

	mcptransport "github.com/mark3labs/mcp-go/client/transport"
)

// newStdio prepares the child process transport. The process is spawned when the
// client is started.
func (b *Binding) newStdio(o *options) *mcptransport.Stdio {
	return mcptransport.NewStdioWithOptions(
		b.Command,
		b.Env,
		b.Args,
		mcptransport.WithCommandFunc(commandFunc(o.processCtx)),
	)
}

// commandFunc builds the child command bound to ctx. A non-empty env replaces the
// inherited environment instead of extending it.
func commandFunc(ctx context.Context) mcptransport.CommandFunc {
	return func(_ context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
		cmd := exec.CommandContext(ctx, command, args...) // #nosec G204
		if len(env) > 0 {
			cmd.Env = env
		}
		return cmd, nil
	}
}

// forwardStderr copies the child's stderr until the pipe is closed.
func forwardStderr(w io.Writer, stderr io.Reader) {
	if stderr == nil || w == nil {
		return
	}
	_, _ = io.Copy(w, stderr)
}
