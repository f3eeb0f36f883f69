/*
Package transport selects and opens the connection to an MCP server.

The target string decides the transport: an http:// or https:// URL whose path ends
in /sse uses the SSE transport, any other URL uses streamable HTTP, and anything
else is a command line started as a child process speaking over stdin/stdout.
*/
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/mark3labs/mcp-go/client"
	mcptransport "github.com/mark3labs/mcp-go/client/transport"
)

// Kind identifies one of the supported transports.
type Kind int

// transport kinds.
const (
	KindStdio Kind = iota
	KindSSE
	KindStreamableHTTP
)

// String returns the short name of the transport kind.
func (k Kind) String() string {
	switch k {
	case KindStdio:
		return "stdio"
	case KindSSE:
		return "sse"
	case KindStreamableHTTP:
		return "streamable-http"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// sentinel errors.
var (
	ErrEmptyCommand = errors.New("stdio command is empty")
	ErrBadCommand   = errors.New("invalid stdio command")
)

// ConnectionError is returned when the transport to Target could not be established.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Binding is the resolved transport for a target. Network bindings carry an
// endpoint and headers, stdio bindings a command line and environment.
type Binding struct {
	Kind     Kind
	Target   string
	Endpoint string
	Headers  map[string]string
	Command  string
	Args     []string
	// Env replaces the child's environment when non-empty.
	Env []string
}

// IsHTTP reports whether target is a network URL.
func IsHTTP(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Select decides the transport for target. For network transports metadata is used
// as HTTP headers, for stdio as the child's environment.
func Select(target string, metadata map[string]string) (*Binding, error) {
	if IsHTTP(target) {
		binding := &Binding{
			Target:  target,
			Headers: copyMap(metadata),
		}
		if isSSE(target) {
			binding.Kind = KindSSE
			binding.Endpoint = target
		} else {
			binding.Kind = KindStreamableHTTP
			binding.Endpoint = NormalizeStreamableURL(target)
		}
		return binding, nil
	}

	words, err := shlex.Split(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}

	return &Binding{
		Kind:    KindStdio,
		Target:  target,
		Command: words[0],
		Args:    words[1:],
		Env:     environ(metadata),
	}, nil
}

// String describes the binding for diagnostics.
func (b *Binding) String() string {
	if b.Kind == KindStdio {
		return fmt.Sprintf("%s: %s", b.Kind, strings.Join(append([]string{b.Command}, b.Args...), " "))
	}
	return fmt.Sprintf("%s: %s", b.Kind, b.Endpoint)
}

// Option configures Dial.
type Option func(*options)

type options struct {
	processCtx context.Context
	stderr     io.Writer
	httpClient *http.Client
}

// WithProcessContext binds the lifetime of a stdio child process to ctx.
func WithProcessContext(ctx context.Context) Option {
	return func(o *options) {
		o.processCtx = ctx
	}
}

// WithStderr sets where the stderr of a stdio child process is copied to.
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		o.stderr = w
	}
}

// WithHTTPClient sets the HTTP client used by network transports.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// Dial opens the transport and returns a started, not yet initialized, client.
// The caller owns the client and must Close it.
func (b *Binding) Dial(ctx context.Context, opts ...Option) (*client.Client, error) {
	o := &options{
		processCtx: context.Background(),
		stderr:     os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	var (
		t   mcptransport.Interface
		err error
	)
	switch b.Kind {
	case KindStdio:
		t = b.newStdio(o)
	case KindSSE:
		t, err = b.newSSE(o)
	case KindStreamableHTTP:
		t, err = b.newStreamableHTTP(o)
	default:
		err = fmt.Errorf("unsupported transport %s", b.Kind)
	}
	if err != nil {
		return nil, &ConnectionError{Target: b.Target, Err: err}
	}

	mcpClient := client.NewClient(t)
	if err := mcpClient.Start(ctx); err != nil {
		return nil, &ConnectionError{Target: b.Target, Err: err}
	}

	if stdio, ok := t.(*mcptransport.Stdio); ok {
		go forwardStderr(o.stderr, stdio.Stderr())
	}

	return mcpClient, nil
}

func isSSE(target string) bool {
	return strings.HasSuffix(urlPath(target), "/sse")
}

func environ(metadata map[string]string) []string {
	if len(metadata) == 0 {
		return nil
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+metadata[k])
	}
	return env
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
