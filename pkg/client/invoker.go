package client

import (
	"context"
	"fmt"
	"time"

	"github.com/f/cmcp/pkg/jsonutils"
	"github.com/f/cmcp/pkg/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// DefaultCloseTimeout bounds how long closing a session may take before the
// transport is torn down forcibly.
const DefaultCloseTimeout = 2 * time.Second

// HandshakeError is returned when the initialize exchange fails.
type HandshakeError struct {
	Target string
	Err    error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("initialize failed for %s: %v", e.Target, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// ConnectFunc opens a session for a selected transport. Cancelling ctx must tear the
// transport down.
type ConnectFunc func(ctx context.Context, binding *transport.Binding) (Session, error)

// NewConnector returns the ConnectFunc that dials real transports.
func NewConnector(opts ...transport.Option) ConnectFunc {
	return func(ctx context.Context, binding *transport.Binding) (Session, error) {
		dialOpts := append([]transport.Option{transport.WithProcessContext(ctx)}, opts...)
		c, err := binding.Dial(ctx, dialOpts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Invoker runs the lifecycle of one invocation.
type Invoker struct {
	Connect      ConnectFunc
	Renderer     *jsonutils.Renderer
	Verbose      bool
	Logger       *zap.Logger
	ClientInfo   mcp.Implementation
	CloseTimeout time.Duration
}

// Invoke selects the transport, connects, initializes, calls the method and renders
// the result. The session is closed on every path.
func (i *Invoker) Invoke(ctx context.Context, req Request) (any, error) {
	logger := i.logger()

	binding, err := transport.Select(req.Target(), req.Metadata())
	if err != nil {
		return nil, err
	}
	logger.Debug("selected transport", zap.Stringer("binding", binding))

	if i.Verbose {
		if printErr := i.Renderer.PrintRequest(string(req.Method()), req.Params()); printErr != nil {
			logger.Warn("error printing request", zap.Error(printErr))
		}
	}

	sessionCtx, teardown := context.WithCancel(ctx)
	defer teardown()

	session, err := i.Connect(sessionCtx, binding)
	if err != nil {
		return nil, err
	}
	defer i.release(session, teardown)

	initResult, err := session.Initialize(sessionCtx, i.initializeRequest())
	if err != nil {
		return nil, &HandshakeError{Target: req.Target(), Err: err}
	}
	if initResult != nil {
		logger.Debug("initialized",
			zap.String("server", initResult.ServerInfo.Name),
			zap.String("serverVersion", initResult.ServerInfo.Version),
			zap.String("protocolVersion", initResult.ProtocolVersion),
		)
	}

	res, err := Dispatch(sessionCtx, session, req.Method(), req.Params())
	if err != nil {
		return nil, err
	}

	if i.Verbose {
		err = i.Renderer.PrintResponse(res)
	} else {
		err = i.Renderer.Print(res)
	}
	if err != nil {
		return res, fmt.Errorf("error rendering result: %w", err)
	}

	return res, nil
}

func (i *Invoker) initializeRequest() mcp.InitializeRequest {
	request := mcp.InitializeRequest{}
	request.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	request.Params.ClientInfo = i.ClientInfo
	request.Params.Capabilities = mcp.ClientCapabilities{}
	return request
}

// release closes the session, tearing the transport down if Close does not return
// within the close timeout.
func (i *Invoker) release(session Session, teardown context.CancelFunc) {
	logger := i.logger()

	timeout := i.CloseTimeout
	if timeout <= 0 {
		timeout = DefaultCloseTimeout
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Warn("error closing session", zap.Error(err))
		}
	case <-time.After(timeout):
		logger.Warn("session did not close in time, terminating transport", zap.Duration("timeout", timeout))
		teardown()
	}
}

func (i *Invoker) logger() *zap.Logger {
	if i.Logger == nil {
		return zap.NewNop()
	}
	return i.Logger
}
