package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	mcptransport "github.com/mark3labs/mcp-go/client/transport"
	"go.uber.org/zap"
)

const (
	streamableSuffix = "/mcp"
	eventStreamType  = "text/event-stream"
)

// NormalizeStreamableURL appends /mcp/ to the path of target unless the path already
// ends in /mcp or /mcp/. Query and fragment are preserved.
func NormalizeStreamableURL(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		if strings.HasSuffix(target, streamableSuffix) || strings.HasSuffix(target, streamableSuffix+"/") {
			return target
		}
		return strings.TrimSuffix(target, "/") + streamableSuffix + "/"
	}

	path := u.Path
	if strings.HasSuffix(path, streamableSuffix) || strings.HasSuffix(path, streamableSuffix+"/") {
		return target
	}

	u.Path = strings.TrimSuffix(path, "/") + streamableSuffix + "/"
	u.RawPath = ""
	return u.String()
}

// urlPath returns the path component of target, or target itself when it does not
// parse as a URL.
func urlPath(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return u.Path
}

func (b *Binding) newSSE(o *options) (*mcptransport.SSE, error) {
	var opts []mcptransport.ClientOption
	if len(b.Headers) > 0 {
		opts = append(opts, mcptransport.WithHeaders(b.Headers))
	}
	if o.httpClient != nil {
		opts = append(opts, mcptransport.WithHTTPClient(o.httpClient))
	}
	return mcptransport.NewSSE(b.Endpoint, opts...)
}

func (b *Binding) newStreamableHTTP(o *options) (*mcptransport.StreamableHTTP, error) {
	var opts []mcptransport.StreamableHTTPCOption
	if len(b.Headers) > 0 {
		opts = append(opts, mcptransport.WithHTTPHeaders(b.Headers))
	}
	if o.httpClient != nil {
		opts = append(opts, mcptransport.WithHTTPBasicClient(o.httpClient))
	}
	return mcptransport.NewStreamableHTTP(b.Endpoint, opts...)
}

// NewTracingClient returns an HTTP client that logs every request and response
// through logger. Event-stream response bodies are not read.
func NewTracingClient(logger *zap.Logger) *http.Client {
	return &http.Client{
		Transport: &tracingRoundTripper{
			next:   http.DefaultTransport,
			logger: logger,
		},
	}
}

type tracingRoundTripper struct {
	next   http.RoundTripper
	logger *zap.Logger
}

func (t *tracingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	reqBody, err := drainRequest(req)
	if err != nil {
		t.logger.Warn("error reading request body", zap.String("url", req.URL.String()), zap.Error(err))
	}
	t.logger.Info("http request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("body", prettyBody(reqBody)),
	)

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Info("http request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}

	fields := []zap.Field{
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("contentType", resp.Header.Get("Content-Type")),
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), eventStreamType) && resp.Body != nil {
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if readErr != nil {
			t.logger.Warn("error reading response body", zap.String("url", req.URL.String()), zap.Error(readErr))
		}
		fields = append(fields, zap.String("body", prettyBody(body)))
	}
	t.logger.Info("http response", fields...)

	return resp, nil
}

// drainRequest reads the request body and puts an identical reader back.
func drainRequest(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return body, fmt.Errorf("error reading body: %w", err)
	}
	return body, nil
}

func prettyBody(body []byte) string {
	if len(body) == 0 {
		return "None"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}
