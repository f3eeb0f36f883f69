// Package client runs one MCP invocation: it connects to the server, performs the
// handshake, dispatches a single method and renders the result.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Method is one of the MCP methods the client can invoke.
type Method string

// supported methods.
const (
	MethodPromptsList           Method = "prompts/list"
	MethodPromptsGet            Method = "prompts/get"
	MethodResourcesList         Method = "resources/list"
	MethodResourcesRead         Method = "resources/read"
	MethodResourceTemplatesList Method = "resources/templates/list"
	MethodToolsList             Method = "tools/list"
	MethodToolsCall             Method = "tools/call"
)

// Methods lists the supported methods in display order.
var Methods = []Method{
	MethodPromptsList,
	MethodPromptsGet,
	MethodResourcesList,
	MethodResourcesRead,
	MethodResourceTemplatesList,
	MethodToolsList,
	MethodToolsCall,
}

// ErrInvalidMethod is returned for a method outside Methods.
var ErrInvalidMethod = errors.New("invalid method")

// MethodNames returns the supported methods as a comma separated list.
func MethodNames() string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// ParseMethod validates name against the supported methods.
func ParseMethod(name string) (Method, error) {
	for _, m := range Methods {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %s (choose from %s)", ErrInvalidMethod, name, MethodNames())
}

// Session is the part of an MCP client used by an invocation. *client.Client from
// mcp-go implements it.
type Session interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListPrompts(ctx context.Context, request mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error)
	GetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
	ListResources(ctx context.Context, request mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error)
	ReadResource(ctx context.Context, request mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)
	ListResourceTemplates(
		ctx context.Context,
		request mcp.ListResourceTemplatesRequest,
	) (*mcp.ListResourceTemplatesResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Request is an immutable invocation request.
type Request struct {
	target   string
	method   Method
	params   map[string]any
	metadata map[string]string
}

// NewRequest validates method and builds a Request.
func NewRequest(target, method string, params map[string]any, metadata map[string]string) (Request, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		target:   target,
		method:   m,
		params:   make(map[string]any, len(params)),
		metadata: make(map[string]string, len(metadata)),
	}
	for k, v := range params {
		req.params[k] = v
	}
	for k, v := range metadata {
		req.metadata[k] = v
	}
	return req, nil
}

// Target returns the command line or URL of the server.
func (r Request) Target() string { return r.target }

// Method returns the method to invoke.
func (r Request) Method() Method { return r.method }

// Params returns a copy of the call parameters.
func (r Request) Params() map[string]any {
	out := make(map[string]any, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

// Metadata returns a copy of the transport metadata.
func (r Request) Metadata() map[string]string {
	out := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}
