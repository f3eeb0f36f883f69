// Package mock provides a small MCP server with fixed tools, prompts and resources.
// It backs the end-to-end tests of every transport.
package mock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Fixed entities exposed by the server.
const (
	ServerName    = "cmcp-mock"
	ServerVersion = "1.0.0"

	ToolEcho     = "echo"
	ToolFail     = "fail"
	ToolEnv      = "env"
	PromptGreet  = "greet"
	ResourceURI  = "test://static/readme"
	ResourceText = "# Mock MCP Server\nThis is a mock server"
	TemplateURI  = "test://items/{id}"
)

// StdioEnv is the environment variable that turns a test binary into a stdio server.
const StdioEnv = "CMCP_MOCK_STDIO"

// NewServer creates the mock MCP server.
func NewServer() *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool(ToolEcho,
			mcp.WithDescription("Echo back the message"),
			mcp.WithString("message", mcp.Required(), mcp.Description("Message to echo")),
		),
		handleEcho,
	)
	s.AddTool(
		mcp.NewTool(ToolFail, mcp.WithDescription("Always fails")),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("tool failed on purpose")
		},
	)
	s.AddTool(
		mcp.NewTool(ToolEnv,
			mcp.WithDescription("Print an environment variable of the server process"),
			mcp.WithString("name", mcp.Required()),
		),
		handleEnv,
	)

	s.AddPrompt(
		mcp.NewPrompt(PromptGreet,
			mcp.WithPromptDescription("A welcome prompt"),
			mcp.WithArgument("name", mcp.RequiredArgument(), mcp.ArgumentDescription("Who to greet")),
		),
		handleGreet,
	)

	s.AddResource(
		mcp.NewResource(ResourceURI, "readme",
			mcp.WithResourceDescription("Documentation"),
			mcp.WithMIMEType("text/markdown"),
		),
		func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      req.Params.URI,
					MIMEType: "text/markdown",
					Text:     ResourceText,
				},
			}, nil
		},
	)
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(TemplateURI, "item",
			mcp.WithTemplateDescription("An item by id"),
			mcp.WithTemplateMIMEType("text/plain"),
		),
		func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			id := strings.TrimPrefix(req.Params.URI, "test://items/")
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      req.Params.URI,
					MIMEType: "text/plain",
					Text:     "item " + id,
				},
			}, nil
		},
	)

	return s
}

// ServeStdio serves the mock server over stdin/stdout until stdin is closed.
func ServeStdio() error {
	return server.ServeStdio(NewServer())
}

func handleEcho(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, ok := req.GetArguments()["message"].(string)
	if !ok {
		return mcp.NewToolResultError("message must be a string"), nil
	}
	return mcp.NewToolResultText(message), nil
}

func handleEnv(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := req.GetArguments()["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name must be a string"), nil
	}
	value, found := os.LookupEnv(name)
	if !found {
		return mcp.NewToolResultText(fmt.Sprintf("%s is not set", name)), nil
	}
	return mcp.NewToolResultText(value), nil
}

func handleGreet(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := req.Params.Arguments["name"]
	if name == "" {
		return nil, errors.New("missing required argument: name")
	}
	return mcp.NewGetPromptResult(
		"A welcome prompt",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent("Hello "+name+", welcome!")),
		},
	), nil
}
