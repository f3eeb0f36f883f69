/*
Package jsonutils renders MCP results as indented JSON, optionally highlighted for
terminals, and builds the JSON-RPC envelopes shown in verbose mode.
*/
package jsonutils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// ColorMode controls syntax highlighting.
type ColorMode string

// color modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// JSON-RPC envelope constants used in verbose output.
const (
	JSONRPCVersion = "2.0"
	EnvelopeID     = 1
)

// ParseColorMode converts a string to a ColorMode.
func ParseColorMode(mode string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(mode)) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (choose from auto, always, never)", mode)
	}
}

// UseColor decides whether output written to out should be highlighted.
func UseColor(mode ColorMode, out io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Request is the JSON-RPC request envelope printed in verbose mode.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// Response is the JSON-RPC response envelope printed in verbose mode.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Result  any    `json:"result"`
}

// Renderer prints results to Out.
type Renderer struct {
	Out    io.Writer
	Color  bool
	Logger *zap.Logger
}

// NewRenderer creates a renderer for out, resolving mode once.
func NewRenderer(out io.Writer, mode ColorMode, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		Out:    out,
		Color:  UseColor(mode, out),
		Logger: logger,
	}
}

// Print renders data with empty members omitted.
func (r *Renderer) Print(data any) error {
	text, err := Marshal(data)
	if err != nil {
		return r.fallback(data, err)
	}
	return r.write(text)
}

// PrintRequest renders the request envelope for method and params. Params are
// shown exactly as given and omitted when empty.
func (r *Renderer) PrintRequest(method string, params map[string]any) error {
	envelope := Request{
		JSONRPC: JSONRPCVersion,
		ID:      EnvelopeID,
		Method:  method,
		Params:  params,
	}
	text, err := indent(envelope)
	if err != nil {
		return r.fallback(envelope, err)
	}
	if _, err := fmt.Fprintln(r.Out, "Request:"); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return r.write(text)
}

// PrintResponse renders the response envelope around result, with empty members of
// result omitted.
func (r *Renderer) PrintResponse(result any) error {
	pruned, err := Prune(result)
	if err != nil {
		return r.fallback(result, err)
	}
	envelope := Response{
		JSONRPC: JSONRPCVersion,
		ID:      EnvelopeID,
		Result:  pruned,
	}
	text, err := indent(envelope)
	if err != nil {
		return r.fallback(envelope, err)
	}
	if _, err := fmt.Fprintln(r.Out, "Response:"); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return r.write(text)
}

func (r *Renderer) write(text string) error {
	if r.Color {
		text = Highlight(text)
	}
	if _, err := fmt.Fprintln(r.Out, text); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}

// fallback still prints what it can when data cannot be serialized.
func (r *Renderer) fallback(data any, cause error) error {
	r.Logger.Error("error rendering result", zap.Error(cause))
	if _, err := fmt.Fprintf(r.Out, "%+v\n", data); err != nil {
		r.Logger.Error("error writing output", zap.Error(err))
	}
	return cause
}
