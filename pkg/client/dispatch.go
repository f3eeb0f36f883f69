package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// parameter names.
const (
	ParamName      = "name"
	ParamArguments = "arguments"
	ParamURI       = "uri"
)

// sentinel errors.
var (
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrUnexpectedParam   = errors.New("unexpected parameter")
	ErrMissingParam      = errors.New("missing required parameter")
	ErrInvalidParam      = errors.New("invalid parameter")
)

// DispatchError wraps a failure of the method call, whether the parameters did not
// fit the method or the server returned an error.
type DispatchError struct {
	Method Method
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

type handler func(ctx context.Context, s Session, p params) (any, error)

var handlers = map[Method]handler{
	MethodPromptsList: func(ctx context.Context, s Session, p params) (any, error) {
		if err := p.only(); err != nil {
			return nil, err
		}
		return result(s.ListPrompts(ctx, mcp.ListPromptsRequest{}))
	},
	MethodPromptsGet: func(ctx context.Context, s Session, p params) (any, error) {
		if err := p.only(ParamName, ParamArguments); err != nil {
			return nil, err
		}
		name, err := p.requiredString(ParamName)
		if err != nil {
			return nil, err
		}
		arguments, err := p.optionalStringMap(ParamArguments)
		if err != nil {
			return nil, err
		}
		request := mcp.GetPromptRequest{}
		request.Params.Name = name
		request.Params.Arguments = arguments
		return result(s.GetPrompt(ctx, request))
	},
	MethodResourcesList: func(ctx context.Context, s Session, p params) (any, error) {
		if err := p.only(); err != nil {
			return nil, err
		}
		return result(s.ListResources(ctx, mcp.ListResourcesRequest{}))
	},
	MethodResourcesRead: func(ctx context.Context, s Session, p params) (any, error) {
		if err := p.only(ParamURI); err != nil {
			return nil, err
		}
		uri, err := p.requiredString(ParamURI)
		if err != nil {
			return nil, err
		}
		request := mcp.ReadResourceRequest{}
		request.Params.URI = uri
		return result(s.ReadResource(ctx, request))
	},
	MethodResourceTemplatesList: func(ctx context.Context, s Session, p params) (any, error) {
		if err := p.only(); err != nil {
			return nil, err
		}
		return result(s.ListResourceTemplates(ctx, mcp.ListResourceTemplatesRequest{}))
	},
	MethodToolsList: func(ctx context.Context, s Session, p params) (any, error) {
		if err := p.only(); err != nil {
			return nil, err
		}
		return result(s.ListTools(ctx, mcp.ListToolsRequest{}))
	},
	MethodToolsCall: func(ctx context.Context, s Session, p params) (any, error) {
		if err := p.only(ParamName, ParamArguments); err != nil {
			return nil, err
		}
		name, err := p.requiredString(ParamName)
		if err != nil {
			return nil, err
		}
		arguments, err := p.optionalObject(ParamArguments)
		if err != nil {
			return nil, err
		}
		request := mcp.CallToolRequest{}
		request.Params.Name = name
		if arguments != nil {
			request.Params.Arguments = arguments
		}
		return result(s.CallTool(ctx, request))
	},
}

// Dispatch calls the session method for method with params as its arguments.
func Dispatch(ctx context.Context, s Session, method Method, values map[string]any) (any, error) {
	h, ok := handlers[method]
	if !ok {
		return nil, &DispatchError{Method: method, Err: ErrUnsupportedMethod}
	}

	res, err := h(ctx, s, params(values))
	if err != nil {
		return nil, &DispatchError{Method: method, Err: err}
	}
	return res, nil
}

// result keeps a nil result pointer from turning into a non-nil interface.
func result[T any](res *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return res, nil
}

type params map[string]any

// only rejects keys outside allowed.
func (p params) only(allowed ...string) error {
	var unexpected []string
	for key := range p {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	return fmt.Errorf("%w: %s", ErrUnexpectedParam, strings.Join(unexpected, ", "))
}

func (p params) requiredString(key string) (string, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidParam, key, value)
	}
	return s, nil
}

func (p params) optionalObject(key string) (map[string]any, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return nil, nil
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object, got %T", ErrInvalidParam, key, value)
	}
	return obj, nil
}

func (p params) optionalStringMap(key string) (map[string]string, error) {
	obj, err := p.optionalObject(key)
	if err != nil || obj == nil {
		return nil, err
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s must be a string, got %T", ErrInvalidParam, key, k, v)
		}
		out[k] = s
	}
	return out, nil
}
