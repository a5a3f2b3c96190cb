// Package mcp connects the gateway to auxiliary tool servers speaking the
// Model Context Protocol. A connection is established per request from a
// request-scoped ServerDescriptor, so the headers it carries are already
// template-substituted for this caller.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"agentgate"
	"agentgate/internal/retry"
)

// clientName identifies the gateway in MCP handshakes.
const clientName = "agentgate"

// Conn is a live connection to one auxiliary tool server. It is safe for
// concurrent use; the tool list is fetched once at connect time.
type Conn struct {
	name     string
	defaults map[string]map[string]any
	client   *client.Client

	mu    sync.RWMutex
	tools map[string]mcp.Tool
}

// Connect dials the server described by desc, performs the MCP handshake,
// and fetches its tool list. The descriptor's headers are applied verbatim;
// callers pass a request-scoped descriptor whose templates are already
// substituted. Transient dial failures are retried with backoff.
func Connect(ctx context.Context, name string, desc agentgate.ServerDescriptor) (*Conn, error) {
	return retry.Do(ctx, retry.DefaultConfig(), func() (*Conn, error) {
		return connect(ctx, name, desc)
	})
}

func connect(ctx context.Context, name string, desc agentgate.ServerDescriptor) (*Conn, error) {
	c, err := dial(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client for %s: %w", name, err)
	}

	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to start MCP client for %s: %w", name, err)
	}

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    clientName,
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session for %s: %w", name, err)
	}

	conn := &Conn{
		name:     name,
		defaults: desc.ToolDefaults,
		client:   c,
		tools:    make(map[string]mcp.Tool),
	}
	if err := conn.refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools for %s: %w", name, err)
	}
	return conn, nil
}

func dial(desc agentgate.ServerDescriptor) (*client.Client, error) {
	switch desc.Transport {
	case agentgate.TransportSSE:
		var opts []transport.ClientOption
		if len(desc.Headers) > 0 {
			opts = append(opts, transport.WithHeaders(desc.Headers))
		}
		return client.NewSSEMCPClient(desc.Address, opts...)
	case agentgate.TransportStreamableHTTP:
		var opts []transport.StreamableHTTPCOption
		if len(desc.Headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(desc.Headers))
		}
		return client.NewStreamableHttpClient(desc.Address, opts...)
	default:
		return nil, fmt.Errorf("unsupported transport %q", desc.Transport)
	}
}

// Close closes the connection to the server.
func (c *Conn) Close() error {
	return c.client.Close()
}

// Name returns the server name from the descriptor document.
func (c *Conn) Name() string {
	return c.name
}

func (c *Conn) refresh(ctx context.Context) error {
	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = make(map[string]mcp.Tool, len(result.Tools))
	for _, t := range result.Tools {
		c.tools[t.Name] = t
	}
	return nil
}

// Tools returns the server's tools under their qualified names
// (mcp__<server>__<tool>).
func (c *Conn) Tools() []agentgate.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make([]agentgate.Tool, 0, len(c.tools))
	for _, t := range c.tools {
		qualified := fromMCPTool(t)
		qualified.Name = agentgate.QualifiedToolName(c.name, t.Name)
		tools = append(tools, qualified)
	}
	return tools
}

// Has reports whether the server offers the named (unqualified) tool.
func (c *Conn) Has(tool string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tools[tool]
	return ok
}

// Call invokes the named (unqualified) tool, merging the descriptor's
// per-tool default arguments underneath the model-supplied ones. A server
// side tool failure is folded into the result rather than returned.
func (c *Conn) Call(ctx context.Context, call agentgate.ToolCall, tool string) (agentgate.ToolResult, error) {
	args := mergeArguments(call.Arguments, c.defaults[tool])

	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	if err != nil {
		return agentgate.ToolResult{
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}, nil
	}
	return fromCallToolResult(call.ID, result), nil
}

// mergeArguments layers model-supplied JSON arguments over the configured
// defaults. Defaults never override what the model sent.
func mergeArguments(rawArgs string, defaults map[string]any) map[string]any {
	args := make(map[string]any, len(defaults))
	for k, v := range defaults {
		args[k] = v
	}
	if rawArgs != "" {
		var supplied map[string]any
		if err := json.Unmarshal([]byte(rawArgs), &supplied); err == nil {
			for k, v := range supplied {
				args[k] = v
			}
		}
	}
	return args
}
