package mcp

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"agentgate"
)

// fromMCPTool converts an MCP tool definition, extracting the JSON schema
// from either RawInputSchema or the structured InputSchema.
func fromMCPTool(t mcp.Tool) agentgate.Tool {
	var schema json.RawMessage
	if len(t.RawInputSchema) > 0 {
		schema = t.RawInputSchema
	} else {
		data, err := json.Marshal(t.InputSchema)
		if err == nil {
			schema = data
		}
	}
	return agentgate.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// fromCallToolResult extracts the result content as concatenated text.
func fromCallToolResult(callID string, result *mcp.CallToolResult) agentgate.ToolResult {
	if result == nil {
		return agentgate.ToolResult{
			ToolCallID: callID,
			IsError:    true,
		}
	}

	var textParts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			textParts = append(textParts, content.Text)
		case *mcp.TextContent:
			textParts = append(textParts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				textParts = append(textParts, string(data))
			}
		}
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			textParts = append(textParts, string(data))
		}
	}

	return agentgate.ToolResult{
		ToolCallID: callID,
		Content:    strings.Join(textParts, "\n"),
		IsError:    result.IsError,
	}
}
