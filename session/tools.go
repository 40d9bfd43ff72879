package session

import (
	"context"

	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/mcpcli/client"
)

// ToolInfo is the cached view of a server tool.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema schema.ToolInputSchema
}

func toolInfo(tool schema.Tool) ToolInfo {
	ret := ToolInfo{Name: tool.Name, InputSchema: tool.InputSchema}
	if tool.Description != nil {
		ret.Description = *tool.Description
	}
	return ret
}

// Tools returns a snapshot of the tool directory captured at connect time or
// by the last RefreshTools call.
func (s *Session) Tools() []ToolInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]ToolInfo, len(s.lastTools))
	copy(ret, s.lastTools)
	return ret
}

// DescribeTool looks up a tool by name in the cached directory.
func (s *Session) DescribeTool(name string) (ToolInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tool := range s.lastTools {
		if tool.Name == name {
			return tool, true
		}
	}
	return ToolInfo{}, false
}

// RefreshTools re-queries the tool directory.
func (s *Session) RefreshTools(ctx context.Context) error {
	rpcClient, err := s.readyClient()
	if err != nil {
		return err
	}
	return s.fetchTools(ctx, rpcClient)
}

func (s *Session) fetchTools(ctx context.Context, rpcClient *client.Client) error {
	result, err := rpcClient.ListTools(ctx, nil)
	if err != nil {
		return err
	}
	tools := make([]ToolInfo, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, toolInfo(tool))
	}
	s.mu.Lock()
	s.lastTools = tools
	s.mu.Unlock()
	return nil
}

// CallTool invokes a server tool. Server-side tool failures surface in the
// result's IsError flag, not as a Go error.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]interface{}) (*schema.CallToolResult, error) {
	rpcClient, err := s.readyClient()
	if err != nil {
		return nil, err
	}
	return rpcClient.CallTool(ctx, &schema.CallToolRequestParams{Name: name, Arguments: args})
}
