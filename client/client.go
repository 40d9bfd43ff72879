package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"
)

var errUninitialized = fmt.Errorf("client is not initialized")

// Client is a typed JSON-RPC wrapper over a transport. It performs the
// initialize handshake and exposes the server operations this project uses;
// request plumbing, framing and correlation belong to the transport.
type Client struct {
	capabilities    schema.ClientCapabilities
	info            schema.Implementation
	protocolVersion string
	transport       transport.Transport
	initialized     bool
}

func (c *Client) isInitialized() bool {
	return c.initialized
}

// Initialize performs the protocol handshake and announces the initialized
// notification. Every other operation fails until it succeeds.
func (c *Client) Initialize(ctx context.Context) (*schema.InitializeResult, error) {
	params := &schema.InitializeRequestParams{
		Capabilities:    c.capabilities,
		ClientInfo:      c.info,
		ProtocolVersion: c.protocolVersion,
	}
	req, err := jsonrpc.NewRequest(schema.MethodInitialize, params)
	if err != nil {
		return nil, jsonrpc.NewInvalidRequest(err.Error(), nil)
	}
	response, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), req.Params)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	var result schema.InitializeResult
	if err = json.Unmarshal(response.Result, &result); err != nil {
		return nil, jsonrpc.NewInternalError(fmt.Sprintf("failed to unmarshal InitializeResult: %v", err), nil)
	}
	if err = c.transport.Notify(ctx, &jsonrpc.Notification{Method: schema.MethodNotificationInitialized}); err != nil {
		return nil, jsonrpc.NewInternalError(fmt.Sprintf("failed to notify initialized: %v", err), nil)
	}
	c.initialized = true
	return &result, nil
}

// ListTools lists server tools.
func (c *Client) ListTools(ctx context.Context, cursor *string) (*schema.ListToolsResult, error) {
	params := &schema.ListToolsRequestParams{Cursor: cursor}
	return send[schema.ListToolsRequestParams, schema.ListToolsResult](ctx, c, schema.MethodToolsList, params)
}

// CallTool invokes a server tool; server-side tool errors are returned verbatim.
func (c *Client) CallTool(ctx context.Context, params *schema.CallToolRequestParams) (*schema.CallToolResult, error) {
	return send[schema.CallToolRequestParams, schema.CallToolResult](ctx, c, schema.MethodToolsCall, params)
}

// ListResources lists server resources.
func (c *Client) ListResources(ctx context.Context, cursor *string) (*schema.ListResourcesResult, error) {
	params := &schema.ListResourcesRequestParams{Cursor: cursor}
	return send[schema.ListResourcesRequestParams, schema.ListResourcesResult](ctx, c, schema.MethodResourcesList, params)
}

// ReadResource reads resource contents.
func (c *Client) ReadResource(ctx context.Context, params *schema.ReadResourceRequestParams) (*schema.ReadResourceResult, error) {
	return send[schema.ReadResourceRequestParams, schema.ReadResourceResult](ctx, c, schema.MethodResourcesRead, params)
}

// Subscribe subscribes to update notifications for a resource.
func (c *Client) Subscribe(ctx context.Context, params *schema.SubscribeRequestParams) (*schema.SubscribeResult, error) {
	return send[schema.SubscribeRequestParams, schema.SubscribeResult](ctx, c, schema.MethodSubscribe, params)
}

// Unsubscribe cancels a resource subscription.
func (c *Client) Unsubscribe(ctx context.Context, params *schema.UnsubscribeRequestParams) (*schema.UnsubscribeResult, error) {
	return send[schema.UnsubscribeRequestParams, schema.UnsubscribeResult](ctx, c, schema.MethodUnsubscribe, params)
}

// SetLevel sets the server logging level.
func (c *Client) SetLevel(ctx context.Context, params *schema.SetLevelRequestParams) (*schema.SetLevelResult, error) {
	return send[schema.SetLevelRequestParams, schema.SetLevelResult](ctx, c, schema.MethodLoggingSetLevel, params)
}

// Ping probes server liveness.
func (c *Client) Ping(ctx context.Context, params *schema.PingRequestParams) (*schema.PingResult, error) {
	return send[schema.PingRequestParams, schema.PingResult](ctx, c, schema.MethodPing, params)
}

// New creates a client bound to the supplied transport.
func New(name, version string, transport transport.Transport, options ...Option) *Client {
	ret := &Client{
		info:      *schema.NewImplementation(name, version),
		transport: transport,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.protocolVersion == "" {
		ret.protocolVersion = schema.LatestProtocolVersion
	}
	return ret
}

func send[P any, R any](ctx context.Context, client *Client, method string, parameters *P) (*R, error) {
	if !client.isInitialized() {
		return nil, jsonrpc.NewInternalError(errUninitialized.Error(), nil)
	}
	req, err := jsonrpc.NewRequest(method, parameters)
	if err != nil {
		return nil, jsonrpc.NewInvalidRequest(err.Error(), nil)
	}
	response, err := client.transport.Send(ctx, req)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	var result R
	if err = json.Unmarshal(response.Result, &result); err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	return &result, nil
}
