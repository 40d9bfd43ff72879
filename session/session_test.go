package session

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/mcpcli/target"
)

// stubServer plays the server side of the wire: canned per-method handlers
// plus call counting, so tests can assert exactly what reached the wire.
type stubServer struct {
	handlers map[string]func(params json.RawMessage) (interface{}, *jsonrpc.Error)
	calls    map[string]int
	notified []string
	closed   bool
}

func newStubServer() *stubServer {
	s := &stubServer{
		handlers: map[string]func(params json.RawMessage) (interface{}, *jsonrpc.Error){},
		calls:    map[string]int{},
	}
	s.handlers[schema.MethodInitialize] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return &schema.InitializeResult{
			ServerInfo:      schema.Implementation{Name: "stub", Version: "0.1"},
			ProtocolVersion: schema.LatestProtocolVersion,
			Capabilities: schema.ServerCapabilities{
				Tools:     &schema.ServerCapabilitiesTools{},
				Resources: &schema.ServerCapabilitiesResources{},
			},
		}, nil
	}
	s.handlers[schema.MethodToolsList] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		description := "echoes its input"
		return &schema.ListToolsResult{Tools: []schema.Tool{
			{Name: "echo", Description: &description, InputSchema: schema.ToolInputSchema{Type: "object"}},
		}}, nil
	}
	s.handlers[schema.MethodResourcesList] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return &schema.ListResourcesResult{Resources: []schema.Resource{
			{Uri: "mem://a", Name: "a", Annotations: &schema.Annotations{}},
			{Uri: "mem://b", Name: "b"},
		}}, nil
	}
	s.handlers[schema.MethodLoggingSetLevel] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return &schema.SetLevelResult{}, nil
	}
	s.handlers[schema.MethodPing] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return &schema.PingResult{}, nil
	}
	return s
}

func (s *stubServer) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	s.calls[request.Method]++
	handler, ok := s.handlers[request.Method]
	if !ok {
		return &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: request.Id,
			Error: jsonrpc.NewMethodNotFound(request.Method, nil)}, nil
	}
	result, rpcErr := handler(request.Params)
	if rpcErr != nil {
		return &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: request.Id, Error: rpcErr}, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: request.Id, Result: data}, nil
}

func (s *stubServer) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	s.notified = append(s.notified, notification.Method)
	return nil
}

func (s *stubServer) Close() error {
	s.closed = true
	return nil
}

var _ transport.Transport = (*stubServer)(nil)

func connectedSession(t *testing.T, stub *stubServer, options ...Option) *Session {
	t.Helper()
	options = append([]Option{WithQuiet(true)}, options...)
	s := New(options...)
	s.dial = func(ctx context.Context, _ target.Target) (transport.Transport, string, error) {
		return stub, transportKindStdio, nil
	}
	err := s.Connect(context.Background(), &target.Script{Interpreter: target.InterpreterNode, Path: "server.js"})
	require.NoError(t, err)
	return s
}

func TestSession_ConnectLifecycle(t *testing.T) {
	stub := newStubServer()
	s := connectedSession(t, stub)

	require.NoError(t, s.VerifyHandshake())
	info := s.Handshake()
	assert.True(t, info.Connected)
	assert.Equal(t, transportKindStdio, info.TransportKind)
	assert.Equal(t, "stub", info.ServerInfo.Name)
	assert.NotEmpty(t, info.SessionID)

	// handshake completion and roots announcement both reached the wire
	assert.Contains(t, stub.notified, schema.MethodNotificationInitialized)
	assert.Contains(t, stub.notified, methodNotificationRootsListChanged)

	// initial state was mirrored
	tools := s.Tools()
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, "echoes its input", tools[0].Description)
	assert.Len(t, s.Resources(), 2)

	// the stub does not advertise logging, so no setLevel request went out
	assert.Equal(t, 0, stub.calls[schema.MethodLoggingSetLevel])

	require.NoError(t, s.Disconnect())
	assert.True(t, stub.closed)
	assert.Empty(t, s.Resources())
	require.Error(t, s.VerifyHandshake())

	// a session is single-use
	err := s.Connect(context.Background(), &target.Script{Interpreter: target.InterpreterNode, Path: "server.js"})
	require.Error(t, err)
}

// enableLogging makes the stub advertise the logging capability.
func enableLogging(stub *stubServer) {
	stub.handlers[schema.MethodInitialize] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return map[string]interface{}{
			"serverInfo":      map[string]string{"name": "stub", "version": "0.1"},
			"protocolVersion": schema.LatestProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
		}, nil
	}
}

func TestSession_InitialLogLevelAnnounced(t *testing.T) {
	stub := newStubServer()
	enableLogging(stub)
	s := connectedSession(t, stub, WithLogLevel("warning"))
	defer s.Disconnect()
	assert.Equal(t, 1, stub.calls[schema.MethodLoggingSetLevel])
}

func TestSession_ConnectFailureLeavesNoReferences(t *testing.T) {
	stub := newStubServer()
	stub.handlers[schema.MethodInitialize] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return nil, jsonrpc.NewInternalError("handshake refused", nil)
	}
	s := New(WithQuiet(true))
	s.dial = func(ctx context.Context, _ target.Target) (transport.Transport, string, error) {
		return stub, transportKindStdio, nil
	}
	err := s.Connect(context.Background(), &target.Script{Interpreter: target.InterpreterNode, Path: "server.js"})
	require.Error(t, err)
	var connectErr *ConnectError
	require.ErrorAs(t, err, &connectErr)
	assert.True(t, stub.closed)
	require.Error(t, s.VerifyHandshake())
	assert.Nil(t, s.ServerCapabilities())
}

func TestSession_CallTool(t *testing.T) {
	stub := newStubServer()
	stub.handlers[schema.MethodToolsCall] = func(params json.RawMessage) (interface{}, *jsonrpc.Error) {
		request := &schema.CallToolRequestParams{}
		if err := json.Unmarshal(params, request); err != nil {
			return nil, jsonrpc.NewInvalidParamsError(err.Error(), nil)
		}
		return &schema.CallToolResult{
			Content: []schema.CallToolResultContentElem{
				map[string]interface{}{"type": "text", "text": request.Arguments["text"].(string)},
			},
		}, nil
	}
	s := connectedSession(t, stub)
	defer s.Disconnect()

	result, err := s.CallTool(context.Background(), "echo", map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	content, ok := result.Content[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hello", content["text"])
}

func TestSession_NotConnectedGuards(t *testing.T) {
	s := New(WithQuiet(true))
	ctx := context.Background()

	_, err := s.CallTool(ctx, "echo", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = s.ReadResource(ctx, "mem://a")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, s.RefreshTools(ctx), ErrNotConnected)
	assert.ErrorIs(t, s.Ping(ctx), ErrNotConnected)
	assert.ErrorIs(t, s.SetLoggingLevel(ctx, "info"), ErrNotConnected)
	assert.ErrorIs(t, s.VerifyHandshake(), ErrNotConnected)
}

func TestSession_ResourceListReplaceOnSuccess(t *testing.T) {
	stub := newStubServer()
	s := connectedSession(t, stub)
	defer s.Disconnect()
	require.Len(t, s.Resources(), 2)

	stub.handlers[schema.MethodResourcesList] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return &schema.ListResourcesResult{Resources: []schema.Resource{
			{Uri: "mem://c", Name: "c"},
		}}, nil
	}
	notification, err := jsonrpc.NewNotification(methodNotificationResourcesListChanged, nil)
	require.NoError(t, err)
	s.OnNotification(context.Background(), notification)

	resources := s.Resources()
	require.Len(t, resources, 1)
	assert.Equal(t, "mem://c", resources[0].URI)
}

func TestSession_ResourceListPreservedOnFailure(t *testing.T) {
	stub := newStubServer()
	s := connectedSession(t, stub)
	defer s.Disconnect()

	stub.handlers[schema.MethodResourcesList] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return nil, jsonrpc.NewInternalError("listing broke", nil)
	}
	notification, err := jsonrpc.NewNotification(methodNotificationResourcesListChanged, nil)
	require.NoError(t, err)
	s.OnNotification(context.Background(), notification)

	// previous contents survive the failed refresh
	resources := s.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, "mem://a", resources[0].URI)
	assert.Equal(t, "mem://b", resources[1].URI)
}

func TestSession_SingleResourceUpdate(t *testing.T) {
	stub := newStubServer()
	s := connectedSession(t, stub)
	defer s.Disconnect()

	// the server now reports b renamed and a gone; an update for b alone
	// must not touch the cached a
	stub.handlers[schema.MethodResourcesList] = func(json.RawMessage) (interface{}, *jsonrpc.Error) {
		return &schema.ListResourcesResult{Resources: []schema.Resource{
			{Uri: "mem://b", Name: "b-renamed"},
		}}, nil
	}
	notification, err := jsonrpc.NewNotification(schema.MethodNotificationResourceUpdated, map[string]string{"uri": "mem://b"})
	require.NoError(t, err)
	s.OnNotification(context.Background(), notification)

	updated, ok := s.Resource("mem://b")
	require.True(t, ok)
	assert.Equal(t, "b-renamed", updated.Name)
	_, ok = s.Resource("mem://a")
	assert.True(t, ok)
}

func TestSession_InvalidLogLevelNeverSent(t *testing.T) {
	stub := newStubServer()
	s := connectedSession(t, stub)
	defer s.Disconnect()

	err := s.SetLoggingLevel(context.Background(), "verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
	assert.Equal(t, 0, stub.calls[schema.MethodLoggingSetLevel])

	require.NoError(t, s.SetLoggingLevel(context.Background(), "debug"))
	assert.Equal(t, 1, stub.calls[schema.MethodLoggingSetLevel])
}

func TestSession_ToolsSnapshotIsolation(t *testing.T) {
	stub := newStubServer()
	s := connectedSession(t, stub)
	defer s.Disconnect()

	tools := s.Tools()
	require.Len(t, tools, 1)
	tools[0].Name = "mutated"
	assert.Equal(t, "echo", s.Tools()[0].Name)

	tool, ok := s.DescribeTool("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", tool.Name)
	_, ok = s.DescribeTool("missing")
	assert.False(t, ok)
}

func TestSession_LogNotificationRendering(t *testing.T) {
	stub := newStubServer()
	enableLogging(stub)
	var buf bytes.Buffer
	s := connectedSession(t, stub)
	s.quiet = false
	s.output = &buf
	defer s.Disconnect()

	logger := "stub"
	notification, err := jsonrpc.NewNotification(schema.MethodNotificationMessage, &schema.LoggingMessageNotificationParams{
		Level:  schema.Warning,
		Logger: &logger,
		Data:   "disk almost full",
	})
	require.NoError(t, err)
	s.OnNotification(context.Background(), notification)

	assert.Contains(t, buf.String(), "warning")
	assert.Contains(t, buf.String(), "stub: ")
	assert.Contains(t, buf.String(), "disk almost full")
}

func TestSession_LogNotificationWithoutLoggingCapability(t *testing.T) {
	stub := newStubServer()
	var buf bytes.Buffer
	s := connectedSession(t, stub)
	s.quiet = false
	s.output = &buf
	defer s.Disconnect()

	notification, err := jsonrpc.NewNotification(schema.MethodNotificationMessage, &schema.LoggingMessageNotificationParams{
		Level: schema.Info,
		Data:  "ignored",
	})
	require.NoError(t, err)
	s.OnNotification(context.Background(), notification)

	// no render handler is registered when the server does not advertise
	// logging, so the message lands in the fallback
	assert.Contains(t, buf.String(), "unhandled notification")
	assert.NotContains(t, buf.String(), "ignored")
}

func TestSession_ResourceAnnotationsCarried(t *testing.T) {
	stub := newStubServer()
	s := connectedSession(t, stub)
	defer s.Disconnect()

	annotated, ok := s.Resource("mem://a")
	require.True(t, ok)
	assert.NotNil(t, annotated.Annotations)
	plain, ok := s.Resource("mem://b")
	require.True(t, ok)
	assert.Nil(t, plain.Annotations)
}

func TestLogLevels(t *testing.T) {
	levels := LogLevels()
	require.Len(t, levels, 8)
	assert.Equal(t, []string{
		"debug", "info", "notice", "warning", "error", "critical", "alert", "emergency",
	}, levels)
}
