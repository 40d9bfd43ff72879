package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/mcpcli/client"
	"github.com/viant/mcpcli/target"
)

const (
	defaultClientName    = "mcpcli"
	defaultClientVersion = "0.1.0"
)

// notification methods without a schema constant in the SDK
const (
	methodNotificationResourcesListChanged = "notifications/resources/list_changed"
	methodNotificationRootsListChanged     = "notifications/roots/list_changed"
)

type state int

const (
	stateUnconnected state = iota
	stateConnecting
	stateHandshaking
	stateReady
	stateDisconnected
)

// Session owns at most one live transport and RPC client, drives the
// connect/handshake/teardown lifecycle, and mirrors server-advertised tools
// and resources. A session is single-use: once disconnected it cannot be
// reconnected.
type Session struct {
	id              string
	info            schema.Implementation
	capabilities    schema.ClientCapabilities
	protocolVersion string

	quiet       bool
	env         map[string]string
	bearerToken string
	logLevel    string
	output      io.Writer

	router     *notificationRouter
	requestSeq int64

	dial func(ctx context.Context, t target.Target) (transport.Transport, string, error)

	mu                 sync.Mutex
	state              state
	transport          transport.Transport
	transportKind      string
	client             *client.Client
	serverCapabilities *schema.ServerCapabilities
	serverInfo         *schema.Implementation
	negotiatedVersion  string
	lastTools          []ToolInfo
	resources          map[string]ResourceInfo
}

// New creates an unconnected session.
func New(options ...Option) *Session {
	ret := &Session{
		id:        uuid.New().String(),
		info:      *schema.NewImplementation(defaultClientName, defaultClientVersion),
		output:    os.Stderr,
		resources: map[string]ResourceInfo{},
		router:    newNotificationRouter(),
	}
	// sampling and elicitation are declared but not implemented; server
	// requests for either are answered with method-not-found
	ret.capabilities = schema.ClientCapabilities{
		Roots:       &schema.ClientCapabilitiesRoots{},
		Sampling:    &schema.ClientCapabilitiesSampling{},
		Elicitation: &schema.ClientCapabilitiesElicitation{},
	}
	ret.dial = ret.buildTransport
	for _, option := range options {
		option(ret)
	}
	ret.router.setFallback(ret.onUnhandledNotification)
	return ret
}

// Connect establishes the transport for the given target, performs the
// handshake, registers notification handlers and fetches the initial tool
// (and, when advertised, resource) state. On failure the session holds no
// transport or client reference.
func (s *Session) Connect(ctx context.Context, t target.Target) error {
	s.mu.Lock()
	if s.state != stateUnconnected {
		s.mu.Unlock()
		return &ConnectError{Cause: fmt.Errorf("session already connected or closed")}
	}
	s.state = stateConnecting
	s.mu.Unlock()

	rpcTransport, kind, err := s.dial(ctx, t)
	if err != nil {
		s.fail(nil)
		return &ConnectError{Cause: err}
	}

	options := []client.Option{client.WithCapabilities(s.capabilities)}
	if s.protocolVersion != "" {
		options = append(options, client.WithProtocolVersion(s.protocolVersion))
	}
	rpcClient := client.New(s.info.Name, s.info.Version, rpcTransport, options...)

	s.mu.Lock()
	s.transport = rpcTransport
	s.transportKind = kind
	s.state = stateHandshaking
	s.mu.Unlock()

	result, err := rpcClient.Initialize(ctx)
	if err != nil {
		s.fail(rpcTransport)
		return &ConnectError{Cause: err}
	}

	s.mu.Lock()
	s.client = rpcClient
	s.serverCapabilities = &result.Capabilities
	s.serverInfo = &result.ServerInfo
	s.negotiatedVersion = result.ProtocolVersion
	s.mu.Unlock()

	if result.Capabilities.Logging != nil {
		s.router.on(schema.MethodNotificationMessage, s.onLogMessage)
		level := s.initialLogLevel()
		if _, err = rpcClient.SetLevel(ctx, &schema.SetLevelRequestParams{Level: level}); err != nil {
			s.warnf("failed to set initial logging level %v: %v", level, err)
		}
	}
	if result.Capabilities.Resources != nil {
		s.router.on(methodNotificationResourcesListChanged, func(ctx context.Context, _ *jsonrpc.Notification) {
			s.updateResourcesList(ctx, "failed to refresh resources after list change")
		})
		s.router.on(schema.MethodNotificationResourceUpdated, s.onResourceUpdated)
	}

	// the protocol expects the announcement even though this client
	// declares no filesystem roots
	if err = rpcTransport.Notify(ctx, &jsonrpc.Notification{Method: methodNotificationRootsListChanged}); err != nil {
		s.fail(rpcTransport)
		return &ConnectError{Cause: fmt.Errorf("failed to announce roots: %w", err)}
	}

	if result.Capabilities.Resources != nil {
		s.updateResourcesList(ctx, "failed to fetch initial resource list")
	}
	if err = s.fetchTools(ctx, rpcClient); err != nil {
		s.fail(rpcTransport)
		return &ConnectError{Cause: fmt.Errorf("failed to fetch initial tool list: %w", err)}
	}

	s.mu.Lock()
	s.state = stateReady
	s.mu.Unlock()
	return nil
}

// Disconnect closes the transport and clears session state. In-flight
// requests have unspecified outcome. Idempotent; the session is terminal
// afterwards.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	rpcTransport := s.transport
	s.transport = nil
	s.client = nil
	s.lastTools = nil
	s.resources = map[string]ResourceInfo{}
	s.state = stateDisconnected
	s.mu.Unlock()
	return closeTransport(rpcTransport)
}

// Ping probes server liveness.
func (s *Session) Ping(ctx context.Context) error {
	rpcClient, err := s.readyClient()
	if err != nil {
		return err
	}
	_, err = rpcClient.Ping(ctx, &schema.PingRequestParams{})
	return err
}

// fail rolls the session back to a reference-free terminal state after a
// connect failure.
func (s *Session) fail(rpcTransport transport.Transport) {
	s.mu.Lock()
	s.transport = nil
	s.client = nil
	s.serverCapabilities = nil
	s.serverInfo = nil
	s.state = stateDisconnected
	s.mu.Unlock()
	_ = closeTransport(rpcTransport)
}

func closeTransport(rpcTransport transport.Transport) error {
	if closer, ok := rpcTransport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Session) readyClient() (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady || s.client == nil {
		return nil, ErrNotConnected
	}
	return s.client, nil
}

// currentClient returns the client regardless of lifecycle phase; used by
// notification handlers which may fire while a connect is still in flight.
func (s *Session) currentClient() *client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

func (s *Session) warnf(format string, args ...interface{}) {
	fmt.Fprintf(s.output, "[mcpcli] "+format+"\n", args...)
}
