package session

import (
	"fmt"

	"github.com/viant/mcp-protocol/schema"
)

// HandshakeInfo captures the negotiated state of a connected session for
// inspection and diagnostics.
type HandshakeInfo struct {
	Connected          bool
	SessionID          string
	TransportKind      string
	ProtocolVersion    string
	ClientInfo         schema.Implementation
	ClientCapabilities schema.ClientCapabilities
	ServerInfo         *schema.Implementation
	ServerCapabilities *schema.ServerCapabilities
}

// Handshake reports the negotiated session state.
func (s *Session) Handshake() HandshakeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HandshakeInfo{
		Connected:          s.state == stateReady,
		SessionID:          s.id,
		TransportKind:      s.transportKind,
		ProtocolVersion:    s.negotiatedVersion,
		ClientInfo:         s.info,
		ClientCapabilities: s.capabilities,
		ServerInfo:         s.serverInfo,
		ServerCapabilities: s.serverCapabilities,
	}
}

// VerifyHandshake asserts the session completed the handshake and still
// holds a live transport and negotiated capabilities.
func (s *Session) VerifyHandshake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return ErrNotConnected
	}
	if s.client == nil || s.transport == nil {
		return fmt.Errorf("session is ready but holds no live transport")
	}
	if s.serverCapabilities == nil {
		return fmt.Errorf("session is ready but negotiated no server capabilities")
	}
	return nil
}

// ServerCapabilities returns the capabilities advertised during the
// handshake, or nil before connect.
func (s *Session) ServerCapabilities() *schema.ServerCapabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverCapabilities
}

// ID returns the locally generated session identifier.
func (s *Session) ID() string {
	return s.id
}
