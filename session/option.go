package session

import (
	"io"

	"github.com/viant/mcp-protocol/schema"
)

// Option represents a session option.
type Option func(s *Session)

// WithQuiet suppresses rendering of server log notifications; used for
// one-shot invocations so stray log lines cannot corrupt machine-readable
// output.
func WithQuiet(quiet bool) Option {
	return func(s *Session) {
		s.quiet = quiet
	}
}

// WithEnv sets environment overrides for spawned server processes.
func WithEnv(env map[string]string) Option {
	return func(s *Session) {
		s.env = env
	}
}

// WithBearerToken sets a static bearer token for HTTP transports.
func WithBearerToken(token string) Option {
	return func(s *Session) {
		s.bearerToken = token
	}
}

// WithLogLevel overrides the initial server logging level (defaults to the
// MCP_LOG_LEVEL environment variable, then "info").
func WithLogLevel(level string) Option {
	return func(s *Session) {
		s.logLevel = level
	}
}

// WithOutput redirects rendered log notifications and warnings (defaults to stderr).
func WithOutput(output io.Writer) Option {
	return func(s *Session) {
		s.output = output
	}
}

// WithClientInfo overrides the client identity declared during the handshake.
func WithClientInfo(name, version string) Option {
	return func(s *Session) {
		s.info = *schema.NewImplementation(name, version)
	}
}

// WithProtocolVersion overrides the protocol version declared during the handshake.
func WithProtocolVersion(version string) Option {
	return func(s *Session) {
		s.protocolVersion = version
	}
}
