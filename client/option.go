package client

import (
	"github.com/viant/mcp-protocol/schema"
)

// Option represents a client option.
type Option func(c *Client)

// WithCapabilities sets the capabilities declared during the handshake.
func WithCapabilities(capabilities schema.ClientCapabilities) Option {
	return func(c *Client) {
		c.capabilities = capabilities
	}
}

// WithProtocolVersion overrides the negotiated protocol version.
func WithProtocolVersion(version string) Option {
	return func(c *Client) {
		c.protocolVersion = version
	}
}
