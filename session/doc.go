// Package session drives the lifecycle of a single MCP server connection:
// transport construction for script, npx and HTTP targets, the initialize
// handshake, capability-gated notification handling, and cached views of
// the server's tools and resources.
//
// A Session is single-use. Connect moves it from unconnected to ready;
// Disconnect (or a connect failure) is terminal.
package session
