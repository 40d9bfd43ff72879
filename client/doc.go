// Package client implements a thin, typed MCP client over the
// github.com/viant/jsonrpc transport contract.
//
// It adds the `initialize` handshake and strongly typed request helpers
// (ListTools, CallTool, ListResources and so on) on top of any implementation of
// jsonrpc/transport.Transport; message framing, request correlation and the
// concrete stdio/HTTP channels belong to the SDK.
package client
