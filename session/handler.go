package session

import (
	"context"
	"sync/atomic"

	"github.com/viant/jsonrpc"
	pclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
)

// Session answers server-initiated traffic itself. Roots are supported with
// an empty set; sampling and elicitation are declined.
var _ pclient.Handler = (*Session)(nil)

func (s *Session) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	s.mu.Lock()
	rpcTransport := s.transport
	s.mu.Unlock()
	if rpcTransport == nil {
		return ErrNotConnected
	}
	return rpcTransport.Notify(ctx, notification)
}

func (s *Session) NextRequestID() jsonrpc.RequestId {
	return int(atomic.AddInt64(&s.requestSeq, 1))
}

func (s *Session) LastRequestID() jsonrpc.RequestId {
	return int(atomic.LoadInt64(&s.requestSeq))
}

func (s *Session) Implements(method string) bool {
	return method == schema.MethodRootsList
}

func (s *Session) Init(ctx context.Context, capabilities *schema.ClientCapabilities) {
	*capabilities = s.capabilities
}

func (s *Session) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	s.router.dispatch(ctx, notification)
}

func (s *Session) ListRoots(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListRootsRequest]) (*schema.ListRootsResult, *jsonrpc.Error) {
	return &schema.ListRootsResult{}, nil
}

func (s *Session) CreateMessage(ctx context.Context, request *jsonrpc.TypedRequest[*schema.CreateMessageRequest]) (*schema.CreateMessageResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound(schema.MethodSamplingCreateMessage, nil)
}

func (s *Session) Elicit(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ElicitRequest]) (*schema.ElicitResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewMethodNotFound(schema.MethodElicitationCreate, nil)
}
