package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/jsonrpc"
	pclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
)

// Handler adapts a protocol client handler to the transport handler contract,
// dispatching server-initiated requests and forwarding notifications.
type Handler struct {
	handler pclient.Handler
}

func (h *Handler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	if !h.handler.Implements(request.Method) {
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %s not found", request.Method), nil)
		return
	}
	switch request.Method {
	case schema.MethodRootsList:
		listResponse, err := h.listRoots(ctx, request)
		h.setResponse(response, listResponse, err)
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %s not found", request.Method), nil)
	}
}

// OnNotification forwards server notifications to the client handler.
func (h *Handler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	h.handler.OnNotification(ctx, notification)
}

func (h *Handler) listRoots(ctx context.Context, request *jsonrpc.Request) (*schema.ListRootsResult, *jsonrpc.Error) {
	listRootsRequest := &schema.ListRootsRequest{Method: request.Method}
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &listRootsRequest.Params); err != nil {
			return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params)
		}
	}
	return h.handler.ListRoots(ctx, &jsonrpc.TypedRequest[*schema.ListRootsRequest]{Request: listRootsRequest})
}

func (h *Handler) setResponse(response *jsonrpc.Response, result interface{}, rpcError *jsonrpc.Error) {
	if rpcError != nil {
		response.Error = rpcError
		return
	}
	var err error
	response.Result, err = json.Marshal(result)
	if err != nil {
		response.Error = jsonrpc.NewInternalError(err.Error(), []byte{})
	}
}

// NewHandler creates a transport handler backed by the given client handler.
func NewHandler(handler pclient.Handler) *Handler {
	return &Handler{handler: handler}
}
