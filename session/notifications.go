package session

import (
	"context"
	"sync"

	"github.com/viant/jsonrpc"
)

type notificationHandler func(ctx context.Context, notification *jsonrpc.Notification)

// notificationRouter dispatches server notifications by method. Unrecognized
// methods go to the fallback handler.
type notificationRouter struct {
	mu       sync.RWMutex
	handlers map[string]notificationHandler
	fallback notificationHandler
}

func newNotificationRouter() *notificationRouter {
	return &notificationRouter{handlers: map[string]notificationHandler{}}
}

func (r *notificationRouter) on(method string, handler notificationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = handler
}

func (r *notificationRouter) setFallback(handler notificationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = handler
}

func (r *notificationRouter) dispatch(ctx context.Context, notification *jsonrpc.Notification) {
	r.mu.RLock()
	handler, ok := r.handlers[notification.Method]
	fallback := r.fallback
	r.mu.RUnlock()
	if ok {
		handler(ctx, notification)
		return
	}
	if fallback != nil {
		fallback(ctx, notification)
	}
}

func (s *Session) onUnhandledNotification(_ context.Context, notification *jsonrpc.Notification) {
	if s.quiet {
		return
	}
	s.warnf("unhandled notification: %v", notification.Method)
}
