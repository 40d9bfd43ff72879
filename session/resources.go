package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// ResourceInfo is the cached view of a server resource.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Annotations *schema.Annotations
}

func resourceInfo(resource schema.Resource) ResourceInfo {
	ret := ResourceInfo{URI: resource.Uri, Name: resource.Name, Annotations: resource.Annotations}
	if resource.Description != nil {
		ret.Description = *resource.Description
	}
	if resource.MimeType != nil {
		ret.MimeType = *resource.MimeType
	}
	return ret
}

// Resources returns a sorted snapshot of the resource cache.
func (s *Session) Resources() []ResourceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]ResourceInfo, 0, len(s.resources))
	for _, resource := range s.resources {
		ret = append(ret, resource)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].URI < ret[j].URI })
	return ret
}

// Resource looks up a cached resource by URI.
func (s *Session) Resource(uri string) (ResourceInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.resources[uri]
	return ret, ok
}

// ReadResource fetches resource contents from the server; the cache holds
// metadata only.
func (s *Session) ReadResource(ctx context.Context, uri string) (*schema.ReadResourceResult, error) {
	rpcClient, err := s.readyClient()
	if err != nil {
		return nil, err
	}
	return rpcClient.ReadResource(ctx, &schema.ReadResourceRequestParams{Uri: uri})
}

// updateResourcesList refreshes the whole cache. The cache is replaced only
// on success; on failure the previous contents are preserved and a warning
// is emitted.
func (s *Session) updateResourcesList(ctx context.Context, failureMessage string) {
	rpcClient := s.currentClient()
	if rpcClient == nil {
		return
	}
	result, err := rpcClient.ListResources(ctx, nil)
	if err != nil {
		s.warnf("%v: %v", failureMessage, err)
		return
	}
	next := make(map[string]ResourceInfo, len(result.Resources))
	for _, resource := range result.Resources {
		next[resource.Uri] = resourceInfo(resource)
	}
	s.mu.Lock()
	s.resources = next
	s.mu.Unlock()
}

// onResourceUpdated refreshes a single cache entry. The protocol offers no
// single-resource metadata fetch, so the listing is re-queried and only the
// matching entry is applied.
func (s *Session) onResourceUpdated(ctx context.Context, notification *jsonrpc.Notification) {
	params := struct {
		Uri string `json:"uri"`
	}{}
	if err := json.Unmarshal(notification.Params, &params); err != nil {
		s.warnf("malformed resource update notification: %v", err)
		return
	}
	if err := s.updateResource(ctx, params.Uri); err != nil {
		s.warnf("failed to refresh resource %v: %v", params.Uri, err)
	}
}

func (s *Session) updateResource(ctx context.Context, uri string) error {
	rpcClient := s.currentClient()
	if rpcClient == nil {
		return ErrNotConnected
	}
	result, err := rpcClient.ListResources(ctx, nil)
	if err != nil {
		return err
	}
	for _, resource := range result.Resources {
		if resource.Uri != uri {
			continue
		}
		s.mu.Lock()
		s.resources[uri] = resourceInfo(resource)
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("resource not listed: %v", uri)
}
