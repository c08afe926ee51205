package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	portnotifier "github.com/MustafaBasol/crm-sub007/internal/port/notifier"
)

var _ portnotifier.TenantNotifier = (*SessionRegistry)(nil)

// SessionRegistry is the in-memory map of MCP sessions to the CRM user
// acting through them. It also fans domain events out to the sessions of
// the affected tenant.
type SessionRegistry struct {
	mu         sync.RWMutex
	bySessions map[string]actor.Actor

	// mcpSrv is set after the MCP server is constructed.
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

// NewSessionRegistry creates a registry without an MCP server reference.
// Call SetMCPServer once the mcp-go server is constructed.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		bySessions: make(map[string]actor.Actor),
	}
}

func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

// Register binds a session to an actor. Called by the open_session tool; a
// second call on the same session replaces the identity.
func (r *SessionRegistry) Register(sessionID string, a actor.Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySessions[sessionID] = a
}

// Unregister removes a session when it closes and returns the actor it
// carried.
func (r *SessionRegistry) Unregister(sessionID string) (actor.Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.bySessions[sessionID]
	if !ok {
		return actor.Actor{}, false
	}
	delete(r.bySessions, sessionID)
	return a, true
}

func (r *SessionRegistry) Actor(sessionID string) (actor.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.bySessions[sessionID]
	return a, ok
}

// NotifyTenant sends e to every session opened for tenantID. Sessions of
// other tenants never see it.
func (r *SessionRegistry) NotifyTenant(_ context.Context, tenantID uuid.UUID, e event.Event) error {
	params, err := toParams(e)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	r.mu.RLock()
	targets := make([]string, 0)
	for sessionID, a := range r.bySessions {
		if a.TenantID == tenantID {
			targets = append(targets, sessionID)
		}
	}
	r.mu.RUnlock()

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()

	if srv == nil || len(targets) == 0 {
		return nil
	}

	var lastErr error
	for _, sessionID := range targets {
		if err := srv.SendNotificationToSpecificClient(sessionID, "notifications/message", params); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func toParams(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": v}, nil
	}
	return params, nil
}
